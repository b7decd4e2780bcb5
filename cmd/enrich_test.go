package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/canopy-cli/internal/enrich"
	"github.com/sells-group/canopy-cli/internal/model"
)

func TestWriteTreesCSV(t *testing.T) {
	rent := 2400.0
	trees := []*model.Tree{
		{ID: "t1", Status: "alive", Latitude: 40.71, Longitude: -74.0,
			Neighborhood: "Harlem", Species: "pin oak", RentEstimate: &rent,
			DensityScore: 8.5, AffordabilityScore: 6.25, HealthScore: 3, AccessibilityScore: 8.9},
		{ID: "t2", Status: "dead", Latitude: 40.72, Longitude: -74.01,
			Neighborhood: "Astoria", Species: "unknown"},
	}

	var buf bytes.Buffer
	require.NoError(t, writeTreesCSV(&buf, trees))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(treesCSVHeader, ","), lines[0])
	assert.Contains(t, lines[1], "t1,alive,40.71,-74,Harlem,pin oak,2400.00,8.50,6.25,3,8.90")
	// Missing rent stays an empty cell.
	assert.Contains(t, lines[2], "t2,dead,40.72,-74.01,Astoria,unknown,,0.00,0.00,0,0.00")
}

func TestPrintSummary(t *testing.T) {
	now := time.Now()
	result := &enrich.Result{
		Run: model.Run{
			ID: "run-1", Status: model.RunStatusComplete, Trees: 2,
			Neighborhoods: 2, Rents: 2, DroppedRows: 1,
			StartedAt: now, FinishedAt: now.Add(120 * time.Millisecond),
		},
		Trees: []*model.Tree{
			{Status: "alive", Neighborhood: "Harlem", AccessibilityScore: 8},
			{Status: "alive", Neighborhood: "Astoria", AccessibilityScore: 6},
		},
	}

	var buf bytes.Buffer
	printSummary(&buf, result)

	out := buf.String()
	assert.Contains(t, out, "run run-1: 2 trees scored")
	assert.Contains(t, out, "1 rows dropped")
	assert.Contains(t, out, "Harlem")
	assert.Contains(t, out, "Astoria")
}

func TestPrintStats(t *testing.T) {
	stats := enrich.ComputeStats([]*model.Tree{
		{Status: "alive", Neighborhood: "Harlem", DensityScore: 10, AffordabilityScore: 5, AccessibilityScore: 9},
		{Status: "alive", Neighborhood: "Harlem", DensityScore: 8, AffordabilityScore: 5, AccessibilityScore: 8},
	})

	var buf bytes.Buffer
	printStats(&buf, stats)

	out := buf.String()
	assert.Contains(t, out, "2 trees (2 alive)")
	assert.Contains(t, out, "density")
	assert.Contains(t, out, "composite")
	assert.Contains(t, out, "9.00")
}

func TestPrintRuns(t *testing.T) {
	var buf bytes.Buffer
	printRuns(&buf, nil)
	assert.Contains(t, buf.String(), "no runs")

	buf.Reset()
	printRuns(&buf, []model.Run{
		{ID: "run-1", Status: model.RunStatusComplete, Trees: 10, FinishedAt: time.Now()},
	})
	assert.Contains(t, buf.String(), "run-1")
	assert.Contains(t, buf.String(), "complete")
}
