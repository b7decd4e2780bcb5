package server

import (
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sells-group/canopy-cli/internal/model"
)

const defaultPageSize = 100

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"trees":  len(s.result.Trees),
	})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.result.Run)
}

// handleTrees lists scored trees in input order with optional filters:
// ?neighborhood=, ?species=, ?min_score=, ?limit=, ?offset=.
func (s *Server) handleTrees(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	hood := q.Get("neighborhood")
	species := strings.ToLower(q.Get("species"))

	minScore := 0.0
	if raw := q.Get("min_score"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "min_score must be a number")
			return
		}
		minScore = v
	}

	matched := make([]*model.Tree, 0, defaultPageSize)
	for _, t := range s.result.Trees {
		if hood != "" && t.Neighborhood != hood {
			continue
		}
		if species != "" && t.Species != species {
			continue
		}
		if t.AccessibilityScore < minScore {
			continue
		}
		matched = append(matched, t)
	}

	total := len(matched)
	offset := parseBounded(q.Get("offset"), 0, total)
	limit := parseBounded(q.Get("limit"), defaultPageSize, total-offset)
	page := matched[offset : offset+limit]

	s.writeJSON(w, http.StatusOK, map[string]any{
		"total":  total,
		"offset": offset,
		"trees":  page,
	})
}

func (s *Server) handleTreeByIndex(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || idx < 0 || idx >= len(s.result.Trees) {
		s.writeError(w, http.StatusNotFound, "no tree at that index")
		return
	}
	s.writeJSON(w, http.StatusOK, s.result.Trees[idx])
}

func (s *Server) handleRandomTree(w http.ResponseWriter, r *http.Request) {
	if len(s.result.Trees) == 0 {
		s.writeError(w, http.StatusNotFound, "collection is empty")
		return
	}
	s.writeJSON(w, http.StatusOK, s.result.Trees[rand.IntN(len(s.result.Trees))])
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.stats)
}

// parseBounded parses a non-negative int query value, falling back to def
// and clamping to max.
func parseBounded(raw string, def, max int) int {
	v := def
	if raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			v = parsed
		}
	}
	if v > max {
		v = max
	}
	return v
}
