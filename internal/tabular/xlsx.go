package tabular

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// ParseXLSX flattens the first sheet of an XLSX workbook into the same
// Table shape Parse produces for CSV text. Rent tables are distributed both
// ways, so downstream code never needs to care which format arrived.
func ParseXLSX(path string) (Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return Table{}, eris.Wrap(err, "tabular: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return Table{}, eris.Errorf("tabular: workbook %s has no sheets", path)
	}

	sheet := f.Sheets[0]
	var t Table
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		empty := true
		for j, cell := range row.Cells {
			cells[j] = cell.String()
			if cells[j] != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		if t.Header == nil {
			t.Header = cells
			continue
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, nil
}
