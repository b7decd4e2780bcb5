// Package tabular turns raw delimited text and XLSX workbooks into
// header-keyed row maps for the ingest layer.
package tabular

import "strings"

// Table holds a parsed header row and the data rows beneath it. Fields are
// raw strings; all typing and defaulting happens during ingest.
type Table struct {
	Header []string
	Rows   [][]string
}

// Parse parses CSV-shaped text. A leading UTF-8 byte-order marker is
// stripped, line endings may be any of \n, \r\n, or \r, and empty lines are
// skipped. The first surviving line is the header. Header-only or empty
// input yields a Table with no rows; that is a valid "no data" case, not an
// error, so Parse has no error return.
//
// Field quoting follows RFC 4180 within a single line: a double quote
// toggles quoted mode, a doubled quote inside quoted mode is an escaped
// literal quote, and a comma outside quoted mode ends the field. Quoted
// fields spanning multiple lines are not supported; the curated datasets
// never contain them.
func Parse(text string) Table {
	text = strings.TrimPrefix(text, "\uFEFF")
	text = strings.TrimSpace(text)

	var lines []string
	for _, line := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r'
	}) {
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) <= 1 {
		var header []string
		if len(lines) == 1 {
			header = splitLine(lines[0])
		}
		return Table{Header: header}
	}

	t := Table{Header: splitLine(lines[0])}
	t.Rows = make([][]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		t.Rows = append(t.Rows, splitLine(line))
	}
	return t
}

// splitLine scans one line character by character, honoring quotes. The
// final field is always emitted even when the line has no trailing comma.
func splitLine(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '"' && inQuotes && i+1 < len(runes) && runes[i+1] == '"':
			cur.WriteRune('"')
			i++ // skip escaped quote
		case c == '"':
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(c)
		}
	}
	fields = append(fields, cur.String())
	return fields
}

// Records converts the table into header-keyed maps. Rows shorter than the
// header get empty strings for the missing columns; extra cells beyond the
// header are dropped.
func (t Table) Records() []map[string]string {
	if len(t.Rows) == 0 {
		return nil
	}
	records := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Header))
		for i, col := range t.Header {
			if i < len(row) {
				rec[col] = row[i]
			} else {
				rec[col] = ""
			}
		}
		records = append(records, rec)
	}
	return records
}
