// Package tabular tokenizes delimited text and normalizes locale-formatted numbers.
package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"walletlab/internal/errors"
)

// ParseCSV splits text into rows of cells. Carriage returns are dropped before tokenizing and rows whose
// cells are all blank are skipped wherever they appear.
//
// A quote opens a quoted section only at the start of a cell (leading blanks allowed); inside it `""` is a
// literal quote and any other quote closes the section. Quotes anywhere else are literal text. Input that
// ends inside an open quote is the only malformed case.
func ParseCSV(text string) ([][]string, error) {
	text = strings.ReplaceAll(text, "\r", "")

	var (
		rows      = make([][]string, 0)
		record    []string
		cell      strings.Builder
		quoted    bool // current cell already used its quoted section
		inQuotes  bool
		line      = 1
		quoteLine int
	)

	endCell := func() {
		record = append(record, cell.String())
		cell.Reset()
		quoted = false
	}
	endRow := func() {
		endCell()
		if !isBlankRow(record) {
			rows = append(rows, record)
		}
		record = nil
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		if inQuotes {
			switch {
			case c == '"' && i+1 < len(text) && text[i+1] == '"':
				cell.WriteByte('"')
				i++
			case c == '"':
				inQuotes = false
			default:
				if c == '\n' {
					line++
				}
				cell.WriteByte(c)
			}
			continue
		}

		switch {
		case c == '"' && !quoted && strings.TrimSpace(cell.String()) == "":
			inQuotes = true
			quoted = true
			quoteLine = line
		case c == ',':
			endCell()
		case c == '\n':
			endRow()
			line++
		default:
			cell.WriteByte(c)
		}
	}

	if inQuotes {
		return nil, errors.MalformedInput(fmt.Sprintf("unterminated quote starting on line %d", quoteLine))
	}
	if len(record) > 0 || cell.Len() > 0 || quoted {
		endRow()
	}
	return rows, nil
}

func isBlankRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// FormatCSV serializes rows, quoting any cell that contains a separator, a quote or a newline
func FormatCSV(rows [][]string) (string, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.WriteAll(rows); err != nil {
		return "", fmt.Errorf("failed to write CSV: %w", err)
	}
	return buf.String(), nil
}
