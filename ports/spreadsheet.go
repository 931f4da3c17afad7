package ports

import "io"

// SpreadsheetReader reads the first worksheet of a workbook as rows of cell text
type SpreadsheetReader interface {
	ReadRows(content []byte) ([][]string, error)
}

// SpreadsheetWriter writes rows of cell text into a single-sheet workbook
type SpreadsheetWriter interface {
	WriteRows(w io.Writer, sheet string, rows [][]string) error
}
