package excel

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// WorkbookReader reads and writes .xlsx workbooks for the dataset slot
type WorkbookReader struct{}

// NewWorkbookReader creates a workbook reader
func NewWorkbookReader() *WorkbookReader {
	return &WorkbookReader{}
}

// ReadRows returns the cell text of the first worksheet. Rows with only blank cells are skipped.
func (r *WorkbookReader) ReadRows(content []byte) ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no worksheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheets[0], err)
	}

	kept := make([][]string, 0, len(rows))
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		kept = append(kept, row)
	}

	log.Printf("[WorkbookReader] %s read in %.2fms (%d rows)",
		sheets[0], float64(time.Since(startTime).Nanoseconds())/1e6, len(kept))
	return kept, nil
}

// WriteRows writes rows into a new workbook with a single sheet
func (r *WorkbookReader) WriteRows(w io.Writer, sheet string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
