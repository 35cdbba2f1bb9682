package results

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Export formats, chosen by file extension.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// ErrUnsupportedFormat is returned for export paths that are neither .xlsx
// nor .csv.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// SaveResult describes an export.
type SaveResult struct {
	Path     string `json:"path"`
	Format   string `json:"format"`
	Rows     int    `json:"rows"`
	Appended bool   `json:"appended"`
}

// FormatOf returns the export format for path's extension.
func FormatOf(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q (want .xlsx or .csv)", ErrUnsupportedFormat, ext)
	}
}

// Save writes the records to path.
//
// Parameters:
//   - path: target file, or an existing directory that receives
//     DefaultFileName. The extension picks the format (see FormatOf); a
//     path without one gets ".xlsx".
//
// A file that already has content gets the rows appended after its last row
// without a second header. A missing or empty file starts with Header.
//
// Returns:
//   - where the rows went and whether they were appended
//   - ErrUnsupportedFormat for an extension other than .xlsx or .csv
//   - an error when the table is empty or the file cannot be written
func (t *Table) Save(path string) (*SaveResult, error) {
	records := t.List()
	if len(records) == 0 {
		return nil, errors.New("no results to save")
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, DefaultFileName(t.now()))
	}
	if filepath.Ext(path) == "" {
		path += ".xlsx"
	}
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	appended, err := hasContent(path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	switch format {
	case FormatCSV:
		err = writeCSV(path, records, appended)
	default:
		err = writeXLSX(path, records, appended)
	}
	if err != nil {
		return nil, err
	}
	return &SaveResult{Path: path, Format: format, Rows: len(records), Appended: appended}, nil
}

// hasContent reports whether path exists and is non-empty.
func hasContent(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return info.Size() > 0, nil
}

func writeCSV(path string, records []Record, appendRows bool) error {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appendRows {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if !appendRows {
		if err := w.Write(Header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	for _, r := range records {
		row := []string{
			r.Name,
			strconv.Itoa(r.CellCount),
			strconv.FormatFloat(r.MedianSize, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// writeXLSX writes to the active sheet of the workbook at path. Appended rows
// start right after the sheet's last non-empty row.
func writeXLSX(path string, records []Record, appendRows bool) error {
	var (
		f   *excelize.File
		err error
	)
	if appendRows {
		f, err = excelize.OpenFile(path)
		if err != nil {
			return fmt.Errorf("failed to open workbook %s: %w", path, err)
		}
	} else {
		f = excelize.NewFile()
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	next := 1
	if appendRows {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		next = len(rows) + 1
	} else {
		header := make([]interface{}, len(Header))
		for i, h := range Header {
			header[i] = h
		}
		if err := setRow(f, sheet, next, header); err != nil {
			return err
		}
		next++
	}

	for _, r := range records {
		if err := setRow(f, sheet, next, []interface{}{r.Name, r.CellCount, r.MedianSize}); err != nil {
			return err
		}
		next++
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
