// Package sheet turns uploaded spreadsheets into core.RawRow values and
// writes the import template and error report files.
package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JonMunkholm/catalogimport/internal/core"
	"github.com/xuri/excelize/v2"
)

// Format is the container format of an upload.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ErrUnsupportedFormat is returned for file extensions that are not
// spreadsheets.
var ErrUnsupportedFormat = errors.New("unsupported file type")

// DetectFormat picks the format from a file name.
func DetectFormat(fileName string) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv", ".txt":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(fileName))
	}
}

// Options tunes Read.
type Options struct {
	// Charset of CSV input. Empty means UTF-8.
	Charset string
	// MaxBytes bounds the upload size. Zero disables the limit.
	MaxBytes int64
}

// Sheet is the parsed content of an upload.
type Sheet struct {
	Name    string
	Headers []string
	Rows    []core.RawRow
}

// Read parses an upload. The header is the first non-empty row; data rows
// are numbered from the line below it as the vendor sees them in Excel.
// Files that cannot be parsed fail with core.ErrUnreadableFile, workbooks
// without any data with core.ErrNoDataSheet.
func Read(r io.Reader, fileName string, opts Options) (*Sheet, error) {
	format, err := DetectFormat(fileName)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatXLSX:
		return readXLSX(r, opts)
	default:
		return readCSV(r, opts)
	}
}

func readXLSX(r io.Reader, opts Options) (*Sheet, error) {
	lr := &limitedReader{r: r, max: opts.MaxBytes}
	data, err := io.ReadAll(lr)
	if err != nil {
		if errors.Is(err, ErrFileTooLarge) {
			return nil, err
		}
		return nil, core.NewFatalInputError(core.ErrUnreadableFile, err.Error())
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, core.NewFatalInputError(core.ErrUnreadableFile, err.Error())
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		if visible, _ := f.GetSheetVisible(name); !visible {
			continue
		}

		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, core.NewFatalInputError(core.ErrUnreadableFile, err.Error())
		}

		headerAt := firstNonBlank(rows)
		if headerAt < 0 {
			continue
		}

		cellType := func(row, col int) excelize.CellType {
			axis, err := excelize.CoordinatesToCellName(col+1, row+1)
			if err != nil {
				return excelize.CellTypeUnset
			}
			t, _ := f.GetCellType(name, axis)
			return t
		}

		// GetRows keeps leading blank rows, so index i is sheet row i+1
		line := func(i int) int { return i + 1 }
		return buildSheet(name, rows, headerAt, line, func(row, col int, raw string) core.CellValue {
			return xlsxCell(raw, cellType(row, col))
		}), nil
	}

	return nil, core.NewFatalInputError(core.ErrNoDataSheet, "")
}

// xlsxCell types a raw cell value. Cells without an explicit type are
// numbers in the xlsx format.
func xlsxCell(raw string, t excelize.CellType) core.CellValue {
	if strings.TrimSpace(raw) == "" {
		return core.Empty()
	}
	switch t {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return core.Number(f)
		}
	}
	return core.Text(raw)
}

func readCSV(r io.Reader, opts Options) (*Sheet, error) {
	wrapped, err := wrapCSV(r, opts.Charset, opts.MaxBytes)
	if err != nil {
		return nil, core.NewFatalInputError(core.ErrUnreadableFile, err.Error())
	}

	cr := csv.NewReader(wrapped)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	// encoding/csv skips blank lines, so record positions are kept to
	// report the line the vendor sees.
	var records [][]string
	var lines []int
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if errors.Is(err, ErrFileTooLarge) {
				return nil, err
			}
			return nil, core.NewFatalInputError(core.ErrUnreadableFile, err.Error())
		}
		line, _ := cr.FieldPos(0)
		records = append(records, rec)
		lines = append(lines, line)
	}

	headerAt := firstNonBlank(records)
	if headerAt < 0 {
		return nil, core.NewFatalInputError(core.ErrNoDataSheet, "")
	}

	line := func(i int) int { return lines[i] }
	return buildSheet("", records, headerAt, line, func(_, _ int, raw string) core.CellValue {
		return core.Text(core.CleanCell(raw))
	}), nil
}

// buildSheet turns raw rows into RawRows. line maps a row index to the
// line number shown to the vendor.
func buildSheet(name string, rows [][]string, headerAt int, line func(int) int, cell func(row, col int, raw string) core.CellValue) *Sheet {
	headers := make([]string, len(rows[headerAt]))
	for i, h := range rows[headerAt] {
		headers[i] = core.CleanCell(h)
	}

	s := &Sheet{Name: name, Headers: headers}
	for i := headerAt + 1; i < len(rows); i++ {
		values := make([]core.CellValue, len(rows[i]))
		for j, raw := range rows[i] {
			values[j] = cell(i, j, raw)
		}
		s.Rows = append(s.Rows, core.NewRawRow(line(i), headers, values))
	}
	return s
}

func firstNonBlank(rows [][]string) int {
	for i, row := range rows {
		for _, v := range row {
			if strings.TrimSpace(v) != "" {
				return i
			}
		}
	}
	return -1
}
