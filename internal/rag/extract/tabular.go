package extract

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var errNoWorkbook = errors.New("no workbook stream in file")

func extractCSV(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errEmptyInput
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return "", err
	}
	return renderTable(rows), nil
}

// every sheet in workbook order, each rendered as its own table
func extractXLSX(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	defer func() {
		if cErr := f.Close(); cErr != nil {
			logger().Warn("closing workbook", "error", cErr)
		}
	}()

	var tables []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", err
		}
		if len(rows) == 0 {
			continue
		}
		tables = append(tables, renderTable(rows))
	}
	return strings.Join(tables, "\n"), nil
}

// legacy BIFF workbooks. The reader panics on damaged streams and on rows
// missing from a sheet, so both are recovered.
func extractXLS(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", errEmptyInput
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed xls: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return "", err
	}
	if wb == nil {
		return "", errNoWorkbook
	}

	var tables []string
	for i := 0; i < wb.NumSheets(); i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}
		var rows [][]string
		for r := 0; r <= int(sheet.MaxRow); r++ {
			if cells := xlsRow(sheet, r); len(cells) > 0 {
				rows = append(rows, cells)
			}
		}
		if len(rows) > 0 {
			tables = append(tables, renderTable(rows))
		}
	}
	return strings.Join(tables, "\n"), nil
}

func xlsRow(sheet *xls.WorkSheet, r int) (cells []string) {
	defer func() {
		if recover() != nil {
			cells = nil
		}
	}()
	row := sheet.Row(r)
	for c := 0; c < row.LastCol(); c++ {
		cells = append(cells, row.Col(c))
	}
	if strings.TrimSpace(strings.Join(cells, "")) == "" {
		return nil
	}
	return cells
}

// renderTable lays rows out as aligned columns: header first, no row index.
func renderTable(rows [][]string) string {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return ""
	}

	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		cells := make([]string, width)
		for i := range cells {
			if i < len(row) {
				cells[i] = strings.Join(strings.Fields(row[i]), " ")
			}
		}
		_, _ = tw.Write([]byte(strings.Join(cells, "\t") + "\n"))
	}
	_ = tw.Flush()

	// empty trailing cells still receive column padding
	lines := strings.Split(buf.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}
