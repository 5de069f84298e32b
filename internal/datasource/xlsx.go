package datasource

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vanderheijden86/stageboard/pkg/debug"
	"github.com/vanderheijden86/stageboard/pkg/snapshot"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX reads the first sheet of a workbook. The header row names the
// columns (Recruit, Develop, Launch, Grow, Metric; case-insensitive, any
// order); blank label cells are null and a blank metric is null. A sheet
// missing any of those headers yields an unbound snapshot, which Build treats
// as malformed.
func ReadXLSX(path string) (*snapshot.Snapshot, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &snapshot.Snapshot{}, nil
	}
	grid, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(grid) == 0 {
		return &snapshot.Snapshot{}, nil
	}

	labelCol := [4]int{-1, -1, -1, -1}
	metricCol := -1
	for i, h := range grid[0] {
		h = strings.TrimSpace(h)
		for c, name := range snapshot.LabelColumnNames {
			if strings.EqualFold(h, name) {
				labelCol[c] = i
			}
		}
		if strings.EqualFold(h, snapshot.MetricColumnName) {
			metricCol = i
		}
	}
	if metricCol < 0 {
		return &snapshot.Snapshot{}, nil
	}
	for c, idx := range labelCol {
		if idx < 0 {
			debug.Log("datasource: %s has no %s column", path, snapshot.LabelColumnNames[c])
			return &snapshot.Snapshot{}, nil
		}
	}

	rows := make([]snapshot.Row, 0, len(grid)-1)
	for r, cells := range grid[1:] {
		var row snapshot.Row
		for c, idx := range labelCol {
			if v := cell(cells, idx); v != "" {
				row.Labels[c] = snapshot.Str(v)
			}
		}
		if v := cell(cells, metricCol); v != "" {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: metric %q: %w", r+2, v, err)
			}
			row.Metric = snapshot.Num(n)
		}
		rows = append(rows, row)
	}
	return snapshot.FromRows(rows), nil
}

func cell(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

// WriteXLSX writes rows to a new workbook with the standard header.
func WriteXLSX(path string, rows []snapshot.Row) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := append(snapshot.LabelColumnNames[:], snapshot.MetricColumnName)
	for c, h := range header {
		if err := setCell(f, sheet, c, 1, h); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for c, l := range row.Labels {
			if l != nil {
				if err := setCell(f, sheet, c, r+2, *l); err != nil {
					return err
				}
			}
		}
		if row.Metric != nil {
			if err := setCell(f, sheet, 4, r+2, *row.Metric); err != nil {
				return err
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, v any) error {
	name, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, name, v)
}
