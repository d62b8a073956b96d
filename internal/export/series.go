package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"smart-chart/internal/chart"
)

// seriesSheet is the worksheet name used for .xlsx exports.
const seriesSheet = "Series"

// Series writes the selected series side by side to path: .csv or .xlsx.
// Each series contributes "<name> index", "<name> x" and "<name> y"
// columns; shorter series leave their trailing cells empty.
func Series(store *chart.SeriesStore, ids []int, path string) error {
	cols, err := seriesColumns(store, ids)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		if err := writeCSV(f, cols); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	case ".xlsx":
		return writeXLSX(path, cols)
	}
	return fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}

// WriteSeriesCSV writes the selected series as CSV to w.
func WriteSeriesCSV(w io.Writer, store *chart.SeriesStore, ids []int) error {
	cols, err := seriesColumns(store, ids)
	if err != nil {
		return err
	}
	return writeCSV(w, cols)
}

type column struct {
	header string
	cells  []float64
}

func seriesColumns(store *chart.SeriesStore, ids []int) ([]column, error) {
	if len(ids) == 0 {
		ids = store.IDs()
	}
	var cols []column
	for _, id := range ids {
		ser, ok := store.Get(id)
		if !ok {
			return nil, fmt.Errorf("export series %d: %w", id, chart.ErrNotFound)
		}
		idx := make([]float64, len(ser.Points))
		xs := make([]float64, len(ser.Points))
		ys := make([]float64, len(ser.Points))
		for i, p := range ser.Points {
			idx[i], xs[i], ys[i] = float64(i), p.X, p.Y
		}
		cols = append(cols,
			column{ser.Name + " index", idx},
			column{ser.Name + " x", xs},
			column{ser.Name + " y", ys},
		)
	}
	return cols, nil
}

func rows(cols []column) int {
	n := 0
	for _, c := range cols {
		if len(c.cells) > n {
			n = len(c.cells)
		}
	}
	return n
}

func writeCSV(w io.Writer, cols []column) error {
	cw := csv.NewWriter(w)
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.header
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for r := 0; r < rows(cols); r++ {
		rec := make([]string, len(cols))
		for i, c := range cols {
			if r < len(c.cells) {
				rec[i] = strconv.FormatFloat(c.cells[r], 'g', -1, 64)
			}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(path string, cols []column) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", seriesSheet); err != nil {
		return err
	}
	for i, c := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(seriesSheet, cell, c.header); err != nil {
			return err
		}
		for r, v := range c.cells {
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(seriesSheet, cell, v); err != nil {
				return err
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
