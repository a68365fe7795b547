// Package export renders staff reports as Excel workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"innkeeper/internal/api"
)

// workbook is a small cursor-style wrapper over excelize.
type workbook struct {
	file       *excelize.File
	sheet      string
	currentRow int
}

func newWorkbook(sheet string) (*workbook, error) {
	// Excel caps sheet names at 31 chars.
	if len(sheet) > 31 {
		sheet = sheet[:31]
	}
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sheet)
	return &workbook{file: f, sheet: sheet, currentRow: 1}, nil
}

func (w *workbook) writeHeader(columns []string) error {
	if err := w.writeCells(columns); err != nil {
		return err
	}
	style, err := w.file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, w.currentRow-1)
		endCell, _ := excelize.CoordinatesToCellName(len(columns), w.currentRow-1)
		_ = w.file.SetCellStyle(w.sheet, startCell, endCell, style)
	}
	return nil
}

func (w *workbook) writeRow(row []interface{}) error {
	return w.writeCells(row)
}

func (w *workbook) writeCells(values any) error {
	write := func(col int, v interface{}) error {
		cell, err := excelize.CoordinatesToCellName(col, w.currentRow)
		if err != nil {
			return err
		}
		return w.file.SetCellValue(w.sheet, cell, v)
	}
	switch vals := values.(type) {
	case []string:
		for i, v := range vals {
			if err := write(i+1, v); err != nil {
				return err
			}
		}
	case []interface{}:
		for i, v := range vals {
			if err := write(i+1, v); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unsupported row type %T", values)
	}
	w.currentRow++
	return nil
}

func (w *workbook) save(wr io.Writer) error {
	defer w.file.Close()
	return w.file.Write(wr)
}

// HotelReports writes the per-hotel performance report as a workbook.
func HotelReports(reports []api.HotelReport, wr io.Writer) error {
	wb, err := newWorkbook("Hotel Reports")
	if err != nil {
		return err
	}

	header := []string{"Hotel ID", "Hotel", "City", "Bookings", "Revenue", "Occupancy %", "Avg Rating"}
	if err := wb.writeHeader(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range reports {
		row := []interface{}{
			r.HotelID,
			r.HotelName,
			r.City,
			r.TotalBookings,
			r.TotalRevenue,
			r.OccupancyRate,
			r.AverageRating,
		}
		if err := wb.writeRow(row); err != nil {
			return fmt.Errorf("write row for hotel %d: %w", r.HotelID, err)
		}
	}

	return wb.save(wr)
}
