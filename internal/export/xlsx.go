package export

import (
	"fmt"
	"io"

	"github.com/pfrederiksen/hospi-calendar/internal/calendar"
	"github.com/xuri/excelize/v2"
)

const (
	SheetGrid  = "grid"
	SheetDays  = "days"
	SheetScale = "scale"
)

var weekdayNames = [calendar.DaysPerWeek]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// WriteXLSX writes a workbook with three sheets:
//   - grid: weekday rows (Mon..Sun) by week columns 0..53, starting at B2
//   - days: the long-form table also produced by WriteCSV
//   - scale: tick values and labels, then min and max
func WriteXLSX(w io.Writer, sk *calendar.Skeleton, sc calendar.Scale) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetGrid); err != nil {
		return fmt.Errorf("naming grid sheet: %w", err)
	}
	if err := writeGrid(f, sk); err != nil {
		return fmt.Errorf("writing grid sheet: %w", err)
	}

	if _, err := f.NewSheet(SheetDays); err != nil {
		return fmt.Errorf("creating days sheet: %w", err)
	}
	if err := writeDays(f, sk); err != nil {
		return fmt.Errorf("writing days sheet: %w", err)
	}

	if _, err := f.NewSheet(SheetScale); err != nil {
		return fmt.Errorf("creating scale sheet: %w", err)
	}
	if err := writeScale(f, sc); err != nil {
		return fmt.Errorf("writing scale sheet: %w", err)
	}

	return f.Write(w)
}

func writeGrid(f *excelize.File, sk *calendar.Skeleton) error {
	if err := f.SetCellValue(SheetGrid, "A1", sk.Year); err != nil {
		return err
	}
	for week := 0; week < calendar.Weeks; week++ {
		cell, err := excelize.CoordinatesToCellName(week+2, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetGrid, cell, week); err != nil {
			return err
		}
	}
	for wd, name := range weekdayNames {
		cell, err := excelize.CoordinatesToCellName(1, wd+2)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetGrid, cell, name); err != nil {
			return err
		}
	}

	grid := sk.Grid()
	for wd := range grid {
		for week, v := range grid[wd] {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(week+2, wd+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(SheetGrid, cell, *v); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeDays(f *excelize.File, sk *calendar.Skeleton) error {
	header := []interface{}{"isodate", "value", "week", "weekday", "month_start"}
	if err := f.SetSheetRow(SheetDays, "A1", &header); err != nil {
		return err
	}
	for i, d := range sk.Days {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{d.ISODate, d.Value, d.WeekIndex, d.WeekdayIndex, d.IsMonthStart}
		if err := f.SetSheetRow(SheetDays, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeScale(f *excelize.File, sc calendar.Scale) error {
	header := []interface{}{"tick", "label"}
	if err := f.SetSheetRow(SheetScale, "A1", &header); err != nil {
		return err
	}
	for i, v := range sc.TickValues {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{v, sc.TickLabels[i]}
		if err := f.SetSheetRow(SheetScale, cell, &row); err != nil {
			return err
		}
	}

	next := len(sc.TickValues) + 3
	bounds := [][]interface{}{
		{"min", sc.Min},
		{"max", sc.Max},
		{"true_max", sc.TrueMax},
	}
	for i, row := range bounds {
		cell, err := excelize.CoordinatesToCellName(1, next+i)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(SheetScale, cell, &r); err != nil {
			return err
		}
	}
	return nil
}
