package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/hospi-calendar/internal/calendar"
	"github.com/pfrederiksen/hospi-calendar/internal/config"
	"github.com/pfrederiksen/hospi-calendar/internal/export"
	"github.com/pfrederiksen/hospi-calendar/internal/logger"
	"github.com/pfrederiksen/hospi-calendar/internal/storage"
)

type calendarFlags struct {
	year       int
	exportPath string
}

func newCalendarCmd(a *app) *cobra.Command {
	var flags calendarFlags

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Project one year of the series onto the calendar grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCalendar(cmd, flags)
		},
	}

	cmd.Flags().IntVar(&flags.year, "year", 0, "Year to project (default: current year)")
	cmd.Flags().StringVar(&flags.exportPath, "export", "", "Write the grid to a .csv, .json or .xlsx file")
	cmd.Flags().Int("fill", 0, "Value used for days without data")
	a.bind(cmd.Flags().Lookup("fill"), config.KeyFillValue)

	return cmd
}

// runCalendar is the calendar command logic
func (a *app) runCalendar(cmd *cobra.Command, flags calendarFlags) error {
	year := flags.year
	if year == 0 {
		year = a.today().Year()
	}
	if year < 1 || year > 9999 {
		return fmt.Errorf("invalid year: %d", year)
	}

	store, err := storage.New(a.cfg.DataFile)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	s, err := store.Load()
	if err != nil {
		return fmt.Errorf("loading series: %w", err)
	}

	sk := calendar.Project(s, year, a.cfg.FillValue)
	sc := calendar.Bounds(sk.Values(), a.cfg.ScaleOptions())

	if sk.Observed == 0 {
		logger.Warn("No data for year; projecting fill values only", logger.Fields{
			"year": year,
			"path": store.Path(),
		})
	}

	if flags.exportPath != "" {
		if err := export.WriteFile(flags.exportPath, sk, sc); err != nil {
			return fmt.Errorf("exporting grid: %w", err)
		}
		logger.Info("Grid exported", logger.Fields{"path": flags.exportPath, "year": year})
	}

	result := &CalendarResult{
		Year:        sk.Year,
		Days:        len(sk.Days),
		Observed:    sk.Observed,
		Fill:        sk.Fill,
		Weeks:       sk.LastWeek() + 1,
		Scale:       sc,
		Percentile:  a.cfg.Percentile,
		MonthStarts: sk.MonthStarts(),
		ExportPath:  flags.exportPath,
	}

	if err := WriteOutput(cmd.OutOrStdout(), result, a.format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
