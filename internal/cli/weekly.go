package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/hospi-calendar/internal/calendar"
	"github.com/pfrederiksen/hospi-calendar/internal/storage"
)

type weeklyFlags struct {
	from string
	to   string
}

func newWeeklyCmd(a *app) *cobra.Command {
	var flags weeklyFlags

	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "Print weekly mean occupancy (weeks end on Sunday)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWeekly(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.from, "from", "", "First date to include, YYYY-MM-DD")
	cmd.Flags().StringVar(&flags.to, "to", "", "Exclusive end date, YYYY-MM-DD")

	return cmd
}

// runWeekly is the weekly command logic
func (a *app) runWeekly(cmd *cobra.Command, flags weeklyFlags) error {
	from, err := parseDateFlag("from", flags.from)
	if err != nil {
		return err
	}
	to, err := parseDateFlag("to", flags.to)
	if err != nil {
		return err
	}

	store, err := storage.New(a.cfg.DataFile)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	s, err := store.Load()
	if err != nil {
		return fmt.Errorf("loading series: %w", err)
	}

	result := &WeeklyResult{
		Weeks: calendar.WeeklyMeans(s.Between(from, to)),
	}

	if err := WriteOutput(cmd.OutOrStdout(), result, a.format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
