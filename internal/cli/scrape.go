package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/hospi-calendar/internal/config"
	"github.com/pfrederiksen/hospi-calendar/internal/extract"
	"github.com/pfrederiksen/hospi-calendar/internal/logger"
	"github.com/pfrederiksen/hospi-calendar/internal/scraper"
	"github.com/pfrederiksen/hospi-calendar/internal/series"
	"github.com/pfrederiksen/hospi-calendar/internal/storage"
)

type scrapeFlags struct {
	asOf      string
	overwrite bool
}

func newScrapeCmd(a *app) *cobra.Command {
	var flags scrapeFlags

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Fetch the dashboard and rebuild the occupancy series",
		Long: `Fetch the dashboard, extract every day from the start date up to (but not
including) --as-of, and save the series. By default the result is merged into
the existing file so days the dashboard no longer serves are kept; use
--overwrite to replace the file with exactly what was fetched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runScrape(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.asOf, "as-of", "", "Exclusive end date YYYY-MM-DD (default: today)")
	cmd.Flags().BoolVar(&flags.overwrite, "overwrite", false, "Replace the data file instead of merging into it")
	cmd.Flags().Int("retries", 0, "Extra fetch attempts on transient failures")
	a.bind(cmd.Flags().Lookup("retries"), config.KeyRetries)

	return cmd
}

// runScrape is the scrape command logic. Nothing is written unless the
// dashboard was fetched successfully.
func (a *app) runScrape(cmd *cobra.Command, flags scrapeFlags) error {
	asOf, err := parseDateFlag("as-of", flags.asOf)
	if err != nil {
		return err
	}
	if asOf.IsZero() {
		asOf = a.today()
	}
	if !a.cfg.StartDate.Before(asOf) {
		return fmt.Errorf("--as-of %s must be after start date %s",
			asOf.Format(time.DateOnly), a.cfg.StartDate.Format(time.DateOnly))
	}

	store, err := storage.New(a.cfg.DataFile)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	sc, err := scraper.New(a.cfg.ScraperOptions())
	if err != nil {
		return fmt.Errorf("initializing scraper: %w", err)
	}

	// The dashboard is queried for the last complete day.
	queryDate := asOf.AddDate(0, 0, -1)

	logger.Info("Fetching dashboard", logger.Fields{
		"url":  a.cfg.TrendURL,
		"date": queryDate.Format(time.DateOnly),
	})

	started := time.Now()
	page, err := fetchWithRetry(cmd.Context(), sc, queryDate, a.cfg.Retries)
	logger.RecordTiming("scrape.fetch", time.Since(started))
	if err != nil {
		logger.Error("Acquisition failed", logger.Fields{"url": a.cfg.TrendURL}, err)
		return fmt.Errorf("fetching dashboard: %w", err)
	}

	ex := extract.New(a.cfg.Marker())
	fresh, stats := series.Build(page.ScriptText(), ex, a.cfg.StartDate, asOf)

	logger.AddCounter("extract.found", int64(stats.Found))
	logger.AddCounter("extract.missing", int64(stats.Missing))
	if stats.Found == 0 {
		logger.Warn("No markers found; the dashboard format may have changed", logger.Fields{
			"example_prefix": ex.Marker().Prefix(queryDate),
		})
	}

	written, err := store.Save(fresh, !flags.overwrite)
	if err != nil {
		return fmt.Errorf("saving series: %w", err)
	}
	logger.SetGauge("series.rows", float64(len(written)))

	logger.Info("Series saved", logger.Fields{
		"path":   store.Path(),
		"found":  stats.Found,
		"rows":   len(written),
		"merged": !flags.overwrite,
	})
	logger.Debug("Run metrics", logger.Fields(logger.GetMetricsSnapshot()))

	result := &ScrapeResult{
		CheckedAt: a.now().UTC(),
		AsOf:      asOf.Format(time.DateOnly),
		QueryDate: queryDate.Format(time.DateOnly),
		Stats:     stats,
		Fetched:   len(fresh),
		Rows:      len(written),
		DataFile:  store.Path(),
		Merged:    !flags.overwrite,
	}
	if len(written) > 0 {
		result.FirstDate = written[0].ISODate()
		result.LastDate = written[len(written)-1].ISODate()
	}

	if err := WriteOutput(cmd.OutOrStdout(), result, a.format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
