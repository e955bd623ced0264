// Package cli implements the command-line interface for hospi.
//
// The cli package provides the Cobra-based commands: scrape fetches the
// dashboard and saves the occupancy series, calendar projects one year onto
// the week-by-weekday grid and its color scale, and weekly prints weekly means.
// Settings come from flags, HOSPI_* environment variables and an optional .env
// file, resolved through the config package.
package cli
