// Package export writes a projected calendar year in formats a chart
// renderer can consume: a long-form CSV, a JSON document, or an XLSX
// workbook with the weekday-by-week grid.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pfrederiksen/hospi-calendar/internal/calendar"
)

// Format identifies an export encoding
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// Document is the JSON shape of an exported year.
type Document struct {
	Year        int                    `json:"year"`
	Fill        int                    `json:"fill"`
	Observed    int                    `json:"observed"`
	Scale       calendar.Scale         `json:"scale"`
	MonthStarts []calendar.MonthMarker `json:"month_starts"`
	Days        []calendar.Day         `json:"days"`
}

// FormatFromPath picks the export format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch Format(ext) {
	case FormatCSV, FormatJSON, FormatXLSX:
		return Format(ext), nil
	}
	return "", fmt.Errorf("unsupported export format %q (use .csv, .json or .xlsx)", filepath.Ext(path))
}

// WriteFile writes sk and sc to path in the format implied by its extension.
func WriteFile(path string, sk *calendar.Skeleton, sc calendar.Scale) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}

	if err := Write(f, format, sk, sc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write encodes sk and sc to w.
func Write(w io.Writer, format Format, sk *calendar.Skeleton, sc calendar.Scale) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, sk)
	case FormatJSON:
		return WriteJSON(w, sk, sc)
	case FormatXLSX:
		return WriteXLSX(w, sk, sc)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteCSV writes one row per day: isodate,value,week,weekday,month_start.
func WriteCSV(w io.Writer, sk *calendar.Skeleton) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"isodate", "value", "week", "weekday", "month_start"}); err != nil {
		return err
	}
	for _, d := range sk.Days {
		row := []string{
			d.ISODate,
			strconv.Itoa(d.Value),
			strconv.Itoa(d.WeekIndex),
			strconv.Itoa(d.WeekdayIndex),
			strconv.FormatBool(d.IsMonthStart),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the year, its scale and month markers as indented JSON.
func WriteJSON(w io.Writer, sk *calendar.Skeleton, sc calendar.Scale) error {
	doc := Document{
		Year:        sk.Year,
		Fill:        sk.Fill,
		Observed:    sk.Observed,
		Scale:       sc,
		MonthStarts: sk.MonthStarts(),
		Days:        sk.Days,
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}
