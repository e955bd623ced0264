// Package storage provides CSV persistence for the occupancy series.
//
// The artifact is a two-column CSV (isodate,count) ordered by date with one row
// per day that had a value. Saves go through a temporary file and a rename so
// an interrupted run never leaves a truncated artifact behind, and by default
// merge into the existing rows instead of replacing them.
package storage
