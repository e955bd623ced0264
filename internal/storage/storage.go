package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pfrederiksen/hospi-calendar/internal/series"
)

const (
	ColumnDate  = "isodate"
	ColumnCount = "count"
)

var (
	ErrBadHeader = errors.New("unexpected artifact header")
	ErrBadRow    = errors.New("malformed artifact row")
)

// Store handles persistence of the occupancy series artifact
type Store struct {
	path string
}

// New creates a Store writing to path, creating its directory if needed
func New(path string) (*Store, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Store{path: path}, nil
}

// Path returns the artifact location
func (s *Store) Path() string {
	return s.path
}

// Load reads the artifact. A missing artifact yields an empty series.
func (s *Store) Load() (series.Series, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return series.Series{}, nil
		}
		return nil, fmt.Errorf("opening artifact: %w", err)
	}
	defer f.Close()

	out, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	return out, nil
}

// Save writes fresh to disk. With merge set, dates already stored but absent
// from fresh are kept; otherwise the artifact is replaced in full. The file is
// written to a temporary sibling and renamed, so readers never observe a
// partial artifact. Save returns the series that was written.
func (s *Store) Save(fresh series.Series, merge bool) (series.Series, error) {
	out := fresh
	if merge {
		previous, err := s.Load()
		if err != nil {
			return nil, fmt.Errorf("loading previous artifact: %w", err)
		}
		out = series.Merge(previous, fresh)
	}

	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("validating series: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("creating temp artifact: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := Write(tmp, out); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("writing artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("closing temp artifact: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return nil, fmt.Errorf("setting artifact permissions: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return nil, fmt.Errorf("replacing artifact: %w", err)
	}

	return out, nil
}

// Write encodes a series as CSV with an isodate,count header
func Write(w io.Writer, s series.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColumnDate, ColumnCount}); err != nil {
		return err
	}
	for _, p := range s {
		if err := cw.Write([]string{p.ISODate(), strconv.Itoa(p.Value)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read decodes a CSV artifact. The second column may carry any name, which
// keeps files with the older "hospitalizados" header readable.
func Read(r io.Reader) (series.Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return series.Series{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	if strings.TrimPrefix(strings.TrimSpace(header[0]), "\ufeff") != ColumnDate {
		return nil, fmt.Errorf("%w: first column %q, want %q", ErrBadHeader, header[0], ColumnDate)
	}

	out := make(series.Series, 0, 1024)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrBadRow, line, err)
		}

		date, err := time.Parse(time.DateOnly, strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: date %q", ErrBadRow, line, rec[0])
		}
		value, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil || value < 0 {
			return nil, fmt.Errorf("%w: line %d: count %q", ErrBadRow, line, rec[1])
		}

		out = append(out, series.DateValue{Date: date, Value: value})
	}

	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRow, err)
	}
	return out, nil
}
