package scraper

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	StageSession = "session"
	StageTrend   = "trend"
)

// ErrAcquisition matches every *AcquisitionError with errors.Is.
var ErrAcquisition = errors.New("acquisition failed")

// AcquisitionError reports a failure to obtain the dashboard text. A run that
// hits one must not write the artifact.
type AcquisitionError struct {
	Stage      string // StageSession or StageTrend
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("acquisition failed at %s (%s): %v", e.Stage, e.URL, e.Err)
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

func (e *AcquisitionError) Is(target error) bool {
	return target == ErrAcquisition
}

// Retryable reports whether repeating the request may succeed. Client errors
// (4xx other than 408 and 429) are not retryable.
func (e *AcquisitionError) Retryable() bool {
	if e.StatusCode == 0 {
		return true
	}
	switch e.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	return e.StatusCode >= 500
}
