package cli

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/pfrederiksen/hospi-calendar/internal/logger"
	"github.com/pfrederiksen/hospi-calendar/internal/scraper"
)

// fetcher is satisfied by *scraper.Scraper
type fetcher interface {
	Fetch(ctx context.Context, date time.Time) (*scraper.Page, error)
}

// newBackOff is replaced in tests to avoid sleeping between attempts
var newBackOff = func() backoff.BackOff {
	return backoff.NewExponentialBackOff()
}

// fetchWithRetry fetches the dashboard, retrying transient failures up to
// retries extra times. Client errors and cancellation stop immediately.
func fetchWithRetry(ctx context.Context, f fetcher, date time.Time, retries int) (*scraper.Page, error) {
	var page *scraper.Page
	attempt := 0

	op := func() error {
		attempt++
		p, err := f.Fetch(ctx, date)
		if err == nil {
			page = p
			return nil
		}

		var acqErr *scraper.AcquisitionError
		if ctx.Err() != nil || (errors.As(err, &acqErr) && !acqErr.Retryable()) {
			return backoff.Permanent(err)
		}
		if attempt <= retries {
			logger.Warn("Fetch failed, retrying", logger.Fields{
				"attempt": attempt,
				"retries": retries,
			})
			logger.IncrCounter("scrape.retries")
		}
		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(newBackOff(), uint64(retries)), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, err
	}
	return page, nil
}
