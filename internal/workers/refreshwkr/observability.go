package refreshwkr

import (
	"time"

	"exusiai.dev/booking-backend/internal/pkg/observability"
)

func observeRefreshDuration(f func() error) error {
	start := time.Now()
	defer func() {
		dur := time.Since(start)
		observability.WorkerRefreshDuration.WithLabelValues("refreshwkr").Set(dur.Seconds())
	}()
	return f()
}
