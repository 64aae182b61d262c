package refreshwkr

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"exusiai.dev/booking-backend/internal/app/appconfig"
	"exusiai.dev/booking-backend/internal/service"
)

type Refresher interface {
	Refresh(ctx context.Context) (service.DashboardState, error)
}

type Worker struct {
	// count counts refreshes the worker has completed so far
	count int
	mu    sync.Mutex

	// interval describes the interval in-between refreshes. Zero disables the ticker.
	interval time.Duration

	// onStart triggers one refresh as soon as the worker starts
	onStart bool

	refresher Refresher
	cancel    context.CancelFunc
	done      chan struct{}
}

func New(refresher Refresher, interval time.Duration, onStart bool) *Worker {
	return &Worker{
		interval:  interval,
		onStart:   onStart,
		refresher: refresher,
	}
}

func Start(conf *appconfig.Config, lc fx.Lifecycle, dashboard *service.Dashboard) {
	w := New(dashboard, conf.MetricsRefreshInterval, conf.MetricsRefreshOnStart)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			w.Run()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return w.Stop(ctx)
		},
	})
}

// Run starts the worker loop in the background. It is a no-op if there is nothing to do.
func (w *Worker) Run() {
	if w.interval <= 0 && !w.onStart {
		log.Info().Str("worker", "refreshwkr").Msg("worker disabled: no refresh interval configured")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})

	go func() {
		defer close(w.done)
		w.loop(ctx)
	}()
}

func (w *Worker) loop(ctx context.Context) {
	if w.onStart {
		w.refresh(ctx)
	}
	if w.interval <= 0 {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *Worker) refresh(ctx context.Context) {
	l := log.With().Str("worker", "refreshwkr").Int("count", w.Count()).Logger()
	l.Debug().Msg("worker refresh started")

	err := observeRefreshDuration(func() error {
		_, err := w.refresher.Refresh(l.WithContext(ctx))
		return err
	})
	if err != nil {
		l.Warn().Err(err).Msg("worker refresh aborted")
		return
	}

	w.mu.Lock()
	w.count++
	w.mu.Unlock()
	l.Debug().Msg("worker refresh finished")
}

// Stop cancels the loop and waits for an in-flight refresh to return, or for ctx to expire.
func (w *Worker) Stop(ctx context.Context) error {
	if w.cancel == nil {
		return nil
	}
	w.cancel()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}
