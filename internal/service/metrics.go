package service

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"exusiai.dev/booking-backend/internal/app/appconfig"
	"exusiai.dev/booking-backend/internal/model"
	"exusiai.dev/booking-backend/internal/pkg/observability"
	"exusiai.dev/booking-backend/internal/repo"
)

var tracer = otel.Tracer("exusiai.dev/booking-backend/internal/service")

// ErrNegativeCount is reported when a record store answers a count query with a negative number.
var ErrNegativeCount = errors.New("record store returned a negative count")

// Counter is the record store operation the aggregator depends on.
type Counter interface {
	Count(ctx context.Context, q model.CountQuery) (int, error)
}

type MetricsOptions struct {
	// QueryTimeout bounds each attempt of each count query.
	QueryTimeout time.Duration
	// QueryAttempts is the number of attempts per query; values below 1 are treated as 1.
	QueryAttempts uint
	// RetryDelay is the base delay in-between attempts.
	RetryDelay time.Duration
	// Now is the snapshot clock; time.Now when nil.
	Now func() time.Time
}

// Metrics is the admin metrics aggregator. It keeps no state in-between calls of ComputeSnapshot.
type Metrics struct {
	counter Counter
	opts    MetricsOptions
}

func NewMetrics(conf *appconfig.Config, records *repo.Record) *Metrics {
	return NewMetricsWith(records, MetricsOptions{
		QueryTimeout:  conf.MetricsQueryTimeout,
		QueryAttempts: conf.MetricsQueryAttempts,
		RetryDelay:    100 * time.Millisecond,
	})
}

func NewMetricsWith(counter Counter, opts MetricsOptions) *Metrics {
	if opts.QueryAttempts < 1 {
		opts.QueryAttempts = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Metrics{
		counter: counter,
		opts:    opts,
	}
}

// ComputeSnapshot issues every dashboard count query concurrently, waits for all of them to settle
// and derives a snapshot from the results. A failed query never fails the snapshot: its slot is
// zero-filled and the metrics depending on it are marked degraded.
func (s *Metrics) ComputeSnapshot(ctx context.Context) *model.Snapshot {
	ctx, span := tracer.Start(ctx, "Metrics.ComputeSnapshot")
	defer span.End()

	results := make([]model.CountResult, len(model.DashboardQueries))

	var g errgroup.Group
	for i, q := range model.DashboardQueries {
		i, q := i, q
		g.Go(func() error {
			results[i] = s.count(ctx, q)
			return nil
		})
	}
	// count never returns an error to the group; Wait is purely the join
	_ = g.Wait()

	snapshot := model.Derive(model.NewRawCounts(results...), s.opts.Now())
	s.observe(ctx, snapshot)

	span.SetAttributes(attribute.Bool("snapshot.degraded", snapshot.Degraded()))
	return snapshot
}

func (s *Metrics) count(ctx context.Context, q model.CountQuery) model.CountResult {
	ctx, span := tracer.Start(ctx, "Metrics.count", trace.WithAttributes(
		attribute.String("query.id", string(q.ID)),
		attribute.String("query.collection", string(q.Collection)),
	))
	defer span.End()

	start := time.Now()
	var n int
	err := retry.Do(
		func() error {
			v, err := s.countOnce(ctx, q)
			if err != nil {
				return err
			}
			n = v
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(s.opts.QueryAttempts),
		retry.Delay(s.opts.RetryDelay),
		retry.LastErrorOnly(true),
	)
	if err == nil && n < 0 {
		err = errors.Wrapf(ErrNegativeCount, "got %d", n)
	}
	observability.CountQueryDuration.WithLabelValues(string(q.ID)).Observe(time.Since(start).Seconds())

	if err != nil {
		s.reportFailure(ctx, q, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "count query failed")
		return model.CountResult{ID: q.ID, Err: err}
	}

	span.SetAttributes(attribute.Int("query.count", n))
	return model.CountResult{ID: q.ID, Value: n}
}

// countOnce runs one attempt under QueryTimeout. It returns as soon as the deadline passes,
// even if the counter itself ignores ctx.
func (s *Metrics) countOnce(ctx context.Context, q model.CountQuery) (int, error) {
	if s.opts.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.QueryTimeout)
		defer cancel()
	}

	type result struct {
		n   int
		err error
	}
	ch := make(chan result, 1)
	go func() {
		n, err := s.counter.Count(ctx, q)
		ch <- result{n: n, err: err}
	}()

	select {
	case r := <-ch:
		return r.n, r.err
	case <-ctx.Done():
		return 0, errors.Wrapf(ctx.Err(), "count %s did not settle", q.ID)
	}
}

func (s *Metrics) reportFailure(ctx context.Context, q model.CountQuery, err error) {
	kind := "error"
	if errors.Is(err, context.DeadlineExceeded) {
		kind = "timeout"
	}
	observability.CountQueryFailures.WithLabelValues(string(q.ID), kind).Inc()

	log.Ctx(ctx).Warn().
		Str("evt.name", "metrics.query.failed").
		Str("query", string(q.ID)).
		Str("collection", string(q.Collection)).
		Str("kind", kind).
		Err(err).
		Msg("count query failed: substituting zero")

	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("metrics.query", string(q.ID))
		scope.SetTag("metrics.failure", kind)
	})
	hub.CaptureException(err)
}

func (s *Metrics) observe(ctx context.Context, snapshot *model.Snapshot) {
	ev := log.Ctx(ctx).Debug().Str("evt.name", "metrics.snapshot")
	for name, m := range snapshot.Metrics() {
		observability.SnapshotValue.WithLabelValues(name).Set(float64(m.Value))
		degraded := 0.0
		if m.Degraded() {
			degraded = 1
		}
		observability.SnapshotDegraded.WithLabelValues(name).Set(degraded)
		ev = ev.Dict(name, zerolog.Dict().Int("value", m.Value).Str("status", string(m.Status)))
	}

	if snapshot.ActiveClients.Reason == model.ReasonStoreInconsistency {
		log.Ctx(ctx).Warn().
			Str("evt.name", "metrics.inconsistency").
			Int("activeArtists", snapshot.ActiveArtists.Value).
			Int("activeClients", snapshot.ActiveClients.Value).
			Msg("artist records exceed profile records")
	}

	ev.Msg("snapshot computed")
}
