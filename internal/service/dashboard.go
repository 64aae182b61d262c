package service

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"exusiai.dev/booking-backend/internal/model"
)

var ErrDashboardClosed = errors.New("dashboard is closed")

// SnapshotComputer produces one snapshot per call.
type SnapshotComputer interface {
	ComputeSnapshot(ctx context.Context) *model.Snapshot
}

// DashboardState is what the presentation layer renders. Snapshot is nil while Loading.
type DashboardState struct {
	Loading      bool            `json:"loading"`
	ActivationID string          `json:"activationId,omitempty"`
	StartedAt    *time.Time      `json:"startedAt,omitempty"`
	Snapshot     *model.Snapshot `json:"snapshot,omitempty"`
}

// Dashboard holds the state of the admin dashboard across activations. Each Refresh is one
// activation; only the latest activation may publish, and nothing is published after Close.
type Dashboard struct {
	metrics SnapshotComputer

	mu     sync.RWMutex
	state  DashboardState
	closed bool
}

func NewDashboard(metrics *Metrics, lc fx.Lifecycle) *Dashboard {
	d := NewDashboardWith(metrics)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			d.Close()
			return nil
		},
	})
	return d
}

func NewDashboardWith(metrics SnapshotComputer) *Dashboard {
	return &Dashboard{metrics: metrics}
}

// Refresh runs one activation and returns the dashboard state after it settled. When a newer
// activation started meanwhile, or the dashboard was closed, the result is discarded and the
// returned state is whatever the dashboard holds at that point. When ctx is done before the
// snapshot settles, the result is discarded too and the state before the activation is restored.
func (d *Dashboard) Refresh(ctx context.Context) (DashboardState, error) {
	id, prev, err := d.begin()
	if err != nil {
		return DashboardState{}, err
	}

	l := log.Ctx(ctx).With().Str("activation", id.String()).Logger()
	l.Debug().Str("evt.name", "dashboard.loading").Msg("dashboard activation started")

	snapshot := d.metrics.ComputeSnapshot(l.WithContext(ctx))

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		l.Debug().Str("evt.name", "dashboard.discarded").Msg("dashboard closed before activation settled: discarding snapshot")
		return d.state, ErrDashboardClosed
	}
	if d.state.ActivationID != id.String() {
		l.Debug().
			Str("evt.name", "dashboard.discarded").
			Str("superseded_by", d.state.ActivationID).
			Msg("activation superseded: discarding snapshot")
		return d.state, nil
	}
	if err := ctx.Err(); err != nil {
		// the snapshot of a cancelled activation is zero-filled
		l.Debug().Str("evt.name", "dashboard.discarded").Err(err).Msg("activation cancelled: discarding snapshot")
		d.state = prev
		return d.state, err
	}

	d.state.Loading = false
	d.state.Snapshot = snapshot
	l.Info().
		Str("evt.name", "dashboard.settled").
		Bool("degraded", snapshot.Degraded()).
		Msg("dashboard activation settled")

	return d.state, nil
}

func (d *Dashboard) begin() (xid.ID, DashboardState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return xid.ID{}, DashboardState{}, ErrDashboardClosed
	}

	prev := d.state
	id := xid.New()
	startedAt := time.Now()
	d.state = DashboardState{
		Loading:      true,
		ActivationID: id.String(),
		StartedAt:    &startedAt,
	}
	return id, prev, nil
}

// State returns a copy of the current state.
func (d *Dashboard) State() DashboardState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// Close tears the dashboard down. In-flight activations finish on their own and are discarded.
func (d *Dashboard) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
}
