package meta

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"exusiai.dev/booking-backend/internal/app/appconfig"
	"exusiai.dev/booking-backend/internal/model"
	"exusiai.dev/booking-backend/internal/pkg/apperr"
	"exusiai.dev/booking-backend/internal/pkg/cache"
	"exusiai.dev/booking-backend/internal/pkg/cachectrl"
	"exusiai.dev/booking-backend/internal/pkg/flog"
	"exusiai.dev/booking-backend/internal/server/svr"
	"exusiai.dev/booking-backend/internal/service"
)

const (
	snapshotCacheKey = "dashboard"
	cacheHeader      = "X-Booking-Cache"
)

type Dashboard interface {
	Refresh(ctx context.Context) (service.DashboardState, error)
	State() service.DashboardState
}

type MetricsDeps struct {
	fx.In

	Conf             *appconfig.Config
	DashboardService *service.Dashboard
	MetricsService   *service.Metrics
	Redis            *redis.Client
}

type MetricsController struct {
	dashboard Dashboard
	computer  service.SnapshotComputer

	// snapshots is nil when caching is disabled
	snapshots *cache.Set[model.Snapshot]
	cacheTTL  time.Duration
}

func NewMetricsController(dashboard Dashboard, computer service.SnapshotComputer, snapshots *cache.Set[model.Snapshot], cacheTTL time.Duration) *MetricsController {
	if cacheTTL <= 0 {
		snapshots = nil
	}
	return &MetricsController{
		dashboard: dashboard,
		computer:  computer,
		snapshots: snapshots,
		cacheTTL:  cacheTTL,
	}
}

func RegisterMetrics(admin *svr.Admin, deps MetricsDeps) {
	var snapshots *cache.Set[model.Snapshot]
	if deps.Conf.MetricsCacheTTL > 0 {
		snapshots = cache.NewSet[model.Snapshot](deps.Redis, "booking:snapshot")
	}

	c := NewMetricsController(deps.DashboardService, deps.MetricsService, snapshots, deps.Conf.MetricsCacheTTL)
	c.Register(admin)
}

func (c *MetricsController) Register(r fiber.Router) {
	r.Get("/metrics", c.GetState)
	r.Post("/metrics/refresh", c.Refresh)
	r.Get("/metrics/snapshot", c.GetSnapshot)
}

// GetState returns the dashboard state as of the latest settled or in-flight activation.
func (c *MetricsController) GetState(ctx *fiber.Ctx) error {
	cachectrl.NoStore(ctx)
	return ctx.JSON(c.dashboard.State())
}

// Refresh runs a dashboard activation and responds once it has settled. The cached snapshot,
// if any, is dropped so that the next GET /metrics/snapshot is computed afresh.
func (c *MetricsController) Refresh(ctx *fiber.Ctx) error {
	state, err := c.dashboard.Refresh(ctx.UserContext())
	if err != nil {
		if errors.Is(err, service.ErrDashboardClosed) {
			return apperr.ErrUnavailable.Msg("dashboard is shutting down")
		}
		return err
	}

	if c.snapshots != nil {
		if err := c.snapshots.Delete(ctx.UserContext(), snapshotCacheKey); err != nil {
			flog.FromFiberCtx(ctx).Warn().Err(err).Msg("failed to invalidate cached snapshot")
		}
	}

	cachectrl.NoStore(ctx)
	return ctx.JSON(state)
}

// GetSnapshot computes a snapshot without touching the dashboard state. When caching is enabled,
// healthy snapshots are served from redis for cacheTTL; degraded ones are never stored.
func (c *MetricsController) GetSnapshot(ctx *fiber.Ctx) error {
	uctx := ctx.UserContext()

	if c.snapshots == nil {
		return c.bypass(ctx)
	}

	var snapshot model.Snapshot
	computed, err := c.snapshots.MutexGetSet(uctx, snapshotCacheKey, &snapshot, func() (*model.Snapshot, error) {
		return c.computer.ComputeSnapshot(uctx), nil
	}, c.snapshotTTL)
	if err != nil {
		// redis is unreachable: serve without the cache
		flog.FromFiberCtx(ctx).Warn().
			Str("evt.name", "metrics.cache.unavailable").
			Err(err).
			Msg("snapshot cache unavailable: computing snapshot directly")
		return c.bypass(ctx)
	}

	if computed {
		ctx.Set(cacheHeader, "MISS")
	} else {
		ctx.Set(cacheHeader, "HIT")
	}
	if snapshot.Degraded() {
		cachectrl.NoStore(ctx)
	} else {
		cachectrl.MaxAge(ctx, snapshot.ComputedAt, c.cacheTTL)
	}
	return ctx.JSON(snapshot)
}

func (c *MetricsController) bypass(ctx *fiber.Ctx) error {
	ctx.Set(cacheHeader, "BYPASS")
	cachectrl.NoStore(ctx)
	return ctx.JSON(c.computer.ComputeSnapshot(ctx.UserContext()))
}

func (c *MetricsController) snapshotTTL(snapshot *model.Snapshot) time.Duration {
	if snapshot.Degraded() {
		return 0
	}
	return c.cacheTTL
}
