package meta

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exusiai.dev/booking-backend/internal/model"
	"exusiai.dev/booking-backend/internal/pkg/cache"
	"exusiai.dev/booking-backend/internal/pkg/middlewares"
	"exusiai.dev/booking-backend/internal/server/httpserver"
	"exusiai.dev/booking-backend/internal/service"
)

const testAdminKey = "s3cr3t"

type fixedComputer struct {
	raw   model.RawCounts
	calls int
}

func (c *fixedComputer) ComputeSnapshot(ctx context.Context) *model.Snapshot {
	c.calls++
	return model.Derive(c.raw, time.Now())
}

func newTestApp(t *testing.T, computer *fixedComputer) (*fiber.App, *service.Dashboard) {
	t.Helper()
	return newTestAppWithCache(t, computer, nil, 0)
}

func newTestAppWithCache(t *testing.T, computer *fixedComputer, snapshots *cache.Set[model.Snapshot], ttl time.Duration) (*fiber.App, *service.Dashboard) {
	t.Helper()

	dashboard := service.NewDashboardWith(computer)
	app := fiber.New(fiber.Config{
		ErrorHandler: httpserver.ErrorHandler,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})
	admin := app.Group("/api/_/admin", middlewares.AdminKey(testAdminKey))
	NewMetricsController(dashboard, computer, snapshots, ttl).Register(admin)

	return app, dashboard
}

func do(t *testing.T, app *fiber.App, method, path string, auth bool) (int, []byte, string) {
	t.Helper()
	status, body, header := doWithHeader(t, app, method, path, auth)
	return status, body, header.Get(cacheHeader)
}

func doWithHeader(t *testing.T, app *fiber.App, method, path string, auth bool) (int, []byte, http.Header) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if auth {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+testAdminKey)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body, resp.Header
}

func healthyComputer() *fixedComputer {
	return &fixedComputer{raw: model.NewRawCounts(
		model.CountResult{ID: model.QueryArtists, Value: 120},
		model.CountResult{ID: model.QueryProfiles, Value: 500},
		model.CountResult{ID: model.QueryPendingRequests, Value: 8},
		model.CountResult{ID: model.QueryPendingVerifications, Value: 5},
	)}
}

func TestMetricsControllerRequiresAdminKey(t *testing.T) {
	app, _ := newTestApp(t, healthyComputer())

	for _, path := range []string{"/api/_/admin/metrics", "/api/_/admin/metrics/snapshot"} {
		status, body, _ := do(t, app, fiber.MethodGet, path, false)
		assert.Equal(t, fiber.StatusUnauthorized, status, path)
		assert.Contains(t, string(body), `"code":"UNAUTHORIZED"`, path)
	}
}

func TestMetricsControllerRefresh(t *testing.T) {
	computer := healthyComputer()
	app, _ := newTestApp(t, computer)

	status, body, _ := do(t, app, fiber.MethodGet, "/api/_/admin/metrics", true)
	require.Equal(t, fiber.StatusOK, status)
	var idle service.DashboardState
	require.NoError(t, json.Unmarshal(body, &idle))
	assert.False(t, idle.Loading)
	assert.Nil(t, idle.Snapshot)

	status, body, _ = do(t, app, fiber.MethodPost, "/api/_/admin/metrics/refresh", true)
	require.Equal(t, fiber.StatusOK, status)
	var refreshed service.DashboardState
	require.NoError(t, json.Unmarshal(body, &refreshed))
	assert.False(t, refreshed.Loading)
	assert.NotEmpty(t, refreshed.ActivationID)
	require.NotNil(t, refreshed.Snapshot)
	assert.Equal(t, 120, refreshed.Snapshot.ActiveArtists.Value)
	assert.Equal(t, 380, refreshed.Snapshot.ActiveClients.Value)
	assert.Equal(t, 13, refreshed.Snapshot.PendingApprovals.Value)
	assert.Equal(t, model.MetricStatusOK, refreshed.Snapshot.PendingApprovals.Status)

	status, body, _ = do(t, app, fiber.MethodGet, "/api/_/admin/metrics", true)
	require.Equal(t, fiber.StatusOK, status)
	var current service.DashboardState
	require.NoError(t, json.Unmarshal(body, &current))
	assert.Equal(t, refreshed.ActivationID, current.ActivationID)
	assert.Equal(t, 1, computer.calls)
}

func TestMetricsControllerRefreshAfterClose(t *testing.T) {
	app, dashboard := newTestApp(t, healthyComputer())
	dashboard.Close()

	status, body, _ := do(t, app, fiber.MethodPost, "/api/_/admin/metrics/refresh", true)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Contains(t, string(body), `"code":"SERVICE_UNAVAILABLE"`)
}

func TestMetricsControllerSnapshot(t *testing.T) {
	computer := &fixedComputer{raw: model.NewRawCounts(
		model.CountResult{ID: model.QueryArtists, Value: 120},
		model.CountResult{ID: model.QueryProfiles, Value: 500},
		model.CountResult{ID: model.QueryPendingRequests, Err: context.DeadlineExceeded},
		model.CountResult{ID: model.QueryPendingVerifications, Value: 5},
	)}
	app, dashboard := newTestApp(t, computer)

	status, body, cacheHeader := do(t, app, fiber.MethodGet, "/api/_/admin/metrics/snapshot", true)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "BYPASS", cacheHeader)
	assert.Equal(t, 1, computer.calls)

	var snapshot model.Snapshot
	require.NoError(t, json.Unmarshal(body, &snapshot))
	assert.Equal(t, 5, snapshot.PendingApprovals.Value)
	assert.Equal(t, model.MetricStatusDegraded, snapshot.PendingApprovals.Status)
	assert.Equal(t, "query failed: pending_requests", snapshot.PendingApprovals.Reason)
	assert.False(t, snapshot.ActiveArtists.Degraded())

	assert.Nil(t, dashboard.State().Snapshot, "expect a direct snapshot not to touch the dashboard")
}

func newTestSnapshotSet(t *testing.T) (*cache.Set[model.Snapshot], *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewSet[model.Snapshot](client, "test:snapshot"), mr
}

func TestMetricsControllerCachedSnapshot(t *testing.T) {
	computer := healthyComputer()
	snapshots, _ := newTestSnapshotSet(t)
	app, _ := newTestAppWithCache(t, computer, snapshots, time.Minute)

	status, first, header := doWithHeader(t, app, fiber.MethodGet, "/api/_/admin/metrics/snapshot", true)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "MISS", header.Get(cacheHeader))
	assert.Contains(t, header.Get(fiber.HeaderCacheControl), "max-age=")

	status, second, header := doWithHeader(t, app, fiber.MethodGet, "/api/_/admin/metrics/snapshot", true)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "HIT", header.Get(cacheHeader))
	assert.Contains(t, header.Get(fiber.HeaderCacheControl), "max-age=")

	assert.Equal(t, 1, computer.calls)
	var a, b model.Snapshot
	require.NoError(t, json.Unmarshal(first, &a))
	require.NoError(t, json.Unmarshal(second, &b))
	assert.True(t, a.ComputedAt.Equal(b.ComputedAt))
	assert.Equal(t, a.ActiveClients, b.ActiveClients)
}

func TestMetricsControllerDegradedSnapshotNotCached(t *testing.T) {
	computer := &fixedComputer{raw: model.NewRawCounts(
		model.CountResult{ID: model.QueryArtists, Err: context.DeadlineExceeded},
		model.CountResult{ID: model.QueryProfiles, Value: 500},
		model.CountResult{ID: model.QueryPendingRequests, Value: 8},
		model.CountResult{ID: model.QueryPendingVerifications, Value: 5},
	)}
	snapshots, mr := newTestSnapshotSet(t)
	app, _ := newTestAppWithCache(t, computer, snapshots, time.Minute)

	for i := 0; i < 2; i++ {
		status, _, header := doWithHeader(t, app, fiber.MethodGet, "/api/_/admin/metrics/snapshot", true)
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "MISS", header.Get(cacheHeader))
		assert.Contains(t, header.Get(fiber.HeaderCacheControl), "no-store")
	}

	assert.Equal(t, 2, computer.calls, "expect a degraded snapshot to be recomputed")
	assert.Empty(t, mr.Keys())
}

func TestMetricsControllerSnapshotCacheUnavailable(t *testing.T) {
	computer := healthyComputer()
	snapshots, mr := newTestSnapshotSet(t)
	mr.Close()
	app, _ := newTestAppWithCache(t, computer, snapshots, time.Minute)

	status, body, header := doWithHeader(t, app, fiber.MethodGet, "/api/_/admin/metrics/snapshot", true)
	require.Equal(t, fiber.StatusOK, status, "expect the snapshot to be served without redis: %s", body)
	assert.Equal(t, "BYPASS", header.Get(cacheHeader))
	assert.Contains(t, header.Get(fiber.HeaderCacheControl), "no-store")
	assert.Equal(t, 1, computer.calls)

	var snapshot model.Snapshot
	require.NoError(t, json.Unmarshal(body, &snapshot))
	assert.Equal(t, 120, snapshot.ActiveArtists.Value)
}

func TestMetricsControllerRefreshInvalidatesSnapshot(t *testing.T) {
	computer := healthyComputer()
	snapshots, mr := newTestSnapshotSet(t)
	app, _ := newTestAppWithCache(t, computer, snapshots, time.Minute)

	_, _, cached := do(t, app, fiber.MethodGet, "/api/_/admin/metrics/snapshot", true)
	require.Equal(t, "MISS", cached)
	require.True(t, mr.Exists("test:snapshot:"+snapshotCacheKey))

	status, _, _ := do(t, app, fiber.MethodPost, "/api/_/admin/metrics/refresh", true)
	require.Equal(t, fiber.StatusOK, status)
	assert.False(t, mr.Exists("test:snapshot:"+snapshotCacheKey))

	_, _, cached = do(t, app, fiber.MethodGet, "/api/_/admin/metrics/snapshot", true)
	assert.Equal(t, "MISS", cached)
	assert.Equal(t, 3, computer.calls)
}
