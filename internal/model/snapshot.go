package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

type MetricStatus string

const (
	MetricStatusOK       MetricStatus = "ok"
	MetricStatusDegraded MetricStatus = "degraded"
)

// ReasonStoreInconsistency marks a negative ActiveClients caused by more artist records than profiles.
const ReasonStoreInconsistency = "store inconsistency: artists exceed profiles"

// Metric is a derived value tagged with whether all of its inputs were available.
// A degraded metric still carries the zero-filled value.
type Metric struct {
	Value  int          `json:"value" msgpack:"value"`
	Status MetricStatus `json:"status" msgpack:"status"`
	Reason string       `json:"reason,omitempty" msgpack:"reason,omitempty"`
}

func (m Metric) Degraded() bool {
	return m.Status == MetricStatusDegraded
}

// Trends holds period-over-period percentage deltas. Every field stays zero until
// period comparison exists.
type Trends struct {
	Revenue   float64 `json:"revenue" msgpack:"revenue"`
	Artists   float64 `json:"artists" msgpack:"artists"`
	Clients   float64 `json:"clients" msgpack:"clients"`
	Approvals float64 `json:"approvals" msgpack:"approvals"`
}

// TotalRevenuePlaceholder is reported until revenue is computed from a ledger.
const TotalRevenuePlaceholder = 0.0

// Snapshot is the immutable result of one aggregation pass.
type Snapshot struct {
	ActiveArtists    Metric    `json:"activeArtists" msgpack:"activeArtists"`
	ActiveClients    Metric    `json:"activeClients" msgpack:"activeClients"`
	PendingApprovals Metric    `json:"pendingApprovals" msgpack:"pendingApprovals"`
	TotalRevenue     float64   `json:"totalRevenue" msgpack:"totalRevenue"`
	Trends           Trends    `json:"trends" msgpack:"trends"`
	ComputedAt       time.Time `json:"computedAt" msgpack:"computedAt"`
}

// Degraded reports whether any metric was derived from a failed query or inconsistent data.
func (s *Snapshot) Degraded() bool {
	return s.ActiveArtists.Degraded() || s.ActiveClients.Degraded() || s.PendingApprovals.Degraded()
}

// Metrics lists the derived metrics by their JSON name.
func (s *Snapshot) Metrics() map[string]Metric {
	return map[string]Metric{
		"activeArtists":    s.ActiveArtists,
		"activeClients":    s.ActiveClients,
		"pendingApprovals": s.PendingApprovals,
	}
}

// Derive combines raw counts into a Snapshot:
//
//	activeArtists    = artists
//	activeClients    = profiles - artists (never clamped)
//	pendingApprovals = pendingRequests + pendingVerifications
//
// Failed slots contribute zero.
func Derive(raw RawCounts, at time.Time) *Snapshot {
	artists := raw.Value(QueryArtists)
	profiles := raw.Value(QueryProfiles)

	clients := derived(raw, profiles-artists, QueryProfiles, QueryArtists)
	if !clients.Degraded() && clients.Value < 0 {
		clients.Status = MetricStatusDegraded
		clients.Reason = ReasonStoreInconsistency
	}

	return &Snapshot{
		ActiveArtists: derived(raw, artists, QueryArtists),
		ActiveClients: clients,
		PendingApprovals: derived(raw,
			raw.Value(QueryPendingRequests)+raw.Value(QueryPendingVerifications),
			QueryPendingRequests, QueryPendingVerifications,
		),
		TotalRevenue: TotalRevenuePlaceholder,
		Trends:       Trends{},
		ComputedAt:   at,
	}
}

func derived(raw RawCounts, value int, inputs ...QueryID) Metric {
	failed := raw.Failed(inputs...)
	if len(failed) == 0 {
		return Metric{Value: value, Status: MetricStatusOK}
	}
	names := lo.Map(failed, func(id QueryID, _ int) string { return string(id) })
	return Metric{
		Value:  value,
		Status: MetricStatusDegraded,
		Reason: fmt.Sprintf("query failed: %s", strings.Join(names, ", ")),
	}
}
