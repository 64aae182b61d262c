package model

import (
	"sort"

	"github.com/samber/lo"
)

type Collection string

const (
	CollectionProfiles       Collection = "profiles"
	CollectionArtistProfiles Collection = "artist_profiles"
	CollectionManualRequests Collection = "manual_requests"
)

// QueryID identifies one slot of RawCounts.
type QueryID string

const (
	QueryArtists              QueryID = "artists"
	QueryProfiles             QueryID = "profiles"
	QueryPendingRequests      QueryID = "pending_requests"
	QueryPendingVerifications QueryID = "pending_verifications"
)

// Filter is a single equality constraint on one column.
type Filter struct {
	Column string
	Value  string
}

type CountQuery struct {
	ID         QueryID
	Collection Collection
	Filter     *Filter
}

// DashboardQueries is the fixed set of count queries behind every Snapshot.
// None of them depends on another's result.
var DashboardQueries = []CountQuery{
	{ID: QueryArtists, Collection: CollectionArtistProfiles},
	{ID: QueryProfiles, Collection: CollectionProfiles},
	{
		ID:         QueryPendingRequests,
		Collection: CollectionManualRequests,
		Filter:     &Filter{Column: "status", Value: ManualRequestStatusPending},
	},
	{
		ID:         QueryPendingVerifications,
		Collection: CollectionArtistProfiles,
		Filter:     &Filter{Column: "verification_status", Value: VerificationStatusPending},
	},
}

// CountResult is the settled outcome of one CountQuery: either Value, or Err.
type CountResult struct {
	ID    QueryID
	Value int
	Err   error
}

func (r CountResult) Failed() bool {
	return r.Err != nil
}

// RawCounts maps query ids to their settled results. A missing or failed slot reads as zero.
type RawCounts map[QueryID]CountResult

func NewRawCounts(results ...CountResult) RawCounts {
	return lo.SliceToMap(results, func(r CountResult) (QueryID, CountResult) {
		return r.ID, r
	})
}

func (c RawCounts) Value(id QueryID) int {
	r, ok := c[id]
	if !ok || r.Failed() {
		return 0
	}
	return r.Value
}

// Failed returns the ids among ids whose query did not succeed, sorted.
func (c RawCounts) Failed(ids ...QueryID) []QueryID {
	failed := lo.Filter(ids, func(id QueryID, _ int) bool {
		r, ok := c[id]
		return !ok || r.Failed()
	})
	sort.Slice(failed, func(i, j int) bool { return failed[i] < failed[j] })
	return failed
}
