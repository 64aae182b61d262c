package repo

import (
	"context"
	"reflect"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"exusiai.dev/booking-backend/internal/model"
)

var ErrUnknownCollection = errors.New("repo: unknown collection")

// collections maps every countable collection to its bun model. Filters may only
// reference columns of these models.
var collections = map[model.Collection]any{
	model.CollectionProfiles:       (*model.Profile)(nil),
	model.CollectionArtistProfiles: (*model.ArtistProfile)(nil),
	model.CollectionManualRequests: (*model.ManualRequest)(nil),
}

// Record is the read-only record store behind the metrics aggregator.
type Record struct {
	db *bun.DB
}

func NewRecord(db *bun.DB) *Record {
	return &Record{db: db}
}

// Count returns the number of records in q.Collection matching q.Filter, if any.
func (r *Record) Count(ctx context.Context, q model.CountQuery) (int, error) {
	query, err := r.countQuery(q)
	if err != nil {
		return 0, err
	}

	count, err := query.Count(ctx)
	if err != nil {
		return 0, errors.Wrapf(err, "repo: count %s", q.ID)
	}

	return count, nil
}

func (r *Record) countQuery(q model.CountQuery) (*bun.SelectQuery, error) {
	m, ok := collections[q.Collection]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownCollection, "%q", q.Collection)
	}

	query := r.db.NewSelect().Model(m)
	if q.Filter != nil {
		if !r.db.Table(reflect.TypeOf(m).Elem()).HasField(q.Filter.Column) {
			return nil, errors.Errorf("repo: collection %q has no column %q", q.Collection, q.Filter.Column)
		}
		query = query.Where("?TableAlias.? = ?", bun.Ident(q.Filter.Column), q.Filter.Value)
	}

	return query, nil
}
