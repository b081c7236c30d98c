package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/SergeyParamoshkin/ncnews/internal/apperr"
	"github.com/SergeyParamoshkin/ncnews/internal/model"
)

type Topics struct {
	db Querier
}

func NewTopics(db Querier) *Topics {
	return &Topics{db: db}
}

func (t *Topics) List(ctx context.Context) ([]model.Topic, error) {
	rows, err := t.db.Query(ctx, "SELECT slug, description FROM topics ORDER BY slug")
	if err != nil {
		return nil, apperr.FromStorage(err, "topic")
	}

	topics, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Topic, error) {
		var tp model.Topic
		err := row.Scan(&tp.Slug, &tp.Description)

		return tp, err
	})
	if err != nil {
		return nil, apperr.FromStorage(err, "topic")
	}

	return topics, nil
}

// Create inserts a topic. A duplicate slug is a Conflict.
func (t *Topics) Create(ctx context.Context, in model.Topic) (model.Topic, error) {
	sql, args, err := psql.Insert("topics").
		Columns("slug", "description").
		Values(in.Slug, in.Description).
		Suffix("RETURNING slug, description").
		ToSql()
	if err != nil {
		return model.Topic{}, fmt.Errorf("build insert topic: %w", err)
	}

	var out model.Topic
	if err := t.db.QueryRow(ctx, sql, args...).Scan(&out.Slug, &out.Description); err != nil {
		err = apperr.FromStorage(err, "topic")
		if apperr.KindOf(err) == apperr.KindConflict {
			return model.Topic{}, apperr.Conflict("topic %q already exists", in.Slug)
		}

		return model.Topic{}, err
	}

	return out, nil
}
