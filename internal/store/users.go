package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/SergeyParamoshkin/ncnews/internal/apperr"
	"github.com/SergeyParamoshkin/ncnews/internal/model"
)

type Users struct {
	db Querier
}

func NewUsers(db Querier) *Users {
	return &Users{db: db}
}

func (u *Users) List(ctx context.Context) ([]model.User, error) {
	rows, err := u.db.Query(ctx, "SELECT username, avatar_url, name FROM users ORDER BY username")
	if err != nil {
		return nil, apperr.FromStorage(err, "user")
	}

	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.User, error) {
		var us model.User
		err := row.Scan(&us.Username, &us.AvatarURL, &us.Name)

		return us, err
	})
	if err != nil {
		return nil, apperr.FromStorage(err, "user")
	}

	return users, nil
}

func (u *Users) Get(ctx context.Context, username string) (model.User, error) {
	var out model.User
	err := u.db.QueryRow(ctx, "SELECT username, avatar_url, name FROM users WHERE username = $1", username).
		Scan(&out.Username, &out.AvatarURL, &out.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, apperr.NotFound("user %q not found", username)
	}
	if err != nil {
		return model.User{}, apperr.FromStorage(err, "user")
	}

	return out, nil
}
