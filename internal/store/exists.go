package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ErrUnknownIdentifier is returned when Exists is asked about a table or
// column outside the allow-list. It signals a programming error.
var ErrUnknownIdentifier = errors.New("store: identifier not allowed")

// lookupColumns lists the table/column pairs Exists may interpolate into SQL.
var lookupColumns = map[string]map[string]bool{
	"topics":   {"slug": true},
	"users":    {"username": true},
	"articles": {"article_id": true},
	"comments": {"comment_id": true},
}

// Exists reports whether table has a row whose column equals value. Table and
// column are identifiers and cannot be bound, so they are checked against
// lookupColumns and quoted; value is always bound as $1.
func Exists(ctx context.Context, q Querier, value any, column, table string) (bool, error) {
	if !lookupColumns[table][column] {
		return false, fmt.Errorf("%w: %s.%s", ErrUnknownIdentifier, table, column)
	}

	sql := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)",
		pgx.Identifier{table}.Sanitize(), pgx.Identifier{column}.Sanitize())

	var found bool
	if err := q.QueryRow(ctx, sql, value).Scan(&found); err != nil {
		return false, fmt.Errorf("check %s.%s exists: %w", table, column, err)
	}

	return found, nil
}
