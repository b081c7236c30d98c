package store

import (
	"strconv"
	"strings"

	"github.com/SergeyParamoshkin/ncnews/internal/apperr"
)

const (
	defaultLimit = 10
	defaultPage  = 1

	defaultSortBy = "created_at"
	defaultOrder  = "DESC"
)

// sortColumns maps every accepted sort_by value to the SQL expression placed
// in ORDER BY. Nothing outside this map reaches the query text.
var sortColumns = map[string]string{
	"article_id":    "articles.article_id",
	"title":         "articles.title",
	"body":          "articles.body",
	"votes":         "articles.votes",
	"topic":         "articles.topic",
	"author":        "articles.author",
	"created_at":    "articles.created_at",
	"comment_count": "comment_count",
}

// Page is a validated limit/offset window.
type Page struct {
	Limit  int
	Number int
}

// Offset is the number of rows skipped before this page.
func (p Page) Offset() int {
	return p.Limit * (p.Number - 1)
}

// ParsePage validates raw limit and page query values. Empty values take the
// defaults of 10 and 1.
func ParsePage(limit, page string) (Page, error) {
	l, err := parsePositive("limit", limit, defaultLimit)
	if err != nil {
		return Page{}, err
	}

	n, err := parsePositive("page", page, defaultPage)
	if err != nil {
		return Page{}, err
	}

	return Page{Limit: l, Number: n}, nil
}

// ParseID validates a path identifier such as article_id.
func ParseID(name, raw string) (int, error) {
	if raw == "" {
		return 0, apperr.Validation("%s is required", name)
	}

	return parsePositive(name, raw, 0)
}

// parsePositive accepts integers in [1, MaxInt32]; the upper bound keeps
// limit*(page-1) inside int64 and ids inside the INT column range.
func parsePositive(name, raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}

	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || v < 1 {
		return 0, apperr.Validation("%s must be a positive integer, got %q", name, raw)
	}

	return int(v), nil
}

// parseSort returns the ORDER BY expression and direction for raw sort_by and
// order values. order is matched case-insensitively.
func parseSort(sortBy, order string) (string, string, error) {
	if sortBy == "" {
		sortBy = defaultSortBy
	}

	column, ok := sortColumns[sortBy]
	if !ok {
		return "", "", apperr.Validation("invalid sort_by column %q", sortBy)
	}

	dir := defaultOrder
	if order != "" {
		switch strings.ToUpper(order) {
		case "ASC":
			dir = "ASC"
		case "DESC":
			dir = "DESC"
		default:
			return "", "", apperr.Validation("invalid order %q", order)
		}
	}

	return column, dir, nil
}
