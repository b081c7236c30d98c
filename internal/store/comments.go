package store

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/SergeyParamoshkin/ncnews/internal/apperr"
	"github.com/SergeyParamoshkin/ncnews/internal/model"
)

const commentReturning = "RETURNING comment_id, article_id, author, votes, created_at, body"

var commentColumns = []string{"comment_id", "article_id", "author", "votes", "created_at", "body"}

// NewComment is a validated create request.
type NewComment struct {
	Username string
	Body     string
}

type Comments struct {
	db Querier
}

func NewComments(db Querier) *Comments {
	return &Comments{db: db}
}

// ListByArticle returns one page of an article's comments in id order.
//
// An empty result is ambiguous, so it is resolved with an existence check:
// a missing article is NotFound, a non-zero offset means the page overshot
// and is NotFound too, otherwise the article simply has no comments.
func (c *Comments) ListByArticle(ctx context.Context, rawArticleID, limit, page string) ([]model.Comment, error) {
	articleID, err := ParseID("article_id", rawArticleID)
	if err != nil {
		return nil, err
	}

	p, err := ParsePage(limit, page)
	if err != nil {
		return nil, err
	}

	sql, args, err := psql.Select(commentColumns...).
		From("comments").
		Where(sq.Eq{"article_id": articleID}).
		OrderBy("comment_id ASC").
		Limit(uint64(p.Limit)).
		Offset(uint64(p.Offset())).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list comments: %w", err)
	}

	rows, err := c.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperr.FromStorage(err, "comment")
	}

	comments, err := pgx.CollectRows(rows, scanComment)
	if err != nil {
		return nil, apperr.FromStorage(err, "comment")
	}

	if len(comments) > 0 {
		return comments, nil
	}

	found, err := Exists(ctx, c.db, articleID, "article_id", "articles")
	if err != nil {
		return nil, apperr.FromStorage(err, "article")
	}
	if !found {
		return nil, apperr.NotFound("article %d not found", articleID)
	}
	if p.Offset() > 0 {
		return nil, apperr.NotFound("page %d not found", p.Number)
	}

	return comments, nil
}

// Create adds a comment to an article. Unknown article or username surface as
// NotFound through the foreign key constraints.
func (c *Comments) Create(ctx context.Context, rawArticleID string, in NewComment) (model.Comment, error) {
	articleID, err := ParseID("article_id", rawArticleID)
	if err != nil {
		return model.Comment{}, err
	}

	sql, args, err := psql.Insert("comments").
		Columns("author", "article_id", "body").
		Values(in.Username, articleID, in.Body).
		Suffix(commentReturning).
		ToSql()
	if err != nil {
		return model.Comment{}, fmt.Errorf("build insert comment: %w", err)
	}

	return c.one(ctx, sql, args, 0)
}

// AddVotes applies a relative vote change and returns the updated comment.
func (c *Comments) AddVotes(ctx context.Context, rawID string, inc int) (model.Comment, error) {
	id, err := ParseID("comment_id", rawID)
	if err != nil {
		return model.Comment{}, err
	}

	sql, args, err := psql.Update("comments").
		Set("votes", sq.Expr("votes + ?", inc)).
		Where(sq.Eq{"comment_id": id}).
		Suffix(commentReturning).
		ToSql()
	if err != nil {
		return model.Comment{}, fmt.Errorf("build update comment votes: %w", err)
	}

	return c.one(ctx, sql, args, id)
}

// Delete removes exactly one comment.
func (c *Comments) Delete(ctx context.Context, rawID string) error {
	id, err := ParseID("comment_id", rawID)
	if err != nil {
		return err
	}

	tag, err := c.db.Exec(ctx, "DELETE FROM comments WHERE comment_id = $1", id)
	if err != nil {
		return apperr.FromStorage(err, "comment")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("comment %d not found", id)
	}

	return nil
}

func (c *Comments) one(ctx context.Context, sql string, args []any, id int) (model.Comment, error) {
	rows, err := c.db.Query(ctx, sql, args...)
	if err != nil {
		return model.Comment{}, apperr.FromStorage(err, "comment")
	}

	comment, err := pgx.CollectExactlyOneRow(rows, scanComment)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Comment{}, apperr.NotFound("comment %d not found", id)
	}
	if err != nil {
		return model.Comment{}, apperr.FromStorage(err, "comment")
	}

	return comment, nil
}

func scanComment(row pgx.CollectableRow) (model.Comment, error) {
	var cm model.Comment
	err := row.Scan(&cm.CommentID, &cm.ArticleID, &cm.Author, &cm.Votes, &cm.CreatedAt, &cm.Body)

	return cm, err
}
