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

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var articleColumns = []string{
	"articles.article_id",
	"articles.title",
	"articles.body",
	"articles.votes",
	"articles.topic",
	"articles.author",
	"articles.created_at",
	"COUNT(comments.comment_id) AS comment_count",
}

// ArticleFilter carries the untrusted listing parameters exactly as they
// arrived in the query string. Empty strings mean "not supplied".
type ArticleFilter struct {
	SortBy string
	Order  string
	Topic  string
	Author string
	Limit  string
	Page   string
}

// NewArticle is a validated create request.
type NewArticle struct {
	Author string
	Title  string
	Body   string
	Topic  string
}

type Articles struct {
	db Querier
}

func NewArticles(db Querier) *Articles {
	return &Articles{db: db}
}

func selectArticles() sq.SelectBuilder {
	return psql.Select(articleColumns...).
		From("articles").
		LeftJoin("comments ON comments.article_id = articles.article_id").
		GroupBy("articles.article_id")
}

// List returns one page of articles and the number of articles matching the
// same filter.
//
// Input is validated in a fixed order (sort_by, order, limit, page, then
// topic and author existence) before any listing SQL runs. A topic or author
// that does not exist is NotFound; one that exists but matches nothing yields
// an empty page with TotalCount 0. A page past the last non-empty one is
// NotFound.
func (a *Articles) List(ctx context.Context, f ArticleFilter) (model.ArticlePage, error) {
	sortExpr, dir, err := parseSort(f.SortBy, f.Order)
	if err != nil {
		return model.ArticlePage{}, err
	}

	page, err := ParsePage(f.Limit, f.Page)
	if err != nil {
		return model.ArticlePage{}, err
	}

	where := sq.Eq{}
	if f.Topic != "" {
		if err := a.mustExist(ctx, f.Topic, "slug", "topics", "topic"); err != nil {
			return model.ArticlePage{}, err
		}
		where["articles.topic"] = f.Topic
	}
	if f.Author != "" {
		if err := a.mustExist(ctx, f.Author, "username", "users", "author"); err != nil {
			return model.ArticlePage{}, err
		}
		where["articles.author"] = f.Author
	}

	list := selectArticles().
		OrderBy(sortExpr+" "+dir, "articles.article_id").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset()))
	count := psql.Select("COUNT(*)").From("articles")
	if len(where) > 0 {
		list = list.Where(where)
		count = count.Where(where)
	}

	articles, err := a.query(ctx, list)
	if err != nil {
		return model.ArticlePage{}, err
	}

	total, err := a.count(ctx, count)
	if err != nil {
		return model.ArticlePage{}, err
	}

	if total > 0 && len(articles) == 0 {
		return model.ArticlePage{}, apperr.NotFound("page %d not found", page.Number)
	}

	return model.ArticlePage{Articles: articles, TotalCount: total}, nil
}

// Get returns a single article with its comment_count.
func (a *Articles) Get(ctx context.Context, rawID string) (model.Article, error) {
	id, err := ParseID("article_id", rawID)
	if err != nil {
		return model.Article{}, err
	}

	sql, args, err := selectArticles().Where(sq.Eq{"articles.article_id": id}).ToSql()
	if err != nil {
		return model.Article{}, fmt.Errorf("build get article: %w", err)
	}

	rows, err := a.db.Query(ctx, sql, args...)
	if err != nil {
		return model.Article{}, apperr.FromStorage(err, "article")
	}

	article, err := pgx.CollectExactlyOneRow(rows, scanArticle)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Article{}, apperr.NotFound("article %d not found", id)
		}

		return model.Article{}, apperr.FromStorage(err, "article")
	}

	return article, nil
}

// Create inserts an article and returns its id. Unknown author or topic
// surface as NotFound through the foreign key constraints.
func (a *Articles) Create(ctx context.Context, in NewArticle) (int, error) {
	sql, args, err := psql.Insert("articles").
		Columns("author", "title", "body", "topic").
		Values(in.Author, in.Title, in.Body, in.Topic).
		Suffix("RETURNING article_id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert article: %w", err)
	}

	var id int
	if err := a.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, apperr.FromStorage(err, "article")
	}

	return id, nil
}

const addArticleVotesSQL = `
UPDATE articles SET votes = votes + $1
WHERE article_id = $2
RETURNING article_id, title, body, votes, topic, author, created_at,
    (SELECT COUNT(*) FROM comments WHERE comments.article_id = articles.article_id) AS comment_count`

// AddVotes applies a relative vote change and returns the updated article.
func (a *Articles) AddVotes(ctx context.Context, rawID string, inc int) (model.Article, error) {
	id, err := ParseID("article_id", rawID)
	if err != nil {
		return model.Article{}, err
	}

	rows, err := a.db.Query(ctx, addArticleVotesSQL, inc, id)
	if err != nil {
		return model.Article{}, apperr.FromStorage(err, "article")
	}

	article, err := pgx.CollectExactlyOneRow(rows, scanArticle)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Article{}, apperr.NotFound("article %d not found", id)
		}

		return model.Article{}, apperr.FromStorage(err, "article")
	}

	return article, nil
}

func (a *Articles) mustExist(ctx context.Context, value, column, table, param string) error {
	found, err := Exists(ctx, a.db, value, column, table)
	if err != nil {
		return apperr.FromStorage(err, param)
	}
	if !found {
		return apperr.NotFound("%s %q not found", param, value)
	}

	return nil
}

func (a *Articles) query(ctx context.Context, b sq.SelectBuilder) ([]model.Article, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list articles: %w", err)
	}

	rows, err := a.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperr.FromStorage(err, "article")
	}

	articles, err := pgx.CollectRows(rows, scanArticle)
	if err != nil {
		return nil, apperr.FromStorage(err, "article")
	}

	return articles, nil
}

func (a *Articles) count(ctx context.Context, b sq.SelectBuilder) (int64, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count articles: %w", err)
	}

	var total int64
	if err := a.db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, apperr.FromStorage(err, "article")
	}

	return total, nil
}

func scanArticle(row pgx.CollectableRow) (model.Article, error) {
	var art model.Article
	err := row.Scan(
		&art.ArticleID,
		&art.Title,
		&art.Body,
		&art.Votes,
		&art.Topic,
		&art.Author,
		&art.CreatedAt,
		&art.CommentCount,
	)

	return art, err
}
