//go:build integration

package store

import (
	"context"
	_ "embed"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/SergeyParamoshkin/ncnews/internal/apperr"
	"github.com/SergeyParamoshkin/ncnews/internal/model"
)

//go:embed testdata/seed.sql
var seedSQL string

var (
	dbOnce sync.Once
	dbDSN  string
	dbErr  error
)

// seededPool returns a pool on a shared PostgreSQL container with the schema
// migrated and the fixture data freshly loaded.
func seededPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbOnce.Do(func() {
		dbDSN, dbErr = startPostgres()
	})
	require.NoError(t, dbErr)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbDSN)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, Migrate(pool, zap.NewNop()))

	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	defer conn.Release()

	_, err = conn.Conn().PgConn().Exec(ctx, seedSQL).ReadAll()
	require.NoError(t, err)

	return pool
}

func startPostgres() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "ncnews",
				"POSTGRES_PASSWORD": "ncnews",
				"POSTGRES_DB":       "nc_news_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("mapped port: %w", err)
	}

	return fmt.Sprintf("postgres://ncnews:ncnews@%s:%s/nc_news_test?sslmode=disable", host, port.Port()), nil
}

func TestIntegrationArticleByID(t *testing.T) {
	pool := seededPool(t)

	got, err := NewArticles(pool).Get(context.Background(), "5")
	require.NoError(t, err)
	assert.Equal(t, model.Article{
		ArticleID:    5,
		Title:        "UNCOVERED: catspiracy to bring down democracy",
		Body:         "Bastet walks amongst us, and the cats are taking arms!",
		Votes:        0,
		Topic:        "cats",
		Author:       "rogersop",
		CreatedAt:    time.Date(2020, 8, 3, 13, 14, 0, 0, time.UTC),
		CommentCount: 2,
	}, got)
}

func TestIntegrationArticleVotes(t *testing.T) {
	pool := seededPool(t)
	ctx := context.Background()
	articles := NewArticles(pool)

	updated, err := articles.AddVotes(ctx, "3", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Votes)
	assert.Equal(t, int64(2), updated.CommentCount)

	updated, err = articles.AddVotes(ctx, "3", -10)
	require.NoError(t, err)
	assert.Equal(t, -6, updated.Votes)

	untouched, err := articles.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 100, untouched.Votes)

	_, err = articles.AddVotes(ctx, "1000", 1)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestIntegrationArticleListing(t *testing.T) {
	pool := seededPool(t)
	ctx := context.Background()
	articles := NewArticles(pool)

	t.Run("default window", func(t *testing.T) {
		page, err := articles.List(ctx, ArticleFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(13), page.TotalCount)
		require.Len(t, page.Articles, 10)
		assert.Equal(t, 3, page.Articles[0].ArticleID)
		for i := 1; i < len(page.Articles); i++ {
			assert.False(t, page.Articles[i].CreatedAt.After(page.Articles[i-1].CreatedAt))
		}
	})

	t.Run("second page", func(t *testing.T) {
		page, err := articles.List(ctx, ArticleFilter{Page: "2"})
		require.NoError(t, err)
		assert.Len(t, page.Articles, 3)
		assert.Equal(t, int64(13), page.TotalCount)
	})

	t.Run("page past the end", func(t *testing.T) {
		_, err := articles.List(ctx, ArticleFilter{Page: "3"})
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("by comment count", func(t *testing.T) {
		page, err := articles.List(ctx, ArticleFilter{SortBy: "comment_count", Limit: "1"})
		require.NoError(t, err)
		require.Len(t, page.Articles, 1)
		assert.Equal(t, 1, page.Articles[0].ArticleID)
		assert.Equal(t, int64(11), page.Articles[0].CommentCount)
	})

	t.Run("topic filter", func(t *testing.T) {
		page, err := articles.List(ctx, ArticleFilter{Topic: "cats"})
		require.NoError(t, err)
		require.Len(t, page.Articles, 1)
		assert.Equal(t, int64(1), page.TotalCount)
		assert.Equal(t, 5, page.Articles[0].ArticleID)
	})

	t.Run("topic without articles", func(t *testing.T) {
		page, err := articles.List(ctx, ArticleFilter{Topic: "paper"})
		require.NoError(t, err)
		assert.Empty(t, page.Articles)
		assert.Equal(t, int64(0), page.TotalCount)
	})

	t.Run("author without articles", func(t *testing.T) {
		page, err := articles.List(ctx, ArticleFilter{Author: "lurker"})
		require.NoError(t, err)
		assert.Empty(t, page.Articles)
	})

	t.Run("unknown topic", func(t *testing.T) {
		_, err := articles.List(ctx, ArticleFilter{Topic: "dogs"})
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

func TestIntegrationComments(t *testing.T) {
	pool := seededPool(t)
	ctx := context.Background()
	comments := NewComments(pool)
	articles := NewArticles(pool)

	list, err := comments.ListByArticle(ctx, "1", "", "")
	require.NoError(t, err)
	assert.Len(t, list, 10)
	for i := 1; i < len(list); i++ {
		assert.Greater(t, list[i].CommentID, list[i-1].CommentID)
	}

	list, err = comments.ListByArticle(ctx, "1", "", "2")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = comments.ListByArticle(ctx, "1", "", "3")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	list, err = comments.ListByArticle(ctx, "2", "", "")
	require.NoError(t, err)
	assert.Empty(t, list)

	created, err := comments.Create(ctx, "2", NewComment{Username: "lurker", Body: "first!"})
	require.NoError(t, err)
	assert.Equal(t, 19, created.CommentID)
	assert.Equal(t, 0, created.Votes)

	_, err = comments.Create(ctx, "2", NewComment{Username: "nobody", Body: "hi"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	require.NoError(t, comments.Delete(ctx, "14"))
	article, err := articles.Get(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, int64(1), article.CommentCount)

	err = comments.Delete(ctx, "14")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestIntegrationTopicsAndUsers(t *testing.T) {
	pool := seededPool(t)
	ctx := context.Background()

	topics, err := NewTopics(pool).List(ctx)
	require.NoError(t, err)
	assert.Len(t, topics, 3)

	_, err = NewTopics(pool).Create(ctx, model.Topic{Slug: "cats", Description: "again"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	users, err := NewUsers(pool).List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 4)

	_, err = NewUsers(pool).Get(ctx, "nobody")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
