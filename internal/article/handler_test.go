package article

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SergeyParamoshkin/ncnews/internal/apperr"
	"github.com/SergeyParamoshkin/ncnews/internal/model"
	"github.com/SergeyParamoshkin/ncnews/internal/store"
)

type fakeArticles struct {
	page      model.ArticlePage
	articles  map[string]model.Article
	err       error
	gotFilter store.ArticleFilter
	created   store.NewArticle
	gotInc    int
}

func (f *fakeArticles) List(_ context.Context, filter store.ArticleFilter) (model.ArticlePage, error) {
	f.gotFilter = filter

	return f.page, f.err
}

func (f *fakeArticles) Get(_ context.Context, rawID string) (model.Article, error) {
	if _, err := store.ParseID("article_id", rawID); err != nil {
		return model.Article{}, err
	}

	a, ok := f.articles[rawID]
	if !ok {
		return model.Article{}, apperr.NotFound("article %s not found", rawID)
	}

	return a, nil
}

func (f *fakeArticles) Create(_ context.Context, in store.NewArticle) (int, error) {
	if f.err != nil {
		return 0, f.err
	}

	f.created = in
	id := len(f.articles) + 1
	f.articles[strconv.Itoa(id)] = model.Article{
		ArticleID: id,
		Title:     in.Title,
		Body:      in.Body,
		Topic:     in.Topic,
		Author:    in.Author,
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	return id, nil
}

func (f *fakeArticles) AddVotes(ctx context.Context, rawID string, inc int) (model.Article, error) {
	f.gotInc = inc

	a, err := f.Get(ctx, rawID)
	if err != nil {
		return a, err
	}
	a.Votes += inc

	return a, nil
}

type fakeComments struct {
	comments []model.Comment
	err      error
	created  store.NewComment
}

func (f *fakeComments) ListByArticle(_ context.Context, _, _, _ string) ([]model.Comment, error) {
	return f.comments, f.err
}

func (f *fakeComments) Create(_ context.Context, rawArticleID string, in store.NewComment) (model.Comment, error) {
	if f.err != nil {
		return model.Comment{}, f.err
	}

	f.created = in
	id, _ := strconv.Atoi(rawArticleID)

	return model.Comment{CommentID: 19, ArticleID: id, Author: in.Username, Body: in.Body}, nil
}

func catspiracy() model.Article {
	return model.Article{
		ArticleID:    5,
		Title:        "UNCOVERED: catspiracy to bring down democracy",
		Body:         "Bastet walks amongst us, and the cats are taking arms!",
		Topic:        "cats",
		Author:       "rogersop",
		CreatedAt:    time.Date(2020, 8, 3, 13, 14, 0, 0, time.UTC),
		CommentCount: 2,
	}
}

func newTestRouter(a *fakeArticles, c *fakeComments) http.Handler {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Mount("/api/articles", NewHandler(a, c).Routes())

	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	}

	return rec, decoded
}

func TestList(t *testing.T) {
	articles := &fakeArticles{page: model.ArticlePage{Articles: []model.Article{catspiracy()}, TotalCount: 1}}
	h := newTestRouter(articles, &fakeComments{})

	rec, body := do(t, h, http.MethodGet, "/api/articles?topic=cats&sort_by=votes&order=asc&limit=5&page=2&author=rogersop", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, store.ArticleFilter{
		SortBy: "votes", Order: "asc", Topic: "cats", Author: "rogersop", Limit: "5", Page: "2",
	}, articles.gotFilter)
	assert.Equal(t, "1", body["total_count"])

	list := body["articles"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "2", list[0].(map[string]any)["comment_count"])
}

func TestListEmptyAndErrors(t *testing.T) {
	articles := &fakeArticles{}
	h := newTestRouter(articles, &fakeComments{})

	rec, _ := do(t, h, http.MethodGet, "/api/articles?topic=paper", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"articles":[],"total_count":"0"}`, rec.Body.String())

	articles.err = apperr.Validation("invalid sort_by column %q", "password")
	rec, body := do(t, h, http.MethodGet, "/api/articles?sort_by=password", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `invalid sort_by column "password"`, body["msg"])

	articles.err = apperr.NotFound("topic %q not found", "dogs")
	rec, _ = do(t, h, http.MethodGet, "/api/articles?topic=dogs", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGet(t *testing.T) {
	articles := &fakeArticles{articles: map[string]model.Article{"5": catspiracy()}}
	h := newTestRouter(articles, &fakeComments{})

	rec, body := do(t, h, http.MethodGet, "/api/articles/5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"article":{
		"article_id":5,
		"title":"UNCOVERED: catspiracy to bring down democracy",
		"body":"Bastet walks amongst us, and the cats are taking arms!",
		"votes":0,
		"topic":"cats",
		"author":"rogersop",
		"created_at":"2020-08-03T13:14:00Z",
		"comment_count":"2"
	}}`, rec.Body.String())
	assert.NotNil(t, body["article"])

	rec, _ = do(t, h, http.MethodGet, "/api/articles/1000", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body = do(t, h, http.MethodGet, "/api/articles/banana", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Bad Request", body["status"])
}

func TestCreate(t *testing.T) {
	articles := &fakeArticles{articles: map[string]model.Article{}}
	h := newTestRouter(articles, &fakeComments{})

	rec, body := do(t, h, http.MethodPost, "/api/articles",
		`{"author":"lurker","title":"On paper","body":"It folds.","topic":"paper","extra":true}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, store.NewArticle{Author: "lurker", Title: "On paper", Body: "It folds.", Topic: "paper"}, articles.created)

	article := body["article"].(map[string]any)
	assert.Equal(t, float64(1), article["article_id"])
	assert.Equal(t, float64(0), article["votes"])
	assert.Equal(t, "0", article["comment_count"])
}

func TestCreateRejected(t *testing.T) {
	articles := &fakeArticles{articles: map[string]model.Article{}}
	h := newTestRouter(articles, &fakeComments{})

	rec, body := do(t, h, http.MethodPost, "/api/articles", `{"author":"lurker","body":"b","topic":"paper"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "title is required", body["msg"])
	assert.Empty(t, articles.created)

	articles.err = apperr.NotFound("topic not found")
	rec, body = do(t, h, http.MethodPost, "/api/articles", `{"author":"lurker","title":"t","body":"b","topic":"dogs"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "topic not found", body["msg"])
}

func TestPatchVotes(t *testing.T) {
	articles := &fakeArticles{articles: map[string]model.Article{"5": catspiracy()}}
	h := newTestRouter(articles, &fakeComments{})

	rec, body := do(t, h, http.MethodPatch, "/api/articles/5", `{"inc_votes":4}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, articles.gotInc)
	assert.Equal(t, float64(4), body["article"].(map[string]any)["votes"])

	for _, bad := range []string{`{}`, `{"inc_votes":"cats"}`, `{"inc_votes":1.5}`, `{"inc_votes":null}`, `{"inc_votes":3000000000}`} {
		rec, _ = do(t, h, http.MethodPatch, "/api/articles/5", bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}

	rec, _ = do(t, h, http.MethodPatch, "/api/articles/1000", `{"inc_votes":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListComments(t *testing.T) {
	comments := &fakeComments{comments: []model.Comment{{CommentID: 14, ArticleID: 5, Author: "icellusedkars"}}}
	h := newTestRouter(&fakeArticles{}, comments)

	rec, body := do(t, h, http.MethodGet, "/api/articles/5/comments", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["comments"], 1)

	comments.comments = nil
	rec, _ = do(t, h, http.MethodGet, "/api/articles/2/comments", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"comments":[]}`, rec.Body.String())

	comments.err = apperr.NotFound("page %d not found", 3)
	rec, body = do(t, h, http.MethodGet, "/api/articles/5/comments?page=3", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "page 3 not found", body["msg"])
}

func TestPostComment(t *testing.T) {
	comments := &fakeComments{}
	h := newTestRouter(&fakeArticles{}, comments)

	rec, body := do(t, h, http.MethodPost, "/api/articles/3/comments", `{"username":"lurker","body":"first!"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, store.NewComment{Username: "lurker", Body: "first!"}, comments.created)

	comment := body["comment"].(map[string]any)
	assert.Equal(t, float64(3), comment["article_id"])
	assert.Equal(t, "first!", comment["body"])

	rec, _ = do(t, h, http.MethodPost, "/api/articles/3/comments", `{"username":"lurker"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	comments.err = apperr.NotFound("user not found")
	rec, _ = do(t, h, http.MethodPost, "/api/articles/3/comments", `{"username":"nobody","body":"hi"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
