// Package article serves /api/articles and the comments nested under an
// article.
package article

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/SergeyParamoshkin/ncnews/internal/errresponse"
	"github.com/SergeyParamoshkin/ncnews/internal/logger"
	"github.com/SergeyParamoshkin/ncnews/internal/model"
	"github.com/SergeyParamoshkin/ncnews/internal/payload"
	"github.com/SergeyParamoshkin/ncnews/internal/store"
)

type Store interface {
	List(ctx context.Context, f store.ArticleFilter) (model.ArticlePage, error)
	Get(ctx context.Context, rawID string) (model.Article, error)
	Create(ctx context.Context, in store.NewArticle) (int, error)
	AddVotes(ctx context.Context, rawID string, inc int) (model.Article, error)
}

type CommentStore interface {
	ListByArticle(ctx context.Context, rawArticleID, limit, page string) ([]model.Comment, error)
	Create(ctx context.Context, rawArticleID string, in store.NewComment) (model.Comment, error)
}

type Handler struct {
	articles Store
	comments CommentStore
}

func NewHandler(articles Store, comments CommentStore) *Handler {
	return &Handler{articles: articles, comments: comments}
}

// Routes is mounted at /api/articles.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)

	r.Route("/{article_id}", func(r chi.Router) {
		r.With(h.ArticleCtx).Get("/", h.Get)
		r.Patch("/", h.PatchVotes)
		r.Get("/comments", h.ListComments)
		r.Post("/comments", h.PostComment)
	})

	return r
}

// List returns a page of articles filtered by the query string.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := h.articles.List(r.Context(), store.ArticleFilter{
		SortBy: q.Get("sort_by"),
		Order:  q.Get("order"),
		Topic:  q.Get("topic"),
		Author: q.Get("author"),
		Limit:  q.Get("limit"),
		Page:   q.Get("page"),
	})
	if err != nil {
		errresponse.Write(w, r, err)

		return
	}

	payload.Respond(w, r, http.StatusOK, payload.NewArticleListResponse(page))
}

// Create persists the posted article and answers with the stored row,
// comment_count included.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	data := &payload.ArticleRequest{}
	if err := payload.Bind(r, data); err != nil {
		errresponse.Write(w, r, err)

		return
	}

	id, err := h.articles.Create(r.Context(), data.NewArticle())
	if err != nil {
		errresponse.Write(w, r, err)

		return
	}

	article, err := h.articles.Get(r.Context(), strconv.Itoa(id))
	if err != nil {
		errresponse.Write(w, r, err)

		return
	}

	logger.FromContext(r.Context()).Infow("article created", "article_id", id, "author", article.Author)

	payload.Respond(w, r, http.StatusCreated, payload.NewArticleResponse(article))
}

// Get renders the article ArticleCtx placed on the context.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	article, ok := FromContext(r.Context())
	if !ok {
		errresponse.Write(w, r, errArticleMissing)

		return
	}

	payload.Respond(w, r, http.StatusOK, payload.NewArticleResponse(article))
}

func (h *Handler) PatchVotes(w http.ResponseWriter, r *http.Request) {
	data := &payload.VotesRequest{}
	if err := payload.Bind(r, data); err != nil {
		errresponse.Write(w, r, err)

		return
	}

	article, err := h.articles.AddVotes(r.Context(), chi.URLParam(r, "article_id"), int(*data.IncVotes))
	if err != nil {
		errresponse.Write(w, r, err)

		return
	}

	payload.Respond(w, r, http.StatusOK, payload.NewArticleResponse(article))
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	comments, err := h.comments.ListByArticle(r.Context(), chi.URLParam(r, "article_id"), q.Get("limit"), q.Get("page"))
	if err != nil {
		errresponse.Write(w, r, err)

		return
	}

	payload.Respond(w, r, http.StatusOK, payload.NewCommentListResponse(comments))
}

func (h *Handler) PostComment(w http.ResponseWriter, r *http.Request) {
	data := &payload.CommentRequest{}
	if err := payload.Bind(r, data); err != nil {
		errresponse.Write(w, r, err)

		return
	}

	comment, err := h.comments.Create(r.Context(), chi.URLParam(r, "article_id"), data.NewComment())
	if err != nil {
		errresponse.Write(w, r, err)

		return
	}

	logger.FromContext(r.Context()).Infow("comment created",
		"comment_id", comment.CommentID,
		"article_id", comment.ArticleID,
	)

	payload.Respond(w, r, http.StatusCreated, payload.NewCommentResponse(comment))
}
