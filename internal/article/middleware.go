package article

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SergeyParamoshkin/ncnews/internal/apperr"
	"github.com/SergeyParamoshkin/ncnews/internal/errresponse"
	"github.com/SergeyParamoshkin/ncnews/internal/model"
)

type ctxKey int8

const ctxKeyArticle ctxKey = iota

var errArticleMissing = apperr.Internal(errors.New("article not loaded on request context"))

// ArticleCtx middleware is used to load an Article object from
// the URL parameters passed through as the request. A malformed id stops
// here with a 400, a missing article with a 404.
func (h *Handler) ArticleCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		article, err := h.articles.Get(r.Context(), chi.URLParam(r, "article_id"))
		if err != nil {
			errresponse.Write(w, r, err)

			return
		}

		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), article)))
	})
}

func WithContext(ctx context.Context, article model.Article) context.Context {
	return context.WithValue(ctx, ctxKeyArticle, article)
}

func FromContext(ctx context.Context) (model.Article, bool) {
	article, ok := ctx.Value(ctxKeyArticle).(model.Article)

	return article, ok
}
