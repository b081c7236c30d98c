// Package comment serves /api/comments.
package comment

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/ncnews/internal/errresponse"
	"github.com/SergeyParamoshkin/ncnews/internal/logger"
	"github.com/SergeyParamoshkin/ncnews/internal/model"
	"github.com/SergeyParamoshkin/ncnews/internal/payload"
)

type Store interface {
	AddVotes(ctx context.Context, rawID string, inc int) (model.Comment, error)
	Delete(ctx context.Context, rawID string) error
}

type Handler struct {
	comments Store
}

func NewHandler(comments Store) *Handler {
	return &Handler{comments: comments}
}

// Routes is mounted at /api/comments.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/{comment_id}", func(r chi.Router) {
		r.Patch("/", h.PatchVotes)
		r.Delete("/", h.Delete)
	})

	return r
}

func (h *Handler) PatchVotes(w http.ResponseWriter, r *http.Request) {
	data := &payload.VotesRequest{}
	if err := payload.Bind(r, data); err != nil {
		errresponse.Write(w, r, err)

		return
	}

	comment, err := h.comments.AddVotes(r.Context(), chi.URLParam(r, "comment_id"), int(*data.IncVotes))
	if err != nil {
		errresponse.Write(w, r, err)

		return
	}

	payload.Respond(w, r, http.StatusOK, payload.NewCommentResponse(comment))
}

// Delete answers 204 with an empty body.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "comment_id")
	if err := h.comments.Delete(r.Context(), id); err != nil {
		errresponse.Write(w, r, err)

		return
	}

	logger.FromContext(r.Context()).Infow("comment deleted", "comment_id", id)

	render.NoContent(w, r)
}
