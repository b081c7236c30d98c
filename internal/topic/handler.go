// Package topic serves /api/topics.
package topic

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SergeyParamoshkin/ncnews/internal/errresponse"
	"github.com/SergeyParamoshkin/ncnews/internal/model"
	"github.com/SergeyParamoshkin/ncnews/internal/payload"
)

type Store interface {
	List(ctx context.Context) ([]model.Topic, error)
	Create(ctx context.Context, in model.Topic) (model.Topic, error)
}

type Handler struct {
	topics Store
}

func NewHandler(topics Store) *Handler {
	return &Handler{topics: topics}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)

	return r
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	topics, err := h.topics.List(r.Context())
	if err != nil {
		errresponse.Write(w, r, err)

		return
	}

	payload.Respond(w, r, http.StatusOK, payload.NewTopicListResponse(topics))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	data := &payload.TopicRequest{}
	if err := payload.Bind(r, data); err != nil {
		errresponse.Write(w, r, err)

		return
	}

	topic, err := h.topics.Create(r.Context(), data.Topic())
	if err != nil {
		errresponse.Write(w, r, err)

		return
	}

	payload.Respond(w, r, http.StatusCreated, payload.NewTopicResponse(topic))
}
