// Package user serves /api/users.
package user

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SergeyParamoshkin/ncnews/internal/errresponse"
	"github.com/SergeyParamoshkin/ncnews/internal/model"
	"github.com/SergeyParamoshkin/ncnews/internal/payload"
)

type Store interface {
	List(ctx context.Context) ([]model.User, error)
	Get(ctx context.Context, username string) (model.User, error)
}

type Handler struct {
	users Store
}

func NewHandler(users Store) *Handler {
	return &Handler{users: users}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/{username}", h.Get)

	return r
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		errresponse.Write(w, r, err)

		return
	}

	payload.Respond(w, r, http.StatusOK, payload.NewUserListResponse(users))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		errresponse.Write(w, r, err)

		return
	}

	payload.Respond(w, r, http.StatusOK, payload.NewUserResponse(user))
}
