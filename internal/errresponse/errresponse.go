// Package errresponse renders failures as {"status", "msg"} JSON bodies.
package errresponse

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/SergeyParamoshkin/ncnews/internal/apperr"
	"github.com/SergeyParamoshkin/ncnews/internal/logger"
)

const internalMsg = "Internal server error"

// ErrResponse renderer type for handling all sorts of errors.
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText string `json:"status"` // user-level status message
	Msg        string `json:"msg"`    // safe to show to the client
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)

	if e.HTTPStatusCode >= http.StatusInternalServerError && e.Err != nil {
		logger.FromContext(r.Context()).Errorw("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", e.Err,
		)
	}

	return nil
}

func newErrResponse(code int, msg string, err error) *ErrResponse {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: code,
		StatusText:     http.StatusText(code),
		Msg:            msg,
	}
}

// FromError maps an error to its response. Only apperr messages reach the
// client; anything else gets the generic internal message.
func FromError(err error) *ErrResponse {
	if errors.Is(err, context.Canceled) {
		// client went away; status is never seen
		return newErrResponse(499, "request canceled", err)
	}

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		return newErrResponse(http.StatusInternalServerError, internalMsg, err)
	}

	switch appErr.Kind {
	case apperr.KindValidation:
		return newErrResponse(http.StatusBadRequest, appErr.Msg, err)
	case apperr.KindNotFound:
		return newErrResponse(http.StatusNotFound, appErr.Msg, err)
	case apperr.KindConflict:
		return newErrResponse(http.StatusConflict, appErr.Msg, err)
	case apperr.KindInternal:
		return newErrResponse(http.StatusInternalServerError, internalMsg, err)
	}

	return newErrResponse(http.StatusInternalServerError, internalMsg, err)
}

// ErrRender is used when a response could not be encoded.
func ErrRender(err error) *ErrResponse {
	return newErrResponse(http.StatusUnprocessableEntity, "Error rendering response", err)
}

var (
	ErrNotFound         = newErrResponse(http.StatusNotFound, "Sorry, that is not found", nil)
	ErrMethodNotAllowed = newErrResponse(http.StatusMethodNotAllowed, "Method not allowed", nil)
	ErrTooManyRequests  = newErrResponse(http.StatusTooManyRequests, "Too many requests", nil)
)

// Write renders err and logs a failure to do so.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	if rerr := render.Render(w, r, FromError(err)); rerr != nil {
		logger.FromContext(r.Context()).Errorw("render error response", "error", rerr)
	}
}
