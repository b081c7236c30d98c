// Package payload holds the request binders and response renderers of the
// news API.
package payload

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/SergeyParamoshkin/ncnews/internal/apperr"
	"github.com/SergeyParamoshkin/ncnews/internal/model"
	"github.com/SergeyParamoshkin/ncnews/internal/store"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// Bind decodes the request body into v and validates it. Every failure is
// an apperr validation error. Keys v does not declare are ignored.
func Bind(r *http.Request, v render.Binder) error {
	if err := render.Bind(r, v); err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return err
		}

		return decodeError(err)
	}

	return nil
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperr.Validation("%s must be %s", typeErr.Field, jsonType(typeErr.Type))
	}

	return apperr.Validation("request body must be a JSON object")
}

func jsonType(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "an integer"
	case reflect.String:
		return "a string"
	default:
		return "a " + t.Kind().String()
	}
}

func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.Validation("invalid request body")
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return apperr.Validation("%s is required", fe.Field())
	case "max":
		return apperr.Validation("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return apperr.Validation("%s is invalid", fe.Field())
	}
}

// ArticleRequest is the body of POST /api/articles.
type ArticleRequest struct {
	Author *string `json:"author" validate:"required"`
	Title  *string `json:"title" validate:"required,max=150"`
	Body   *string `json:"body" validate:"required"`
	Topic  *string `json:"topic" validate:"required"`
}

func (a *ArticleRequest) Bind(r *http.Request) error {
	return check(a)
}

func (a *ArticleRequest) NewArticle() store.NewArticle {
	return store.NewArticle{Author: *a.Author, Title: *a.Title, Body: *a.Body, Topic: *a.Topic}
}

// CommentRequest is the body of POST /api/articles/{article_id}/comments.
type CommentRequest struct {
	Username *string `json:"username" validate:"required"`
	Body     *string `json:"body" validate:"required,max=500"`
}

func (c *CommentRequest) Bind(r *http.Request) error {
	return check(c)
}

func (c *CommentRequest) NewComment() store.NewComment {
	return store.NewComment{Username: *c.Username, Body: *c.Body}
}

// TopicRequest is the body of POST /api/topics.
type TopicRequest struct {
	Slug        *string `json:"slug" validate:"required,max=100"`
	Description *string `json:"description" validate:"required,max=300"`
}

func (t *TopicRequest) Bind(r *http.Request) error {
	return check(t)
}

func (t *TopicRequest) Topic() model.Topic {
	return model.Topic{Slug: *t.Slug, Description: *t.Description}
}

// VotesRequest is the body of the vote PATCH endpoints. inc_votes may be
// negative or zero but must be an integer that fits the votes column.
type VotesRequest struct {
	IncVotes *int32 `json:"inc_votes" validate:"required"`
}

func (v *VotesRequest) Bind(r *http.Request) error {
	return check(v)
}
