// Package apperr defines the closed set of failure kinds the API exposes and
// maps storage failures onto them.
package apperr

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Kind classifies a failure for the HTTP boundary.
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// PostgreSQL SQLSTATE codes the classifier understands.
const (
	codeStringTruncation   = "22001"
	codeNumericRange       = "22003"
	codeBadEncoding        = "22021"
	codeInvalidText        = "22P02"
	codeUntranslatableChar = "22P05"
	codeNotNullViolation   = "23502"
	codeForeignKey         = "23503"
	codeUniqueViolation    = "23505"
)

// Error is a classified failure. Msg is safe to show to clients for every
// kind except KindInternal.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports malformed, missing or out-of-range input.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// NotFound reports a referenced entity that does not exist, including a page
// past the end of a listing.
func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Conflict reports a duplicate on create.
func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// Internal wraps an unclassified failure.
func Internal(err error) error {
	return &Error{Kind: KindInternal, Msg: "internal error", Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindInternal
}

// FromStorage classifies an error returned by pgx. Classification is driven
// by SQLSTATE codes only. Errors that are already classified and context
// errors pass through unchanged; anything unrecognised becomes KindInternal.
func FromStorage(err error, entity string) error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return err
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return &Error{Kind: KindNotFound, Msg: entity + " not found", Err: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeInvalidText, codeNumericRange:
			return &Error{Kind: KindValidation, Msg: "invalid " + entity + " input", Err: err}
		case codeBadEncoding, codeUntranslatableChar:
			return &Error{Kind: KindValidation, Msg: entity + " input is not valid UTF-8 text", Err: err}
		case codeStringTruncation:
			return &Error{Kind: KindValidation, Msg: entity + " field too long", Err: err}
		case codeNotNullViolation:
			return &Error{Kind: KindValidation, Msg: "missing required " + entity + " field", Err: err}
		case codeForeignKey:
			return &Error{Kind: KindNotFound, Msg: referencedEntity(pgErr, entity) + " not found", Err: err}
		case codeUniqueViolation:
			return &Error{Kind: KindConflict, Msg: entity + " already exists", Err: err}
		}
	}

	return Internal(err)
}

// referencedEntity names the missing row of a foreign key violation using the
// constraint's column when PostgreSQL reports one.
func referencedEntity(pgErr *pgconn.PgError, fallback string) string {
	switch pgErr.ConstraintName {
	case "articles_topic_fkey":
		return "topic"
	case "articles_author_fkey", "comments_author_fkey":
		return "user"
	case "comments_article_id_fkey":
		return "article"
	}

	return "referenced " + fallback
}
