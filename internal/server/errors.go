package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/rustyeddy/tfcandle/market"
	"github.com/rustyeddy/tfcandle/store"
)

// apiError is the JSON body of every error response.
type apiError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`

	cause error
}

func (e *apiError) Error() string {
	return e.Message
}

// Render implements render.Renderer.
func (e *apiError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

func newError(status int, code, msg string) *apiError {
	return &apiError{StatusCode: status, ErrorCode: code, Message: msg}
}

type rowDetails struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Value  string `json:"value"`
}

// errorFor maps intake and store errors onto HTTP responses. Input problems
// are the client's to fix and carry the underlying message; anything else
// is reported as an internal error.
func errorFor(err error) *apiError {
	var perr *market.RowParseError
	var e *apiError

	switch {
	case errors.As(err, &perr):
		e = newError(http.StatusUnprocessableEntity, "ROW_PARSE_ERROR", perr.Error())
		e.Details = rowDetails{Row: perr.Row, Column: perr.Column, Value: perr.Value}
	case errors.Is(err, market.ErrInvalidWindowSize):
		e = newError(http.StatusBadRequest, "INVALID_WINDOW_SIZE", "timeframe must be a positive number of rows")
	case errors.Is(err, market.ErrEmptyWindow):
		e = newError(http.StatusUnprocessableEntity, "EMPTY_WINDOW", "the uploaded file has no data rows")
	case errors.Is(err, market.ErrSchemaMismatch):
		e = newError(http.StatusUnprocessableEntity, "SCHEMA_MISMATCH", err.Error())
	case errors.Is(err, market.ErrSourceUnreadable):
		e = newError(http.StatusUnprocessableEntity, "SOURCE_UNREADABLE", err.Error())
	case errors.Is(err, store.ErrInvalidID):
		e = newError(http.StatusBadRequest, "INVALID_ID", err.Error())
	case errors.Is(err, store.ErrNotFound):
		e = newError(http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		e = newError(http.StatusGatewayTimeout, "TIMEOUT", "request timed out")
	default:
		e = newError(http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
	}
	e.cause = err
	return e
}
