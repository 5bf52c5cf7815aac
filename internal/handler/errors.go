package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/postboard-api/internal/service"
)

// errorBody is the envelope of every error response.
type errorBody struct {
	StatusCode int               `json:"statusCode"`
	Message    string            `json:"message"`
	Errors     map[string]string `json:"errors,omitempty"`
}

// respondError maps err onto the envelope.  Validation failures list the
// failing rule per field; unclassified errors are logged and hidden.
func respondError(c echo.Context, err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		fields := make(map[string]string, len(ve))
		for _, fe := range ve {
			fields[fe.Field()] = fe.Tag()
		}
		return c.JSON(http.StatusBadRequest, errorBody{
			StatusCode: http.StatusBadRequest,
			Message:    "Validation failed",
			Errors:     fields,
		})
	}

	kind := service.KindOf(err)
	status := kind.Status()
	msg := err.Error()
	if kind == service.KindInternal {
		log.Error().Err(err).Str("method", c.Request().Method).Str("path", c.Path()).Msg("request failed")
		msg = "Internal server error"
	}
	return c.JSON(status, errorBody{StatusCode: status, Message: msg})
}

func badRequest(msg string) error {
	return &service.Error{Kind: service.KindBadRequest, Message: msg}
}

// ErrorHandler renders errors that escape handlers (unknown routes, body
// limit, panics recovered by echo) in the same envelope.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(he.Code)
			return
		}
		_ = c.JSON(he.Code, errorBody{StatusCode: he.Code, Message: msg})
		return
	}
	_ = respondError(c, err)
}
