package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/postboard-api/internal/service"
	"github.com/iliyamo/postboard-api/internal/utils"
)

// Verifier runs the auth gate for one token kind.
type Verifier interface {
	Verify(ctx context.Context, raw, kind string) (utils.Payload, error)
}

// JWTAuth admits requests carrying a Bearer token of the given kind that
// passes the verifier.  The decoded payload is stored in the context;
// read it back with Identity.
func JWTAuth(v Verifier, kind string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return deny(c, http.StatusUnauthorized, "Unauthorized")
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if raw == "" {
				return deny(c, http.StatusUnauthorized, "Unauthorized")
			}

			p, err := v.Verify(c.Request().Context(), raw, kind)
			if err != nil {
				if service.KindOf(err) == service.KindUnauthorized {
					return deny(c, http.StatusUnauthorized, err.Error())
				}
				log.Error().Err(err).Str("path", c.Path()).Msg("token verification failed")
				return deny(c, http.StatusInternalServerError, "Internal server error")
			}

			setIdentity(c, p)
			return next(c)
		}
	}
}

// deny writes the standard error envelope.
func deny(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"statusCode": status, "message": msg})
}
