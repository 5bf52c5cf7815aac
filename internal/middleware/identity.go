package middleware

// Context keys written by JWTAuth.  Downstream code should use Identity
// rather than reading them directly.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/postboard-api/internal/utils"
)

const (
	ctxUserID   = "user_id"
	ctxRole     = "role"
	ctxIdentity = "identity"
)

func setIdentity(c echo.Context, p utils.Payload) {
	c.Set(ctxIdentity, p)
	c.Set(ctxUserID, p.UserID)
	c.Set(ctxRole, p.Role)
}

// Identity returns the payload of the authenticated caller.
func Identity(c echo.Context) (utils.Payload, bool) {
	p, ok := c.Get(ctxIdentity).(utils.Payload)
	return p, ok
}

// currentUserID is the caller id as a key segment, or "anon".
func currentUserID(c echo.Context) string {
	if id, ok := c.Get(ctxUserID).(uint); ok && id != 0 {
		return strconv.FormatUint(uint64(id), 10)
	}
	return "anon"
}
