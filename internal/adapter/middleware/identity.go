package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"lending-backoffice/internal/domain/user"
	"lending-backoffice/internal/session"
)

// Identity resolves the Ax-User-Id header against the user directory, stamps
// the acting user onto the request context (history authorship) and hangs a
// fresh optimistic session on the echo context. Requests without the header
// proceed anonymously; mutating routes are additionally gated by the
// idempotency middleware, which requires it.
func Identity(users user.Repository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := strings.TrimSpace(c.Request().Header.Get("Ax-User-Id"))
			if uid == "" {
				c.Set(session.ContextKey, session.New("", ""))
				return next(c)
			}
			if !reHex32.MatchString(uid) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid Ax-User-Id"})
			}
			actor, err := users.GetByUserID(c.Request().Context(), uid)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unknown user"})
			}
			req := c.Request()
			c.SetRequest(req.WithContext(user.NewContext(req.Context(), *actor)))
			c.Set(session.ContextKey, session.New(actor.UserID, actor.DisplayName))
			return next(c)
		}
	}
}
