package echoapi

import (
	"github.com/labstack/echo/v4"
)

// requireAccess limits an endpoint to the roles allowed on the console page it serves.
func (s *server) requireAccess(route string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			sess, ok := getContextSession(ctx)
			if !ok || !s.deps.Policy.HasAccess(route, sess.Role) {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}
