package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/prefeitura-rio/gorio-admin/core/access"
)

type sessionApi struct {
	policy *access.Policy
}

func registerSessionAPI(g *echo.Group, policy *access.Policy) {
	api := sessionApi{policy: policy}

	g.GET("/session", api.session)
	g.GET("/menu", api.menu)
}

func (api *sessionApi) session(ctx echo.Context) error {
	sess, ok := getContextSession(ctx)
	if !ok {
		return errUnauthorized
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *sessionApi) menu(ctx echo.Context) error {
	sess, ok := getContextSession(ctx)
	if !ok {
		return errUnauthorized
	}
	items := api.policy.Menu(sess.Role)
	if items == nil {
		items = []access.MenuItem{}
	}
	return ctx.JSON(http.StatusOK, items)
}
