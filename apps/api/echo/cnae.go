package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/prefeitura-rio/gorio-admin/core/cnae"
)

// CNAE codes are picked when registering MEI opportunities.
const cnaeRoute = "/gorio/oportunidades-mei"

type cnaeApi struct {
	svc      *cnae.Service
	validate *validator.Validate
}

func registerCNAEAPI(g *echo.Group, perm echo.MiddlewareFunc, svc *cnae.Service, validate *validator.Validate) {
	api := cnaeApi{svc: svc, validate: validate}

	g.GET("/cnaes", api.query, perm)
}

func (api *cnaeApi) query(ctx echo.Context) error {
	var filter cnae.SearchFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to SearchFilter")
	}
	if err := api.validate.Struct(filter); err != nil {
		return err
	}

	res, err := api.svc.Search(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "searching cnaes")
	}
	return ctx.JSON(http.StatusOK, res)
}
