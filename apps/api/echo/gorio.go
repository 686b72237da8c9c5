package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/prefeitura-rio/gorio-admin/core/access"
)

// resourceRoutes maps each forwarded resource to the console page whose roles may read it.
var resourceRoutes = map[string]string{
	"empresas":          "/gorio/empregabilidade",
	"vagas":             "/gorio/empregabilidade",
	"oportunidades-mei": "/gorio/oportunidades-mei",
	"propostas":         "/gorio/oportunidades-mei",
	"servicos":          "/servicos-municipais/servicos",
	"busca":             "/servicos-municipais/servicos",
	"tombamentos":       "/servicos-municipais/tombamentos",
}

type gorioApi struct {
	policy   *access.Policy
	gorio    Passthrough
	search   Passthrough
	validate *validator.Validate
}

func registerGorioAPI(g *echo.Group, policy *access.Policy, gorio, search Passthrough, validate *validator.Validate) {
	api := gorioApi{policy: policy, gorio: gorio, search: search, validate: validate}

	gg := g.Group("/gorio")
	gg.GET("/:resource", api.query(api.gorio))
	gg.GET("/:resource/:id", api.retrieve(api.gorio))

	g.GET("/servicos", api.searchServices)
	g.GET("/servicos/:resource", api.query(api.search))
}

// allowed checks that backend exposes resource and that the session may read it.
func (api *gorioApi) allowed(ctx echo.Context, backend Passthrough, resource string) error {
	route, known := resourceRoutes[resource]
	if backend == nil || !known || !backend.Has(resource) {
		return errHttpNotFound
	}
	sess, ok := getContextSession(ctx)
	if !ok || !api.policy.HasAccess(route, sess.Role) {
		return errHttpForbidden
	}
	return nil
}

func (api *gorioApi) list(ctx echo.Context, backend Passthrough, resource string) error {
	if err := api.allowed(ctx, backend, resource); err != nil {
		return err
	}
	var p Pagination
	if err := p.Bind(ctx, api.validate); err != nil {
		return err
	}

	raw, err := backend.List(ctx.Request().Context(), resource, p.Query(ctx.QueryParams()))
	if err != nil {
		return errors.Wrapf(err, "listing %s", resource)
	}
	return ctx.JSONBlob(http.StatusOK, raw)
}

func (api *gorioApi) query(backend Passthrough) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var ref ResourceRef
		if err := ref.Bind(ctx, api.validate); err != nil {
			return err
		}
		return api.list(ctx, backend, ref.Resource)
	}
}

func (api *gorioApi) retrieve(backend Passthrough) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var ref ResourceRef
		if err := ref.Bind(ctx, api.validate); err != nil {
			return err
		}
		if err := api.allowed(ctx, backend, ref.Resource); err != nil {
			return err
		}
		raw, err := backend.Get(ctx.Request().Context(), ref.Resource, ref.ID)
		if err != nil {
			return errors.Wrapf(err, "getting %s %s", ref.Resource, ref.ID)
		}
		return ctx.JSONBlob(http.StatusOK, raw)
	}
}

// searchServices is the full-text search over the municipal services catalogue.
func (api *gorioApi) searchServices(ctx echo.Context) error {
	return api.list(ctx, api.search, "busca")
}
