package echoapi

import (
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Pagination is the query every passthrough listing accepts.
type Pagination struct {
	Page    int    `query:"page" validate:"gte=0"`
	PerPage int    `query:"per_page" validate:"gte=0,lte=100"`
	Search  string `query:"search"`
}

func (p *Pagination) Bind(ctx echo.Context, validate *validator.Validate) error {
	if err := ctx.Bind(p); err != nil {
		return errors.Wrap(err, "binding to Pagination")
	}
	if err := validate.Struct(p); err != nil {
		return err
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = 20
	}
	return nil
}

// ResourceRef names a forwarded resource and, for retrievals, one of its records. Both end up
// in the backend's URL path.
type ResourceRef struct {
	Resource string `json:"resource" validate:"required,slug"`
	ID       string `json:"id" validate:"omitempty,slug"`
}

func (r *ResourceRef) Bind(ctx echo.Context, validate *validator.Validate) error {
	r.Resource, r.ID = ctx.Param("resource"), ctx.Param("id")
	return validate.Struct(r)
}

// Query returns the forwarded query: the original one with clean pagination.
func (p Pagination) Query(orig url.Values) url.Values {
	q := make(url.Values, len(orig)+2)
	for k, v := range orig {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("per_page", strconv.Itoa(p.PerPage))
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	return q
}
