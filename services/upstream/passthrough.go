package upstream

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

// ErrUnknownResource is returned for resources a Passthrough does not expose.
var ErrUnknownResource = errors.New("unknown resource")

// Passthrough forwards read-only listings of a backend as-is.
type Passthrough struct {
	*Client
	prefix    string
	resources map[string]bool
}

func NewPassthrough(service, baseURL, prefix string, timeout time.Duration, resources ...string) *Passthrough {
	allowed := make(map[string]bool, len(resources))
	for _, r := range resources {
		allowed[r] = true
	}
	return &Passthrough{Client: NewClient(service, baseURL, timeout), prefix: prefix, resources: allowed}
}

// NewGorioAPI exposes the employment and MEI resources of the GO Rio backend.
func NewGorioAPI(baseURL string, timeout time.Duration) *Passthrough {
	return NewPassthrough("gorio-api", baseURL, "/api/v1/", timeout,
		"empresas", "vagas", "oportunidades-mei", "propostas")
}

// NewSearchAPI exposes the municipal services catalogue.
func NewSearchAPI(baseURL string, timeout time.Duration) *Passthrough {
	return NewPassthrough("search-api", baseURL, "/api/v1/", timeout, "busca", "servicos", "tombamentos")
}

func (p *Passthrough) Has(resource string) bool {
	return p.resources[resource]
}

// List fetches resource with the given query. Only the first value of each key is forwarded.
func (p *Passthrough) List(ctx context.Context, resource string, query url.Values) (json.RawMessage, error) {
	if !p.Has(resource) {
		return nil, errors.Wrap(ErrUnknownResource, resource)
	}
	params := make(map[string]string, len(query))
	for k := range query {
		params[k] = query.Get(k)
	}
	return p.raw(ctx, p.prefix+resource, params)
}

// Get fetches one item of resource.
func (p *Passthrough) Get(ctx context.Context, resource, id string) (json.RawMessage, error) {
	if !p.Has(resource) {
		return nil, errors.Wrap(ErrUnknownResource, resource)
	}
	return p.raw(ctx, p.prefix+resource+"/"+url.PathEscape(id), nil)
}
