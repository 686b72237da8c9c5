// Package cnae looks up economic activity codes in the RMI CNAE registry.
package cnae

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/prefeitura-rio/gorio-admin/core"
)

type (
	// Activity is one CNAE subclass with its place in the hierarchy.
	Activity struct {
		ID          int    `json:"id"`
		Code        string `json:"subclasse"`
		Description string `json:"denominacao"`
		Section     string `json:"secao"`
		Division    string `json:"divisao"`
		Group       string `json:"grupo"`
		Class       string `json:"classe"`
	}

	SearchFilter struct {
		Search  string `query:"search"`
		Page    int    `query:"page" validate:"gte=0"`
		PerPage int    `query:"per_page" validate:"gte=0,lte=100"`
	}

	SearchResult struct {
		Data    []Activity `json:"data"`
		Page    int        `json:"page"`
		PerPage int        `json:"perPage"`
		Total   int        `json:"total"`
	}

	Repository interface {
		SearchActivities(ctx context.Context, filter SearchFilter) (SearchResult, error)
	}

	// Cache stores encoded search results. Get returns ok=false on a miss.
	Cache interface {
		Get(ctx context.Context, key string) (val []byte, ok bool, err error)
		Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	}

	Service struct {
		repo   Repository
		cache  Cache
		ttl    time.Duration
		logger core.Logger
	}
)

func (sf *SearchFilter) Clean() {
	sf.Search = core.CleanString(sf.Search, true /* lower */)
	if sf.Page < 1 {
		sf.Page = 1
	}
	if sf.PerPage < 1 {
		sf.PerPage = 20
	}
}

// NewService returns a Service. cache may be nil to disable caching.
func NewService(repo Repository, cache Cache, ttl time.Duration, logger core.Logger) *Service {
	return &Service{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

func cacheKey(f SearchFilter) string {
	return fmt.Sprintf("cnae:%s:%d:%d", f.Search, f.Page, f.PerPage)
}

// Search queries the registry. The hierarchy never changes at runtime, so results are cached;
// cache failures are logged and the registry is queried directly.
func (svc *Service) Search(ctx context.Context, filter SearchFilter) (SearchResult, error) {
	filter.Clean()
	key := cacheKey(filter)

	if svc.cache != nil {
		val, ok, err := svc.cache.Get(ctx, key)
		switch {
		case err != nil:
			svc.logger.Warn("cnae cache get failed", err)
		case ok:
			var res SearchResult
			if err := json.Unmarshal(val, &res); err == nil {
				return res, nil
			}
		}
	}

	res, err := svc.repo.SearchActivities(ctx, filter)
	if err != nil {
		return SearchResult{}, errors.Wrap(err, "searching activities")
	}
	if res.Data == nil {
		res.Data = []Activity{}
	}

	if svc.cache != nil {
		if val, err := json.Marshal(res); err == nil {
			if err := svc.cache.Set(ctx, key, val, svc.ttl); err != nil {
				svc.logger.Warn("cnae cache set failed", err)
			}
		}
	}
	return res, nil
}
