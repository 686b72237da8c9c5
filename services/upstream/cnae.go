package upstream

import (
	"context"
	"strconv"
	"time"

	"github.com/sendgrid/rest"

	"github.com/prefeitura-rio/gorio-admin/core/cnae"
)

// RMI is the citizen registry API; the console only uses its CNAE lookup.
type RMI struct {
	*Client
}

var _ cnae.Repository = (*RMI)(nil)

func NewRMI(baseURL string, timeout time.Duration) *RMI {
	return &RMI{NewClient("rmi", baseURL, timeout)}
}

type rmiCNAEPage struct {
	CNAEs      []cnae.Activity `json:"cnaes"`
	Pagination struct {
		Page    int `json:"page"`
		PerPage int `json:"per_page"`
		Total   int `json:"total"`
	} `json:"pagination"`
}

func (api *RMI) SearchActivities(ctx context.Context, filter cnae.SearchFilter) (cnae.SearchResult, error) {
	query := map[string]string{
		"page":     strconv.Itoa(filter.Page),
		"per_page": strconv.Itoa(filter.PerPage),
	}
	if filter.Search != "" {
		query["search"] = filter.Search
	}
	var page rmiCNAEPage
	if err := api.sendJSON(ctx, rest.Get, "/v1/cnae", query, nil, &page); err != nil {
		return cnae.SearchResult{}, err
	}
	return cnae.SearchResult{
		Data:    page.CNAEs,
		Page:    page.Pagination.Page,
		PerPage: page.Pagination.PerPage,
		Total:   page.Pagination.Total,
	}, nil
}
