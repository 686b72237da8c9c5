// Package identity talks to the OpenID Connect provider that issues the console's tokens.
package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/prefeitura-rio/gorio-admin/core"
	"github.com/prefeitura-rio/gorio-admin/core/access"
)

// Provider refreshes token pairs against the provider's token endpoint.
type Provider struct {
	tokenURL     string
	clientID     string
	clientSecret string
	rest         *rest.Client
}

var _ access.Refresher = (*Provider)(nil)

func NewProvider(conf core.AuthConfig, timeout time.Duration) *Provider {
	return &Provider{
		tokenURL:     conf.TokenURL,
		clientID:     conf.ClientID,
		clientSecret: conf.ClientSecret,
		rest:         &rest.Client{HTTPClient: &http.Client{Timeout: timeout}},
	}
}

type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

// Refresh runs the refresh_token grant. Every failure wraps access.ErrRefreshFailed.
func (p *Provider) Refresh(ctx context.Context, refreshToken string) (access.TokenPair, error) {
	if refreshToken == "" {
		return access.TokenPair{}, errors.Wrap(access.ErrRefreshFailed, "empty refresh token")
	}
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"client_id":     {p.clientID},
	}
	if p.clientSecret != "" {
		form.Set("client_secret", p.clientSecret)
	}

	res, err := p.rest.SendWithContext(ctx, rest.Request{
		Method:  rest.Post,
		BaseURL: p.tokenURL,
		Headers: map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
			"Accept":       "application/json",
		},
		Body: []byte(form.Encode()),
	})
	if err != nil {
		return access.TokenPair{}, errors.Wrapf(access.ErrRefreshFailed, "calling token endpoint: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		var er errorResponse
		_ = json.Unmarshal([]byte(res.Body), &er)
		return access.TokenPair{}, errors.Wrapf(access.ErrRefreshFailed, "status %d: %s %s", res.StatusCode, er.Error, er.Description)
	}

	var pair access.TokenPair
	if err := json.Unmarshal([]byte(res.Body), &pair); err != nil {
		return access.TokenPair{}, errors.Wrapf(access.ErrRefreshFailed, "decoding token response: %v", err)
	}
	if pair.AccessToken == "" {
		return access.TokenPair{}, errors.Wrap(access.ErrRefreshFailed, "no access token in response")
	}
	if pair.RefreshToken == "" {
		// providers may keep the refresh token unchanged
		pair.RefreshToken = refreshToken
	}
	return pair, nil
}
