package access

import (
	"context"
	"crypto/rsa"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

// TokenState is where a request stands in the session guard.
type TokenState int

const (
	NoToken TokenState = iota
	ValidToken
	ExpiredTokenWithRefresh
	ExpiredTokenNoRefresh
)

func (st TokenState) String() string {
	switch st {
	case ValidToken:
		return "valid"
	case ExpiredTokenWithRefresh:
		return "expired, refreshable"
	case ExpiredTokenNoRefresh:
		return "expired"
	default:
		return "none"
	}
}

var ErrRefreshFailed = errors.New("token refresh failed")

type (
	// Claims are the identity provider's access token claims.
	Claims struct {
		Subject           string               `json:"sub,omitempty"`
		Issuer            string               `json:"iss,omitempty"`
		ExpiresAt         int64                `json:"exp,omitempty"`
		IssuedAt          int64                `json:"iat,omitempty"`
		PreferredUsername string               `json:"preferred_username,omitempty"`
		Email             string               `json:"email,omitempty"`
		Name              string               `json:"name,omitempty"`
		RealmAccess       RoleClaim            `json:"realm_access,omitempty"`
		ResourceAccess    map[string]RoleClaim `json:"resource_access,omitempty"`
	}

	RoleClaim struct {
		Roles []string `json:"roles,omitempty"`
	}

	// TokenPair is what the identity provider answers to a refresh.
	TokenPair struct {
		AccessToken      string `json:"access_token"`
		RefreshToken     string `json:"refresh_token"`
		ExpiresIn        int    `json:"expires_in"`
		RefreshExpiresIn int    `json:"refresh_expires_in"`
	}

	// Refresher exchanges a refresh token for a new token pair.
	Refresher interface {
		Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	}

	// Session is the authenticated user of a request.
	Session struct {
		Subject   string    `json:"subject"`
		Username  string    `json:"username"`
		Email     string    `json:"email"`
		Name      string    `json:"name"`
		Role      Role      `json:"role"`
		ExpiresAt time.Time `json:"expiresAt"`
		Token     string    `json:"-"`
	}
)

// Valid always succeeds: expiry is a guard state, not a decoding error.
func (c *Claims) Valid() error {
	return nil
}

// Expired reports whether the token is past its expiry. A token without expiry is expired.
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt == 0 || now.Unix() >= c.ExpiresAt
}

// Roles returns the realm roles and the roles granted on clientID.
func (c *Claims) Roles(clientID string) []string {
	roles := append([]string(nil), c.RealmAccess.Roles...)
	if ra, ok := c.ResourceAccess[clientID]; ok {
		roles = append(roles, ra.Roles...)
	}
	return roles
}

// NewSession builds the session of c; its role is the highest one the console knows.
func NewSession(c *Claims, rawToken, clientID string) Session {
	return Session{
		Subject:   c.Subject,
		Username:  c.PreferredUsername,
		Email:     c.Email,
		Name:      c.Name,
		Role:      HighestRole(c.Roles(clientID)),
		ExpiresAt: time.Unix(c.ExpiresAt, 0).UTC(),
		Token:     rawToken,
	}
}

// TokenDecoder decodes access tokens. The zero value does not check signatures and is meant for
// deployments where the upstream APIs verify the bearer token themselves.
type TokenDecoder struct {
	key *rsa.PublicKey
}

// NewTokenDecoder returns a decoder verifying RS256 signatures against the PEM encoded
// publicKey. An empty publicKey gives the non-verifying decoder.
func NewTokenDecoder(publicKey string) (*TokenDecoder, error) {
	if publicKey == "" {
		return &TokenDecoder{}, nil
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKey))
	if err != nil {
		return nil, errors.Wrap(err, "parsing public key")
	}
	return &TokenDecoder{key: key}, nil
}

func (d *TokenDecoder) Decode(raw string) (*Claims, error) {
	claims := new(Claims)
	if d == nil || d.key == nil {
		if _, _, err := new(jwt.Parser).ParseUnverified(raw, claims); err != nil {
			return nil, errors.Wrap(err, "decoding token")
		}
		return claims, nil
	}

	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return d.key, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "verifying token")
	}
	return claims, nil
}

// Inspect classifies the request's cookies. An access token that cannot be decoded counts as
// absent, and an absent access token next to a refresh token counts as expired.
func (d *TokenDecoder) Inspect(access, refresh string, now time.Time) (TokenState, *Claims) {
	var claims *Claims
	if access != "" {
		if c, err := d.Decode(access); err == nil {
			claims = c
		}
	}

	switch {
	case claims != nil && !claims.Expired(now):
		return ValidToken, claims
	case refresh != "":
		return ExpiredTokenWithRefresh, claims
	case claims != nil:
		return ExpiredTokenNoRefresh, claims
	default:
		return NoToken, nil
	}
}
