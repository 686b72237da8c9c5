package echoapi

import (
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/prefeitura-rio/gorio-admin/core/access"
)

const contextSessionKey = "session"

var (
	errNotAuthenticated = errors.New("not authenticated")
	errSessionExpired   = errors.New("session expired")
)

// resolveSession runs the token state machine on the request's cookies. An expired access token
// next to a refresh token is refreshed once; on success the new cookies are set on the response.
func (s *server) resolveSession(ctx echo.Context) (access.Session, error) {
	conf := s.deps.Conf.Auth
	accessToken := cookieValue(ctx, conf.AccessCookie)
	refreshToken := cookieValue(ctx, conf.RefreshCookie)

	state, claims := s.deps.Decoder.Inspect(accessToken, refreshToken, time.Now())
	switch state {
	case access.ValidToken:
		return access.NewSession(claims, accessToken, conf.ClientID), nil

	case access.ExpiredTokenWithRefresh:
		sess, err := s.refresh(ctx, refreshToken)
		if err != nil {
			s.deps.Logger.Warn("token refresh failed", err)
			s.clearCookies(ctx)
			return access.Session{}, errSessionExpired
		}
		return sess, nil

	case access.ExpiredTokenNoRefresh:
		s.clearCookies(ctx)
		return access.Session{}, errSessionExpired

	default:
		return access.Session{}, errNotAuthenticated
	}
}

func (s *server) refresh(ctx echo.Context, refreshToken string) (access.Session, error) {
	if s.deps.Refresher == nil {
		return access.Session{}, errors.Wrap(access.ErrRefreshFailed, "no refresher configured")
	}
	pair, err := s.deps.Refresher.Refresh(ctx.Request().Context(), refreshToken)
	if err != nil {
		return access.Session{}, err
	}
	claims, err := s.deps.Decoder.Decode(pair.AccessToken)
	if err != nil {
		return access.Session{}, errors.Wrap(access.ErrRefreshFailed, err.Error())
	}
	s.setCookies(ctx, pair)
	return access.NewSession(claims, pair.AccessToken, s.deps.Conf.Auth.ClientID), nil
}

func cookieValue(ctx echo.Context, name string) string {
	if ck, err := ctx.Cookie(name); err == nil {
		return ck.Value
	}
	return ""
}

func (s *server) newCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.deps.Conf.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *server) setCookies(ctx echo.Context, pair access.TokenPair) {
	conf := s.deps.Conf.Auth
	ctx.SetCookie(s.newCookie(conf.AccessCookie, pair.AccessToken, pair.ExpiresIn))
	ctx.SetCookie(s.newCookie(conf.RefreshCookie, pair.RefreshToken, pair.RefreshExpiresIn))
}

func (s *server) clearCookies(ctx echo.Context) {
	conf := s.deps.Conf.Auth
	ctx.SetCookie(s.newCookie(conf.AccessCookie, "", -1))
	ctx.SetCookie(s.newCookie(conf.RefreshCookie, "", -1))
}

// withSession makes sess available to handlers and, through the request context, to upstream clients.
func withSession(ctx echo.Context, sess access.Session) {
	ctx.Set(contextSessionKey, sess)
	req := ctx.Request()
	ctx.SetRequest(req.WithContext(access.WithSession(req.Context(), sess)))
}

func getContextSession(ctx echo.Context) (access.Session, bool) {
	sess, ok := ctx.Get(contextSessionKey).(access.Session)
	return sess, ok
}

// loginURL is the identity provider's authorization URL; state carries the page to come back to.
func (s *server) loginURL(next string) string {
	conf := s.deps.Conf.Auth
	q := url.Values{
		"client_id":     {conf.ClientID},
		"redirect_uri":  {conf.RedirectURI},
		"response_type": {"code"},
		"scope":         {conf.Scope},
		"state":         {next},
	}
	return conf.AuthorizationURL + "?" + q.Encode()
}

// pageGuard protects the console's pages. The token is checked before the access policy.
func (s *server) pageGuard(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		route := access.CleanRoute(ctx.Request().URL.Path)
		if route != ctx.Request().URL.Path {
			// the frontend would resolve the dot segments after the policy has matched
			u := *ctx.Request().URL
			u.Path, u.RawPath = route, ""
			return ctx.Redirect(http.StatusMovedPermanently, u.RequestURI())
		}
		if s.deps.Policy.IsPublic(route) {
			return next(ctx)
		}

		sess, err := s.resolveSession(ctx)
		switch err {
		case nil:
		case errNotAuthenticated:
			return ctx.Redirect(http.StatusTemporaryRedirect, s.loginURL(ctx.Request().URL.RequestURI()))
		default:
			return ctx.Redirect(http.StatusTemporaryRedirect, s.deps.Conf.Auth.SessionExpiredPath)
		}

		if !s.deps.Policy.HasAccess(route, sess.Role) {
			return ctx.Redirect(http.StatusTemporaryRedirect, s.deps.Conf.Auth.UnauthorizedPath)
		}
		withSession(ctx, sess)
		return next(ctx)
	}
}

// apiGuard protects the JSON API: failures are answered with 401 instead of redirects.
func (s *server) apiGuard(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		sess, err := s.resolveSession(ctx)
		switch err {
		case nil:
		case errSessionExpired:
			return errHttpSessionExpired
		default:
			return errUnauthorized
		}
		if sess.Role == access.RoleNone {
			return errHttpForbidden
		}
		withSession(ctx, sess)
		return next(ctx)
	}
}
