package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/prefeitura-rio/gorio-admin/core"
	"github.com/prefeitura-rio/gorio-admin/core/access"
	"github.com/prefeitura-rio/gorio-admin/core/cnae"
	"github.com/prefeitura-rio/gorio-admin/core/course"
)

type (
	// Passthrough is a backend whose read-only listings are forwarded as-is.
	Passthrough interface {
		Has(resource string) bool
		List(ctx context.Context, resource string, query url.Values) (json.RawMessage, error)
		Get(ctx context.Context, resource, id string) (json.RawMessage, error)
	}

	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		Policy     *access.Policy
		Decoder    *access.TokenDecoder
		Refresher  access.Refresher
		CourseSvc  *course.Service
		CNAESvc    *cnae.Service
		GorioAPI   Passthrough
		SearchAPI  Passthrough
		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(context.Context) error
		Close() error
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout

	s.app.GET("/health", health)

	api := s.app.Group("/api", s.apiGuard)
	registerSessionAPI(api, s.deps.Policy)
	registerMarkdownAPI(api, s.deps.Validate)
	registerCourseAPI(api, s.requireAccess(courseRoute), s.deps.CourseSvc, s.deps.Validate)
	registerCNAEAPI(api, s.requireAccess(cnaeRoute), s.deps.CNAESvc, s.deps.Validate)
	registerGorioAPI(api, s.deps.Policy, s.deps.GorioAPI, s.deps.SearchAPI, s.deps.Validate)

	pages := []echo.MiddlewareFunc{s.pageGuard}
	if proxy := s.frontendProxy(); proxy != nil {
		pages = append(pages, proxy)
	}
	s.app.Any("/", page, pages...)
	s.app.Any("/*", page, pages...)
}

// frontendProxy forwards the console's pages to the admin UI, if one is configured.
func (s *server) frontendProxy() echo.MiddlewareFunc {
	if s.deps.Conf.Server.FrontendURL == "" {
		return nil
	}
	target, err := url.Parse(s.deps.Conf.Server.FrontendURL)
	if err != nil {
		s.deps.Logger.Error("invalid frontend URL; serving page stubs", err)
		return nil
	}
	return middleware.Proxy(middleware.NewRoundRobinBalancer([]*middleware.ProxyTarget{{URL: target}}))
}

func (s *server) Start() {
	s.deps.Logger.Info("API listening on " + s.deps.Conf.Server.Host)
	if err := s.app.Start(s.deps.Conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// page answers page routes when no admin UI is proxied.
func page(ctx echo.Context) error {
	role := access.RoleNone
	if sess, ok := getContextSession(ctx); ok {
		role = sess.Role
	}
	return ctx.JSON(http.StatusOK, echo.Map{"path": ctx.Request().URL.Path, "role": role})
}
