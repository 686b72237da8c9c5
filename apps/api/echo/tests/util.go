package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/prefeitura-rio/gorio-admin/apps/api/echo"
	"github.com/prefeitura-rio/gorio-admin/core"
	"github.com/prefeitura-rio/gorio-admin/core/access"
	"github.com/prefeitura-rio/gorio-admin/core/cnae"
	"github.com/prefeitura-rio/gorio-admin/core/course"
	"github.com/prefeitura-rio/gorio-admin/services/upstream"
)

const (
	clientID      = "gorio-admin"
	accessCookie  = "access_token"
	refreshCookie = "refresh_token"
	authorizeURL  = "https://idp.test/auth"
)

var (
	errUnauthenticated = httpErr{Error: "user not authenticated"}
	errExpired         = httpErr{Error: "session expired"}
	errForbidden       = httpErr{Error: "permission denied"}
	errNotFound        = httpErr{Error: "not found"}
)

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

// logRecorder is a core.Logger keeping the messages it receives.
type logRecorder struct {
	mu   sync.Mutex
	msgs map[string][]string
}

var _ core.Logger = (*logRecorder)(nil)

func (l *logRecorder) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.msgs == nil {
		l.msgs = make(map[string][]string)
	}
	l.msgs[level] = append(l.msgs[level], msg)
}

func (l *logRecorder) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.msgs[level])
}

func (l *logRecorder) Debug(msg string, _ ...interface{}) { l.log("debug", msg) }
func (l *logRecorder) Info(msg string, _ ...interface{})  { l.log("info", msg) }
func (l *logRecorder) Warn(msg string, _ ...interface{})  { l.log("warn", msg) }
func (l *logRecorder) Error(msg string, _ ...interface{}) { l.log("error", msg) }
func (l *logRecorder) Fatal(msg string, _ ...interface{}) { l.log("fatal", msg) }

// refresherMock hands out pair, or fails when pair has no access token.
type refresherMock struct {
	mu    sync.Mutex
	pair  access.TokenPair
	calls int
}

func (r *refresherMock) Refresh(_ context.Context, _ string) (access.TokenPair, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.pair.AccessToken == "" {
		return access.TokenPair{}, access.ErrRefreshFailed
	}
	return r.pair, nil
}

type cnaeRepoMock struct{}

func (cnaeRepoMock) SearchActivities(_ context.Context, f cnae.SearchFilter) (cnae.SearchResult, error) {
	return cnae.SearchResult{
		Data:    []cnae.Activity{{ID: 1, Code: "4781-4/00", Description: "Comércio varejista de artigos do vestuário"}},
		Page:    f.Page,
		PerPage: f.PerPage,
		Total:   1,
	}, nil
}

type env struct {
	app       Server
	logger    *logRecorder
	refresher *refresherMock
	courses   *course.MemoryRepository
	backend   *httptest.Server
	// backendStatus is what the fake Gorio/search backend answers with.
	backendStatus int
	backendQuery  string
	backendPath   string
}

var testNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func testConfig() *core.Config {
	return &core.Config{
		TestMode: true,
		Env:      "TEST",
		Server:   core.ServerConfig{DisableReqLogs: true},
		Auth: core.AuthConfig{
			AuthorizationURL:   authorizeURL,
			ClientID:           clientID,
			RedirectURI:        "http://localhost:8000/auth/callback",
			Scope:              "openid",
			AccessCookie:       accessCookie,
			RefreshCookie:      refreshCookie,
			SessionExpiredPath: "/session-expired",
			UnauthorizedPath:   "/unauthorized",
		},
	}
}

func setup(t *testing.T, courses ...course.APICourse) *env {
	e := &env{
		logger:        new(logRecorder),
		refresher:     new(refresherMock),
		courses:       course.NewMemoryRepository(courses...),
		backendStatus: http.StatusOK,
	}
	e.backend = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.backendPath, e.backendQuery = r.URL.Path, r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(e.backendStatus)
		_, _ = w.Write([]byte(`{"items": [{"id": 1}]}`))
	}))
	t.Cleanup(e.backend.Close)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	course.InitValidators(validate, translator)

	e.app = NewServer(ServerDeps{
		Conf:       testConfig(),
		Logger:     e.logger,
		Policy:     access.DefaultPolicy(),
		Decoder:    new(access.TokenDecoder),
		Refresher:  e.refresher,
		CourseSvc:  course.NewServiceMock(e.courses, testNow, e.logger),
		CNAESvc:    cnae.NewService(cnaeRepoMock{}, nil, time.Hour, e.logger),
		GorioAPI:   upstream.NewGorioAPI(e.backend.URL, time.Second),
		SearchAPI:  upstream.NewSearchAPI(e.backend.URL, time.Second),
		Validate:   validate,
		Translator: translator,
	})
	return e
}

// getToken signs an access token for username holding the given provider roles.
func getToken(t *testing.T, username string, exp time.Time, roles ...string) string {
	claims := &access.Claims{
		Subject:           username + "-id",
		ExpiresAt:         exp.Unix(),
		IssuedAt:          exp.Add(-5 * time.Minute).Unix(),
		PreferredUsername: username,
		Email:             username + "@prefeitura.rio",
		ResourceAccess:    map[string]access.RoleClaim{clientID: {Roles: roles}},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test"))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func validToken(t *testing.T, role string) string {
	return getToken(t, role, time.Now().Add(time.Hour), "go:"+role)
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: accessCookie, Value: token})
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, tt.wantCode, rec.Code, "body: %s", rec.Body.String())
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app Server, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
