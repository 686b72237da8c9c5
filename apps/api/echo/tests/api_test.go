package tests

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prefeitura-rio/gorio-admin/core/course"
)

func strPtr(s string) *string {
	return &s
}

func fixtureCourses() []course.APICourse {
	return []course.APICourse{
		{
			ID: 1, Title: "Python", Modalidade: "PRESENCIAL", Status: "opened",
			EnrollmentStartDate: strPtr("2025-02-01"),
			EnrollmentEndDate:   strPtr("2025-02-28"),
			Locations: []course.APILocation{{
				Address:        "Rua A, 1",
				ClassSchedules: []course.APIClassSchedule{{ClassStartDate: strPtr("2025-03-01"), ClassEndDate: strPtr("2025-04-01")}},
			}},
		},
		{
			ID: 2, Title: "Excel", Modalidade: "ONLINE", Status: "opened",
			EnrollmentStartDate: strPtr("2025-03-01"),
			EnrollmentEndDate:   strPtr("2025-03-31"),
		},
		{ID: 3, Title: "Rascunho", Modalidade: "ONLINE", Status: "draft"},
	}
}

func TestMarkdownAPI(t *testing.T) {
	e := setup(t)
	token := validToken(t, "editor")

	runHTTPTests(t, e.app, []httpTest{
		{
			name:     "serialize",
			method:   http.MethodPost,
			path:     "/api/markdown/serialize",
			body:     []byte(`{"doc": {"type": "doc", "content": [{"type": "heading", "attrs": {"level": 2}, "content": [{"type": "text", "text": "Sobre"}]}]}}`),
			token:    token,
			wantCode: http.StatusOK,
			wantData: []byte(`{"markdown": "## Sobre"}`),
		},
		{
			name:     "serialize without doc",
			method:   http.MethodPost,
			path:     "/api/markdown/serialize",
			body:     []byte(`{}`),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"doc": "this field is required"}`),
		},
		{
			name:     "serialize malformed body",
			method:   http.MethodPost,
			path:     "/api/markdown/serialize",
			body:     []byte(`{"doc": `),
			token:    token,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "parse empty",
			method:   http.MethodPost,
			path:     "/api/markdown/parse",
			body:     []byte(`{"markdown": "  "}`),
			token:    token,
			wantCode: http.StatusOK,
			wantData: []byte(`{"doc": {"type": "doc", "content": [{"type": "paragraph"}]}, "html": "<p></p>"}`),
		},
	})

	t.Run("parse", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/markdown/parse", token, []byte(`{"markdown": "**Python** para iniciantes"}`))
		e.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var res struct {
			Doc struct {
				Type    string `json:"type"`
				Content []struct {
					Type string `json:"type"`
				} `json:"content"`
			} `json:"doc"`
			HTML string `json:"html"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, "doc", res.Doc.Type)
		require.Len(t, res.Doc.Content, 1)
		assert.Equal(t, "paragraph", res.Doc.Content[0].Type)
		assert.Equal(t, "<p><strong>Python</strong> para iniciantes</p>", res.HTML)
	})
}

func TestCourseAPIQuery(t *testing.T) {
	e := setup(t, fixtureCourses()...)
	token := validToken(t, "geral")

	list := func(t *testing.T, query string) course.ListResult {
		req, rec := newAuthRequest(http.MethodGet, "/api/courses"+query, token)
		e.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
		var res course.ListResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		return res
	}

	t.Run("all", func(t *testing.T) {
		res := list(t, "")
		require.Len(t, res.Data, 3)
		assert.Equal(t, course.InProgress, res.Data[0].DisplayStatus)
		assert.Equal(t, course.AcceptingEnrollments, res.Data[1].DisplayStatus)
		assert.Equal(t, course.DisplayStatus(course.StatusDraft), res.Data[2].DisplayStatus)
	})

	t.Run("by display status", func(t *testing.T) {
		res := list(t, "?status=accepting_enrollments")
		require.Len(t, res.Data, 1)
		assert.Equal(t, 2, res.Data[0].ID)
	})

	t.Run("paginated", func(t *testing.T) {
		res := list(t, "?page=2&per_page=2")
		require.Len(t, res.Data, 1)
		assert.Equal(t, 3, res.Data[0].ID)
	})

	runHTTPTests(t, e.app, []httpTest{
		{name: "unknown status", method: http.MethodGet, path: "/api/courses?status=published", token: token, wantCode: http.StatusBadRequest},
		{name: "page too large", method: http.MethodGet, path: "/api/courses?per_page=500", token: token, wantCode: http.StatusBadRequest},
		{name: "editor", method: http.MethodGet, path: "/api/courses", token: validToken(t, "editor"), wantCode: http.StatusForbidden, wantData: marshalObj(t, errForbidden)},
	})
}

func TestCourseAPIRetrieve(t *testing.T) {
	e := setup(t, fixtureCourses()...)
	token := validToken(t, "admin")

	runHTTPTests(t, e.app, []httpTest{
		{name: "not found", method: http.MethodGet, path: "/api/courses/99", token: token, wantCode: http.StatusNotFound, wantData: marshalObj(t, errNotFound)},
		{name: "bad id", method: http.MethodGet, path: "/api/courses/abc", token: token, wantCode: http.StatusNotFound},
	})

	req, rec := newAuthRequest(http.MethodGet, "/api/courses/1", token)
	e.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var c course.Course
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	assert.Equal(t, "Python", c.Title)
	assert.Equal(t, course.InProgress, c.DisplayStatus)
}

func TestCourseAPIInvalidUpstreamData(t *testing.T) {
	broken := course.APICourse{ID: 4, Title: "Datas", Modalidade: "ONLINE", Status: "opened", EnrollmentEndDate: strPtr("01/02/2025")}
	e := setup(t, append(fixtureCourses(), broken)...)
	token := validToken(t, "geral")

	t.Run("list skips the course", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/courses", token)
		e.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
		var res course.ListResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Len(t, res.Data, 3)
		assert.True(t, res.Approximate)
		assert.Equal(t, 1, e.logger.count("warn"))
	})

	t.Run("retrieve is a bad gateway", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/courses/4", token)
		e.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code, "body: %s", rec.Body.String())
		assert.Equal(t, 1, e.logger.count("error"))
	})
}

func TestCourseAPICreateUpdate(t *testing.T) {
	e := setup(t, fixtureCourses()...)
	token := validToken(t, "geral")

	newCourse := course.NewCourse{
		Title:        "Marketing digital",
		Organization: "SMDEIS",
		Modality:     course.ModalityOnline,
		Status:       course.StatusDraft,
	}
	body := func(edit func(m map[string]interface{})) []byte {
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(marshalObj(t, newCourse), &m))
		edit(m)
		return marshalObj(t, m)
	}

	runHTTPTests(t, e.app, []httpTest{
		{
			name:     "missing title",
			method:   http.MethodPost,
			path:     "/api/courses",
			body:     body(func(m map[string]interface{}) { m["title"] = " " }),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"title": "this field is required"}`),
		},
		{
			name:     "update unknown course",
			method:   http.MethodPut,
			path:     "/api/courses/99",
			body:     body(func(m map[string]interface{}) {}),
			token:    token,
			wantCode: http.StatusNotFound,
		},
	})

	t.Run("create from editor document", func(t *testing.T) {
		data := body(func(m map[string]interface{}) {
			m["descriptionDoc"] = map[string]interface{}{
				"type": "doc",
				"content": []interface{}{map[string]interface{}{
					"type":    "paragraph",
					"content": []interface{}{map[string]interface{}{"type": "text", "text": "Aprenda", "marks": []interface{}{map[string]interface{}{"type": "bold"}}}},
				}},
			}
		})
		req, rec := newAuthRequest(http.MethodPost, "/api/courses", token, data)
		e.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
		var c course.Course
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
		assert.Equal(t, 4, c.ID)
		assert.Equal(t, "**Aprenda**", c.Description)
		assert.Equal(t, "<p><strong>Aprenda</strong></p>", c.DescriptionHTML)
		assert.Equal(t, course.DisplayStatus(course.StatusDraft), c.DisplayStatus)
	})

	t.Run("update", func(t *testing.T) {
		data := body(func(m map[string]interface{}) { m["title"] = "Python avançado" })
		req, rec := newAuthRequest(http.MethodPut, "/api/courses/1", token, data)
		e.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
		var c course.Course
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
		assert.Equal(t, 1, c.ID)
		assert.Equal(t, "Python avançado", c.Title)
	})
}

func TestCNAEAPI(t *testing.T) {
	e := setup(t)

	runHTTPTests(t, e.app, []httpTest{
		{
			name:     "search",
			method:   http.MethodGet,
			path:     "/api/cnaes?search=vestu%C3%A1rio",
			token:    validToken(t, "geral"),
			wantCode: http.StatusOK,
			wantData: []byte(`{
				"data": [{"id": 1, "subclasse": "4781-4/00", "denominacao": "Comércio varejista de artigos do vestuário",
					"secao": "", "divisao": "", "grupo": "", "classe": ""}],
				"page": 1, "perPage": 20, "total": 1
			}`),
		},
		{name: "editor", method: http.MethodGet, path: "/api/cnaes", token: validToken(t, "editor"), wantCode: http.StatusForbidden},
		{name: "bad page", method: http.MethodGet, path: "/api/cnaes?page=x", token: validToken(t, "geral"), wantCode: http.StatusBadRequest},
	})
}

func TestGorioAPI(t *testing.T) {
	e := setup(t)
	geral := validToken(t, "geral")

	t.Run("list forwards clean pagination", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/gorio/vagas?search=cozinha&status=ativa", geral)
		e.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
		assert.JSONEq(t, `{"items": [{"id": 1}]}`, rec.Body.String())
		assert.Equal(t, "/api/v1/vagas", e.backendPath)
		q, err := url.ParseQuery(e.backendQuery)
		require.NoError(t, err)
		assert.Equal(t, "1", q.Get("page"))
		assert.Equal(t, "20", q.Get("per_page"))
		assert.Equal(t, "cozinha", q.Get("search"))
		assert.Equal(t, "ativa", q.Get("status"))
	})

	t.Run("retrieve", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/gorio/empresas/42", geral)
		e.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "/api/v1/empresas/42", e.backendPath)
	})

	t.Run("search services", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/servicos?q=iptu", validToken(t, "editor"))
		e.app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "/api/v1/busca", e.backendPath)
		assert.Contains(t, e.backendQuery, "q=iptu")
	})

	runHTTPTests(t, e.app, []httpTest{
		{name: "unknown resource", method: http.MethodGet, path: "/api/gorio/usuarios", token: geral, wantCode: http.StatusNotFound, wantData: marshalObj(t, errNotFound)},
		{name: "resource of another backend", method: http.MethodGet, path: "/api/gorio/tombamentos", token: validToken(t, "admin"), wantCode: http.StatusNotFound},
		{name: "editor on vagas", method: http.MethodGet, path: "/api/gorio/vagas", token: validToken(t, "editor"), wantCode: http.StatusForbidden},
		{name: "geral on tombamentos", method: http.MethodGet, path: "/api/servicos/tombamentos", token: geral, wantCode: http.StatusForbidden},
		{name: "admin on tombamentos", method: http.MethodGet, path: "/api/servicos/tombamentos", token: validToken(t, "admin"), wantCode: http.StatusOK},
		{name: "page too large", method: http.MethodGet, path: "/api/gorio/vagas?per_page=500", token: geral, wantCode: http.StatusBadRequest},
		{
			name:     "resource is not a slug",
			method:   http.MethodGet,
			path:     "/api/gorio/Vagas",
			token:    geral,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"resource": "only lowercase letters, digits and hyphens are allowed"}`),
		},
		{name: "dot segment as id", method: http.MethodGet, path: "/api/gorio/empresas/..", token: geral, wantCode: http.StatusBadRequest},
		{name: "id with a dot", method: http.MethodGet, path: "/api/gorio/empresas/1.json", token: geral, wantCode: http.StatusBadRequest},
	})

	t.Run("upstream failure", func(t *testing.T) {
		e.backendStatus = http.StatusInternalServerError
		defer func() { e.backendStatus = http.StatusOK }()

		req, rec := newAuthRequest(http.MethodGet, "/api/gorio/vagas", geral)
		e.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, 1, e.logger.count("error"))
	})

	t.Run("upstream not found", func(t *testing.T) {
		e.backendStatus = http.StatusNotFound
		defer func() { e.backendStatus = http.StatusOK }()

		req, rec := newAuthRequest(http.MethodGet, "/api/gorio/empresas/7", geral)
		e.app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
