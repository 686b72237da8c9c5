package access

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasAccess(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name  string
		route string
		role  Role
		want  bool
	}{
		{name: "deny unauthenticated", route: "/gorio/courses", role: RoleNone, want: false},
		{name: "exact match", route: "/gorio/courses", role: RoleGeral, want: true},
		{name: "exact match, wrong role", route: "/gorio/courses", role: RoleEditor, want: false},
		{name: "wildcard match", route: "/gorio/courses/course/42", role: RoleGeral, want: true},
		{name: "wildcard match, wrong role", route: "/gorio/courses/course/42", role: RoleEditor, want: false},
		{name: "wildcard base", route: "/gorio/courses/course", role: RoleAdmin, want: true},
		{name: "wildcard needs a segment boundary", route: "/gorio/courses/courses", role: RoleAdmin, want: false},
		{name: "default deny", route: "/totally/unknown/route", role: RoleAdmin, want: false},
		{name: "editor on services", route: "/servicos-municipais/servicos/servico/7", role: RoleEditor, want: true},
		{name: "admin only", route: "/servicos-municipais/tombamentos", role: RoleGeral, want: false},
		{name: "dot segments leave the wildcard", route: "/gorio/courses/course/../../../admin/users", role: RoleGeral, want: false},
		{name: "dot segments resolved", route: "/admin/../gorio/courses", role: RoleGeral, want: true},
		{name: "repeated slashes", route: "/gorio//courses", role: RoleGeral, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.HasAccess(tt.route, tt.role); got != tt.want {
				t.Errorf("HasAccess(%q, %q) = %v, want %v", tt.route, tt.role, got, tt.want)
			}
		})
	}
}

func TestExactWinsOverWildcard(t *testing.T) {
	policy, err := NewPolicy([]Rule{
		{Route: "/reports/*", Roles: []Role{RoleAdmin, RoleGeral}},
		{Route: "/reports/public", Roles: []Role{RoleEditor}},
	}, nil, nil)
	require.NoError(t, err)

	assert.True(t, policy.HasAccess("/reports/public", RoleEditor))
	assert.False(t, policy.HasAccess("/reports/public", RoleAdmin))
	assert.True(t, policy.HasAccess("/reports/monthly", RoleAdmin))
}

func TestFirstWildcardWins(t *testing.T) {
	policy, err := NewPolicy([]Rule{
		{Route: "/a/*", Roles: []Role{RoleAdmin}},
		{Route: "/a/b/*", Roles: []Role{RoleEditor}},
	}, nil, nil)
	require.NoError(t, err)

	assert.True(t, policy.HasAccess("/a/b/c", RoleAdmin))
	assert.False(t, policy.HasAccess("/a/b/c", RoleEditor))
}

func TestIsPublic(t *testing.T) {
	policy := DefaultPolicy()

	assert.True(t, policy.IsPublic("/health"))
	assert.True(t, policy.IsPublic("/_next/static/chunks/main.js"))
	assert.False(t, policy.IsPublic("/gorio/courses"))
	assert.False(t, policy.IsPublic("/health/deep"))
	assert.False(t, policy.IsPublic("/_next/../admin/users"))
	assert.False(t, policy.IsPublic("/_next/static/../../gorio/courses"))
}

func TestCleanRoute(t *testing.T) {
	tests := []struct {
		route string
		want  string
	}{
		{route: "", want: "/"},
		{route: "/", want: "/"},
		{route: "gorio/courses", want: "/gorio/courses"},
		{route: "/gorio/courses/", want: "/gorio/courses"},
		{route: "/_next/../admin/users", want: "/admin/users"},
		{route: "/../../etc", want: "/etc"},
		{route: "/a/./b//c", want: "/a/b/c"},
	}
	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanRoute(tt.route))
		})
	}
}

func TestMenu(t *testing.T) {
	policy := DefaultPolicy()

	titles := func(items []MenuItem) []string {
		var out []string
		for _, item := range items {
			out = append(out, item.Title)
		}
		return out
	}

	assert.Equal(t, []string{"Cursos", "Empregabilidade", "Oportunidades MEI", "Serviços municipais", "Tombamentos"},
		titles(policy.Menu(RoleAdmin)))
	assert.Equal(t, []string{"Serviços municipais"}, titles(policy.Menu(RoleEditor)))
	assert.Empty(t, policy.Menu(RoleNone))
}

func TestLoadPolicy(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			name: "valid",
			yaml: "rules:\n  - route: /x/*\n    roles: [GO:Admin]\n",
		},
		{
			name:    "unknown role",
			yaml:    "rules:\n  - route: /x\n    roles: [root]\n",
			wantErr: errUnknownRole,
		},
		{
			name:    "duplicate route",
			yaml:    "rules:\n  - route: /x\n    roles: [admin]\n  - route: /x\n    roles: [geral]\n",
			wantErr: errDuplicate,
		},
		{
			name:    "relative route",
			yaml:    "rules:\n  - route: x\n    roles: [admin]\n",
			wantErr: errRelativePath,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy, err := LoadPolicy(strings.NewReader(tt.yaml))
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.True(t, policy.HasAccess("/x/y", RoleAdmin))
			assert.Equal(t, []Rule{{Route: "/x/*", Roles: []Role{RoleAdmin}}}, policy.Rules())
		})
	}

	_, err := LoadPolicy(strings.NewReader("routes: []\n"))
	assert.Error(t, err, "unknown fields are rejected")
}

func TestHighestRole(t *testing.T) {
	tests := []struct {
		roles []string
		want  Role
	}{
		{roles: nil, want: RoleNone},
		{roles: []string{"offline_access", "uma_authorization"}, want: RoleNone},
		{roles: []string{"go:editor", "go:geral"}, want: RoleGeral},
		{roles: []string{"editor", "GO:ADMIN", "geral"}, want: RoleAdmin},
	}
	for _, tt := range tests {
		if got := HighestRole(tt.roles); got != tt.want {
			t.Errorf("HighestRole(%v) = %q, want %q", tt.roles, got, tt.want)
		}
	}
}
