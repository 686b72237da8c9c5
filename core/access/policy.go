// Package access holds the console's route access policy and the session guard states.
package access

import (
	"bytes"
	_ "embed"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const wildcardSuffix = "/*"

//go:embed policy.yaml
var defaultPolicy []byte

var (
	errEmptyRoute   = errors.New("empty route")
	errUnknownRole  = errors.New("unknown role")
	errDuplicate    = errors.New("duplicate route")
	errRelativePath = errors.New("route must start with /")
)

type (
	// Rule grants access to Route to the listed roles.
	// Route is an exact path or a base path followed by "/*".
	Rule struct {
		Route string `yaml:"route"`
		Roles []Role `yaml:"roles"`
	}

	MenuItem struct {
		Title string `yaml:"title" json:"title"`
		URL   string `yaml:"url" json:"url"`
	}

	policyFile struct {
		Public []string   `yaml:"public"`
		Rules  []Rule     `yaml:"rules"`
		Menu   []MenuItem `yaml:"menu"`
	}

	// Policy is immutable once built and safe for concurrent use.
	Policy struct {
		exact    map[string][]Role
		wildcard []Rule // Route holds the base path
		public   []string
		menu     []MenuItem
	}
)

// NewPolicy validates rules and builds a Policy. public routes follow the same syntax as rules.
func NewPolicy(rules []Rule, public []string, menu []MenuItem) (*Policy, error) {
	p := &Policy{
		exact:  make(map[string][]Role, len(rules)),
		public: append([]string(nil), public...),
		menu:   append([]MenuItem(nil), menu...),
	}
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		route := strings.TrimSpace(r.Route)
		if err := checkRoute(route); err != nil {
			return nil, err
		}
		if seen[route] {
			return nil, errors.Wrap(errDuplicate, route)
		}
		seen[route] = true

		roles := make([]Role, 0, len(r.Roles))
		for _, s := range r.Roles {
			role, ok := ParseRole(string(s))
			if !ok {
				return nil, errors.Wrapf(errUnknownRole, "%s: %q", route, s)
			}
			roles = append(roles, role)
		}

		if strings.HasSuffix(route, wildcardSuffix) {
			p.wildcard = append(p.wildcard, Rule{Route: strings.TrimSuffix(route, wildcardSuffix), Roles: roles})
		} else {
			p.exact[route] = roles
		}
	}
	for _, route := range p.public {
		if err := checkRoute(route); err != nil {
			return nil, errors.Wrap(err, "public")
		}
	}
	return p, nil
}

func checkRoute(route string) error {
	if route == "" {
		return errEmptyRoute
	}
	if !strings.HasPrefix(route, "/") {
		return errors.Wrap(errRelativePath, route)
	}
	return nil
}

// LoadPolicy reads a policy in the YAML format of the embedded default.
func LoadPolicy(r io.Reader) (*Policy, error) {
	var pf policyFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&pf); err != nil {
		return nil, errors.Wrap(err, "decoding policy")
	}
	return NewPolicy(pf.Rules, pf.Public, pf.Menu)
}

func LoadPolicyFile(file string) (*Policy, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, errors.Wrap(err, "opening policy file")
	}
	//goland:noinspection GoUnhandledErrorResult
	defer f.Close()
	return LoadPolicy(f)
}

// DefaultPolicy returns the policy shipped with the binary.
func DefaultPolicy() *Policy {
	p, err := LoadPolicy(bytes.NewReader(defaultPolicy))
	if err != nil {
		panic(err)
	}
	return p
}

// HasAccess reports whether role may open route. Unauthenticated users never have access,
// exact routes win over wildcards and unknown routes are denied.
// Dot segments in route are resolved before matching.
func (p *Policy) HasAccess(route string, role Role) bool {
	if role == RoleNone {
		return false
	}
	route = CleanRoute(route)
	if roles, ok := p.exact[route]; ok {
		return hasRole(roles, role)
	}
	for _, r := range p.wildcard {
		if matchBase(r.Route, route) {
			return hasRole(r.Roles, role)
		}
	}
	return false
}

// IsPublic reports whether route is served without a session.
func (p *Policy) IsPublic(route string) bool {
	route = CleanRoute(route)
	for _, pub := range p.public {
		if strings.HasSuffix(pub, wildcardSuffix) {
			if matchBase(strings.TrimSuffix(pub, wildcardSuffix), route) {
				return true
			}
		} else if pub == route {
			return true
		}
	}
	return false
}

// Menu returns the menu entries role can open.
func (p *Policy) Menu(role Role) []MenuItem {
	items := make([]MenuItem, 0, len(p.menu))
	for _, item := range p.menu {
		if p.HasAccess(item.URL, role) {
			items = append(items, item)
		}
	}
	return items
}

// Rules returns a copy of the rules, sorted exact routes first and then wildcards in order.
func (p *Policy) Rules() []Rule {
	routes := make([]string, 0, len(p.exact))
	for route := range p.exact {
		routes = append(routes, route)
	}
	sort.Strings(routes)

	rules := make([]Rule, 0, len(p.exact)+len(p.wildcard))
	for _, route := range routes {
		rules = append(rules, Rule{Route: route, Roles: append([]Role(nil), p.exact[route]...)})
	}
	for _, r := range p.wildcard {
		rules = append(rules, Rule{Route: r.Route + wildcardSuffix, Roles: append([]Role(nil), r.Roles...)})
	}
	return rules
}

// CleanRoute returns the canonical form of route: rooted, without dot segments, repeated
// or trailing slashes.
func CleanRoute(route string) string {
	return path.Clean("/" + route)
}

// matchBase matches the base itself and any path below it, on a segment boundary.
func matchBase(base, route string) bool {
	if base == "" {
		return true
	}
	return route == base || strings.HasPrefix(route, base+"/")
}

func hasRole(roles []Role, role Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
