package rbac

import (
	"strings"

	"github.com/campusgate/campusgate/internal/platform/httpx"
)

type requirementKind int

const (
	requirePublic requirementKind = iota
	requireAuthenticated
	requireAnyAuthority
)

// Requirement is the predicate a matched rule imposes on the subject.
type Requirement struct {
	kind requirementKind
	// authorities the subject must hold at least one of. Role
	// requirements are folded into role markers here.
	authorities []string
}

// Public allows the request without authentication.
func Public() Requirement {
	return Requirement{kind: requirePublic}
}

// Authenticated allows any authenticated subject.
func Authenticated() Requirement {
	return Requirement{kind: requireAuthenticated}
}

// HasRole requires the subject to hold the marker for the given role.
func HasRole(role Role) Requirement {
	return HasAnyRole(role)
}

// HasAnyRole requires at least one of the given role markers.
func HasAnyRole(roles ...Role) Requirement {
	markers := make([]string, len(roles))
	for i, r := range roles {
		markers[i] = RoleMarker(r)
	}
	return Requirement{kind: requireAnyAuthority, authorities: markers}
}

// HasAuthority requires the subject to hold the given authority.
func HasAuthority(authority Permission) Requirement {
	return HasAnyAuthority(authority)
}

// HasAnyAuthority requires at least one of the given authorities.
func HasAnyAuthority(authorities ...Permission) Requirement {
	names := make([]string, len(authorities))
	for i, a := range authorities {
		names[i] = string(a)
	}
	return Requirement{kind: requireAnyAuthority, authorities: names}
}

// Rule binds a path pattern and an optional method set to a
// Requirement. Patterns are ant-style: "*" matches one path segment,
// "**" matches any remaining segments. A nil Methods slice matches
// every method.
type Rule struct {
	Pattern string
	Methods []string
	Require Requirement
}

// Methods shorthand used by rule tables.
var (
	WriteMethods = []string{"DELETE", "POST", "PUT"}
	ReadMethods  = []string{"GET"}
)

// Engine evaluates requests against an ordered rule table. Rules are
// checked in declaration order and the first match wins, so narrower
// rules must appear before broader ones. The table is immutable after
// construction and safe for concurrent use.
type Engine struct {
	rules []Rule
}

// NewEngine builds an Engine from an ordered rule table.
func NewEngine(rules []Rule) *Engine {
	copied := make([]Rule, len(rules))
	copy(copied, rules)
	return &Engine{rules: copied}
}

// Decide evaluates the subject against the rule matching the request.
// It returns nil on Allow, httpx.ErrUnauthorized when authentication is
// missing and httpx.ErrForbidden when the subject lacks the required
// authority. Requests matching no rule require authentication.
func (e *Engine) Decide(subject Subject, method, path string) error {
	for _, rule := range e.rules {
		if !matchMethod(rule.Methods, method) {
			continue
		}
		if !MatchPattern(rule.Pattern, path) {
			continue
		}
		return evaluate(rule.Require, subject)
	}
	return evaluate(Authenticated(), subject)
}

func evaluate(req Requirement, subject Subject) error {
	switch req.kind {
	case requirePublic:
		return nil
	case requireAuthenticated:
		if subject == nil {
			return httpx.ErrUnauthorized
		}
		return nil
	default:
		if subject == nil {
			return httpx.ErrUnauthorized
		}
		for _, name := range req.authorities {
			if subject.HasAuthority(name) {
				return nil
			}
		}
		return httpx.ErrForbidden
	}
}

func matchMethod(methods []string, method string) bool {
	if len(methods) == 0 {
		return true
	}
	for _, m := range methods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

// MatchPattern reports whether an ant-style pattern matches a request
// path. Leading slashes are ignored on both sides so "management/api/**"
// and "/management/api/**" behave identically.
func MatchPattern(pattern, path string) bool {
	return matchSegments(splitPath(pattern), splitPath(path))
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func matchSegments(pattern, path []string) bool {
	if len(pattern) == 0 {
		return len(path) == 0
	}
	if pattern[0] == "**" {
		// "**" may swallow zero or more segments.
		for i := 0; i <= len(path); i++ {
			if matchSegments(pattern[1:], path[i:]) {
				return true
			}
		}
		return false
	}
	if len(path) == 0 {
		return false
	}
	if !matchSegment(pattern[0], path[0]) {
		return false
	}
	return matchSegments(pattern[1:], path[1:])
}

func matchSegment(pattern, segment string) bool {
	if pattern == "*" {
		return true
	}
	// Support a trailing wildcard within a segment, e.g. "index*".
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(segment, strings.TrimSuffix(pattern, "*"))
	}
	return pattern == segment
}
