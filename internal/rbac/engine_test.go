package rbac

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusgate/campusgate/internal/platform/httpx"
)

type stubSubject map[string]struct{}

func (s stubSubject) HasAuthority(name string) bool {
	_, ok := s[name]
	return ok
}

func subjectWith(authorities ...string) stubSubject {
	s := make(stubSubject, len(authorities))
	for _, a := range authorities {
		s[a] = struct{}{}
	}
	return s
}

func TestMatchPattern(t *testing.T) {
	cases := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/", "/", true},
		{"/", "/api", false},
		{"/index", "/index", true},
		{"/css/*", "/css/site.css", true},
		{"/css/*", "/css/a/b.css", false},
		{"/api/**", "/api/v1/students/1", true},
		{"/api/**", "/api", true},
		{"/api/**", "/apiary", false},
		{"management/api/**", "/management/api/v1/students", true},
		{"/**", "/anything/at/all", true},
		{"/**", "/", true},
		{"/index*", "/index.html", true},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, MatchPattern(tc.pattern, tc.path),
			"pattern %q against %q", tc.pattern, tc.path)
	}
}

func specRules() []Rule {
	return []Rule{
		{Pattern: "/", Require: Public()},
		{Pattern: "/api/**", Require: HasRole(RoleStudent)},
		{Pattern: "/management/**", Methods: WriteMethods, Require: HasAuthority(PermStudentWrite)},
		{Pattern: "/management/**", Methods: ReadMethods, Require: HasAnyRole(RoleAdmin, RoleAdminTrainee)},
		{Pattern: "/**", Require: Authenticated()},
	}
}

func TestEngineDecide(t *testing.T) {
	engine := NewEngine(specRules())

	studentAuthorities, err := AuthoritiesFor(RoleStudent)
	require.NoError(t, err)
	student := subjectWith(studentAuthorities...)
	writer := subjectWith(string(PermStudentWrite))

	cases := []struct {
		name    string
		subject Subject
		method  string
		path    string
		want    error
	}{
		{"anonymous landing", nil, http.MethodGet, "/", nil},
		{"anonymous api", nil, http.MethodGet, "/api/x", httpx.ErrUnauthorized},
		{"student api", student, http.MethodGet, "/api/x", nil},
		{"student management delete", student, http.MethodDelete, "/management/x", httpx.ErrForbidden},
		{"writer management delete", writer, http.MethodDelete, "/management/x", nil},
		{"anonymous catch-all", nil, http.MethodGet, "/somewhere", httpx.ErrUnauthorized},
		{"student catch-all", student, http.MethodGet, "/somewhere", nil},
		{"writer management get without role", writer, http.MethodGet, "/management/x", httpx.ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := engine.Decide(tc.subject, tc.method, tc.path)
			if tc.want == nil {
				assert.NoError(t, got)
			} else {
				assert.ErrorIs(t, got, tc.want)
			}
		})
	}
}

func TestEngineFirstMatchWins(t *testing.T) {
	// The narrow public rule must shadow the broader authenticated one.
	engine := NewEngine([]Rule{
		{Pattern: "/docs/**", Require: Public()},
		{Pattern: "/**", Require: Authenticated()},
	})
	assert.NoError(t, engine.Decide(nil, http.MethodGet, "/docs/readme"))
	assert.ErrorIs(t, engine.Decide(nil, http.MethodGet, "/else"), httpx.ErrUnauthorized)
}

func TestEngineDefaultRequiresAuthentication(t *testing.T) {
	engine := NewEngine(nil)
	assert.ErrorIs(t, engine.Decide(nil, http.MethodGet, "/anything"), httpx.ErrUnauthorized)
	assert.NoError(t, engine.Decide(subjectWith(), http.MethodGet, "/anything"))
}

func TestDefaultRulesTable(t *testing.T) {
	engine := NewEngine(DefaultRules())

	adminAuthorities, err := AuthoritiesFor(RoleAdmin)
	require.NoError(t, err)
	traineeAuthorities, err := AuthoritiesFor(RoleAdminTrainee)
	require.NoError(t, err)
	admin := subjectWith(adminAuthorities...)
	trainee := subjectWith(traineeAuthorities...)

	assert.NoError(t, engine.Decide(nil, http.MethodPost, "/login"))
	assert.NoError(t, engine.Decide(nil, http.MethodGet, "/healthz"))
	assert.NoError(t, engine.Decide(trainee, http.MethodGet, "/management/api/v1/students"))
	assert.ErrorIs(t, engine.Decide(trainee, http.MethodDelete, "/management/api/v1/students/1"), httpx.ErrForbidden)
	assert.NoError(t, engine.Decide(admin, http.MethodDelete, "/management/api/v1/students/1"))
	assert.ErrorIs(t, engine.Decide(admin, http.MethodGet, "/api/v1/students/1"), httpx.ErrForbidden)
}
