package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/campusgate/campusgate/internal/platform/httpx"
	"github.com/campusgate/campusgate/internal/rbac"
	"github.com/campusgate/campusgate/internal/users"
)

type stubStore struct {
	records map[string]users.User
}

func (s *stubStore) FindByUsername(ctx context.Context, username string) (*users.User, error) {
	user, ok := s.records[username]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return &user, nil
}

func newTestVerifier(t *testing.T, records ...users.User) *Verifier {
	t.Helper()
	hasher, err := NewHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("new hasher: %v", err)
	}
	store := &stubStore{records: make(map[string]users.User)}
	for _, r := range records {
		store.records[r.Username] = r
	}
	return NewVerifier(store, hasher)
}

func testUser(t *testing.T, username, password string, role rbac.Role) users.User {
	t.Helper()
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return users.User{Username: username, PasswordHash: string(digest), Role: role, Enabled: true}
}

func TestVerifierSuccess(t *testing.T) {
	verifier := newTestVerifier(t, testUser(t, "annasmith", "pass", rbac.RoleStudent))

	principal, err := verifier.Verify(context.Background(), "annasmith", "pass")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	want, err := rbac.AuthoritiesFor(rbac.RoleStudent)
	if err != nil {
		t.Fatalf("authorities: %v", err)
	}
	if !reflect.DeepEqual(principal.Authorities(), want) {
		t.Fatalf("expected authorities %v, got %v", want, principal.Authorities())
	}
}

func TestVerifierRejections(t *testing.T) {
	hasher, err := NewHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("new hasher: %v", err)
	}
	digest, err := hasher.Hash("pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	cases := []struct {
		name     string
		user     users.User
		username string
		password string
		want     error
	}{
		{
			name:     "unknown user",
			user:     users.User{Username: "linda", PasswordHash: digest, Role: rbac.RoleAdmin, Enabled: true},
			username: "nobody",
			password: "pass",
			want:     ErrUnknownUser,
		},
		{
			name:     "wrong password",
			user:     users.User{Username: "linda", PasswordHash: digest, Role: rbac.RoleAdmin, Enabled: true},
			username: "linda",
			password: "wrong",
			want:     ErrBadCredentials,
		},
		{
			name:     "disabled",
			user:     users.User{Username: "linda", PasswordHash: digest, Role: rbac.RoleAdmin},
			username: "linda",
			password: "pass",
			want:     ErrAccountDisabled,
		},
		{
			name:     "locked",
			user:     users.User{Username: "linda", PasswordHash: digest, Role: rbac.RoleAdmin, Enabled: true, AccountLocked: true},
			username: "linda",
			password: "pass",
			want:     ErrAccountLocked,
		},
		{
			name:     "account expired",
			user:     users.User{Username: "linda", PasswordHash: digest, Role: rbac.RoleAdmin, Enabled: true, AccountExpired: true},
			username: "linda",
			password: "pass",
			want:     ErrAccountExpired,
		},
		{
			name:     "credentials expired",
			user:     users.User{Username: "linda", PasswordHash: digest, Role: rbac.RoleAdmin, Enabled: true, CredentialsExpired: true},
			username: "linda",
			password: "pass",
			want:     ErrCredentialsExpired,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &stubStore{records: map[string]users.User{tc.user.Username: tc.user}}
			verifier := NewVerifier(store, hasher)
			_, err := verifier.Verify(context.Background(), tc.username, tc.password)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestBasicSchemeExtraction(t *testing.T) {
	verifier := newTestVerifier(t, testUser(t, "linda", "pass", rbac.RoleAdmin))
	scheme := NewBasicScheme(verifier)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/students/1", nil)
	if _, err := scheme.Authenticate(r); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials without header, got %v", err)
	}

	r.SetBasicAuth("linda", "pass")
	principal, err := scheme.Authenticate(r)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if principal.Username() != "linda" {
		t.Fatalf("expected linda, got %s", principal.Username())
	}
}

func TestFormSchemeExtraction(t *testing.T) {
	verifier := newTestVerifier(t, testUser(t, "tom", "pass", rbac.RoleAdminTrainee))
	scheme := NewFormScheme(verifier, "", "")

	form := url.Values{}
	form.Set("username", "tom")
	form.Set("password", "pass")
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	principal, err := scheme.Authenticate(r)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if principal.Username() != "tom" {
		t.Fatalf("expected tom, got %s", principal.Username())
	}

	// GET requests never carry form credentials.
	get := httptest.NewRequest(http.MethodGet, "/login", nil)
	if _, err := scheme.Authenticate(get); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestBearerSchemeExtraction(t *testing.T) {
	service, err := NewTokenService(testSigningKey, time.Hour)
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	scheme := NewBearerScheme(service)

	token, err := service.Issue(NewPrincipal("annasmith", []string{"ROLE_STUDENT"}))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/v1/students/1", nil)
	if _, err := scheme.Authenticate(r); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials without header, got %v", err)
	}

	r.Header.Set("Authorization", "Bearer "+token)
	principal, err := scheme.Authenticate(r)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if principal.Username() != "annasmith" {
		t.Fatalf("expected annasmith, got %s", principal.Username())
	}

	r.Header.Set("Authorization", "Bearer not-a-token")
	if _, err := scheme.Authenticate(r); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestPipelineFallsThroughSchemes(t *testing.T) {
	verifier := newTestVerifier(t, testUser(t, "linda", "pass", rbac.RoleAdmin))
	service, err := NewTokenService(testSigningKey, time.Hour)
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	pipeline := NewPipeline(NewBasicScheme(verifier), NewBearerScheme(service))

	// Bearer credentials skip the basic scheme.
	token, err := service.Issue(NewPrincipal("annasmith", []string{"ROLE_STUDENT"}))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	r := httptest.NewRequest(http.MethodGet, "/api/v1/students/1", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	principal, scheme, err := pipeline.Authenticate(r)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if scheme != "bearer" || principal.Username() != "annasmith" {
		t.Fatalf("expected bearer/annasmith, got %s/%v", scheme, principal)
	}

	// No credentials at all is anonymous, not an error.
	anon := httptest.NewRequest(http.MethodGet, "/", nil)
	principal, scheme, err = pipeline.Authenticate(anon)
	if err != nil || principal != nil || scheme != "" {
		t.Fatalf("expected anonymous result, got %v/%s/%v", principal, scheme, err)
	}

	// Presented-but-bad credentials are terminal.
	bad := httptest.NewRequest(http.MethodGet, "/", nil)
	bad.SetBasicAuth("linda", "wrong")
	if _, _, err = pipeline.Authenticate(bad); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
}
