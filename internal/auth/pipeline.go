package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/campusgate/campusgate/internal/platform/httpx"
	"github.com/campusgate/campusgate/internal/rbac"
	"github.com/campusgate/campusgate/internal/users"
)

// Scheme authenticates one credential style. A scheme that finds no
// credentials of its kind returns ErrMissingCredentials so the pipeline
// can try the next one; any other error is terminal for the request.
type Scheme interface {
	Name() string
	Authenticate(r *http.Request) (*Principal, error)
}

// Verifier resolves username/password credentials to a Principal. It is
// shared by the basic and form schemes and by the login handler.
type Verifier struct {
	store  users.Store
	hasher *Hasher
	// dummy digest compared against when the user does not exist, so
	// unknown-user and wrong-password paths cost the same.
	dummy string
}

// NewVerifier constructs a Verifier over a registry and hasher.
func NewVerifier(store users.Store, hasher *Hasher) *Verifier {
	dummy, err := hasher.Hash("campusgate-dummy-credential")
	if err != nil {
		// bcrypt only fails on out-of-range cost, which NewHasher rejects.
		dummy = string(make([]byte, bcrypt.MaxCost))
	}
	return &Verifier{store: store, hasher: hasher, dummy: dummy}
}

// Verify authenticates a username/password pair. The distinct failure
// reasons feed diagnostics only; callers must collapse them before
// anything reaches a client.
func (v *Verifier) Verify(ctx context.Context, username, password string) (*Principal, error) {
	user, err := v.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			v.hasher.Verify(password, v.dummy)
			return nil, ErrUnknownUser
		}
		return nil, err
	}
	if !v.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrBadCredentials
	}
	switch {
	case !user.Enabled:
		return nil, ErrAccountDisabled
	case user.AccountLocked:
		return nil, ErrAccountLocked
	case user.AccountExpired:
		return nil, ErrAccountExpired
	case user.CredentialsExpired:
		return nil, ErrCredentialsExpired
	}
	authorities, err := rbac.AuthoritiesFor(user.Role)
	if err != nil {
		return nil, err
	}
	return NewPrincipal(user.Username, authorities), nil
}

// BasicScheme reads credentials from an Authorization: Basic header.
type BasicScheme struct {
	verifier *Verifier
}

// NewBasicScheme constructs a BasicScheme.
func NewBasicScheme(verifier *Verifier) *BasicScheme {
	return &BasicScheme{verifier: verifier}
}

// Name identifies the scheme in logs and metrics.
func (s *BasicScheme) Name() string { return "basic" }

// Authenticate extracts and verifies basic credentials.
func (s *BasicScheme) Authenticate(r *http.Request) (*Principal, error) {
	username, password, ok := r.BasicAuth()
	if !ok {
		return nil, ErrMissingCredentials
	}
	return s.verifier.Verify(r.Context(), username, password)
}

// FormScheme reads credentials from a form-encoded request body. Field
// names are configurable; defaults match the original login form.
type FormScheme struct {
	verifier      *Verifier
	usernameField string
	passwordField string
}

// NewFormScheme constructs a FormScheme. Empty field names fall back to
// "username" and "password".
func NewFormScheme(verifier *Verifier, usernameField, passwordField string) *FormScheme {
	if usernameField == "" {
		usernameField = "username"
	}
	if passwordField == "" {
		passwordField = "password"
	}
	return &FormScheme{verifier: verifier, usernameField: usernameField, passwordField: passwordField}
}

// Name identifies the scheme in logs and metrics.
func (s *FormScheme) Name() string { return "form" }

// Authenticate extracts and verifies form credentials.
func (s *FormScheme) Authenticate(r *http.Request) (*Principal, error) {
	if r.Method != http.MethodPost {
		return nil, ErrMissingCredentials
	}
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/x-www-form-urlencoded") &&
		!strings.HasPrefix(contentType, "multipart/form-data") {
		return nil, ErrMissingCredentials
	}
	if err := r.ParseForm(); err != nil {
		return nil, ErrMissingCredentials
	}
	username := r.PostFormValue(s.usernameField)
	password := r.PostFormValue(s.passwordField)
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	return s.verifier.Verify(r.Context(), username, password)
}

// BearerScheme reads a token from an Authorization: Bearer header and
// delegates to the token service.
type BearerScheme struct {
	tokens *TokenService
}

// NewBearerScheme constructs a BearerScheme.
func NewBearerScheme(tokens *TokenService) *BearerScheme {
	return &BearerScheme{tokens: tokens}
}

// Name identifies the scheme in logs and metrics.
func (s *BearerScheme) Name() string { return "bearer" }

// Authenticate extracts and validates a bearer token.
func (s *BearerScheme) Authenticate(r *http.Request) (*Principal, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, ErrMissingCredentials
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" {
		return nil, ErrMissingCredentials
	}
	return s.tokens.Validate(token)
}

// Pipeline tries each configured scheme in order until one resolves a
// principal or rejects presented credentials. Requests carrying no
// recognizable credentials come back as (nil, "", nil): anonymous, left
// for the authorization engine to judge.
type Pipeline struct {
	schemes []Scheme
}

// NewPipeline constructs a Pipeline over an ordered scheme list.
func NewPipeline(schemes ...Scheme) *Pipeline {
	return &Pipeline{schemes: schemes}
}

// Authenticate runs the pipeline for one request. The returned scheme
// name identifies which scheme resolved or rejected the request.
func (p *Pipeline) Authenticate(r *http.Request) (*Principal, string, error) {
	for _, scheme := range p.schemes {
		principal, err := scheme.Authenticate(r)
		if errors.Is(err, ErrMissingCredentials) {
			continue
		}
		if err != nil {
			return nil, scheme.Name(), err
		}
		return principal, scheme.Name(), nil
	}
	return nil, "", nil
}
