// Package users provides the user registry consumed by authentication.
package users

import (
	"context"

	"github.com/campusgate/campusgate/internal/rbac"
)

// User is a registry record. PasswordHash is an opaque bcrypt digest;
// the plaintext never appears here. All four status flags must hold for
// the account to authenticate.
type User struct {
	Username           string
	PasswordHash       string
	Role               rbac.Role
	Enabled            bool
	AccountExpired     bool
	AccountLocked      bool
	CredentialsExpired bool
}

// Store looks up registry records. Username matching is exact and
// case-sensitive; no normalization happens at this layer. A missing
// user is reported as httpx.ErrNotFound and is a normal outcome.
type Store interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
}
