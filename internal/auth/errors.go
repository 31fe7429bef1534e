package auth

import (
	"errors"
	"fmt"
)

// Rejection reasons. These are for internal diagnostics only: every
// authentication failure collapses to the same client-visible response
// so callers cannot probe which step failed.
var (
	// ErrMissingCredentials means no credentials were presented for a
	// scheme. The pipeline treats it as "try the next scheme".
	ErrMissingCredentials = errors.New("auth: missing credentials")

	ErrUnknownUser        = errors.New("auth: unknown user")
	ErrBadCredentials     = errors.New("auth: bad credentials")
	ErrAccountDisabled    = errors.New("auth: account disabled")
	ErrAccountLocked      = errors.New("auth: account locked")
	ErrAccountExpired     = errors.New("auth: account expired")
	ErrCredentialsExpired = errors.New("auth: credentials expired")

	ErrInvalidToken   = errors.New("auth: invalid token")
	ErrTokenMalformed = fmt.Errorf("%w: malformed", ErrInvalidToken)
	ErrTokenSignature = fmt.Errorf("%w: bad signature", ErrInvalidToken)
	ErrTokenExpired   = fmt.Errorf("%w: expired", ErrInvalidToken)
)
