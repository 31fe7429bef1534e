package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/campusgate/campusgate/internal/platform/httpx"
	"github.com/campusgate/campusgate/internal/rbac"
)

// Event is a security audit record for one authentication attempt. The
// password never appears here.
type Event struct {
	Username   string    `json:"username,omitempty"`
	Scheme     string    `json:"scheme,omitempty"`
	Outcome    string    `json:"outcome"`
	Reason     string    `json:"reason,omitempty"`
	RemoteAddr string    `json:"remote_addr,omitempty"`
	At         time.Time `json:"at"`
}

// Audit outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
)

// AuditSink receives authentication events. Implementations must not
// block the request path; failures are logged and dropped.
type AuditSink interface {
	RecordAuthEvent(ctx context.Context, event Event) error
}

// Metrics abstracts the counters the middleware feeds.
type Metrics interface {
	ObserveAuthAttempt(scheme, outcome string)
	ObserveAuthzDenial(reason string)
}

// Middleware authenticates each request through the pipeline and then
// enforces the authorization engine's decision before the downstream
// handler runs. With a token service attached it also issues a bearer
// token after a successful password authentication.
type Middleware struct {
	Pipeline *Pipeline
	Engine   *rbac.Engine
	// Tokens enables token issuance on password authentication. Nil
	// disables the side effect.
	Tokens  *TokenService
	Logger  *slog.Logger
	Metrics Metrics
	Audit   AuditSink
}

// Handler wraps next with authentication and authorization.
func (m Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, scheme, err := m.Pipeline.Authenticate(r)
		if err != nil {
			// Credentials were presented and rejected. The specific
			// reason stays internal; the client sees a generic 401.
			m.observeAuth(scheme, OutcomeRejected)
			m.audit(r, Event{Scheme: scheme, Outcome: OutcomeRejected, Reason: err.Error()})
			m.log(r, slog.LevelWarn, "authentication rejected",
				slog.String("scheme", scheme), slog.Any("reason", err))
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}

		ctx := r.Context()
		var subject rbac.Subject
		if principal != nil {
			subject = principal
			ctx = WithPrincipal(ctx, principal)
			m.observeAuth(scheme, OutcomeSuccess)
			m.audit(r, Event{Username: principal.Username(), Scheme: scheme, Outcome: OutcomeSuccess})
			if m.Tokens != nil && scheme != "" && scheme != "bearer" {
				token, err := m.Tokens.Issue(principal)
				if err != nil {
					m.log(r, slog.LevelError, "token issuance failed", slog.Any("error", err))
				} else {
					w.Header().Set("Authorization", "Bearer "+token)
				}
			}
		}

		if err := m.Engine.Decide(subject, r.Method, r.URL.Path); err != nil {
			reason := "forbidden"
			if errors.Is(err, httpx.ErrUnauthorized) {
				reason = "unauthenticated"
			}
			if m.Metrics != nil {
				m.Metrics.ObserveAuthzDenial(reason)
			}
			m.log(r, slog.LevelInfo, "request denied",
				slog.String("reason", reason), slog.String("path", r.URL.Path))
			httpx.RespondError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m Middleware) observeAuth(scheme, outcome string) {
	if m.Metrics != nil && scheme != "" {
		m.Metrics.ObserveAuthAttempt(scheme, outcome)
	}
}

func (m Middleware) audit(r *http.Request, event Event) {
	if m.Audit == nil {
		return
	}
	event.RemoteAddr = r.RemoteAddr
	event.At = time.Now().UTC()
	if err := m.Audit.RecordAuthEvent(r.Context(), event); err != nil {
		m.log(r, slog.LevelWarn, "audit record failed", slog.Any("error", err))
	}
}

func (m Middleware) log(r *http.Request, level slog.Level, msg string, attrs ...slog.Attr) {
	if m.Logger == nil {
		return
	}
	m.Logger.LogAttrs(r.Context(), level, msg, attrs...)
}
