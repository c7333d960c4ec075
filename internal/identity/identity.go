// Package identity issues and validates agent sessions.
//
// A session is an HS256 JWT carrying the agent id. Agents sign in with an
// email and a password checked against bcrypt hashes, or, when enabled,
// through the demo login which maps every caller to one fixed agent.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("session expired")
	ErrDemoDisabled       = errors.New("demo login disabled")
	ErrAgentNotFound      = errors.New("agent not found")
	ErrNoSession          = errors.New("no session")
)

// IdentityError wraps an identity failure with the operation that failed.
type IdentityError struct {
	Op  string
	Err error
}

func (e *IdentityError) Error() string {
	return fmt.Sprintf("identity %s: %v", e.Op, e.Err)
}

func (e *IdentityError) Unwrap() error {
	return e.Err
}

// Session is an authenticated agent.
type Session struct {
	UserID    uuid.UUID `json:"userId"`
	Email     string    `json:"email"`
	Demo      bool      `json:"demo"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Credential is a sign-in attempt. Demo ignores email and password.
type Credential struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Demo     bool   `json:"demo"`
}

// Provider issues sessions for credentials and validates session tokens.
type Provider interface {
	IssueSession(ctx context.Context, cred Credential) (Session, string, error)
	Authenticate(ctx context.Context, token string) (Session, error)
}

// Agent is a stored sign-in identity.
type Agent struct {
	ID           uuid.UUID
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// AgentStore looks up agents by email. Lookups for unknown emails return
// ErrAgentNotFound.
type AgentStore interface {
	AgentByEmail(ctx context.Context, email string) (Agent, error)
	InsertAgent(ctx context.Context, a Agent) error
}

type ctxKey struct{}

// ContextWithSession attaches s to ctx.
func ContextWithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// SessionFromContext returns the session attached by ContextWithSession.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}
