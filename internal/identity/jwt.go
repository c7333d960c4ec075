package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the JWT payload of a session.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Email  string `json:"email,omitempty"`
	Demo   bool   `json:"demo,omitempty"`
}

// DemoAgent is the identity every demo login receives.
type DemoAgent struct {
	Enabled bool
	UserID  uuid.UUID
	Email   string
}

// JWTConfig configures a JWTProvider.
type JWTConfig struct {
	Secret []byte
	TTL    time.Duration
	Demo   DemoAgent
	Now    func() time.Time
}

// JWTProvider is a Provider backed by an AgentStore and HS256 tokens.
type JWTProvider struct {
	agents AgentStore
	secret []byte
	ttl    time.Duration
	demo   DemoAgent
	now    func() time.Time
}

var _ Provider = (*JWTProvider)(nil)

// NewJWTProvider creates a provider. agents may be nil when only the demo
// login is used.
func NewJWTProvider(agents AgentStore, cfg JWTConfig) *JWTProvider {
	p := &JWTProvider{
		agents: agents,
		secret: cfg.Secret,
		ttl:    cfg.TTL,
		demo:   cfg.Demo,
		now:    cfg.Now,
	}
	if p.ttl <= 0 {
		p.ttl = time.Hour
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// IssueSession checks cred and returns the session with its signed token.
func (p *JWTProvider) IssueSession(ctx context.Context, cred Credential) (Session, string, error) {
	sess, err := p.resolve(ctx, cred)
	if err != nil {
		return Session{}, "", &IdentityError{Op: "issue session", Err: err}
	}

	now := p.now()
	sess.ExpiresAt = now.Add(p.ttl).Truncate(time.Second)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
		UserID: sess.UserID.String(),
		Email:  sess.Email,
		Demo:   sess.Demo,
	})

	signed, err := token.SignedString(p.secret)
	if err != nil {
		return Session{}, "", &IdentityError{Op: "sign token", Err: err}
	}
	return sess, signed, nil
}

func (p *JWTProvider) resolve(ctx context.Context, cred Credential) (Session, error) {
	if cred.Demo {
		if !p.demo.Enabled {
			return Session{}, ErrDemoDisabled
		}
		return Session{UserID: p.demo.UserID, Email: p.demo.Email, Demo: true}, nil
	}

	email := strings.ToLower(strings.TrimSpace(cred.Email))
	if email == "" || cred.Password == "" || p.agents == nil {
		return Session{}, ErrInvalidCredentials
	}

	agent, err := p.agents.AgentByEmail(ctx, email)
	if errors.Is(err, ErrAgentNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if !CheckPassword(agent.PasswordHash, cred.Password) {
		return Session{}, ErrInvalidCredentials
	}
	return Session{UserID: agent.ID, Email: agent.Email}, nil
}

// Authenticate validates a session token.
func (p *JWTProvider) Authenticate(_ context.Context, tokenString string) (Session, error) {
	if tokenString == "" {
		return Session{}, &IdentityError{Op: "authenticate", Err: ErrNoSession}
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Session{}, &IdentityError{Op: "authenticate", Err: ErrTokenExpired}
		}
		return Session{}, &IdentityError{Op: "authenticate", Err: ErrInvalidToken}
	}
	if !token.Valid {
		return Session{}, &IdentityError{Op: "authenticate", Err: ErrInvalidToken}
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Session{}, &IdentityError{Op: "authenticate", Err: ErrInvalidToken}
	}

	sess := Session{UserID: id, Email: claims.Email, Demo: claims.Demo}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}
