package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/leads/internal/identity"
	"github.com/JonMunkholm/leads/internal/store/memory"
)

var secret = []byte("super-secret")

func newProvider(t *testing.T, now func() time.Time) (*identity.JWTProvider, identity.Agent) {
	t.Helper()

	agents := memory.NewAgents()
	agent, err := identity.RegisterAgent(context.Background(), agents, "Agent@Example.com", "correct-horse")
	require.NoError(t, err)

	p := identity.NewJWTProvider(agents, identity.JWTConfig{
		Secret: secret,
		TTL:    time.Hour,
		Demo: identity.DemoAgent{
			Enabled: true,
			UserID:  uuid.MustParse("00000000-0000-0000-0000-000000000001"),
			Email:   "demo@example.com",
		},
		Now: now,
	})
	return p, agent
}

func TestIssueAndAuthenticate_Password(t *testing.T) {
	t.Parallel()

	p, agent := newProvider(t, nil)
	ctx := context.Background()

	sess, token, err := p.IssueSession(ctx, identity.Credential{Email: "agent@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, agent.ID, sess.UserID)
	assert.False(t, sess.Demo)
	assert.NotEmpty(t, token)

	got, err := p.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, agent.ID, got.UserID)
	assert.Equal(t, "agent@example.com", got.Email)
	assert.WithinDuration(t, sess.ExpiresAt, got.ExpiresAt, time.Second)
}

func TestIssueSession_WrongPassword(t *testing.T) {
	t.Parallel()

	p, _ := newProvider(t, nil)

	_, _, err := p.IssueSession(context.Background(), identity.Credential{Email: "agent@example.com", Password: "nope-nope"})
	require.ErrorIs(t, err, identity.ErrInvalidCredentials)

	var idErr *identity.IdentityError
	assert.ErrorAs(t, err, &idErr)
}

func TestIssueSession_UnknownAgent(t *testing.T) {
	t.Parallel()

	p, _ := newProvider(t, nil)

	_, _, err := p.IssueSession(context.Background(), identity.Credential{Email: "ghost@example.com", Password: "whatever1"})
	assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
}

func TestIssueSession_Demo(t *testing.T) {
	t.Parallel()

	p, _ := newProvider(t, nil)

	sess, token, err := p.IssueSession(context.Background(), identity.Credential{Demo: true})
	require.NoError(t, err)
	assert.True(t, sess.Demo)
	assert.Equal(t, "demo@example.com", sess.Email)

	got, err := p.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, got.Demo)
	assert.Equal(t, sess.UserID, got.UserID)
}

func TestIssueSession_DemoDisabled(t *testing.T) {
	t.Parallel()

	p := identity.NewJWTProvider(nil, identity.JWTConfig{Secret: secret})

	_, _, err := p.IssueSession(context.Background(), identity.Credential{Demo: true})
	assert.ErrorIs(t, err, identity.ErrDemoDisabled)
}

func TestAuthenticate_Expired(t *testing.T) {
	t.Parallel()

	issued := time.Now().Add(-2 * time.Hour)
	p, _ := newProvider(t, func() time.Time { return issued })

	_, token, err := p.IssueSession(context.Background(), identity.Credential{Demo: true})
	require.NoError(t, err)

	later, _ := newProvider(t, time.Now)
	_, err = later.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, identity.ErrTokenExpired)
}

func TestAuthenticate_WrongSecret(t *testing.T) {
	t.Parallel()

	p, _ := newProvider(t, nil)
	_, token, err := p.IssueSession(context.Background(), identity.Credential{Demo: true})
	require.NoError(t, err)

	other := identity.NewJWTProvider(nil, identity.JWTConfig{Secret: []byte("other-secret")})
	_, err = other.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}

func TestAuthenticate_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	p, _ := newProvider(t, nil)

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, identity.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           uuid.NewString(),
	})
	signed, err := token.SignedString(secret)
	require.NoError(t, err)

	_, err = p.Authenticate(context.Background(), signed)
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}

func TestAuthenticate_Malformed(t *testing.T) {
	t.Parallel()

	p, _ := newProvider(t, nil)

	_, err := p.Authenticate(context.Background(), "not.a.jwt")
	assert.ErrorIs(t, err, identity.ErrInvalidToken)

	_, err = p.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, identity.ErrNoSession)
}

func TestSessionContext(t *testing.T) {
	t.Parallel()

	_, ok := identity.SessionFromContext(context.Background())
	assert.False(t, ok)

	want := identity.Session{UserID: uuid.New(), Email: "a@b.co"}
	got, ok := identity.SessionFromContext(identity.ContextWithSession(context.Background(), want))
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestRegisterAgent_Validation(t *testing.T) {
	t.Parallel()

	agents := memory.NewAgents()
	ctx := context.Background()

	_, err := identity.RegisterAgent(ctx, agents, "not-an-email", "long-enough")
	assert.Error(t, err)

	_, err = identity.RegisterAgent(ctx, agents, "a@b.co", "short")
	assert.Error(t, err)

	_, err = identity.RegisterAgent(ctx, agents, "a@b.co", "long-enough")
	require.NoError(t, err)

	_, err = identity.RegisterAgent(ctx, agents, "A@B.co", "long-enough")
	assert.Error(t, err, "duplicate email")
}
