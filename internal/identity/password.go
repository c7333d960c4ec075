package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest accepted agent password.
const MinPasswordLength = 8

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) ([]byte, error) {
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash []byte, password string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

// RegisterAgent hashes password and stores a new agent.
func RegisterAgent(ctx context.Context, store AgentStore, email, password string) (Agent, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return Agent{}, fmt.Errorf("invalid agent email %q", email)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return Agent{}, err
	}

	agent := Agent{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := store.InsertAgent(ctx, agent); err != nil {
		return Agent{}, fmt.Errorf("insert agent: %w", err)
	}
	return agent, nil
}
