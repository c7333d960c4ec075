package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/leads/internal/identity"
)

func (s *Store) AgentByEmail(ctx context.Context, email string) (identity.Agent, error) {
	var a identity.Agent
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at FROM agents WHERE email = $1`,
		strings.ToLower(email),
	).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return identity.Agent{}, identity.ErrAgentNotFound
	}
	return a, err
}

func (s *Store) InsertAgent(ctx context.Context, a identity.Agent) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO agents (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		a.ID, strings.ToLower(a.Email), a.PasswordHash, a.CreatedAt,
	)
	return err
}
