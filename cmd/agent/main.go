// Command agent provisions sign-in accounts and maintains the lead database.
//
//	agent migrate
//	agent add --email agent@example.com --password '...'
//	agent reset --yes
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/leads/internal/admin"
	"github.com/JonMunkholm/leads/internal/identity"
	"github.com/JonMunkholm/leads/internal/store/postgres"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dbURL string

	root := &cobra.Command{
		Use:           "agent",
		Short:         "Manage lead service agents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dbURL, "database-url", envDatabaseURL(),
		"PostgreSQL connection string (default: $DATABASE_URL or $DB_URL)")

	open := func(ctx context.Context) (*pgxpool.Pool, error) {
		if strings.TrimSpace(dbURL) == "" {
			return nil, errors.New("database url is required")
		}
		return postgres.Connect(ctx, dbURL, postgres.PoolOptions{MaxConns: 2})
	}

	root.AddCommand(newMigrateCmd(open), newAddCmd(open), newResetCmd(open))
	return root
}

type opener func(ctx context.Context) (*pgxpool.Pool, error)

func newMigrateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := postgres.Migrate(cmd.Context(), pool); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newAddCmd(open opener) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register an agent with a bcrypt-hashed password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("AGENT_PASSWORD")
			}

			pool, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			agent, err := identity.RegisterAgent(cmd.Context(), postgres.New(pool), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "agent %s registered with id %s\n", agent.Email, agent.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Agent email (required)")
	cmd.Flags().StringVar(&password, "password", "", "Agent password (default: $AGENT_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newResetCmd(open opener) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every lead and its history (agents are kept)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("%w: pass --yes to delete all leads", admin.ErrNotConfirmed)
			}

			pool, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := admin.ResetLeads(cmd.Context(), postgres.New(pool), yes); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "leads reset")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset")
	return cmd
}

func envDatabaseURL() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}
	return os.Getenv("DB_URL")
}
