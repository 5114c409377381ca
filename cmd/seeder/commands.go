package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/mail"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/unclebandit/wealthyelephant-backend/internal/auth"
	"github.com/unclebandit/wealthyelephant-backend/internal/config"
	"github.com/unclebandit/wealthyelephant-backend/internal/db"
	"github.com/unclebandit/wealthyelephant-backend/internal/logger"
	"github.com/unclebandit/wealthyelephant-backend/internal/model"
	"github.com/unclebandit/wealthyelephant-backend/internal/repository"
)

const minPasswordLength = 8

type rootOptions struct {
	cfg config.Config
	log zerolog.Logger
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "seeder",
		Short:        "Database bootstrap tasks for the Wealthy Elephant API",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.cfg = config.Load()
			opts.log = logger.New(opts.cfg.Env, opts.cfg.LogLevel)
			if opts.cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL or DB_* variables are required")
			}
			return nil
		},
	}

	cmd.AddCommand(newSchemaCommand(opts))
	cmd.AddCommand(newCreateAdminCommand(opts))
	cmd.AddCommand(newSubscribersCommand(opts))
	return cmd
}

func (o *rootOptions) open(ctx context.Context) (*sql.DB, error) {
	return db.Open(ctx, o.cfg.DatabaseURL, o.log)
}

func newSchemaCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Create missing tables and indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := db.ApplySchema(cmd.Context(), conn); err != nil {
				return err
			}
			opts.log.Info().Msg("✅ Schema applied")
			return nil
		},
	}
}

type adminInput struct {
	Email    string
	Password string
	Name     string
}

// user validates the input and hashes the password.
func (in adminInput) user() (*model.AdminUser, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("invalid email %q", in.Email)
	}
	if len(in.Password) < minPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "Admin"
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return &model.AdminUser{Email: email, PasswordHash: hash, Name: name, Role: model.RoleAdmin}, nil
}

func newCreateAdminCommand(opts *rootOptions) *cobra.Command {
	var in adminInput

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin user, or reset the password of an existing one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := in.user()
			if err != nil {
				return err
			}

			conn, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			repo := &repository.AdminUserRepository{DB: conn}
			if err := repo.Upsert(cmd.Context(), u); err != nil {
				return err
			}
			opts.log.Info().Str("id", u.ID).Str("email", u.Email).Msg("✅ Admin user ready")
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", "", "admin email (required)")
	cmd.Flags().StringVar(&in.Password, "password", "", "admin password (required)")
	cmd.Flags().StringVar(&in.Name, "name", "Admin", "display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// fakeSubscribers builds n distinct subscribers for local campaign testing.
func fakeSubscribers(seed int64, n int) []*model.Subscriber {
	f := gofakeit.New(seed)
	seen := make(map[string]bool, n)
	out := make([]*model.Subscriber, 0, n)
	for len(out) < n {
		email := strings.ToLower(f.Email())
		if seen[email] {
			continue
		}
		seen[email] = true
		name := f.Name()
		out = append(out, &model.Subscriber{Email: email, Name: &name})
	}
	return out
}

func newSubscribersCommand(opts *rootOptions) *cobra.Command {
	var (
		count int
		seed  int64
	)

	cmd := &cobra.Command{
		Use:   "subscribers",
		Short: "Insert fake newsletter subscribers for local testing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.cfg.IsProduction() {
				return fmt.Errorf("refusing to seed fake subscribers in production")
			}

			conn, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			repo := &repository.SubscriberRepository{DB: conn}
			created := 0
			for _, s := range fakeSubscribers(seed, count) {
				if err := repo.Create(cmd.Context(), s); err != nil {
					opts.log.Warn().Err(err).Str("email", s.Email).Msg("⚠️ Skipped subscriber")
					continue
				}
				created++
			}
			opts.log.Info().Int("count", created).Msg("✅ Subscribers seeded")
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 25, "number of subscribers")
	cmd.Flags().Int64Var(&seed, "seed", 1, "faker seed")
	return cmd
}
