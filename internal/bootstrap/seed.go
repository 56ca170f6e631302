// Package bootstrap provides startup-time initialization routines
// such as seeding development accounts.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/sungwon/chirper/internal/auth"
	"github.com/sungwon/chirper/internal/storage"
)

// SeedUser is one account to ensure at startup.
type SeedUser struct {
	Name     string
	Email    string
	Password string
}

// UserStore is the persistence seeding needs.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (storage.User, error)
	CreateUser(ctx context.Context, arg storage.CreateUserParams) (storage.User, error)
}

// SeedUsers creates each user whose email is not registered yet. It is
// idempotent: existing accounts are left untouched, including their
// passwords. Returns the number of users created.
func SeedUsers(ctx context.Context, store UserStore, users []SeedUser, log zerolog.Logger) (int, error) {
	created := 0
	for _, u := range users {
		email := strings.ToLower(strings.TrimSpace(u.Email))
		if email == "" || u.Password == "" {
			return created, fmt.Errorf("seed user %q: email and password are required", u.Name)
		}

		_, err := store.GetUserByEmail(ctx, email)
		if err == nil {
			log.Debug().Str("email", email).Msg("seed user already exists, skipping")
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return created, fmt.Errorf("look up seed user %s: %w", email, err)
		}

		hash, err := auth.HashPassword(u.Password)
		if err != nil {
			return created, fmt.Errorf("hash seed password for %s: %w", email, err)
		}

		user, err := store.CreateUser(ctx, storage.CreateUserParams{
			Name:         u.Name,
			Email:        email,
			PasswordHash: hash,
		})
		if err != nil {
			return created, fmt.Errorf("create seed user %s: %w", email, err)
		}
		created++
		log.Info().Str("user_id", user.ID.String()).Str("email", email).Msg("seed user created")
	}
	return created, nil
}
