// Package users manages the player directory consulted by the leaderboard.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/R3E-Network/leaderboard/internal/app/domain/user"
	"github.com/R3E-Network/leaderboard/internal/app/storage"
	"github.com/R3E-Network/leaderboard/pkg/logger"
)

// ErrInvalidUsername is returned when a registration carries an empty or
// malformed username.
var ErrInvalidUsername = errors.New("username is required")

// Service manages user directory records.
type Service struct {
	store storage.UserStore
	log   *logger.Logger
}

// New constructs a users service.
func New(store storage.UserStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("users")
	}
	return &Service{store: store, log: log}
}

// Register creates a new user.
func (s *Service) Register(ctx context.Context, username string) (user.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return user.User{}, ErrInvalidUsername
	}

	created, err := s.store.CreateUser(ctx, user.User{Username: username})
	if err != nil {
		return user.User{}, fmt.Errorf("create user: %w", err)
	}

	s.log.WithField("user_id", created.ID).
		WithField("username", created.Username).
		Info("user registered")
	return created, nil
}

// Get returns one user by ID.
func (s *Service) Get(ctx context.Context, id string) (user.User, error) {
	return s.store.GetUser(ctx, id)
}

// List returns every user, oldest first.
func (s *Service) List(ctx context.Context) ([]user.User, error) {
	return s.store.ListUsers(ctx)
}
