// Package auth is the credential collaborator: a flat user list consulted
// for pass/fail identity checks.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/repository/mongodb"
)

var (
	// ErrInvalidCredentials covers unknown users and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden indicates valid credentials lacking the requested scope.
	ErrForbidden = errors.New("insufficient scope")
	// ErrUserExists is returned by Register for a taken username.
	ErrUserExists = errors.New("username already registered")
	// ErrInvalidScope is returned for scopes other than user and admin.
	ErrInvalidScope = errors.New("invalid scope")
	// ErrMissingCredentials is returned by Register for a blank username or password.
	ErrMissingCredentials = errors.New("username and password required")
)

// UserRepository persists accounts.
type UserRepository interface {
	FindUser(ctx context.Context, username string) (models.User, error)
	InsertUser(ctx context.Context, user models.User) error
}

// Service authenticates and registers users.
type Service struct {
	repo   UserRepository
	logger *zap.Logger
	cost   int
	now    func() time.Time
}

// NewService wires the credential service.
func NewService(repo UserRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger, cost: bcrypt.DefaultCost, now: time.Now}
}

// Authenticate checks username/password and that the account holds scope.
// Admin accounts satisfy the user scope as well.
func (s *Service) Authenticate(ctx context.Context, username, password string, scope models.Scope) (models.Identity, error) {
	if !scope.Valid() {
		return models.Identity{}, ErrInvalidScope
	}

	user, err := s.repo.FindUser(ctx, strings.TrimSpace(username))
	if errors.Is(err, mongodb.ErrUserNotFound) {
		return models.Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Identity{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug("password mismatch", zap.String("username", user.Username))
		return models.Identity{}, ErrInvalidCredentials
	}

	if scope == models.ScopeAdmin && user.Scope != models.ScopeAdmin {
		return models.Identity{}, ErrForbidden
	}

	return models.Identity{Username: user.Username, Scope: user.Scope}, nil
}

// Register creates a new account in scope.
func (s *Service) Register(ctx context.Context, username, password string, scope models.Scope) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrMissingCredentials
	}
	if !scope.Valid() {
		return ErrInvalidScope
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.repo.InsertUser(ctx, models.User{
		Username:     username,
		PasswordHash: string(hash),
		Scope:        scope,
		CreatedAt:    s.now().UTC(),
	})
	if errors.Is(err, mongodb.ErrDuplicateUser) {
		return ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("store user: %w", err)
	}

	s.logger.Info("user registered", zap.String("username", username), zap.String("scope", string(scope)))
	return nil
}

// EnsureAdmin registers the bootstrap admin unless it already exists.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	err := s.Register(ctx, username, password, models.ScopeAdmin)
	if errors.Is(err, ErrUserExists) {
		return nil
	}
	return err
}
