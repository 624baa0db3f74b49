package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/platform/logger"
	"github.com/phrazzld/mnemo-api/internal/service/auth"
	"github.com/phrazzld/mnemo-api/internal/store"
)

// GuestEmailDomain is the mail domain of generated guest accounts.
const GuestEmailDomain = "mnemo.guest"

// UserService provides account operations.
type UserService interface {
	// Register creates a user with a hashed password.
	Register(ctx context.Context, username, email, password string) (*domain.User, error)

	// Authenticate checks a username and password.
	// Returns auth.ErrInvalidCredentials for an unknown user or a wrong password.
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)

	// CreateGuest creates a throwaway account with a random name and password.
	CreateGuest(ctx context.Context) (*domain.User, error)

	// GetUser retrieves a user by their ID.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

type userService struct {
	users  store.UserStore
	db     *sql.DB
	hasher auth.PasswordHasher
	logger *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(
	users store.UserStore,
	db *sql.DB,
	hasher auth.PasswordHasher,
	logger *slog.Logger,
) (UserService, error) {
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil")
	}
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil")
	}
	if hasher == nil {
		return nil, domain.NewValidationError("hasher", "cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &userService{
		users:  users,
		db:     db,
		hasher: hasher,
		logger: logger.With(slog.String("component", "user_service")),
	}, nil
}

func (s *userService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(username, email, password)
	if err != nil {
		return nil, domain.NewValidationError("user", err.Error())
	}

	if err := s.create(ctx, user); err != nil {
		if store.IsDuplicateError(err) {
			log.Debug("registration conflict", slog.String("username", username))
		} else {
			log.Error("failed to register user", slog.String("error", err.Error()))
		}
		return nil, newServiceError("user", "register", err)
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return user, nil
}

func (s *userService) CreateGuest(ctx context.Context) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	secret := uuid.NewString()
	username := "guest_" + secret[:8]
	user, err := domain.NewUser(username, username+"@"+GuestEmailDomain, secret)
	if err != nil {
		return nil, newServiceError("user", "create_guest", err)
	}
	user.IsGuest = true

	if err := s.create(ctx, user); err != nil {
		log.Error("failed to create guest user", slog.String("error", err.Error()))
		return nil, newServiceError("user", "create_guest", err)
	}

	log.Info("guest user created", slog.String("user_id", user.ID.String()))
	return user, nil
}

// create hashes the plaintext password and saves the user. The plaintext is
// cleared before the user reaches the store.
func (s *userService) create(ctx context.Context, user *domain.User) error {
	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		return err
	}
	user.HashedPassword = hashed
	user.Password = ""

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.users.WithTx(tx).Create(ctx, user)
	})
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login for unknown user", slog.String("username", username))
			return nil, auth.ErrInvalidCredentials
		}
		log.Error("failed to load user for login", slog.String("error", err.Error()))
		return nil, newServiceError("user", "authenticate", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login with wrong password", slog.String("user_id", user.ID.String()))
		return nil, auth.ErrInvalidCredentials
	}

	return user, nil
}

func (s *userService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}
