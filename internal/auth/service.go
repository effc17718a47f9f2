package auth

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mrlokans/booklend/internal/config"
	"github.com/mrlokans/booklend/internal/database/users"
	"github.com/mrlokans/booklend/internal/entities"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrUsernameRequired = errors.New("username is required")
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrAccountLocked    = errors.New("account is locked due to too many failed login attempts")
	ErrUsernameInvalid  = errors.New("username must be 3-64 characters, alphanumeric and underscore/hyphen only")
	ErrEmailInvalid     = errors.New("invalid email format")
)

// UserStore is the account storage the service needs.
type UserStore interface {
	CreateUser(username, email, passwordHash string) (*entities.User, error)
	GetUserByID(id uint) (*entities.User, error)
	GetUserByLogin(login string) (*entities.User, error)
	Exists(username, email string) (bool, error)
	RecordFailedLogin(userID uint, failedCount int, lockedUntil *time.Time) error
	RecordSuccessfulLogin(userID uint, at time.Time) error
	Count() (int64, error)
}

var _ UserStore = (*users.Repository)(nil)

// Service handles registration and credential checks.
type Service struct {
	users  UserStore
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(store UserStore, cfg config.Auth) *Service {
	return &Service{
		users:  store,
		config: cfg,
	}
}

// Register validates the input and creates a new account.
func (s *Service) Register(username, email, password string) (*entities.User, error) {
	if err := validateRegistration(username, email, password); err != nil {
		return nil, err
	}

	exists, err := s.users.Exists(username, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(username, email, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func validateRegistration(username, email, password string) error {
	if validation.Validate(username, validation.Required) != nil {
		return ErrUsernameRequired
	}
	if validation.Validate(username, validation.Match(usernamePattern)) != nil {
		return ErrUsernameInvalid
	}
	if validation.Validate(email, validation.Required) != nil {
		return ErrEmailRequired
	}
	// RFC 5321 caps addresses at 254 characters
	if validation.Validate(email, validation.Length(0, 254), validation.Match(emailPattern)) != nil {
		return ErrEmailInvalid
	}
	if validation.Validate(password, validation.Required) != nil {
		return ErrPasswordRequired
	}
	return nil
}

// Authenticate validates credentials and returns the user. login may be a
// username or an email. Accounts lock after too many failed attempts.
func (s *Service) Authenticate(login, password string) (*entities.User, error) {
	user, err := s.users.GetUserByLogin(login)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user.LockedUntil != nil && time.Now().Before(*user.LockedUntil) {
		return nil, ErrAccountLocked
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		s.recordFailedLogin(user)
		return nil, err
	}

	if err := s.users.RecordSuccessfulLogin(user.ID, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	return user, nil
}

// recordFailedLogin bumps the failure counter and locks the account once the
// configured threshold is reached.
func (s *Service) recordFailedLogin(user *entities.User) {
	user.FailedLoginCount++

	maxAttempts := s.config.MaxLoginAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}

	var lockedUntil *time.Time
	if user.FailedLoginCount >= maxAttempts {
		lockout := s.config.LockoutDuration
		if lockout == 0 {
			lockout = 30 * time.Minute
		}
		until := time.Now().Add(lockout)
		lockedUntil = &until
	}

	_ = s.users.RecordFailedLogin(user.ID, user.FailedLoginCount, lockedUntil)
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	user, err := s.users.GetUserByID(id)
	if errors.Is(err, users.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// HasUsers returns true if any account exists.
func (s *Service) HasUsers() (bool, error) {
	count, err := s.users.Count()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
