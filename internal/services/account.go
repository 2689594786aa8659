package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Kattu2003/PRODUCT/internal/sessions"
	"github.com/Kattu2003/PRODUCT/internal/store"
	"github.com/Kattu2003/PRODUCT/types"
	"github.com/rs/zerolog"
)

const eventPublishTimeout = 2 * time.Second

// Used to spend the same derivation time when the email is unknown.
const (
	dummySalt = "00000000000000000000000000000000"
	dummyHash = "0000000000000000000000000000000000000000000000000000000000000000"
)

// UserRepository defines persistence operations for accounts.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (types.User, error)
	Insert(ctx context.Context, user types.User) error
}

// SessionManager issues and checks bearer tokens.
type SessionManager interface {
	Issue(user types.User) (string, error)
	Validate(ctx context.Context, token string) (sessions.Claims, error)
	Revoke(ctx context.Context, claims sessions.Claims) error
}

// Hasher salts, hashes and verifies passwords.
type Hasher interface {
	NewSalt() (string, error)
	Hash(password, salt string) string
	Verify(password, salt, encodedHash string) bool
}

// EventPublisher receives account lifecycle notifications.
type EventPublisher interface {
	AccountCreated(ctx context.Context, user types.User) error
}

type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

type LoginInput struct {
	Email    string
	Password string
	// Role is what the login form asked for. The stored role always wins.
	Role string
}

// Session is the result of a successful login.
type Session struct {
	Account types.Account
	Token   string
}

// AccountService encapsulates signup, login and session use-cases.
type AccountService struct {
	repo     UserRepository
	hasher   Hasher
	sessions SessionManager
	events   EventPublisher
	log      zerolog.Logger
	now      func() time.Time
}

type Option func(*AccountService)

func WithEvents(events EventPublisher) Option {
	return func(s *AccountService) {
		s.events = events
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *AccountService) {
		s.log = log
	}
}

func WithPasswordHasher(hasher Hasher) Option {
	return func(s *AccountService) {
		s.hasher = hasher
	}
}

func NewAccountService(repo UserRepository, sessionManager SessionManager, opts ...Option) *AccountService {
	s := &AccountService{
		repo:     repo,
		hasher:   NewPasswordHasher(),
		sessions: sessionManager,
		log:      zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAccount registers a new account. Nothing sensitive is returned.
func (s *AccountService) CreateAccount(ctx context.Context, in SignupInput) error {
	email := types.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return ErrValidation
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return ErrConflict
	} else if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("lookup account: %w", err)
	}

	salt, err := s.hasher.NewSalt()
	if err != nil {
		return err
	}

	user := types.User{
		Email:        email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         types.NormalizeRole(in.Role),
		PasswordHash: s.hasher.Hash(in.Password, salt),
		PasswordSalt: salt,
		CreatedAt:    s.now().UTC(),
	}

	// The primary key catches signups that raced past the lookup above.
	if err := s.repo.Insert(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return ErrConflict
		}
		return fmt.Errorf("insert account: %w", err)
	}

	s.publishCreated(ctx, user)
	return nil
}

// Authenticate checks credentials and starts a new session.
func (s *AccountService) Authenticate(ctx context.Context, in LoginInput) (Session, error) {
	email := types.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return Session{}, ErrValidation
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.hasher.Verify(in.Password, dummySalt, dummyHash)
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("lookup account: %w", err)
	}

	if !s.hasher.Verify(in.Password, user.PasswordSalt, user.PasswordHash) {
		return Session{}, ErrInvalidCredentials
	}

	if in.Role != "" && types.NormalizeRole(in.Role) != user.Role {
		s.log.Debug().
			Str("requested_role", string(types.NormalizeRole(in.Role))).
			Str("stored_role", string(user.Role)).
			Msg("login role differs from stored role")
	}

	token, err := s.sessions.Issue(user)
	if err != nil {
		return Session{}, err
	}
	return Session{Account: user.Account(), Token: token}, nil
}

// CurrentUser resolves a bearer token to the account it was issued for.
func (s *AccountService) CurrentUser(ctx context.Context, token string) (types.Account, error) {
	claims, err := s.validate(ctx, token)
	if err != nil {
		return types.Account{}, err
	}

	user, err := s.repo.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Account{}, ErrUnauthenticated
		}
		return types.Account{}, fmt.Errorf("lookup account: %w", err)
	}
	return user.Account(), nil
}

// Logout revokes the session behind token. Missing or invalid tokens are ignored.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	claims, err := s.validate(ctx, token)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			return nil
		}
		return err
	}
	return s.sessions.Revoke(ctx, claims)
}

func (s *AccountService) validate(ctx context.Context, token string) (sessions.Claims, error) {
	if strings.TrimSpace(token) == "" {
		return sessions.Claims{}, ErrUnauthenticated
	}
	claims, err := s.sessions.Validate(ctx, token)
	if err != nil {
		if errors.Is(err, sessions.ErrInvalidToken) || errors.Is(err, sessions.ErrRevoked) {
			return sessions.Claims{}, ErrUnauthenticated
		}
		return sessions.Claims{}, err
	}
	return claims, nil
}

func (s *AccountService) publishCreated(ctx context.Context, user types.User) {
	if s.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventPublishTimeout)
	defer cancel()
	if err := s.events.AccountCreated(ctx, user); err != nil {
		s.log.Warn().Err(err).Msg("account created event not published")
	}
}
