package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// State is what the storefront sees of the signed-in customer.
type State struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      State     `json:"user"`
}

type Options struct {
	SessionTTL        time.Duration
	ResetTTL          time.Duration
	MinPasswordLength int
}

type Service interface {
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*State, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	PurgeExpired(ctx context.Context) (int64, error)
}

type service struct {
	repo     Repository
	mailer   Mailer
	limiter  *Limiter
	validate *validator.Validate
	opts     Options
	now      func() time.Time
}

func NewService(repo Repository, mailer Mailer, limiter *Limiter, opts Options) Service {
	return &service{
		repo:     repo,
		mailer:   mailer,
		limiter:  limiter,
		validate: validator.New(),
		opts:     opts,
		now:      time.Now,
	}
}

func (s *service) SignUp(ctx context.Context, email, password string) (*Session, error) {
	email, err := s.normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := s.checkPassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to hash password")
		return nil, fmt.Errorf("service: failed to hash password: %w", err)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate account id: %w", err)
	}

	now := s.now().UTC()
	account := &Account{ID: id, Email: email, PasswordHash: string(hash), CreatedAt: now, UpdatedAt: now}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, ErrEmailAlreadyInUse) {
			log.Warn().Str("email", email).Msg("service: sign-up with existing email")
			return nil, err
		}
		log.Error().Err(err).Msg("service: failed to create account")
		return nil, fmt.Errorf("service: failed to create account: %w", err)
	}

	log.Info().Stringer("account_id", id).Msg("service: account created")

	return s.openSession(ctx, account)
}

func (s *service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email, err := s.normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if !s.limiter.Allow(email) {
		log.Warn().Str("email", email).Msg("service: sign-in throttled")
		return nil, ErrTooManyRequests
	}

	account, err := s.repo.AccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.limiter.Fail(email)
			return nil, err
		}
		log.Error().Err(err).Msg("service: failed to load account")
		return nil, fmt.Errorf("service: failed to load account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		s.limiter.Fail(email)
		log.Warn().Stringer("account_id", account.ID).Msg("service: sign-in with wrong password")
		return nil, ErrWrongPassword
	}

	s.limiter.Reset(email)

	return s.openSession(ctx, account)
}

func (s *service) SignOut(ctx context.Context, token string) error {
	if err := s.repo.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("service: failed to sign out: %w", err)
	}
	return nil
}

// Authenticate resolves a bearer token. Expired sessions are removed and
// reported as invalid.
func (s *service) Authenticate(ctx context.Context, token string) (*State, error) {
	if token == "" {
		return nil, ErrInvalidCredential
	}

	accountID, expiresAt, err := s.repo.SessionAccount(ctx, token)
	if err != nil {
		return nil, err
	}
	if s.now().After(expiresAt) {
		if err := s.repo.DeleteSession(ctx, token); err != nil {
			log.Warn().Err(err).Msg("service: failed to delete expired session")
		}
		return nil, ErrInvalidCredential
	}

	account, err := s.repo.AccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, fmt.Errorf("service: failed to load account: %w", err)
	}

	return &State{UID: account.ID.String(), Email: account.Email}, nil
}

func (s *service) RequestPasswordReset(ctx context.Context, email string) error {
	email, err := s.normalizeEmail(email)
	if err != nil {
		return err
	}

	account, err := s.repo.AccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("service: failed to load account: %w", err)
	}

	token, err := newToken()
	if err != nil {
		return err
	}
	if err := s.repo.CreateReset(ctx, token, account.ID, s.now().Add(s.opts.ResetTTL)); err != nil {
		log.Error().Err(err).Msg("service: failed to store password reset")
		return fmt.Errorf("service: failed to store password reset: %w", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, email, token); err != nil {
		log.Error().Err(err).Stringer("account_id", account.ID).Msg("service: failed to send password reset")
		return fmt.Errorf("service: failed to send password reset: %w", err)
	}

	return nil
}

// ResetPassword sets a new password and signs out every session of the account.
func (s *service) ResetPassword(ctx context.Context, token, password string) error {
	if err := s.checkPassword(password); err != nil {
		return err
	}

	accountID, expiresAt, err := s.repo.ConsumeReset(ctx, token)
	if err != nil {
		return err
	}
	if s.now().After(expiresAt) {
		return ErrInvalidCredential
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("service: failed to hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, accountID, string(hash), s.now().UTC()); err != nil {
		return fmt.Errorf("service: failed to update password: %w", err)
	}
	if err := s.repo.DeleteAccountSessions(ctx, accountID); err != nil {
		log.Warn().Err(err).Stringer("account_id", accountID).Msg("service: failed to revoke sessions after reset")
	}

	log.Info().Stringer("account_id", accountID).Msg("service: password reset")

	return nil
}

func (s *service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredSessions(ctx, s.now())
}

func (s *service) openSession(ctx context.Context, account *Account) (*Session, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	expiresAt := s.now().Add(s.opts.SessionTTL).UTC()
	if err := s.repo.CreateSession(ctx, token, account.ID, expiresAt); err != nil {
		log.Error().Err(err).Stringer("account_id", account.ID).Msg("service: failed to create session")
		return nil, fmt.Errorf("service: failed to create session: %w", err)
	}

	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      State{UID: account.ID.String(), Email: account.Email},
	}, nil
}

func (s *service) normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.validate.Var(email, "required,email"); err != nil {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func (s *service) checkPassword(password string) error {
	if len(password) < s.opts.MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

func newToken() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("service: failed to generate token: %w", err)
	}
	return id.String(), nil
}
