package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Account struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository interface {
	CreateAccount(ctx context.Context, account *Account) error
	AccountByEmail(ctx context.Context, email string) (*Account, error)
	AccountByID(ctx context.Context, id uuid.UUID) (*Account, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string, at time.Time) error

	CreateSession(ctx context.Context, token string, accountID uuid.UUID, expiresAt time.Time) error
	SessionAccount(ctx context.Context, token string) (uuid.UUID, time.Time, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteAccountSessions(ctx context.Context, accountID uuid.UUID) error
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)

	CreateReset(ctx context.Context, token string, accountID uuid.UUID, expiresAt time.Time) error
	ConsumeReset(ctx context.Context, token string) (uuid.UUID, time.Time, error)
}

type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type postgresRepository struct {
	db DB
}

func NewRepository(db DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateAccount(ctx context.Context, account *Account) error {
	query := `
		INSERT INTO auth_accounts (id, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, account.ID, account.Email, account.PasswordHash, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrEmailAlreadyInUse
		}
		return fmt.Errorf("repository: failed to insert account: %w", err)
	}
	return nil
}

func (r *postgresRepository) AccountByEmail(ctx context.Context, email string) (*Account, error) {
	query := `SELECT id, email, password_hash, created_at, updated_at FROM auth_accounts WHERE email = $1`
	return r.scanAccount(r.db.QueryRow(ctx, query, email), email)
}

func (r *postgresRepository) AccountByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	query := `SELECT id, email, password_hash, created_at, updated_at FROM auth_accounts WHERE id = $1`
	return r.scanAccount(r.db.QueryRow(ctx, query, id), id.String())
}

func (r *postgresRepository) scanAccount(row pgx.Row, key string) (*Account, error) {
	var a Account
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("repository: failed to select account %s: %w", key, err)
	}
	return &a, nil
}

func (r *postgresRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string, at time.Time) error {
	tag, err := r.db.Exec(ctx, `UPDATE auth_accounts SET password_hash = $1, updated_at = $2 WHERE id = $3`, hash, at, id)
	if err != nil {
		return fmt.Errorf("repository: failed to update password of %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *postgresRepository) CreateSession(ctx context.Context, token string, accountID uuid.UUID, expiresAt time.Time) error {
	query := `INSERT INTO auth_sessions (token, account_id, expires_at) VALUES ($1, $2, $3)`
	if _, err := r.db.Exec(ctx, query, token, accountID, expiresAt); err != nil {
		return fmt.Errorf("repository: failed to insert session: %w", err)
	}
	return nil
}

func (r *postgresRepository) SessionAccount(ctx context.Context, token string) (uuid.UUID, time.Time, error) {
	var (
		accountID uuid.UUID
		expiresAt time.Time
	)
	err := r.db.QueryRow(ctx, `SELECT account_id, expires_at FROM auth_sessions WHERE token = $1`, token).Scan(&accountID, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, time.Time{}, ErrInvalidCredential
		}
		return uuid.Nil, time.Time{}, fmt.Errorf("repository: failed to select session: %w", err)
	}
	return accountID, expiresAt, nil
}

func (r *postgresRepository) DeleteSession(ctx context.Context, token string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM auth_sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("repository: failed to delete session: %w", err)
	}
	return nil
}

func (r *postgresRepository) DeleteAccountSessions(ctx context.Context, accountID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM auth_sessions WHERE account_id = $1`, accountID); err != nil {
		return fmt.Errorf("repository: failed to delete sessions of %s: %w", accountID, err)
	}
	return nil
}

func (r *postgresRepository) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM auth_sessions WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *postgresRepository) CreateReset(ctx context.Context, token string, accountID uuid.UUID, expiresAt time.Time) error {
	query := `INSERT INTO password_resets (token, account_id, expires_at) VALUES ($1, $2, $3)`
	if _, err := r.db.Exec(ctx, query, token, accountID, expiresAt); err != nil {
		return fmt.Errorf("repository: failed to insert password reset: %w", err)
	}
	return nil
}

// ConsumeReset deletes the reset token and returns what it pointed at, so a
// token works at most once.
func (r *postgresRepository) ConsumeReset(ctx context.Context, token string) (uuid.UUID, time.Time, error) {
	var (
		accountID uuid.UUID
		expiresAt time.Time
	)
	query := `DELETE FROM password_resets WHERE token = $1 RETURNING account_id, expires_at`
	if err := r.db.QueryRow(ctx, query, token).Scan(&accountID, &expiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, time.Time{}, ErrInvalidCredential
		}
		return uuid.Nil, time.Time{}, fmt.Errorf("repository: failed to consume password reset: %w", err)
	}
	return accountID, expiresAt, nil
}
