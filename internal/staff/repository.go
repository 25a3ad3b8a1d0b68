package staff

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

type Repository interface {
	Count(ctx context.Context) (int, error)
	List(ctx context.Context) ([]Employee, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Employee, error)
	Create(ctx context.Context, employee *Employee) error
	ClockIn(ctx context.Context, record *AttendanceRecord) error
	ClockOut(ctx context.Context, employeeID uuid.UUID, day time.Time, at time.Time) (*AttendanceRecord, error)
	Attendance(ctx context.Context, employeeID uuid.UUID) ([]AttendanceRecord, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM employees`); err != nil {
		return 0, fmt.Errorf("repository: failed to count employees: %w", err)
	}
	return n, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]Employee, error) {
	query := `
		SELECT id, name, role, pin_hash, store, schedule_start_hour, schedule_start_minute, created_at
		FROM employees
		ORDER BY store, name
	`
	employees := []Employee{}
	if err := r.db.SelectContext(ctx, &employees, query); err != nil {
		return nil, fmt.Errorf("repository: failed to list employees: %w", err)
	}
	return employees, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Employee, error) {
	query := `
		SELECT id, name, role, pin_hash, store, schedule_start_hour, schedule_start_minute, created_at
		FROM employees
		WHERE id = $1
	`
	var employee Employee
	if err := r.db.GetContext(ctx, &employee, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to get employee %s: %w", id, err)
	}
	return &employee, nil
}

func (r *postgresRepository) Create(ctx context.Context, employee *Employee) error {
	query := `
		INSERT INTO employees (id, name, role, pin_hash, store, schedule_start_hour, schedule_start_minute, created_at)
		VALUES (:id, :name, :role, :pin_hash, :store, :schedule_start_hour, :schedule_start_minute, :created_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, employee); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("repository: failed to create employee: %w", err)
	}
	return nil
}

func (r *postgresRepository) ClockIn(ctx context.Context, record *AttendanceRecord) error {
	query := `
		INSERT INTO attendance (id, employee_id, day, clock_in, late)
		VALUES (:id, :employee_id, :day, :clock_in, :late)
	`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyClockedIn
		}
		return fmt.Errorf("repository: failed to clock in: %w", err)
	}
	return nil
}

func (r *postgresRepository) ClockOut(ctx context.Context, employeeID uuid.UUID, day time.Time, at time.Time) (*AttendanceRecord, error) {
	query := `
		UPDATE attendance
		SET clock_out = $1
		WHERE employee_id = $2 AND day = $3 AND clock_out IS NULL
		RETURNING id, employee_id, day, clock_in, clock_out, late
	`
	var record AttendanceRecord
	if err := r.db.GetContext(ctx, &record, query, at, employeeID, day); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotClockedIn
		}
		return nil, fmt.Errorf("repository: failed to clock out: %w", err)
	}
	return &record, nil
}

func (r *postgresRepository) Attendance(ctx context.Context, employeeID uuid.UUID) ([]AttendanceRecord, error) {
	query := `
		SELECT id, employee_id, day, clock_in, clock_out, late
		FROM attendance
		WHERE employee_id = $1
		ORDER BY day DESC
	`
	records := []AttendanceRecord{}
	if err := r.db.SelectContext(ctx, &records, query, employeeID); err != nil {
		return nil, fmt.Errorf("repository: failed to list attendance: %w", err)
	}
	return records, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		log.Warn().Str("constraint", pgErr.ConstraintName).Msg("repository: unique constraint violated")
		return true
	}
	return false
}
