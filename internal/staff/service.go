package staff

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

	"github.com/vasiliy-maslov/technova/internal/auth"
	"github.com/vasiliy-maslov/technova/internal/kvstore"
)

// Service scopes every staff session to a terminal, the session id of the
// browser the member signed in from.
type Service interface {
	Bootstrap(ctx context.Context, name, pin, store string) error
	Login(ctx context.Context, terminal string, employeeID uuid.UUID, pin string) (*CurrentUser, error)
	Current(ctx context.Context, terminal string) (*CurrentUser, error)
	Logout(ctx context.Context, terminal string) error
	ClockIn(ctx context.Context, terminal string) (*AttendanceRecord, error)
	ClockOut(ctx context.Context, terminal string) (*AttendanceRecord, error)
	Attendance(ctx context.Context, terminal string, employeeID uuid.UUID) ([]AttendanceRecord, error)
	Directory(ctx context.Context) ([]Badge, error)
	ListEmployees(ctx context.Context, terminal string) ([]Employee, error)
	CreateEmployee(ctx context.Context, terminal string, input NewEmployee) (*Employee, error)
}

type Options struct {
	SessionTTL time.Duration
	Grace      time.Duration
}

type service struct {
	repo     Repository
	current  *kvstore.Binding[*CurrentUser]
	attempts *auth.Limiter
	validate *validator.Validate
	opts     Options
	now      func() time.Time
}

// NewService counts wrong PINs per employee on attempts.
func NewService(repo Repository, backend kvstore.Backend, attempts *auth.Limiter, opts Options) Service {
	return newService(repo, backend, attempts, opts, time.Now)
}

func newService(repo Repository, backend kvstore.Backend, attempts *auth.Limiter, opts Options, now func() time.Time) *service {
	return &service{
		repo:     repo,
		current:  kvstore.NewBinding[*CurrentUser](backend, kvstore.KeyCurrentUser, nil, kvstore.RemoveOnNull()),
		attempts: attempts,
		validate: validator.New(),
		opts:     opts,
		now:      now,
	}
}

// Bootstrap creates the first admin account when no employees exist.
func (s *service) Bootstrap(ctx context.Context, name, pin, store string) error {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("service: failed to count employees: %w", err)
	}
	if n > 0 {
		return nil
	}
	if pin == "" {
		log.Warn().Msg("service: no employees and no admin pin configured, staff console is unusable")
		return nil
	}

	employee, err := s.create(ctx, NewEmployee{Name: name, Role: RoleAdmin, PIN: pin, Store: store, Schedule: Schedule{StartHour: 9}})
	if err != nil {
		return err
	}

	log.Info().Stringer("employee_id", employee.ID).Str("store", store).Msg("service: bootstrap admin created")

	return nil
}

func (s *service) Login(ctx context.Context, terminal string, employeeID uuid.UUID, pin string) (*CurrentUser, error) {
	if terminal == "" {
		return nil, ErrNotSignedIn
	}

	key := employeeID.String()
	if !s.attempts.Allow(key) {
		log.Warn().Stringer("employee_id", employeeID).Msg("service: staff login locked after failed attempts")
		return nil, ErrTooManyAttempts
	}

	employee, err := s.repo.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn().Stringer("employee_id", employeeID).Msg("service: staff login for unknown employee")
			s.attempts.Fail(key)
			return nil, ErrInvalidPIN
		}
		log.Error().Err(err).Stringer("employee_id", employeeID).Msg("service: failed to load employee for login")
		return nil, fmt.Errorf("service: failed to load employee: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(employee.PINHash), []byte(pin)); err != nil {
		log.Warn().Stringer("employee_id", employeeID).Msg("service: staff login with wrong pin")
		s.attempts.Fail(key)
		return nil, ErrInvalidPIN
	}
	s.attempts.Reset(key)

	now := s.now()
	user := &CurrentUser{
		ID:         employee.ID,
		Name:       employee.Name,
		Role:       employee.Role,
		Store:      employee.Store,
		SignedInAt: now.UTC(),
		ExpiresAt:  now.Add(s.opts.SessionTTL).UTC(),
	}
	if err := s.current.Save(ctx, terminal, user); err != nil {
		log.Error().Err(err).Msg("service: failed to persist staff session")
		return nil, fmt.Errorf("service: failed to persist staff session: %w", err)
	}

	log.Info().Stringer("employee_id", employee.ID).Stringer("role", employee.Role).Msg("service: staff signed in")

	return user, nil
}

// Current returns the staff member signed in on terminal. An expired session
// is cleared and reported as signed out.
func (s *service) Current(ctx context.Context, terminal string) (*CurrentUser, error) {
	if terminal == "" {
		return nil, ErrNotSignedIn
	}

	user, err := s.current.Load(ctx, terminal)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load staff session: %w", err)
	}
	if user == nil {
		return nil, ErrNotSignedIn
	}
	if !user.ExpiresAt.IsZero() && s.now().After(user.ExpiresAt) {
		if err := s.current.Save(ctx, terminal, nil); err != nil {
			log.Warn().Err(err).Msg("service: failed to clear expired staff session")
		}
		return nil, ErrNotSignedIn
	}

	return user, nil
}

// Logout stores nil, which removes the key.
func (s *service) Logout(ctx context.Context, terminal string) error {
	if terminal == "" {
		return ErrNotSignedIn
	}
	if err := s.current.Save(ctx, terminal, nil); err != nil {
		return fmt.Errorf("service: failed to clear staff session: %w", err)
	}
	return nil
}

func (s *service) ClockIn(ctx context.Context, terminal string) (*AttendanceRecord, error) {
	user, err := s.Current(ctx, terminal)
	if err != nil {
		return nil, err
	}

	employee, err := s.repo.GetByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load employee: %w", err)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate attendance id: %w", err)
	}

	now := s.now()
	record := &AttendanceRecord{
		ID:         id,
		EmployeeID: employee.ID,
		Day:        dayOf(now),
		ClockIn:    now,
		Late:       IsLate(employee.Schedule, now, s.opts.Grace),
	}

	if err := s.repo.ClockIn(ctx, record); err != nil {
		if errors.Is(err, ErrAlreadyClockedIn) {
			return nil, err
		}
		log.Error().Err(err).Stringer("employee_id", employee.ID).Msg("service: failed to clock in")
		return nil, fmt.Errorf("service: failed to clock in: %w", err)
	}

	log.Info().Stringer("employee_id", employee.ID).Bool("late", record.Late).Msg("service: clocked in")

	return record, nil
}

func (s *service) ClockOut(ctx context.Context, terminal string) (*AttendanceRecord, error) {
	user, err := s.Current(ctx, terminal)
	if err != nil {
		return nil, err
	}

	now := s.now()
	record, err := s.repo.ClockOut(ctx, user.ID, dayOf(now), now)
	if err != nil {
		if errors.Is(err, ErrNotClockedIn) {
			return nil, err
		}
		log.Error().Err(err).Stringer("employee_id", user.ID).Msg("service: failed to clock out")
		return nil, fmt.Errorf("service: failed to clock out: %w", err)
	}

	log.Info().Stringer("employee_id", user.ID).Msg("service: clocked out")

	return record, nil
}

// Attendance lets staff read their own history; managers can read anyone's.
func (s *service) Attendance(ctx context.Context, terminal string, employeeID uuid.UUID) ([]AttendanceRecord, error) {
	user, err := s.Current(ctx, terminal)
	if err != nil {
		return nil, err
	}
	if user.ID != employeeID && !user.Role.CanManage() {
		return nil, ErrForbidden
	}

	records, err := s.repo.Attendance(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list attendance: %w", err)
	}
	return records, nil
}

// Directory feeds the login screen, so it needs no session.
func (s *service) Directory(ctx context.Context) ([]Badge, error) {
	employees, err := s.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list staff directory")
		return nil, fmt.Errorf("service: failed to list employees: %w", err)
	}

	badges := make([]Badge, 0, len(employees))
	for _, e := range employees {
		badges = append(badges, Badge{ID: e.ID, Name: e.Name, Role: e.Role, Store: e.Store})
	}
	return badges, nil
}

func (s *service) ListEmployees(ctx context.Context, terminal string) ([]Employee, error) {
	if _, err := s.requireManager(ctx, terminal); err != nil {
		return nil, err
	}

	employees, err := s.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list employees")
		return nil, fmt.Errorf("service: failed to list employees: %w", err)
	}
	return employees, nil
}

func (s *service) CreateEmployee(ctx context.Context, terminal string, input NewEmployee) (*Employee, error) {
	actor, err := s.requireManager(ctx, terminal)
	if err != nil {
		return nil, err
	}
	if input.Role == RoleAdmin && actor.Role != RoleAdmin {
		return nil, ErrForbidden
	}

	employee, err := s.create(ctx, input)
	if err != nil {
		return nil, err
	}

	log.Info().Stringer("employee_id", employee.ID).Stringer("created_by", actor.ID).Msg("service: employee created")

	return employee, nil
}

func (s *service) create(ctx context.Context, input NewEmployee) (*Employee, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Store = strings.TrimSpace(input.Store)
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if !input.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, input.Role)
	}
	if !ValidPIN(input.PIN) {
		return nil, fmt.Errorf("%w: pin must be 4 digits", ErrValidation)
	}
	if input.Schedule.StartHour < 0 || input.Schedule.StartHour > 23 || input.Schedule.StartMinute < 0 || input.Schedule.StartMinute > 59 {
		return nil, fmt.Errorf("%w: schedule out of range", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.PIN), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to hash pin")
		return nil, fmt.Errorf("service: failed to hash pin: %w", err)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate employee id: %w", err)
	}

	employee := &Employee{
		ID:        id,
		Name:      input.Name,
		Role:      input.Role,
		PINHash:   string(hash),
		Store:     input.Store,
		Schedule:  input.Schedule,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.Create(ctx, employee); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, err
		}
		log.Error().Err(err).Msg("service: failed to create employee")
		return nil, fmt.Errorf("service: failed to create employee: %w", err)
	}

	return employee, nil
}

func (s *service) requireManager(ctx context.Context, terminal string) (*CurrentUser, error) {
	user, err := s.Current(ctx, terminal)
	if err != nil {
		return nil, err
	}
	if !user.Role.CanManage() {
		log.Warn().Stringer("employee_id", user.ID).Stringer("role", user.Role).Msg("service: manager action refused")
		return nil, ErrForbidden
	}
	return user, nil
}

// IsLate reports whether a clock-in falls after the shift start plus grace.
func IsLate(schedule Schedule, clockIn time.Time, grace time.Duration) bool {
	return clockIn.After(schedule.StartOn(clockIn).Add(grace))
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
