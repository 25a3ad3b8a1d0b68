package staff

import (
	"errors"
	"regexp"
	"time"

	"github.com/gofrs/uuid"
)

var (
	ErrNotFound         = errors.New("employee not found")
	ErrDuplicate        = errors.New("employee already exists in this store")
	ErrInvalidPIN       = errors.New("invalid employee or pin")
	ErrTooManyAttempts  = errors.New("too many failed pin attempts, try again later")
	ErrNotSignedIn      = errors.New("no staff member signed in")
	ErrForbidden        = errors.New("role not allowed")
	ErrAlreadyClockedIn = errors.New("already clocked in today")
	ErrNotClockedIn     = errors.New("not clocked in")
	ErrValidation       = errors.New("invalid employee")
)

type Role string

const (
	RoleTechnician Role = "Technician"
	RoleManager    Role = "Manager"
	RoleSales      Role = "Sales"
	RoleAdmin      Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) Valid() bool {
	switch r {
	case RoleTechnician, RoleManager, RoleSales, RoleAdmin:
		return true
	}
	return false
}

// CanManage reports whether the role may list and create employees.
func (r Role) CanManage() bool {
	return r == RoleManager || r == RoleAdmin
}

var pinPattern = regexp.MustCompile(`^\d{4}$`)

func ValidPIN(pin string) bool {
	return pinPattern.MatchString(pin)
}

type Schedule struct {
	StartHour   int `json:"startHour" db:"schedule_start_hour"`
	StartMinute int `json:"startMinute" db:"schedule_start_minute"`
}

// StartOn returns the shift start on the given day, in that day's location.
func (s Schedule) StartOn(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, s.StartHour, s.StartMinute, 0, 0, day.Location())
}

type Employee struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Role      Role      `json:"role" db:"role"`
	PINHash   string    `json:"-" db:"pin_hash"`
	Store     string    `json:"store" db:"store"`
	Schedule  `json:"schedule"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Badge is the public part of an employee shown on the login screen.
type Badge struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Role  Role      `json:"role"`
	Store string    `json:"store"`
}

type AttendanceRecord struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	EmployeeID uuid.UUID  `json:"employeeId" db:"employee_id"`
	Day        time.Time  `json:"day" db:"day"`
	ClockIn    time.Time  `json:"clockIn" db:"clock_in"`
	ClockOut   *time.Time `json:"clockOut" db:"clock_out"`
	Late       bool       `json:"late" db:"late"`
}

// NewEmployee is the create form; PIN is plain text and hashed on create.
type NewEmployee struct {
	Name     string   `json:"name" validate:"required,min=2"`
	Role     Role     `json:"role" validate:"required"`
	PIN      string   `json:"pin" validate:"required,len=4,numeric"`
	Store    string   `json:"store" validate:"required"`
	Schedule Schedule `json:"schedule"`
}

// CurrentUser is the signed-in staff member kept in the shared kv scope.
type CurrentUser struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Role       Role      `json:"role"`
	Store      string    `json:"store"`
	SignedInAt time.Time `json:"signedInAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}
