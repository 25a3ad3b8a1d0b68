package staff_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/technova/internal/staff"
)

func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN is not set")
	}

	db, err := sqlx.Connect("pgx", dsn)
	require.NoError(t, err)

	schema, err := os.ReadFile("../../migrations/000003_create_staff.up.sql")
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)
	_, err = db.Exec("TRUNCATE TABLE attendance, employees")
	require.NoError(t, err)

	t.Cleanup(func() {
		if _, err := db.Exec("TRUNCATE TABLE attendance, employees"); err != nil {
			t.Errorf("Failed to truncate tables after test: %v", err)
		}
		db.Close()
	})

	return db
}

func newEmployee(name string) *staff.Employee {
	return &staff.Employee{
		ID:        uuid.Must(uuid.NewV4()),
		Name:      name,
		Role:      staff.RoleTechnician,
		PINHash:   "hash",
		Store:     "downtown",
		Schedule:  staff.Schedule{StartHour: 9, StartMinute: 15},
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo := staff.NewRepository(setupDB(t))
	ctx := context.Background()

	employee := newEmployee("Lena")
	require.NoError(t, repo.Create(ctx, employee))

	got, err := repo.GetByID(ctx, employee.ID)
	require.NoError(t, err)
	assert.Equal(t, employee.Name, got.Name)
	assert.Equal(t, employee.Schedule, got.Schedule)

	err = repo.Create(ctx, newEmployee("Lena"))
	assert.ErrorIs(t, err, staff.ErrDuplicate)

	_, err = repo.GetByID(ctx, uuid.Must(uuid.NewV4()))
	assert.ErrorIs(t, err, staff.ErrNotFound)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRepository_Attendance(t *testing.T) {
	repo := staff.NewRepository(setupDB(t))
	ctx := context.Background()

	employee := newEmployee("Marco")
	require.NoError(t, repo.Create(ctx, employee))

	day := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	record := &staff.AttendanceRecord{
		ID:         uuid.Must(uuid.NewV4()),
		EmployeeID: employee.ID,
		Day:        day,
		ClockIn:    day.Add(9 * time.Hour),
	}
	require.NoError(t, repo.ClockIn(ctx, record))

	record.ID = uuid.Must(uuid.NewV4())
	assert.ErrorIs(t, repo.ClockIn(ctx, record), staff.ErrAlreadyClockedIn)

	out, err := repo.ClockOut(ctx, employee.ID, day, day.Add(17*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, out.ClockOut)

	_, err = repo.ClockOut(ctx, employee.ID, day, day.Add(18*time.Hour))
	assert.ErrorIs(t, err, staff.ErrNotClockedIn)

	records, err := repo.Attendance(ctx, employee.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
