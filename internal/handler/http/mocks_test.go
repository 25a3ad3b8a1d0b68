package http_test

import (
	"context"
	"io"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/vasiliy-maslov/technova/internal/auth"
	"github.com/vasiliy-maslov/technova/internal/cart"
	"github.com/vasiliy-maslov/technova/internal/catalog"
	"github.com/vasiliy-maslov/technova/internal/checkout"
	"github.com/vasiliy-maslov/technova/internal/customer"
	"github.com/vasiliy-maslov/technova/internal/filestore"
	"github.com/vasiliy-maslov/technova/internal/order"
	"github.com/vasiliy-maslov/technova/internal/session"
	"github.com/vasiliy-maslov/technova/internal/staff"
)

type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) Load(ctx context.Context) []catalog.Product {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.Product)
}

func (m *MockLoader) List(ctx context.Context, filter catalog.Filter) []catalog.Product {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product)
}

func (m *MockLoader) Get(ctx context.Context, id catalog.ProductID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockLoader) Resolve(ctx context.Context, ids []catalog.ProductID) []catalog.Product {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Product)
}

type MockManager struct {
	mock.Mock
}

func (m *MockManager) Create(ctx context.Context, p *catalog.Product) (*catalog.Product, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockManager) Update(ctx context.Context, p *catalog.Product) (*catalog.Product, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockManager) Delete(ctx context.Context, id catalog.ProductID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockManager) UploadImage(ctx context.Context, name, contentType string, r io.Reader) (*filestore.File, error) {
	args := m.Called(ctx, name, contentType, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*filestore.File), args.Error(1)
}

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Get(ctx context.Context, owner session.Owner) (*cart.Cart, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartService) Add(ctx context.Context, owner session.Owner, p catalog.Product) (*cart.Cart, error) {
	args := m.Called(ctx, owner, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartService) Remove(ctx context.Context, owner session.Owner, index int) (*cart.Cart, error) {
	args := m.Called(ctx, owner, index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartService) UpdateQuantity(ctx context.Context, owner session.Owner, index, delta int) (*cart.Cart, error) {
	args := m.Called(ctx, owner, index, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartService) Clear(ctx context.Context, owner session.Owner) error {
	args := m.Called(ctx, owner)
	return args.Error(0)
}

type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) result(args mock.Arguments) (*checkout.Session, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Session), args.Error(1)
}

func (m *MockCheckoutService) Get(ctx context.Context, owner session.Owner) (*checkout.Session, error) {
	return m.result(m.Called(ctx, owner))
}

func (m *MockCheckoutService) Continue(ctx context.Context, owner session.Owner) (*checkout.Session, error) {
	return m.result(m.Called(ctx, owner))
}

func (m *MockCheckoutService) SubmitShipping(ctx context.Context, owner session.Owner, form checkout.ShippingForm) (*checkout.Session, error) {
	return m.result(m.Called(ctx, owner, form))
}

func (m *MockCheckoutService) Pay(ctx context.Context, owner session.Owner, method order.PaymentMethod) (*checkout.Session, error) {
	return m.result(m.Called(ctx, owner, method))
}

func (m *MockCheckoutService) Close(ctx context.Context, owner session.Owner) (*checkout.Session, error) {
	return m.result(m.Called(ctx, owner))
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) SignUp(ctx context.Context, email, password string) (*auth.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Session), args.Error(1)
}

func (m *MockAuthService) SignIn(ctx context.Context, email, password string) (*auth.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Session), args.Error(1)
}

func (m *MockAuthService) SignOut(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*auth.State, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.State), args.Error(1)
}

func (m *MockAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockAuthService) ResetPassword(ctx context.Context, token, password string) error {
	args := m.Called(ctx, token, password)
	return args.Error(0)
}

func (m *MockAuthService) PurgeExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) Ensure(ctx context.Context, id, email string) (*customer.Customer, error) {
	args := m.Called(ctx, id, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerService) Profile(ctx context.Context, id string) (*customer.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerService) UpdateProfile(ctx context.Context, id string, update customer.ProfileUpdate) (*customer.Customer, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

func (m *MockCustomerService) Addresses(ctx context.Context, customerID string) ([]customer.Address, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]customer.Address), args.Error(1)
}

func (m *MockCustomerService) AddAddress(ctx context.Context, customerID string, a customer.Address) (*customer.Address, error) {
	args := m.Called(ctx, customerID, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Address), args.Error(1)
}

func (m *MockCustomerService) UpdateAddress(ctx context.Context, customerID string, a customer.Address) (*customer.Address, error) {
	args := m.Called(ctx, customerID, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Address), args.Error(1)
}

func (m *MockCustomerService) SetDefaultAddress(ctx context.Context, customerID, id string) error {
	args := m.Called(ctx, customerID, id)
	return args.Error(0)
}

func (m *MockCustomerService) DeleteAddress(ctx context.Context, customerID, id string) error {
	args := m.Called(ctx, customerID, id)
	return args.Error(0)
}

func (m *MockCustomerService) Orders(ctx context.Context, customerID string) ([]order.Order, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockCustomerService) Favorites(ctx context.Context, owner session.Owner) ([]catalog.Product, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

type MockFavoritesService struct {
	mock.Mock
}

func (m *MockFavoritesService) List(ctx context.Context, owner session.Owner) ([]catalog.ProductID, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.ProductID), args.Error(1)
}

func (m *MockFavoritesService) Toggle(ctx context.Context, owner session.Owner, id catalog.ProductID) (bool, error) {
	args := m.Called(ctx, owner, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockFavoritesService) Merge(ctx context.Context, owner session.Owner) ([]catalog.ProductID, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.ProductID), args.Error(1)
}

func (m *MockFavoritesService) Forget(customerID string) {
	m.Called(customerID)
}

type MockStaffService struct {
	mock.Mock
}

func (m *MockStaffService) Bootstrap(ctx context.Context, name, pin, store string) error {
	args := m.Called(ctx, name, pin, store)
	return args.Error(0)
}

func (m *MockStaffService) Login(ctx context.Context, terminal string, employeeID uuid.UUID, pin string) (*staff.CurrentUser, error) {
	args := m.Called(ctx, terminal, employeeID, pin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*staff.CurrentUser), args.Error(1)
}

func (m *MockStaffService) Current(ctx context.Context, terminal string) (*staff.CurrentUser, error) {
	args := m.Called(ctx, terminal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*staff.CurrentUser), args.Error(1)
}

func (m *MockStaffService) Logout(ctx context.Context, terminal string) error {
	args := m.Called(ctx, terminal)
	return args.Error(0)
}

func (m *MockStaffService) ClockIn(ctx context.Context, terminal string) (*staff.AttendanceRecord, error) {
	args := m.Called(ctx, terminal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*staff.AttendanceRecord), args.Error(1)
}

func (m *MockStaffService) ClockOut(ctx context.Context, terminal string) (*staff.AttendanceRecord, error) {
	args := m.Called(ctx, terminal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*staff.AttendanceRecord), args.Error(1)
}

func (m *MockStaffService) Attendance(ctx context.Context, terminal string, employeeID uuid.UUID) ([]staff.AttendanceRecord, error) {
	args := m.Called(ctx, terminal, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]staff.AttendanceRecord), args.Error(1)
}

func (m *MockStaffService) Directory(ctx context.Context) ([]staff.Badge, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]staff.Badge), args.Error(1)
}

func (m *MockStaffService) ListEmployees(ctx context.Context, terminal string) ([]staff.Employee, error) {
	args := m.Called(ctx, terminal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]staff.Employee), args.Error(1)
}

func (m *MockStaffService) CreateEmployee(ctx context.Context, terminal string, input staff.NewEmployee) (*staff.Employee, error) {
	args := m.Called(ctx, terminal, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*staff.Employee), args.Error(1)
}

type MockStaffRepository struct {
	mock.Mock
}

func (m *MockStaffRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockStaffRepository) List(ctx context.Context) ([]staff.Employee, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]staff.Employee), args.Error(1)
}

func (m *MockStaffRepository) GetByID(ctx context.Context, id uuid.UUID) (*staff.Employee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*staff.Employee), args.Error(1)
}

func (m *MockStaffRepository) Create(ctx context.Context, employee *staff.Employee) error {
	args := m.Called(ctx, employee)
	return args.Error(0)
}

func (m *MockStaffRepository) ClockIn(ctx context.Context, record *staff.AttendanceRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockStaffRepository) ClockOut(ctx context.Context, employeeID uuid.UUID, day time.Time, at time.Time) (*staff.AttendanceRecord, error) {
	args := m.Called(ctx, employeeID, day, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*staff.AttendanceRecord), args.Error(1)
}

func (m *MockStaffRepository) Attendance(ctx context.Context, employeeID uuid.UUID) ([]staff.AttendanceRecord, error) {
	args := m.Called(ctx, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]staff.AttendanceRecord), args.Error(1)
}
