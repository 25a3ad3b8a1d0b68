package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vasiliy-maslov/technova/internal/assistant"
	"github.com/vasiliy-maslov/technova/internal/auth"
	"github.com/vasiliy-maslov/technova/internal/catalog"
	"github.com/vasiliy-maslov/technova/internal/filestore"
	handler "github.com/vasiliy-maslov/technova/internal/handler/http"
	"github.com/vasiliy-maslov/technova/internal/inventory"
	"github.com/vasiliy-maslov/technova/internal/kvstore"
	"github.com/vasiliy-maslov/technova/internal/order"
	"github.com/vasiliy-maslov/technova/internal/preferences"
	"github.com/vasiliy-maslov/technova/internal/repair"
	"github.com/vasiliy-maslov/technova/internal/staff"
)

type routerFixture struct {
	router http.Handler
	loader *MockLoader
	staff  *MockStaffService
}

func newRouterFixture() routerFixture {
	loader := new(MockLoader)
	staffService := new(MockStaffService)
	return routerFixture{router: buildRouter(loader, staffService), loader: loader, staff: staffService}
}

func buildRouter(loader *MockLoader, staffService staff.Service) http.Handler {
	backend := kvstore.NewMemoryBackend()
	authService := new(MockAuthService)
	favoritesService := new(MockFavoritesService)
	customers := new(MockCustomerService)
	assistantService, _ := assistant.NewService(context.Background(), assistant.Config{})

	return handler.NewRouter(handler.Handlers{
		Products:    handler.NewProductHandler(loader, new(MockManager), filestore.NewMemoryStore()),
		Cart:        handler.NewCartHandler(new(MockCartService), loader),
		Checkout:    handler.NewCheckoutHandler(new(MockCheckoutService)),
		Favorites:   handler.NewFavoritesHandler(favoritesService),
		Auth:        handler.NewAuthHandler(authService, customers, favoritesService),
		Account:     handler.NewAccountHandler(customers),
		Repairs:     handler.NewRepairHandler(repair.NewService(backend)),
		Inventory:   handler.NewInventoryHandler(inventory.NewService(backend)),
		Staff:       handler.NewStaffHandler(staffService),
		Orders:      handler.NewOrderHandler(order.NewService(backend)),
		Preferences: handler.NewPreferencesHandler(preferences.NewService(backend)),
		Assistant:   handler.NewAssistantHandler(assistantService),
	}, authService, staffService)
}

func TestRouter_Health(t *testing.T) {
	f := newRouterFixture()

	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
}

func TestRouter_PublicRouteIssuesSession(t *testing.T) {
	f := newRouterFixture()
	f.loader.On("List", mock.Anything, catalog.Filter{}).Return([]catalog.Product{}).Once()

	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/products/", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(handler.SessionHeader))
	f.staff.AssertNotCalled(t, "Current", mock.Anything, mock.Anything)
	f.loader.AssertExpectations(t)
}

func TestRouter_StaffGuards(t *testing.T) {
	technician := &staff.CurrentUser{ID: uuid.Must(uuid.NewV4()), Name: "Lena", Role: staff.RoleTechnician}

	tests := []struct {
		name     string
		method   string
		path     string
		current  *staff.CurrentUser
		err      error
		wantCode int
	}{
		{name: "repairs_signed_out", method: http.MethodGet, path: "/api/v1/staff/repairs", err: staff.ErrNotSignedIn, wantCode: http.StatusUnauthorized},
		{name: "repairs_technician", method: http.MethodGet, path: "/api/v1/staff/repairs", current: technician, wantCode: http.StatusOK},
		{name: "inventory_signed_out", method: http.MethodGet, path: "/api/v1/staff/inventory", err: staff.ErrNotSignedIn, wantCode: http.StatusUnauthorized},
		{name: "admin_products_technician", method: http.MethodDelete, path: "/api/v1/admin/products/7", current: technician, wantCode: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture()
			if tt.err != nil {
				f.staff.On("Current", mock.Anything, mock.Anything).Return(nil, tt.err).Once()
			} else {
				f.staff.On("Current", mock.Anything, mock.Anything).Return(tt.current, nil).Once()
			}

			rr := httptest.NewRecorder()
			f.router.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.wantCode, rr.Code)
			f.staff.AssertExpectations(t)
		})
	}
}

func TestRouter_RepairLookupIsPublic(t *testing.T) {
	f := newRouterFixture()

	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/repairs/lookup/WX-9999", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	f.staff.AssertNotCalled(t, "Current", mock.Anything, mock.Anything)
}

func TestRouter_StaffSessionBelongsToOneTerminal(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("1234"), bcrypt.MinCost)
	require.NoError(t, err)
	employee := &staff.Employee{ID: uuid.Must(uuid.NewV4()), Name: "Lena", Role: staff.RoleTechnician, PINHash: string(hash), Store: "downtown"}
	repo := new(MockStaffRepository)
	repo.On("GetByID", mock.Anything, employee.ID).Return(employee, nil).Once()
	staffService := staff.NewService(repo, kvstore.NewMemoryBackend(), auth.NewLimiter(5, time.Minute), staff.Options{SessionTTL: time.Hour, Grace: 5 * time.Minute})
	router := buildRouter(new(MockLoader), staffService)

	counter := uuid.Must(uuid.NewV4()).String()
	kiosk := uuid.Must(uuid.NewV4()).String()
	send := func(method, path, sessionID string, body any) int {
		var req *http.Request
		if body != nil {
			req = httptest.NewRequest(method, path, jsonBody(t, body))
		} else {
			req = httptest.NewRequest(method, path, nil)
		}
		if sessionID != "" {
			req.Header.Set(handler.SessionHeader, sessionID)
		}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr.Code
	}

	login := handler.StaffLoginRequest{EmployeeID: employee.ID, PIN: "1234"}
	require.Equal(t, http.StatusOK, send(http.MethodPost, "/api/v1/staff/login", counter, login))

	assert.Equal(t, http.StatusOK, send(http.MethodGet, "/api/v1/staff/me", counter, nil))
	assert.Equal(t, http.StatusOK, send(http.MethodGet, "/api/v1/staff/repairs", counter, nil))
	assert.Equal(t, http.StatusUnauthorized, send(http.MethodGet, "/api/v1/staff/me", kiosk, nil))
	assert.Equal(t, http.StatusUnauthorized, send(http.MethodGet, "/api/v1/staff/repairs", "", nil))
	assert.Equal(t, http.StatusUnauthorized, send(http.MethodPost, "/api/v1/staff/attendance/clock-in", kiosk, nil))

	assert.Equal(t, http.StatusUnauthorized, send(http.MethodPost, "/api/v1/staff/logout", kiosk, nil))
	assert.Equal(t, http.StatusOK, send(http.MethodGet, "/api/v1/staff/me", counter, nil), "another terminal cannot sign the counter out")

	assert.Equal(t, http.StatusNoContent, send(http.MethodPost, "/api/v1/staff/logout", counter, nil))
	assert.Equal(t, http.StatusUnauthorized, send(http.MethodGet, "/api/v1/staff/me", counter, nil))
	repo.AssertExpectations(t)
}
