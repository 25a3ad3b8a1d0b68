package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	handler "github.com/vasiliy-maslov/technova/internal/handler/http"
	"github.com/vasiliy-maslov/technova/internal/kvstore"
	"github.com/vasiliy-maslov/technova/internal/repair"
)

func newRepairRouter(t *testing.T, jobs ...repair.Job) (*chi.Mux, repair.Service) {
	t.Helper()
	svc := repair.NewService(kvstore.NewMemoryBackend())
	for _, j := range jobs {
		_, err := svc.Save(t.Context(), j)
		require.NoError(t, err)
	}
	h := handler.NewRepairHandler(svc)
	return newTestRouter(anonymous, h.RegisterRoutes, h.RegisterStaffRoutes), svc
}

var screenJob = repair.Job{
	ID:           "WX-1001",
	CustomerName: "Ana Diaz",
	Phone:        "555-0101",
	Brand:        "Apple",
	Model:        "iPhone 13",
	Issue:        "Cracked screen",
	Technician:   "Lena",
	Status:       repair.StatusReadyForPickup,
	IsPublic:     true,
}

func TestRepairHandler_Lookup(t *testing.T) {
	private := screenJob
	private.ID = "WX-1002"
	private.IsPublic = false
	router, _ := newRepairRouter(t, screenJob, private)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/repairs/lookup/WX-1001", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var got repair.Job
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, "Apple iPhone 13", got.Device)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/repairs/lookup/WX-1002", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code, "private jobs are hidden")
}

func TestRepairHandler_Save(t *testing.T) {
	router, _ := newRepairRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/staff/repairs", jsonBody(t, repair.Job{CustomerName: "Bo", Issue: "No power"})))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, repair.ErrValidation.Error(), decodeError(t, rr))

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/staff/repairs", jsonBody(t, repair.Job{CustomerName: "Bo", Issue: "No power", Device: "Pixel 7"})))
	require.Equal(t, http.StatusCreated, rr.Code)
	var created repair.Job
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	assert.True(t, repair.ValidID(created.ID))
	assert.Equal(t, repair.StatusReceived, created.Status)

	edit := created
	edit.Status = repair.StatusPickedUp
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/staff/repairs/"+created.ID, jsonBody(t, edit)))
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestRepairHandler_CreateRefusesKnownID(t *testing.T) {
	router, svc := newRepairRouter(t, screenJob)

	clash := screenJob
	clash.CustomerName = "Mallory"
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/staff/repairs", jsonBody(t, clash)))
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, repair.ErrDuplicateID.Error(), decodeError(t, rr))

	got, err := svc.Get(t.Context(), screenJob.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Diaz", got.CustomerName)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/staff/repairs/"+screenJob.ID, jsonBody(t, clash)))
	require.Equal(t, http.StatusOK, rr.Code)

	got, err = svc.Get(t.Context(), screenJob.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mallory", got.CustomerName)
}

func TestRepairHandler_Board(t *testing.T) {
	other := screenJob
	other.ID = "WX-1003"
	other.CustomerName = "Carl"
	other.Technician = "Mo"
	router, _ := newRepairRouter(t, screenJob, other)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/staff/repairs/board?technician=Lena", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var columns []repair.Column
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&columns))
	require.Len(t, columns, len(repair.Columns))
	total := 0
	for _, c := range columns {
		total += len(c.Jobs)
	}
	assert.Equal(t, 1, total)
}

func TestRepairHandler_Moves(t *testing.T) {
	received := screenJob
	received.ID = "WX-1004"
	received.Status = repair.StatusReceived
	router, svc := newRepairRouter(t, screenJob, received)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/staff/repairs/WX-1004/quick-finish", nil))
	assert.Equal(t, http.StatusConflict, rr.Code, "quick-finish needs Ready for Pickup")

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/staff/repairs/WX-1001/quick-finish", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var finished repair.Job
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&finished))
	assert.Equal(t, repair.StatusFinished, finished.Status)
	assert.Equal(t, 100, finished.Progress)
	assert.NotEmpty(t, finished.EstimatedCompletion)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/staff/repairs/WX-1004/move", jsonBody(t, handler.MoveRepairRequest{Status: repair.StatusDiagnosing})))
	require.Equal(t, http.StatusOK, rr.Code)
	job, err := svc.Get(t.Context(), "WX-1004")
	require.NoError(t, err)
	assert.Equal(t, repair.StatusDiagnosing, job.Status)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/staff/repairs/WX-1004", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/staff/repairs/WX-1004", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
