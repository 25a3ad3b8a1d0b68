package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"

	"github.com/vasiliy-maslov/technova/internal/session"
	"github.com/vasiliy-maslov/technova/internal/staff"
)

type StaffLoginRequest struct {
	EmployeeID uuid.UUID `json:"employeeId" validate:"required"`
	PIN        string    `json:"pin" validate:"required,len=4,numeric"`
}

type StaffHandler struct {
	service  staff.Service
	validate *validator.Validate
}

func NewStaffHandler(service staff.Service) *StaffHandler {
	return &StaffHandler{
		service:  service,
		validate: newValidator(),
	}
}

func (h *StaffHandler) RegisterRoutes(router chi.Router) {
	router.Get("/staff/directory", h.handleDirectory)
	router.Post("/staff/login", h.handleLogin)
}

// RegisterStaffRoutes expects the router to be guarded for signed-in staff.
func (h *StaffHandler) RegisterStaffRoutes(router chi.Router) {
	router.Get("/staff/me", h.handleMe)
	router.Post("/staff/logout", h.handleLogout)
	router.Post("/staff/attendance/clock-in", h.handleClockIn)
	router.Post("/staff/attendance/clock-out", h.handleClockOut)
	router.Get("/staff/attendance/{employeeID}", h.handleAttendance)
	router.Get("/staff/employees", h.handleListEmployees)
	router.Post("/staff/employees", h.handleCreateEmployee)
}

func (h *StaffHandler) handleDirectory(w http.ResponseWriter, r *http.Request) {
	badges, err := h.service.Directory(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, badges)
}

func (h *StaffHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload StaffLoginRequest
	if !decodeJSON(w, r, &payload) || !validateStruct(w, h.validate, payload) {
		return
	}

	user, err := h.service.Login(r.Context(), terminal(r), payload.EmployeeID, payload.PIN)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

func (h *StaffHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), terminal(r)); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *StaffHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	if user := currentStaff(r.Context()); user != nil {
		respondWithJSON(w, http.StatusOK, user)
		return
	}

	user, err := h.service.Current(r.Context(), terminal(r))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

func (h *StaffHandler) handleClockIn(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.ClockIn(r.Context(), terminal(r))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, record)
}

func (h *StaffHandler) handleClockOut(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.ClockOut(r.Context(), terminal(r))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, record)
}

func (h *StaffHandler) handleAttendance(w http.ResponseWriter, r *http.Request) {
	employeeID, err := uuid.FromString(chi.URLParam(r, "employeeID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid employee ID format")
		return
	}

	records, err := h.service.Attendance(r.Context(), terminal(r), employeeID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if records == nil {
		records = []staff.AttendanceRecord{}
	}
	respondWithJSON(w, http.StatusOK, records)
}

func (h *StaffHandler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.service.ListEmployees(r.Context(), terminal(r))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, employees)
}

func (h *StaffHandler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var payload staff.NewEmployee
	if !decodeJSON(w, r, &payload) || !validateStruct(w, h.validate, payload) {
		return
	}

	employee, err := h.service.CreateEmployee(r.Context(), terminal(r), payload)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, employee)
}

// terminal identifies the browser a staff session belongs to.
func terminal(r *http.Request) string {
	return session.FromContext(r.Context()).Scope
}
