package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"moodtracker/internal/errors"
	"moodtracker/internal/model"
	"moodtracker/internal/service"
)

// DoctorHandler serves the doctor's patient management endpoints.
type DoctorHandler struct {
	assignments service.AssignmentService
	log         logrus.FieldLogger
}

// NewDoctorHandler creates a new doctor handler.
func NewDoctorHandler(assignments service.AssignmentService, log logrus.FieldLogger) *DoctorHandler {
	return &DoctorHandler{assignments: assignments, log: log}
}

// PatientsResponse lists the caller's patients and the unassigned pool.
type PatientsResponse struct {
	Error              *string               `json:"error" swaggertype:"string" extensions:"x-nullable"`
	MyPatients         []model.RankedPatient `json:"myPatients"`
	UnassignedPatients []model.RankedPatient `json:"unassignedPatients"`
}

// PatientResponse acknowledges an assignment change.
type PatientResponse struct {
	Error   *string     `json:"error" swaggertype:"string" extensions:"x-nullable"`
	Message string      `json:"message"`
	Patient *model.User `json:"patient"`
}

// PatientMoodsResponse is an assigned patient's history.
type PatientMoodsResponse struct {
	Error   *string      `json:"error" swaggertype:"string" extensions:"x-nullable"`
	Patient *model.User  `json:"patient"`
	Moods   []model.Mood `json:"moods"`
}

// Patients godoc
// @Summary List patients
// @Description Assigned and unassigned patients. sort=score (default) puts the lowest average first.
// @Tags doctor
// @Produce json
// @Security BearerAuth
// @Param sort query string false "score or name"
// @Success 200 {object} PatientsResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /doctor/patients [get]
func (h *DoctorHandler) Patients(c echo.Context) error {
	id, err := requireRole(c, model.RoleDoctor)
	if err != nil {
		return fail(c, h.log, err)
	}

	order, err := service.ParsePatientOrder(c.QueryParam("sort"))
	if err != nil {
		return fail(c, h.log, err)
	}

	list, err := h.assignments.ListPatients(c.Request().Context(), id.UserID, order)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, PatientsResponse{
		MyPatients:         nonNil(list.MyPatients),
		UnassignedPatients: nonNil(list.UnassignedPatients),
	})
}

// Assign godoc
// @Summary Assign a patient to the caller
// @Tags doctor
// @Produce json
// @Security BearerAuth
// @Param patientId path string true "Patient ID"
// @Success 200 {object} PatientResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /doctor/patients/{patientId}/assign [post]
func (h *DoctorHandler) Assign(c echo.Context) error {
	id, err := requireRole(c, model.RoleDoctor)
	if err != nil {
		return fail(c, h.log, err)
	}

	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return fail(c, h.log, errors.ErrPatientNotFound)
	}

	patient, err := h.assignments.Assign(c.Request().Context(), id.UserID, patientID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, PatientResponse{Message: "Patient assigned successfully", Patient: patient})
}

// Unassign godoc
// @Summary Release one of the caller's patients
// @Tags doctor
// @Produce json
// @Security BearerAuth
// @Param patientId path string true "Patient ID"
// @Success 200 {object} PatientResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /doctor/patients/{patientId}/assign [delete]
func (h *DoctorHandler) Unassign(c echo.Context) error {
	id, err := requireRole(c, model.RoleDoctor)
	if err != nil {
		return fail(c, h.log, err)
	}

	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return fail(c, h.log, errors.ErrPatientNotAssigned)
	}

	patient, err := h.assignments.Unassign(c.Request().Context(), id.UserID, patientID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, PatientResponse{Message: "Patient unassigned successfully", Patient: patient})
}

// Moods godoc
// @Summary Mood history of an assigned patient
// @Tags doctor
// @Produce json
// @Security BearerAuth
// @Param patientId path string true "Patient ID"
// @Success 200 {object} PatientMoodsResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /doctor/patients/{patientId}/moods [get]
func (h *DoctorHandler) Moods(c echo.Context) error {
	id, err := requireRole(c, model.RoleDoctor)
	if err != nil {
		return fail(c, h.log, err)
	}

	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return fail(c, h.log, errors.ErrPatientNotAssigned)
	}

	patient, moods, err := h.assignments.PatientMoods(c.Request().Context(), id.UserID, patientID)
	if err != nil {
		return fail(c, h.log, err)
	}
	if moods == nil {
		moods = []model.Mood{}
	}
	return c.JSON(http.StatusOK, PatientMoodsResponse{Patient: patient, Moods: moods})
}

func nonNil(p []model.RankedPatient) []model.RankedPatient {
	if p == nil {
		return []model.RankedPatient{}
	}
	return p
}
