package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"moodtracker/internal/errors"
	"moodtracker/internal/model"
	"moodtracker/internal/service"
)

// MoodHandler serves a patient's own mood entries.
type MoodHandler struct {
	moods service.MoodService
	log   logrus.FieldLogger
}

// NewMoodHandler creates a new mood handler.
func NewMoodHandler(moods service.MoodService, log logrus.FieldLogger) *MoodHandler {
	return &MoodHandler{moods: moods, log: log}
}

// MoodRequest carries a raw rate so that non-integer values can be rejected as InvalidRate.
type MoodRequest struct {
	Rate interface{} `json:"rate" swaggertype:"integer"`
}

// ConfigResponse wraps the static mood configuration.
type ConfigResponse struct {
	Error  *string          `json:"error" swaggertype:"string" extensions:"x-nullable"`
	Config model.MoodConfig `json:"config"`
}

// MoodListResponse is a patient's history with today's status.
type MoodListResponse struct {
	Error        *string      `json:"error" swaggertype:"string" extensions:"x-nullable"`
	Moods        []model.Mood `json:"moods"`
	TodayTracked bool         `json:"todayTracked"`
	TodayMood    *model.Mood  `json:"todayMood"`
}

// TodayResponse reports today's entry, null when untracked.
type TodayResponse struct {
	Error   *string     `json:"error" swaggertype:"string" extensions:"x-nullable"`
	Tracked bool        `json:"tracked"`
	Mood    *model.Mood `json:"mood"`
}

// MoodResponse acknowledges a write with the resulting entry.
type MoodResponse struct {
	Error   *string     `json:"error" swaggertype:"string" extensions:"x-nullable"`
	Message string      `json:"message"`
	Mood    *model.Mood `json:"mood"`
}

// Config godoc
// @Summary Mood rate bounds
// @Tags moods
// @Produce json
// @Success 200 {object} ConfigResponse
// @Router /moods/config [get]
func (h *MoodHandler) Config(c echo.Context) error {
	return c.JSON(http.StatusOK, ConfigResponse{Config: h.moods.Config()})
}

// List godoc
// @Summary List own moods
// @Tags moods
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MoodListResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /moods [get]
func (h *MoodHandler) List(c echo.Context) error {
	id, err := requireRole(c, model.RolePatient)
	if err != nil {
		return fail(c, h.log, err)
	}

	overview, err := h.moods.Overview(c.Request().Context(), id.UserID)
	if err != nil {
		return fail(c, h.log, err)
	}

	moods := overview.Moods
	if moods == nil {
		moods = []model.Mood{}
	}
	return c.JSON(http.StatusOK, MoodListResponse{
		Moods:        moods,
		TodayTracked: overview.TodayTracked,
		TodayMood:    overview.TodayMood,
	})
}

// Today godoc
// @Summary Today's mood
// @Tags moods
// @Produce json
// @Security BearerAuth
// @Success 200 {object} TodayResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /moods/today [get]
func (h *MoodHandler) Today(c echo.Context) error {
	id, err := requireRole(c, model.RolePatient)
	if err != nil {
		return fail(c, h.log, err)
	}

	mood, err := h.moods.Today(c.Request().Context(), id.UserID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, TodayResponse{Tracked: mood != nil, Mood: mood})
}

// Create godoc
// @Summary Track today's mood
// @Tags moods
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body MoodRequest true "Rate between 1 and 10"
// @Success 201 {object} MoodResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /moods [post]
func (h *MoodHandler) Create(c echo.Context) error {
	id, err := requireRole(c, model.RolePatient)
	if err != nil {
		return fail(c, h.log, err)
	}

	rate, err := bindRate(c)
	if err != nil {
		return fail(c, h.log, err)
	}

	mood, err := h.moods.Create(c.Request().Context(), id.UserID, rate)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, MoodResponse{Message: "Mood added successfully", Mood: mood})
}

// Update godoc
// @Summary Change today's mood
// @Tags moods
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body MoodRequest true "Rate between 1 and 10"
// @Success 200 {object} MoodResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /moods [put]
func (h *MoodHandler) Update(c echo.Context) error {
	id, err := requireRole(c, model.RolePatient)
	if err != nil {
		return fail(c, h.log, err)
	}

	rate, err := bindRate(c)
	if err != nil {
		return fail(c, h.log, err)
	}

	mood, err := h.moods.Update(c.Request().Context(), id.UserID, rate)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, MoodResponse{Message: "Mood updated successfully", Mood: mood})
}

// Delete godoc
// @Summary Delete today's mood
// @Tags moods
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /moods [delete]
func (h *MoodHandler) Delete(c echo.Context) error {
	id, err := requireRole(c, model.RolePatient)
	if err != nil {
		return fail(c, h.log, err)
	}

	if err := h.moods.Delete(c.Request().Context(), id.UserID); err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Mood deleted successfully"})
}

// bindRate decodes the body and applies the integer rate rule. Any malformed body is an invalid rate.
func bindRate(c echo.Context) (int, error) {
	var req MoodRequest
	if err := c.Bind(&req); err != nil {
		return 0, errors.ErrInvalidRate
	}
	return model.ParseRate(req.Rate)
}
