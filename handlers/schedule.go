package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"medibook/models"
	"medibook/services/schedule"
	"medibook/utils"
)

// ScheduleHandler exposes daily schedule generation and the template /
// exception administration endpoints.
type ScheduleHandler struct {
	Generator *schedule.Generator
}

func NewScheduleHandler(gen *schedule.Generator) *ScheduleHandler {
	return &ScheduleHandler{Generator: gen}
}

// GetDailySchedule handles GET /api/schedule/:providerID/:date.
func (h *ScheduleHandler) GetDailySchedule(c *gin.Context) {
	providerID := c.Param("providerID")
	date := c.Param("date")

	sched, err := h.Generator.GenerateDailySchedule(c.Request.Context(), providerID, date)
	if err != nil {
		status, message := scheduleErrorStatus(err)
		utils.JSONError(c, status, message, err.Error())
		return
	}
	c.JSON(http.StatusOK, sched)
}

// scheduleErrorStatus maps generator errors onto HTTP statuses.
func scheduleErrorStatus(err error) (int, string) {
	var cfgErr *schedule.ConfigurationError
	var nfErr *schedule.NotFoundError
	var conflictErr *schedule.SlotConflictError
	switch {
	case errors.As(err, &cfgErr):
		return http.StatusUnprocessableEntity, "invalid schedule configuration"
	case errors.As(err, &nfErr):
		return http.StatusNotFound, "resource not found"
	case errors.As(err, &conflictErr):
		return http.StatusConflict, "slot conflict"
	default:
		return http.StatusInternalServerError, "failed to generate schedule"
	}
}

// PutWeeklyTemplates handles PUT /api/schedule/:providerID/templates,
// replacing the provider's weekly setup wholesale.
func (h *ScheduleHandler) PutWeeklyTemplates(c *gin.Context) {
	providerID := c.Param("providerID")
	var input struct {
		Templates []models.WeeklyTemplate `json:"templates" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if err := h.Generator.Templates.ReplaceWeek(c.Request.Context(), providerID, input.Templates); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to store templates", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"providerId": providerID, "templates": len(input.Templates)})
}

// PutCalendarException handles PUT /api/schedule/:providerID/exceptions.
func (h *ScheduleHandler) PutCalendarException(c *gin.Context) {
	providerID := c.Param("providerID")
	var exc models.CalendarException
	if err := c.ShouldBindJSON(&exc); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	exc.ProviderID = providerID
	switch exc.Kind {
	case models.ExceptionBlocked, models.ExceptionModified, models.ExceptionHoliday:
	default:
		utils.JSONError(c, http.StatusBadRequest, "invalid exception kind", exc.Kind)
		return
	}
	if err := h.Generator.Exceptions.PutException(c.Request.Context(), exc); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to store exception", err.Error())
		return
	}
	c.JSON(http.StatusOK, exc)
}
