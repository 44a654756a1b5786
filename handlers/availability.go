package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medibook/services/availability"
	"medibook/utils"
)

// AvailabilityHandler exposes date-range availability summaries.
type AvailabilityHandler struct {
	Aggregator *availability.Aggregator
}

func NewAvailabilityHandler(agg *availability.Aggregator) *AvailabilityHandler {
	return &AvailabilityHandler{Aggregator: agg}
}

// GetAvailability handles GET /api/availability/:providerID?start=...&end=...
func (h *AvailabilityHandler) GetAvailability(c *gin.Context) {
	providerID := c.Param("providerID")
	start := c.Query("start")
	end := c.Query("end")
	if start == "" || end == "" {
		utils.JSONError(c, http.StatusBadRequest, "missing date range", "start and end query parameters are required")
		return
	}

	result, err := h.Aggregator.GetAvailability(c.Request.Context(), providerID, start, end)
	if err != nil {
		status, message := scheduleErrorStatus(err)
		utils.JSONError(c, status, message, err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetDayGroups handles GET /api/availability/:providerID/day/:date,
// returning the day's slots bucketed by time of day.
func (h *AvailabilityHandler) GetDayGroups(c *gin.Context) {
	providerID := c.Param("providerID")
	date := c.Param("date")

	sched, err := h.Aggregator.Generator.GenerateDailySchedule(c.Request.Context(), providerID, date)
	if err != nil {
		status, message := scheduleErrorStatus(err)
		utils.JSONError(c, status, message, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":   date,
		"groups": availability.GroupSlotsByTimeRange(sched.TimeSlots),
	})
}
