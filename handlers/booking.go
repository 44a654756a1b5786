package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"medibook/models"
	"medibook/services/schedule"
	"medibook/services/workflow"
	"medibook/utils"
)

// BookingHandler drives the booking workflow over HTTP. Each endpoint loads
// the session's engine, applies one action, then checkpoints the snapshot.
type BookingHandler struct {
	Sessions *workflow.SessionManager
}

func NewBookingHandler(sessions *workflow.SessionManager) *BookingHandler {
	return &BookingHandler{Sessions: sessions}
}

// StartSession handles POST /api/booking/session.
func (h *BookingHandler) StartSession(c *gin.Context) {
	engine, err := h.Sessions.StartSession(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to start booking session", err.Error())
		return
	}
	c.JSON(http.StatusOK, engine.State())
}

// GetState handles GET /api/booking/session/:sessionID.
func (h *BookingHandler) GetState(c *gin.Context) {
	engine, ok := h.loadSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, engine.State())
}

type selectionInput struct {
	DoctorID          string                     `json:"doctorId,omitempty"`
	ClinicID          string                     `json:"clinicId,omitempty"`
	AppointmentTypeID string                     `json:"appointmentTypeId,omitempty"`
	Date              string                     `json:"date,omitempty"`
	Slot              *models.TimeSlot           `json:"slot,omitempty"`
	Patient           *models.PatientInformation `json:"patient,omitempty"`
	Payment           *models.PaymentInformation `json:"payment,omitempty"`
}

// SelectStep handles PUT /api/booking/session/:sessionID/steps/:step.
func (h *BookingHandler) SelectStep(c *gin.Context) {
	engine, ok := h.loadSession(c)
	if !ok {
		return
	}
	var input selectionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	switch models.Step(c.Param("step")) {
	case models.StepDoctorSelection:
		engine.SelectDoctor(input.DoctorID, input.ClinicID)
	case models.StepAppointmentType:
		engine.SelectAppointmentType(input.AppointmentTypeID)
	case models.StepDateSelection:
		engine.SelectDate(input.Date)
	case models.StepTimeSelection:
		if input.Slot == nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid input", "slot is required for time-selection")
			return
		}
		engine.SelectTimeSlot(*input.Slot)
	case models.StepPatientInformation:
		if input.Patient == nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid input", "patient is required for patient-information")
			return
		}
		engine.SetPatientInformation(*input.Patient)
	case models.StepInsuranceVerification:
		if input.Payment == nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid input", "payment is required for insurance-verification")
			return
		}
		engine.SetPaymentInformation(*input.Payment)
	default:
		utils.JSONError(c, http.StatusBadRequest, "unknown step", c.Param("step"))
		return
	}

	h.checkpoint(c, engine)
	c.JSON(http.StatusOK, engine.State())
}

// Navigate handles POST /api/booking/session/:sessionID/navigate.
func (h *BookingHandler) Navigate(c *gin.Context) {
	engine, ok := h.loadSession(c)
	if !ok {
		return
	}
	var input struct {
		Direction string      `json:"direction,omitempty"` // "next" or "previous"
		Step      models.Step `json:"step,omitempty"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	var err error
	switch {
	case input.Direction == "next":
		err = engine.GoToNextStep()
	case input.Direction == "previous":
		err = engine.GoToPreviousStep()
	case input.Step != "":
		err = engine.GoToStep(input.Step)
	default:
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "direction or step is required")
		return
	}
	if err != nil {
		utils.JSONError(c, http.StatusConflict, "step not reachable", err.Error())
		return
	}

	h.checkpoint(c, engine)
	c.JSON(http.StatusOK, engine.State())
}

// ValidateStep handles POST /api/booking/session/:sessionID/validate.
func (h *BookingHandler) ValidateStep(c *gin.Context) {
	engine, ok := h.loadSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, engine.ValidateCurrentStep())
}

// Submit handles POST /api/booking/session/:sessionID/submit, the single
// mutating commit path.
func (h *BookingHandler) Submit(c *gin.Context) {
	engine, ok := h.loadSession(c)
	if !ok {
		return
	}

	booking, err := engine.SubmitBooking(c.Request.Context())
	if err != nil {
		var verr *workflow.ValidationError
		var conflict *schedule.SlotConflictError
		var perr *workflow.PaymentError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{"error": "booking validation failed", "fields": verr.Errors})
		case errors.As(err, &conflict):
			utils.JSONError(c, http.StatusConflict, "slot no longer available", err.Error())
		case errors.As(err, &perr):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "payment failed", "bookingId": perr.BookingID})
		default:
			utils.JSONError(c, http.StatusInternalServerError, "failed to submit booking", err.Error())
		}
		return
	}

	h.checkpoint(c, engine)
	c.JSON(http.StatusOK, gin.H{"booking": booking, "state": engine.State()})
}

// Reset handles POST /api/booking/session/:sessionID/reset.
func (h *BookingHandler) Reset(c *gin.Context) {
	engine, ok := h.loadSession(c)
	if !ok {
		return
	}
	engine.ResetFlow()
	h.checkpoint(c, engine)
	c.JSON(http.StatusOK, engine.State())
}

// CancelBooking handles POST /api/booking/session/:sessionID/cancel/:bookingID.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	engine, ok := h.loadSession(c)
	if !ok {
		return
	}
	if err := engine.CancelBooking(c.Request.Context(), c.Param("bookingID")); err != nil {
		utils.JSONError(c, http.StatusConflict, "failed to cancel booking", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": c.Param("bookingID")})
}

func (h *BookingHandler) loadSession(c *gin.Context) (*workflow.Engine, bool) {
	engine, err := h.Sessions.GetSession(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "booking session not found or expired", err.Error())
		return nil, false
	}
	return engine, true
}

func (h *BookingHandler) checkpoint(c *gin.Context, engine *workflow.Engine) {
	if err := h.Sessions.Checkpoint(c.Request.Context(), engine); err != nil {
		utils.GetLogger().Sugar().Warnf("failed to checkpoint session %s: %v", engine.SessionID(), err)
	}
}
