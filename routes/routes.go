package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"medibook/handlers"
	"medibook/middleware"
	"medibook/utils"
)

// HandlerBundle groups the handler sets wired in main.
type HandlerBundle struct {
	Schedule     *handlers.ScheduleHandler
	Availability *handlers.AvailabilityHandler
	Booking      *handlers.BookingHandler
}

// RegisterScheduleRoutes registers provider schedule endpoints.
func RegisterScheduleRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/schedule")
	{
		api.GET("/:providerID/:date", hb.Schedule.GetDailySchedule)
		api.PUT("/:providerID/templates", hb.Schedule.PutWeeklyTemplates)
		api.PUT("/:providerID/exceptions", hb.Schedule.PutCalendarException)
	}
}

// RegisterAvailabilityRoutes registers availability lookup endpoints.
func RegisterAvailabilityRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/availability")
	{
		api.GET("/:providerID", hb.Availability.GetAvailability)
		api.GET("/:providerID/day/:date", hb.Availability.GetDayGroups)
	}
}

// RegisterBookingRoutes sets up the endpoints for the booking workflow.
func RegisterBookingRoutes(r *gin.Engine, hb *HandlerBundle) {
	bookingGroup := r.Group("/api/booking")
	{
		bookingGroup.POST("/session", hb.Booking.StartSession)
		bookingGroup.GET("/session/:sessionID", hb.Booking.GetState)
		bookingGroup.PUT("/session/:sessionID/steps/:step", hb.Booking.SelectStep)
		bookingGroup.POST("/session/:sessionID/navigate", hb.Booking.Navigate)
		bookingGroup.POST("/session/:sessionID/validate", hb.Booking.ValidateStep)
		bookingGroup.POST("/session/:sessionID/submit", hb.Booking.Submit)
		bookingGroup.POST("/session/:sessionID/reset", hb.Booking.Reset)
		bookingGroup.POST("/session/:sessionID/cancel/:bookingID", hb.Booking.CancelBooking)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, utils.GetHealthStatus())
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())

	RegisterHealthRoute(r)
	RegisterScheduleRoutes(r, hb)
	RegisterAvailabilityRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
}
