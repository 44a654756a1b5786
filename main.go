package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"

	"medibook/config"
	"medibook/database"
	"medibook/database/repository"
	"medibook/handlers"
	"medibook/routes"
	"medibook/services/availability"
	"medibook/services/payment"
	"medibook/services/schedule"
	"medibook/services/tasks"
	"medibook/services/workflow"
	"medibook/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitSessionCache()
	stripe.Key = config.AppConfig.StripeKey

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	templateRepo := repository.NewMongoTemplateRepo()
	exceptionRepo := repository.NewMongoExceptionRepo()
	reservationRepo := repository.NewMongoReservationRepo()
	bookingRepo := repository.NewMongoBookingRepo()

	// services.
	generator := schedule.NewGenerator(templateRepo, exceptionRepo, reservationRepo)
	aggregator := availability.NewAggregator(generator)
	aggregator.HorizonDays = config.AppConfig.BookingHorizonDays

	asynqClient := asynq.NewClient(tasks.QueueRedisOpt())
	defer asynqClient.Close()
	reminderScheduler := tasks.NewScheduler(asynqClient)
	tasks.InitReminderWorker(logger)

	processor := payment.NewProcessor(logger)

	sessionTTL := time.Duration(config.AppConfig.SessionTTLMinutes) * time.Minute
	sessionStore := workflow.NewStore(utils.GetSessionCacheClient(), sessionTTL)
	sessions := workflow.NewSessionManager(workflow.Deps{
		Generator: generator,
		Bookings:  bookingRepo,
		Payments:  processor,
		Reminders: reminderScheduler,
		Logger:    logger,
	}, sessionStore)

	// Assemble the handler bundle.
	handlerBundle := &routes.HandlerBundle{
		Schedule:     handlers.NewScheduleHandler(generator),
		Availability: handlers.NewAvailabilityHandler(aggregator),
		Booking:      handlers.NewBookingHandler(sessions),
	}
	routes.RegisterRoutes(router, handlerBundle)

	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetCacheClient(), utils.GetSessionCacheClient()},
		database.MongoClient,
	)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
