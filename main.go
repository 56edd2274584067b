// File: flat2study/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flat2study/config"
	"flat2study/cron"
	"flat2study/database"
	bookingRepo "flat2study/database/repository/booking"
	profileRepo "flat2study/database/repository/profile"
	"flat2study/handlers"
	"flat2study/middleware"
	"flat2study/routes"
	"flat2study/services/booking"
	"flat2study/services/events"
	"flat2study/services/payment"
	"flat2study/services/tasks"
	"flat2study/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitAuthCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// Repositories.
	bookings := bookingRepo.NewMongoBookingRepo()
	profiles := profileRepo.NewMongoProfileRepo()

	// External collaborators.
	gateway := payment.NewStripeGateway(config.AppConfig.StripeKey, logger)

	var publisher events.Publisher = events.NopPublisher{}
	if len(config.AppConfig.KafkaBrokers) > 0 {
		kafkaPublisher, err := events.NewKafkaPublisher(
			config.AppConfig.KafkaBrokers, config.AppConfig.KafkaBookingTopic, logger)
		if err != nil {
			logger.Sugar().Warnf("main: booking events disabled, kafka unavailable: %v", err)
		} else {
			publisher = kafkaPublisher
			defer kafkaPublisher.Close()
		}
	}

	expiry := tasks.NewAsynqScheduler(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})

	// Services.
	workflow := booking.NewPaymentWorkflowService(
		bookings,
		profiles,
		gateway,
		publisher,
		expiry,
		logger,
		config.AppConfig.LandlordResponseWindow,
		config.AppConfig.AuthorizationValidity,
		config.AppConfig.ExpiryGracePeriod,
	)

	// Background worker for unanswered authorizations.
	cron.InitExpiryWorker(workflow)

	paymentHandler := handlers.NewPaymentHandler(workflow, logger)

	// Register routes.
	routes.RegisterRoutes(router, paymentHandler, profiles)

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
