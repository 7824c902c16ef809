package main

import (
	"bookingsheet/internal/bookings/events"
	"bookingsheet/internal/bookings/handler"
	"bookingsheet/internal/bookings/repository"
	"bookingsheet/internal/bookings/service"
	"bookingsheet/internal/bookings/validator"
	"bookingsheet/pkg/app"
	"bookingsheet/pkg/config"
	"bookingsheet/pkg/logger"
)

const ServiceName = "bookingsheet"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{Service: ServiceName}).Fatal("Invalid configuration", "error", err)
	}

	log := cfg.NewLogger(ServiceName)

	// Log all configuration values
	cfg.LogConfiguration(log)

	log.Info("Starting booking sheet service")
	bookingRepo := repository.NewSheetBookingRepository(cfg, log)
	publisher := initPublisher(cfg, log)
	bookingService := initServices(cfg, bookingRepo, publisher, log)

	serverApp := app.NewApplication(cfg, log)
	serverApp.SetApp(
		handler.NewHealthHandler(bookingRepo, log),
		handler.NewBookingHandler(bookingService, cfg.MaxRequestSize, log),
		publisher.Close,
	)
	serverApp.Run()
}

func initPublisher(cfg *config.Config, log *logger.Logger) events.Publisher {
	if !cfg.Kafka.Enabled() {
		log.Info("Kafka brokers not configured, booking events disabled")
		return events.NewNoopPublisher()
	}

	publisher, err := events.NewKafkaPublisher(cfg, ServiceName, log)
	if err != nil {
		log.Fatal("Failed to create booking event publisher", "error", err)
	}
	log.Info("Booking events enabled", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	return publisher
}

func initServices(
	cfg *config.Config,
	bookingRepo repository.BookingRepository,
	publisher events.Publisher,
	log *logger.Logger,
) service.BookingService {
	bookingValidator := validator.NewBookingValidator(log)
	bookingService := service.NewBookingService(
		bookingRepo,
		publisher,
		bookingValidator,
		log,
	)

	log.Info("Booking service initialized", "store_file", cfg.StoreFile, "sheet_name", cfg.SheetName)
	return bookingService
}
