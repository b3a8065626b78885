package main

import (
	"context"

	"lodgebook/internal/reservations/handler"
	"lodgebook/internal/reservations/notifier"
	"lodgebook/internal/reservations/repository"
	"lodgebook/internal/reservations/service"
	"lodgebook/internal/reservations/validator"
	"lodgebook/pkg/app"
	"lodgebook/pkg/client"
	"lodgebook/pkg/config"
	"lodgebook/pkg/kafka"
	kafka_config "lodgebook/pkg/kafka/config"
	kafka_middleware "lodgebook/pkg/kafka/middleware"
)

const ServiceName = "reservations"

const (
	notificationsDLQTopic = "notifications.dlq"
)

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Reservations service")

	producer := initProducer(cfg)
	requestService, reservationService := initServices(cfg, producer)

	api := handler.NewAPI(
		handler.NewRequestHandler(requestService, cfg.Log),
		handler.NewReservationHandler(reservationService, cfg.Log),
	)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, api)
	serverApp.OnShutdown(func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
		cfg.Client.GracefulShutdown()
	})
	serverApp.Run()
}

func initProducer(cfg *config.Config) *kafka.Producer {
	kafkaCfg := kafka_config.Load()
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, notifier.Topic, notificationsDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware())
	}

	return producer
}

func initServices(cfg *config.Config, producer *kafka.Producer) (service.RequestService, service.ReservationService) {
	requestValidator := validator.NewRequestValidator(cfg.Log)
	requestRepo := repository.NewMongoRequestRepository(cfg)
	reservationRepo := repository.NewMongoReservationRepository(cfg)
	lockRepo := repository.NewLodgeLockRepository(cfg)

	userClient := client.NewUserClient(cfg.UserServiceURL, cfg.CollaboratorTimeout)
	lodgeClient := client.NewLodgeClient(cfg.LodgeServiceURL, cfg.CollaboratorTimeout)

	notify := notifier.NewKafkaNotifier(producer, ServiceName, cfg.Log)

	// Reservation cancellation voids the originating request through this
	// callback; requestService is bound after construction to keep the call
	// graph one-directional.
	var requestService service.RequestService
	reservationService := service.NewReservationService(
		reservationRepo,
		lodgeClient,
		func(ctx context.Context, requestID string) error {
			return requestService.CancelRequest(ctx, requestID)
		},
		cfg,
	)
	requestService = service.NewRequestService(
		requestRepo,
		lockRepo,
		reservationRepo,
		requestValidator,
		userClient,
		lodgeClient,
		notify,
		reservationService,
		cfg,
	)

	cfg.Log.Info("Reservation services initialized", "database", cfg.MongoDatabaseName)
	return requestService, reservationService
}
