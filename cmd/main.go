package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	blockSlotsHandler "github.com/trimly-app/TRM-BookingService/internal/api/handlers/block_slots"
	cancelBookingHandler "github.com/trimly-app/TRM-BookingService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/trimly-app/TRM-BookingService/internal/api/handlers/create_booking"
	getAvailableSlotsHandler "github.com/trimly-app/TRM-BookingService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/trimly-app/TRM-BookingService/internal/api/handlers/get_booking"
	getClientBookingsHandler "github.com/trimly-app/TRM-BookingService/internal/api/handlers/get_client_bookings"
	getSalonBookingsHandler "github.com/trimly-app/TRM-BookingService/internal/api/handlers/get_salon_bookings"
	getSalonConfigHandler "github.com/trimly-app/TRM-BookingService/internal/api/handlers/get_salon_config"
	getScheduleHandler "github.com/trimly-app/TRM-BookingService/internal/api/handlers/get_schedule"
	updateBookingStatusHandler "github.com/trimly-app/TRM-BookingService/internal/api/handlers/update_booking_status"
	updateSalonConfigHandler "github.com/trimly-app/TRM-BookingService/internal/api/handlers/update_salon_config"
	unblockSlotsHandler "github.com/trimly-app/TRM-BookingService/internal/api/handlers/unblock_slots"
	updateScheduleHandler "github.com/trimly-app/TRM-BookingService/internal/api/handlers/update_schedule"
	"github.com/trimly-app/TRM-BookingService/internal/api/middleware"
	"github.com/trimly-app/TRM-BookingService/internal/config"
	"github.com/trimly-app/TRM-BookingService/internal/infra/cache"
	"github.com/trimly-app/TRM-BookingService/internal/infra/notify"
	blockedSlotRepo "github.com/trimly-app/TRM-BookingService/internal/infra/storage/blockedslot"
	bookingRepo "github.com/trimly-app/TRM-BookingService/internal/infra/storage/booking"
	configRepo "github.com/trimly-app/TRM-BookingService/internal/infra/storage/config"
	scheduleRepo "github.com/trimly-app/TRM-BookingService/internal/infra/storage/schedule"
	catalogServiceClient "github.com/trimly-app/TRM-BookingService/internal/integrations/catalogservice"
	paymentServiceClient "github.com/trimly-app/TRM-BookingService/internal/integrations/paymentservice"
	bookingsService "github.com/trimly-app/TRM-BookingService/internal/service/bookings"
	configService "github.com/trimly-app/TRM-BookingService/internal/service/config"
	scheduleService "github.com/trimly-app/TRM-BookingService/internal/service/schedule"
	createBookingUC "github.com/trimly-app/TRM-BookingService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/trimly-app/TRM-BookingService/internal/usecase/get_available_slots"
	"github.com/trimly-app/TRM-BookingService/pkg/dbmetrics"
	"github.com/trimly-app/TRM-BookingService/pkg/logger"
	"github.com/trimly-app/TRM-BookingService/pkg/metrics"
	"github.com/trimly-app/TRM-BookingService/pkg/simpletxmanager"
	"github.com/trimly-app/TRM-BookingService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting TRM-BookingService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем интеграционных клиентов
	catalogClient := catalogServiceClient.NewClient(
		cfg.CatalogService.URL,
		time.Duration(cfg.CatalogService.Timeout)*time.Second,
		log,
	)
	paymentClient := paymentServiceClient.NewClient(
		cfg.PaymentService.URL,
		time.Duration(cfg.PaymentService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (CatalogService=%s timeout=%ds, PaymentService=%s timeout=%ds)",
		cfg.CatalogService.URL, cfg.CatalogService.Timeout, cfg.PaymentService.URL, cfg.PaymentService.Timeout)

	// Кеш доступности в Redis (если включен)
	var availabilityCache *cache.AvailabilityCache
	if cfg.Redis.Enabled {
		redisClient := cache.NewRedisClient(cfg.Redis)
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := cache.Ping(pingCtx, redisClient); err != nil {
			cancel()
			log.Fatal("Failed to ping redis at %s: %v", cfg.Redis.Address, err)
		}
		cancel()
		defer redisClient.Close()

		availabilityCache = cache.New(
			redisClient,
			time.Duration(cfg.Redis.TTLSeconds)*time.Second,
			log,
		)
		log.Info("Availability cache enabled (redis=%s, ttl=%ds)", cfg.Redis.Address, cfg.Redis.TTLSeconds)
	}

	// Публикация событий бронирований в Kafka (если включена)
	var eventProducer *notify.Producer
	if cfg.Kafka.Enabled {
		eventProducer = notify.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		defer eventProducer.Close()
		log.Info("Booking events producer enabled (brokers=%s, topic=%s)", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}

	// Опциональные зависимости use cases и сервисов.
	// Интерфейсные переменные остаются nil, когда возможность выключена.
	var (
		slotsCache          getAvailableSlotsUC.AvailabilityCache
		createInvalidator   createBookingUC.AvailabilityInvalidator
		bookingsInvalidator bookingsService.AvailabilityInvalidator
		scheduleInvalidator scheduleService.AvailabilityInvalidator
		configInvalidator   configService.AvailabilityInvalidator
	)
	if availabilityCache != nil {
		slotsCache = availabilityCache
		createInvalidator = availabilityCache
		bookingsInvalidator = availabilityCache
		scheduleInvalidator = availabilityCache
		configInvalidator = availabilityCache
	}

	var (
		createEvents   createBookingUC.EventPublisher
		bookingsEvents bookingsService.EventPublisher
	)
	if eventProducer != nil {
		createEvents = eventProducer
		bookingsEvents = eventProducer
	}

	// Инициализируем репозитории и transaction manager (с метриками или без)
	var (
		bookingRepository     *bookingRepo.Repository
		scheduleRepository    *scheduleRepo.Repository
		blockedSlotRepository *blockedSlotRepo.Repository
		configRepository      *configRepo.Repository
		txMgr                 createBookingUC.TransactionManager
		scheduleTxMgr         scheduleService.TransactionManager
	)

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		scheduleRepository = scheduleRepo.NewRepository(wrappedDB)
		blockedSlotRepository = blockedSlotRepo.NewRepository(wrappedDB)
		configRepository = configRepo.NewRepository(wrappedDB)
		manager := txmanager.NewTransactionManager(wrappedDB)
		txMgr = manager
		scheduleTxMgr = manager
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		scheduleRepository = scheduleRepo.NewRepository(db)
		blockedSlotRepository = blockedSlotRepo.NewRepository(db)
		configRepository = configRepo.NewRepository(db)
		manager := simpletxmanager.NewTransactionManager(db)
		txMgr = manager
		scheduleTxMgr = manager
	}

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		catalogClient,
		bookingsInvalidator,
		bookingsEvents,
		log,
	)
	scheduleSvc := scheduleService.NewService(
		scheduleRepository,
		blockedSlotRepository,
		configRepository,
		catalogClient,
		scheduleTxMgr,
		scheduleInvalidator,
		log,
	)
	configSvc := configService.NewService(
		configRepository,
		catalogClient,
		configInvalidator,
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		scheduleRepository,
		blockedSlotRepository,
		configRepository,
		catalogClient,
		paymentClient,
		txMgr,
		createInvalidator,
		createEvents,
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		bookingRepository,
		scheduleRepository,
		blockedSlotRepository,
		configRepository,
		catalogClient,
		slotsCache,
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	getClientBookings := getClientBookingsHandler.NewHandler(bookingSvc, log)
	getSalonBookings := getSalonBookingsHandler.NewHandler(bookingSvc, log)
	getSchedule := getScheduleHandler.NewHandler(scheduleSvc, log)
	updateSchedule := updateScheduleHandler.NewHandler(scheduleSvc, log)
	blockSlots := blockSlotsHandler.NewHandler(scheduleSvc, log)
	unblockSlots := unblockSlotsHandler.NewHandler(scheduleSvc, log)
	getSalonConfig := getSalonConfigHandler.NewHandler(configSvc, log)
	updateSalonConfig := updateSalonConfigHandler.NewHandler(configSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступные слоты мастера на дату
	api.HandleFunc("/salons/{salonId}/staff/{staffId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// Расписание мастера
	api.HandleFunc("/staff/{staffId}/schedule", getSchedule.Handle).Methods(http.MethodGet)

	// Конфигурация слотов салона
	api.HandleFunc("/salons/{salonId}/config", getSalonConfig.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/status", updateBookingStatus.Handle).Methods(http.MethodPatch)

	// История бронирований клиента
	protected.HandleFunc("/clients/{clientId}/bookings", getClientBookings.Handle).Methods(http.MethodGet)

	// --- Управление салоном (для владельцев) ---
	protected.HandleFunc("/salons/{salonId}/bookings", getSalonBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/salons/{salonId}/config", updateSalonConfig.Handle).Methods(http.MethodPut)

	// --- Расписание мастера (мастер или владелец салона) ---
	protected.HandleFunc("/staff/{staffId}/schedule", updateSchedule.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/staff/{staffId}/schedule/block", blockSlots.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/staff/{staffId}/schedule/unblock", unblockSlots.Handle).Methods(http.MethodPost)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
