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
	"github.com/redis/go-redis/v9"

	bulkCreateSlotsHandler "github.com/m04kA/SMC-DemoBookingService/internal/api/handlers/bulk_create_slots"
	cancelBookingHandler "github.com/m04kA/SMC-DemoBookingService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-DemoBookingService/internal/api/handlers/create_booking"
	createSlotHandler "github.com/m04kA/SMC-DemoBookingService/internal/api/handlers/create_slot"
	deleteSlotHandler "github.com/m04kA/SMC-DemoBookingService/internal/api/handlers/delete_slot"
	getAvailableSlotsHandler "github.com/m04kA/SMC-DemoBookingService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-DemoBookingService/internal/api/handlers/get_booking"
	getBookingPolicyHandler "github.com/m04kA/SMC-DemoBookingService/internal/api/handlers/get_booking_policy"
	listBookingsHandler "github.com/m04kA/SMC-DemoBookingService/internal/api/handlers/list_bookings"
	listSlotsHandler "github.com/m04kA/SMC-DemoBookingService/internal/api/handlers/list_slots"
	scheduleFollowUpHandler "github.com/m04kA/SMC-DemoBookingService/internal/api/handlers/schedule_follow_up"
	updateBookingStatusHandler "github.com/m04kA/SMC-DemoBookingService/internal/api/handlers/update_booking_status"
	updateSlotHandler "github.com/m04kA/SMC-DemoBookingService/internal/api/handlers/update_slot"
	"github.com/m04kA/SMC-DemoBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-DemoBookingService/internal/config"
	"github.com/m04kA/SMC-DemoBookingService/internal/domain"
	slotsCache "github.com/m04kA/SMC-DemoBookingService/internal/infra/cache/slots"
	bookingRepo "github.com/m04kA/SMC-DemoBookingService/internal/infra/storage/booking"
	slotRepo "github.com/m04kA/SMC-DemoBookingService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-DemoBookingService/internal/integrations/crmservice"
	bookingsService "github.com/m04kA/SMC-DemoBookingService/internal/service/bookings"
	slotsService "github.com/m04kA/SMC-DemoBookingService/internal/service/slots"
	createBookingUC "github.com/m04kA/SMC-DemoBookingService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-DemoBookingService/internal/usecase/get_available_slots"
	scheduleFollowUpUC "github.com/m04kA/SMC-DemoBookingService/internal/usecase/schedule_follow_up"
	"github.com/m04kA/SMC-DemoBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-DemoBookingService/pkg/logger"
	"github.com/m04kA/SMC-DemoBookingService/pkg/metrics"
	"github.com/m04kA/SMC-DemoBookingService/pkg/txmanager"
)

func main() {
	configPath := "config.toml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		configPath = v
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
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

	log.Info("Starting SMC-DemoBookingService...")
	log.Info("Configuration loaded from %s", configPath)

	location, err := time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		log.Fatal("Failed to load timezone %q: %v", cfg.Booking.Timezone, err)
	}

	// Инициализируем метрики (если включены).
	// Nil-коллектор допустим: все методы Metrics его проверяют.
	var metricsCollector *metrics.Metrics
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

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	stopMetricsCh := make(chan struct{})
	var wrappedDB *dbmetrics.DB
	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db, nil)
	}

	txMgr := txmanager.NewTransactionManager(wrappedDB).WithMaxRetries(cfg.Database.TxMaxRetries)

	// Кэш снимков (nil-кэш всегда промахивается)
	var snapshotCache *slotsCache.Cache
	if cfg.Redis.Enabled {
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		snapshotCache, err = slotsCache.Connect(pingCtx, &redis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
			MaxRetries:   1,
		}, time.Duration(cfg.Redis.TTL)*time.Second)
		cancel()

		if err != nil {
			// Кэш не обязателен: без Redis снимок читается из БД
			log.Warn("Redis unavailable at %s, continuing without cache: %v", cfg.Redis.Addr, err)
		} else {
			defer snapshotCache.Close()
			log.Info("Slot snapshot cache enabled (addr=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.TTL)
		}
	}

	// Интеграция с CRM опциональна: nil-интерфейс отключает привязку лидов
	var crmClient createBookingUC.CRMClient
	if cfg.CRMService.Enabled {
		crmClient = crmservice.NewClient(
			cfg.CRMService.URL,
			cfg.CRMService.APIKey,
			time.Duration(cfg.CRMService.Timeout)*time.Second,
			log,
		)
		log.Info("CRM integration enabled (url=%s, timeout=%ds)", cfg.CRMService.URL, cfg.CRMService.Timeout)
	}

	// Репозитории
	slotRepository := slotRepo.NewRepository(wrappedDB)
	bookingRepository := bookingRepo.NewRepository(wrappedDB)

	meetingRooms := domain.MeetingRooms{
		BaseURL:    cfg.Meeting.BaseURL,
		RoomPrefix: cfg.Meeting.RoomPrefix,
	}

	// Сервисы
	slotSvc := slotsService.NewService(
		slotRepository,
		bookingRepository,
		snapshotCache,
		metricsCollector,
		txMgr,
		location,
		log,
	)
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		slotRepository,
		snapshotCache,
		metricsCollector,
		txMgr,
		log,
	)

	// Use cases
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		slotRepository,
		snapshotCache,
		getAvailableSlotsUC.Policy{
			HorizonDays:            cfg.Booking.HorizonDays,
			MinNoticeMinutes:       cfg.Booking.MinNoticeMinutes,
			DefaultDurationMinutes: cfg.Booking.DefaultDurationMinutes,
			MaxDurationMinutes:     cfg.Booking.MaxDurationMinutes,
		},
		log,
	)

	createBookingUseCase := createBookingUC.NewUseCase(
		slotRepository,
		bookingRepository,
		crmClient,
		snapshotCache,
		metricsCollector,
		txMgr,
		createBookingUC.Policy{
			HorizonDays:            cfg.Booking.HorizonDays,
			MinNoticeMinutes:       cfg.Booking.MinNoticeMinutes,
			DefaultDurationMinutes: cfg.Booking.DefaultDurationMinutes,
			MaxDurationMinutes:     cfg.Booking.MaxDurationMinutes,
			Meeting:                meetingRooms,
		},
		log,
	)

	scheduleFollowUpUseCase := scheduleFollowUpUC.NewUseCase(
		bookingRepository,
		slotRepository,
		metricsCollector,
		txMgr,
		location,
		meetingRooms,
		log,
	)

	// Handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getBookingPolicy := getBookingPolicyHandler.NewHandler(getAvailableSlotsUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)

	listSlots := listSlotsHandler.NewHandler(slotSvc, log)
	createSlot := createSlotHandler.NewHandler(slotSvc, log)
	bulkCreateSlots := bulkCreateSlotsHandler.NewHandler(slotSvc, log)
	updateSlot := updateSlotHandler.NewHandler(slotSvc, log)
	deleteSlot := deleteSlotHandler.NewHandler(slotSvc, log)

	listBookings := listBookingsHandler.NewHandler(bookingSvc, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	scheduleFollowUp := scheduleFollowUpHandler.NewHandler(scheduleFollowUpUseCase, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации, с лимитом на запись)
	// ============================================================

	public := api.PathPrefix("").Subrouter()
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
		if err := limiter.TrustProxies(cfg.RateLimit.TrustedProxies...); err != nil {
			log.Fatal("Invalid rate_limit.trusted_proxies: %v", err)
		}
		public.Use(limiter.OnlyMethods(http.MethodPost))
		log.Info("Rate limiting enabled for public POST (%.1f req/min, burst=%d)",
			cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	}

	public.HandleFunc("/demo-slots/available", getAvailableSlots.Handle).Methods(http.MethodGet)
	public.HandleFunc("/demo-slots/policy", getBookingPolicy.Handle).Methods(http.MethodGet)
	public.HandleFunc("/demo-bookings", createBooking.Handle).Methods(http.MethodPost)

	// ============================================================
	// ADMIN ROUTES (требуют X-User-ID header)
	// ============================================================

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.Auth)

	// --- Слоты ---
	admin.HandleFunc("/demo-slots", listSlots.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/demo-slots", createSlot.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/demo-slots/bulk", bulkCreateSlots.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/demo-slots/{slotId}", updateSlot.Handle).Methods(http.MethodPatch)
	admin.HandleFunc("/demo-slots/{slotId}", deleteSlot.Handle).Methods(http.MethodDelete)

	// --- Бронирования ---
	admin.HandleFunc("/demo-bookings", listBookings.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/demo-bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/demo-bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	admin.HandleFunc("/demo-bookings/{bookingId}/status", updateBookingStatus.Handle).Methods(http.MethodPatch)
	admin.HandleFunc("/demo-bookings/{bookingId}/follow-up", scheduleFollowUp.Handle).Methods(http.MethodPost)

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	close(stopMetricsCh)

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
