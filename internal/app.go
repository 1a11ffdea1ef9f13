package internal

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	geocoder_adapter "wg-parser-service/internal/adapters/geocoder"
	logger_adapter "wg-parser-service/internal/adapters/logger"
	postgres_adapter "wg-parser-service/internal/adapters/postgres"
	rabbitmq_adapter "wg-parser-service/internal/adapters/rabbitmq"
	"wg-parser-service/internal/adapters/rest"
	"wg-parser-service/internal/adapters/scheduler"
	"wg-parser-service/internal/adapters/wgfetcher"
	"wg-parser-service/internal/configs"
	"wg-parser-service/internal/constants"
	"wg-parser-service/internal/contextkeys"
	"wg-parser-service/internal/core/domain"
	"wg-parser-service/internal/core/port"
	"wg-parser-service/internal/core/usecase"
	fluentlogger "wg-parser-service/pkg/fluent_logger"
	"wg-parser-service/pkg/postgres"
	"wg-parser-service/pkg/rabbitmq/rabbitmq_common"
	"wg-parser-service/pkg/rabbitmq/rabbitmq_consumer"
	"wg-parser-service/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
)

// App – структура приложения
type App struct {
	config        *configs.AppConfig
	dbPool        *pgxpool.Pool
	connManager   *rabbitmq_common.ConnectionManager
	eventProducer *rabbitmq_producer.Publisher
	fluentClient  *fluent.Fluent
	logger        port.LoggerPort
	baseLogger    port.LoggerPort

	restServer *rest.Server
	scheduler  *scheduler.Scheduler

	// Входящие порты (слушатели событий)
	updateTasksListener port.EventListenerPort
}

// NewApp создает новый экземпляр приложения.
// Это "Composition Root", где все зависимости создаются и связываются.
func NewApp(envPath ...string) (app *App, err error) {
	appConfig, err := configs.LoadConfig(envPath...)
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	app = &App{config: appConfig}
	// при ошибке закрываем все, что успели открыть
	defer func() {
		if err != nil {
			app.closeResources()
		}
	}()

	// --- 1. ЛОГГЕРЫ ---
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    logger_adapter.ParseLevel(appConfig.StdoutLogger.Level),
		IsJSON:   appConfig.StdoutLogger.IsJSON,
		UseColor: !appConfig.StdoutLogger.IsJSON,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	if appConfig.FluentBit.Enabled {
		app.fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
			Async:     true,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(app.fluentClient, logger_adapter.ParseLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiLoggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	app.baseLogger = multiLogger.WithFields(port.Fields{"service_name": appConfig.AppName})
	app.logger = app.baseLogger.WithFields(port.Fields{"component": "app"})
	app.logger.Info("Logger system initialized", port.Fields{
		"active_loggers": multiLogger.Len(), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	// --- 2. ГОРОДА И ПОЛИТИКА ---
	cities, err := constants.ResolveCities(appConfig.Cities)
	if err != nil {
		app.logger.Error("Invalid CITIES configuration", err, nil)
		return nil, err
	}
	stampPolicy, err := domain.ParseStampPolicy(appConfig.Update.StampPolicy)
	if err != nil {
		app.logger.Error("Invalid DEACTIVATION_STAMP_POLICY", err, nil)
		return nil, err
	}

	// --- 3. ИНФРАСТРУКТУРА ---
	app.dbPool, err = postgres.NewClient(context.Background(), postgres.Config{
		DatabaseURL:     appConfig.Database.URL,
		MaxConns:        int32(appConfig.Database.MaxConns),
		MaxConnLifetime: appConfig.Database.MaxConnLifetime,
	})
	if err != nil {
		app.logger.Error("Failed to connect to PostgreSQL", err, nil)
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	app.logger.Info("Successfully connected to PostgreSQL pool!", nil)

	connManagerBridge := logger_adapter.NewKeyValueBridge(app.baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"}))
	app.connManager, err = rabbitmq_common.NewConnectionManager(rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL}, connManagerBridge)
	if err != nil {
		app.logger.Error("Failed to create connection manager", err, nil)
		return nil, fmt.Errorf("failed to create connection manager: %w", err)
	}
	app.logger.Info("RabbitMQ Connection Manager initialized.", nil)

	app.eventProducer, err = rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
		Config:                   rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
		ExchangeName:             constants.WgExchange,
		ExchangeType:             constants.WgExchangeType,
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,
		Logger:                   logger_adapter.NewKeyValueBridge(app.baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})),
	}, app.connManager)
	if err != nil {
		app.logger.Error("Failed to create event producer", err, nil)
		return nil, fmt.Errorf("failed to create event producer: %w", err)
	}
	app.logger.Info("RabbitMQ Event Producer initialized.", nil)

	// --- 4. ИСХОДЯЩИЕ АДАПТЕРЫ ---
	fetcher, err := wgfetcher.NewWgFetcherAdapter(wgfetcher.Config{
		BaseURL:        appConfig.Fetcher.BaseURL,
		RandomDelay:    appConfig.Fetcher.RandomDelay,
		RequestTimeout: appConfig.Fetcher.RequestTimeout,
	})
	if err != nil {
		app.logger.Error("Failed to create wg-gesucht fetcher", err, nil)
		return nil, fmt.Errorf("failed to initialize fetcher: %w", err)
	}

	adRepo, err := postgres_adapter.NewPostgresAdRepository(app.dbPool)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ad repository: %w", err)
	}
	if appConfig.Database.AutoMigrate {
		if err = adRepo.EnsureSchema(context.Background()); err != nil {
			app.logger.Error("Failed to apply database schema", err, nil)
			return nil, err
		}
	}

	// без ключа объявления сохраняются без координат
	var geocoder port.GeocoderPort
	if appConfig.Geocoder.APIKey != "" {
		geoClient, err := geocoder_adapter.NewClient(appConfig.Geocoder.BaseURL, appConfig.Geocoder.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize geocoder: %w", err)
		}
		geocoder = geoClient
	} else {
		app.logger.Warn("GOOGLE_MAPS_API_KEY is not set, geocoding disabled", nil)
	}

	reportPublisher, err := rabbitmq_adapter.NewUpdateReportPublisherAdapter(app.eventProducer, constants.UpdateResultsRoutingKey)
	if err != nil {
		return nil, err
	}
	adPublisher, err := rabbitmq_adapter.NewAdDiscoveredPublisherAdapter(app.eventProducer, constants.AdDiscoveredRoutingKey)
	if err != nil {
		return nil, err
	}
	app.logger.Info("All outgoing adapters initialized.", nil)

	// --- 5. USE CASES ---
	collector, err := usecase.NewActiveSetCollector(fetcher, usecase.CollectorConfig{
		MaxPages:    appConfig.Update.MaxPages,
		DelayMin:    appConfig.Update.DelayMin,
		DelayJitter: appConfig.Update.DelayJitter,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create active set collector: %w", err)
	}
	updateUC := usecase.NewUpdateActiveAdsUseCase(cities, collector, adRepo, reportPublisher, stampPolicy)
	scrapeUC := usecase.NewScrapeNewAdsUseCase(cities, fetcher, adRepo, geocoder, adPublisher)
	queryUC := usecase.NewQueryAdsUseCase(adRepo, cities)
	app.logger.Info("All use cases initialized.", port.Fields{"stamp_policy": string(stampPolicy)})

	// --- 6. ВХОДЯЩИЕ АДАПТЕРЫ ---
	app.updateTasksListener, err = rabbitmq_adapter.NewUpdateTasksConsumerAdapter(rabbitmq_consumer.ConsumerConfig{
		Config:             rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
		QueueName:          constants.UpdateTasksQueue,
		DurableQueue:       true,
		ExchangeName:       constants.WgExchange,
		ExchangeType:       constants.WgExchangeType,
		RoutingKey:         constants.UpdateTasksRoutingKey,
		DeadLetterExchange: constants.DeadLetterExchange,
		PrefetchCount:      1,
		ConsumerTag:        constants.UpdateTasksConsumerTag,
	}, updateUC, app.baseLogger, app.connManager)
	if err != nil {
		app.logger.Error("Failed to initialize update tasks listener", err, nil)
		return nil, err
	}

	app.scheduler, err = scheduler.NewScheduler(scheduler.Config{
		UpdateCron:     appConfig.Update.Cron,
		ScrapeEnabled:  appConfig.Scrape.Enabled,
		ScrapeInterval: appConfig.Scrape.Interval,
		ScrapeJitter:   appConfig.Scrape.Jitter,
	}, cities, updateUC, scrapeUC, app.baseLogger)
	if err != nil {
		app.logger.Error("Failed to create scheduler", err, nil)
		return nil, err
	}

	handlers := rest.NewAdsHandlers(updateUC, scrapeUC, queryUC)
	router := rest.NewRouter(handlers, appConfig.Server.AllowedOrigins, app.baseLogger)
	app.restServer = rest.NewServer(appConfig.Server.Port, router, app.baseLogger.WithFields(port.Fields{"component": "rest_server"}))
	app.logger.Info("Incoming adapters initialized.", nil)

	return app, nil
}

// Run запускает все компоненты приложения и управляет их жизненным циклом.
func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()
	appCtx = contextkeys.ContextWithLogger(appCtx, a.baseLogger)

	var wg sync.WaitGroup
	componentErrors := make(chan error, 2)

	a.logger.Info("Application is starting...", nil)

	wg.Add(1)
	go func() {
		defer wg.Done()
		listenerLogger := a.logger.WithFields(port.Fields{"listener_name": "Update Tasks Listener"})
		listenerLogger.Info("Starting listener...", nil)
		if err := a.updateTasksListener.Start(appCtx); err != nil {
			listenerLogger.Error("Listener stopped with an unexpected error", err, nil)
			componentErrors <- fmt.Errorf("update tasks listener: %w", err)
			return
		}
		listenerLogger.Info("Listener stopped gracefully due to context cancellation.", nil)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.restServer.Start(); err != nil {
			componentErrors <- fmt.Errorf("rest server: %w", err)
		}
	}()

	a.scheduler.Start(appCtx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	a.logger.Info("Application running. Waiting for signals or component error...", nil)
	var runErr error
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received signal, shutting down", port.Fields{"signal": receivedSignal.String()})
	case runErr = <-componentErrors:
		a.logger.Error("A critical component failed, shutting down", runErr, nil)
	}

	a.logger.Info("Shutdown sequence initiated...", nil)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := a.restServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("Error stopping REST server", err, nil)
	}
	// отмена контекста прерывает текущие прогоны; незавершенная сверка ничего не записывает
	cancelApp()
	if err := a.scheduler.Stop(shutdownCtx); err != nil {
		a.logger.Error("Error stopping scheduler", err, nil)
	}

	a.logger.Info("Waiting for background processes to finish...", nil)
	wg.Wait()

	a.closeResources()
	return runErr
}

// closeResources закрывает ресурсы в обратном порядке создания
func (a *App) closeResources() {
	logErr := func(msg string, err error) {
		if a.logger != nil {
			a.logger.Error(msg, err, nil)
			return
		}
		log.Printf("App: %s: %v\n", msg, err)
	}

	if a.updateTasksListener != nil {
		if err := a.updateTasksListener.Close(); err != nil {
			logErr("Error closing update tasks listener", err)
		}
	}
	if a.eventProducer != nil {
		if err := a.eventProducer.Close(); err != nil {
			logErr("Error closing event producer", err)
		}
	}
	if a.connManager != nil {
		if err := a.connManager.Close(); err != nil {
			logErr("Error closing RabbitMQ connection manager", err)
		}
	}
	if a.dbPool != nil {
		a.dbPool.Close()
	}

	if a.logger != nil {
		a.logger.Info("Application shut down.", nil)
	}
	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			log.Printf("App: Error closing fluent client: %v\n", err)
		}
	}
}
