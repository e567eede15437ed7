package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	fluentlogger "kama-bff/pkg/fluent_logger"
	"kama-bff/pkg/postgres"
	"kama-bff/pkg/rabbitmq/rabbitmq_common"
	"kama-bff/pkg/rabbitmq/rabbitmq_consumer"
	"kama-bff/pkg/rabbitmq/rabbitmq_producer"

	cache_adapter "kama-bff/internal/adapters/cache"
	"kama-bff/internal/adapters/eventbus"
	token_adapter "kama-bff/internal/adapters/jwt"
	"kama-bff/internal/adapters/kama_api_client"
	kvstore_adapter "kama-bff/internal/adapters/kvstore"
	logger_adapter "kama-bff/internal/adapters/logger"
	metrics_adapter "kama-bff/internal/adapters/metrics"
	rabbitmq_adapter "kama-bff/internal/adapters/rabbitmq"
	"kama-bff/internal/adapters/rest"
	"kama-bff/internal/configs"
	"kama-bff/internal/constants"
	"kama-bff/internal/contracts"
	"kama-bff/internal/core/port"
	"kama-bff/internal/core/usecase"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	shutdownTimeout      = 10 * time.Second
	rabbitReconnectDelay = 5 * time.Second
	dispatcherBuffer     = 256
	sseKeepAlive         = 15 * time.Second
)

// App - структура приложения
type App struct {
	config       *configs.AppConfig
	apiServer    *rest.Server
	logger       port.LoggerPort
	fluentClient *fluent.Fluent
	dbPool       *pgxpool.Pool

	propertyCache *cache_adapter.PropertyCache
	dispatcher    *eventbus.Dispatcher
	unsubscribe   []func()
	// остановка очистки пользовательских сессий
	sessionStops []func()

	rabbitConn      *rabbitmq_common.ConnectionManager
	refreshProducer *rabbitmq_producer.Publisher
	refreshConsumer *rabbitmq_consumer.Subscriber
	refreshRelay    *rabbitmq_adapter.RefreshRelay
}

// NewApp создает новый экземпляр приложения.
// Это "Composition Root", где все зависимости создаются и связываются.
func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// --- 1. ЛОГГЕРЫ ---
	activeLoggers := []port.LoggerPort{
		logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
			Level:    logger_adapter.ParseLevel(appConfig.StdoutLogger.Level),
			IsJSON:   appConfig.StdoutLogger.JSON,
			UseColor: !appConfig.StdoutLogger.JSON,
		}),
	}
	stdoutLogger := activeLoggers[0]

	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
			Async:     true,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, logger_adapter.ParseLevel(appConfig.FluentBit.Level))
		if err != nil {
			fluentClient.Close()
			return nil, fmt.Errorf("failed to create fluentbit adapter: %w", err)
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{"service_name": appConfig.AppName})
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	application := &App{
		config:       appConfig,
		logger:       appLogger,
		fluentClient: fluentClient,
	}

	if err := application.build(baseLogger); err != nil {
		application.closeResources()
		if fluentClient != nil {
			fluentClient.Close()
		}
		return nil, err
	}
	return application, nil
}

// build создаёт адаптеры, use case и сервер. При ошибке уже созданные
// ресурсы закрывает вызывающий через closeResources.
func (a *App) build(baseLogger port.LoggerPort) error {
	cfg := a.config

	// схемы компилируются при старте, чтобы ошибка в схеме не всплыла на первом запросе
	if err := contracts.Load(); err != nil {
		a.logger.Error("Failed to compile JSON schemas", err, nil)
		return fmt.Errorf("failed to compile JSON schemas: %w", err)
	}

	// --- 2. ИСХОДЯЩИЕ АДАПТЕРЫ ---
	store, err := a.newKeyValueStore()
	if err != nil {
		return err
	}

	metrics := metrics_adapter.NewPrometheusMetrics(cfg.AppName)
	a.propertyCache = cache_adapter.NewPropertyCache(cfg.Cache.MaxSize)
	kamaClient := kama_api_client.NewKamaAPIClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout)

	tokenService, err := token_adapter.NewTokenService(cfg.Auth.JWTSecret)
	if err != nil {
		return fmt.Errorf("failed to create token service: %w", err)
	}

	// --- 3. ШИНА СОБЫТИЙ ---
	a.dispatcher = eventbus.NewDispatcher(dispatcherBuffer, baseLogger)
	sseHub := eventbus.NewSSEHub(cfg.Rest.SSEBufferSize, baseLogger)

	// id экземпляра, чтобы не получать обратно свои же события из RabbitMQ
	instanceID := uuid.NewString()
	var remotePublisher port.RefreshPublisherPort
	if cfg.RabbitMQ.Enabled {
		remotePublisher, err = a.setupRabbitMQ(baseLogger, instanceID)
		if err != nil {
			return err
		}
	}
	refreshPublisher := eventbus.NewCompositePublisher(a.dispatcher, remotePublisher, instanceID)

	// --- 4. USE CASES ---
	interpretUC := usecase.NewInterpretSearchQueryUseCase()
	searchUC := usecase.NewSearchPropertiesUseCase(interpretUC, kamaClient, a.propertyCache, cfg.Cache.SearchTTL, metrics)
	alertsUC := usecase.NewAlertStateSyncUseCase(kamaClient, store, refreshPublisher, metrics)
	matchingUC := usecase.NewGetMatchingPropertiesUseCase(kamaClient, a.propertyCache, cfg.Cache.MatchingTTL, metrics)
	favoritesUC := usecase.NewFavoriteStateSyncUseCase(kamaClient, store, metrics)
	a.sessionStops = append(a.sessionStops, alertsUC.Close, favoritesUC.Close)
	a.logger.Info("All use cases initialized.", nil)

	// кэш подходящих объектов сбрасывается раньше, чем вкладки получат событие
	a.unsubscribe = append(a.unsubscribe,
		a.dispatcher.Subscribe(matchingUC.OnRefresh),
		a.dispatcher.Subscribe(sseHub.OnRefresh),
	)

	// --- 5. REST API ---
	router := rest.NewRouter(rest.Handlers{
		Search:    rest.NewSearchHandler(interpretUC, searchUC, cfg.Search.DefaultStatus),
		Alerts:    rest.NewAlertsHandler(alertsUC, matchingUC, cfg.Auth.LoginURL),
		Favorites: rest.NewFavoritesHandler(favoritesUC, cfg.Auth.LoginURL),
		Events:    rest.NewEventsHandler(sseHub, sseKeepAlive, cfg.Auth.LoginURL),
	}, tokenService, metrics, cfg.Rest.AllowedOrigins, cfg.Auth.LoginURL, baseLogger)

	a.apiServer = rest.NewServer(cfg.Rest.Port, router, baseLogger)
	a.logger.Info("REST API server configured.", nil)
	return nil
}

func (a *App) newKeyValueStore() (port.KeyValueStorePort, error) {
	cfg := a.config.KV

	switch cfg.Backend {
	case configs.KVBackendPostgres:
		dbPool, err := postgres.NewClient(context.Background(), postgres.Config{DatabaseURL: cfg.DatabaseURL})
		if err != nil {
			a.logger.Error("Failed to connect to PostgreSQL", err, nil)
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		a.dbPool = dbPool

		store, err := kvstore_adapter.NewPostgresStore(dbPool)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres store: %w", err)
		}
		if err := store.EnsureSchema(context.Background()); err != nil {
			a.logger.Error("Failed to create kv_store table", err, nil)
			return nil, err
		}
		a.logger.Info("Key-value store: PostgreSQL", nil)
		return store, nil

	case configs.KVBackendMemcached:
		store, err := kvstore_adapter.NewMemcachedStore(memcache.New(cfg.MemcachedAddr...), a.config.AppName+":")
		if err != nil {
			return nil, fmt.Errorf("failed to create memcached store: %w", err)
		}
		a.logger.Info("Key-value store: memcached", port.Fields{"servers": cfg.MemcachedAddr})
		return store, nil

	default:
		a.logger.Info("Key-value store: in-memory", nil)
		return kvstore_adapter.NewMemoryStore(), nil
	}
}

// setupRabbitMQ поднимает fanout-публикацию и подписку на события обновления.
func (a *App) setupRabbitMQ(baseLogger port.LoggerPort, instanceID string) (port.RefreshPublisherPort, error) {
	cfg := a.config.RabbitMQ
	commonCfg := rabbitmq_common.Config{URL: cfg.URL}

	connManager, err := rabbitmq_common.NewConnectionManager(commonCfg, rabbitReconnectDelay,
		rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"})))
	if err != nil {
		a.logger.Error("Failed to create connection manager", err, nil)
		return nil, fmt.Errorf("failed to create connection manager: %w", err)
	}
	a.rabbitConn = connManager

	producer, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
		Config:                   commonCfg,
		ExchangeName:             cfg.Exchange,
		ExchangeType:             constants.RefreshExchangeType,
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,
		Logger:                   rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})),
	}, connManager)
	if err != nil {
		a.logger.Error("Failed to create refresh producer", err, nil)
		return nil, fmt.Errorf("failed to create refresh producer: %w", err)
	}
	a.refreshProducer = producer

	publisher, err := rabbitmq_adapter.NewRefreshPublisherAdapter(producer)
	if err != nil {
		return nil, err
	}

	// события других экземпляров публикуются только в локальную шину
	a.refreshRelay = rabbitmq_adapter.NewRefreshRelay(a.dispatcher, instanceID, baseLogger)
	consumer, err := rabbitmq_consumer.NewSubscriber(rabbitmq_consumer.SubscriberConfig{
		Config:        commonCfg,
		ExchangeName:  cfg.Exchange,
		ExchangeType:  constants.RefreshExchangeType,
		PrefetchCount: 16,
		ConsumerTag:   a.config.AppName + "-" + instanceID,
		Logger:        rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_consumer"})),
	}, a.refreshRelay.HandleDelivery, connManager)
	if err != nil {
		a.logger.Error("Failed to create refresh consumer", err, nil)
		return nil, fmt.Errorf("failed to create refresh consumer: %w", err)
	}
	a.refreshConsumer = consumer

	a.logger.Info("RabbitMQ refresh fanout initialized.", port.Fields{"exchange": cfg.Exchange})
	return publisher, nil
}

// Run запускает все компоненты приложения и управляет их жизненным циклом.
func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	var wg sync.WaitGroup
	errorsCh := make(chan error, 2)

	a.logger.Info("Application is starting...", nil)

	if a.refreshConsumer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			listenerLogger := a.logger.WithFields(port.Fields{"listener_name": "refresh_fanout"})
			listenerLogger.Info("Starting listener...", nil)

			if err := a.refreshConsumer.StartConsuming(appCtx); err != nil && !errors.Is(err, context.Canceled) {
				listenerLogger.Error("Listener stopped with an unexpected error", err, nil)
				errorsCh <- fmt.Errorf("refresh listener error: %w", err)
				return
			}
			listenerLogger.Info("Listener stopped gracefully due to context cancellation.", nil)
		}()
	}

	go func() {
		a.logger.Info("Starting HTTP server...", port.Fields{"port": a.config.Rest.Port})
		if err := a.apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorsCh <- fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	a.logger.Info("Application running. Waiting for signals or server error...", nil)
	var runErr error
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case runErr = <-errorsCh:
		a.logger.Error("A critical component failed, shutting down", runErr, nil)
	}

	a.logger.Info("Shutdown sequence initiated...", nil)

	// сначала сервер: SSE-соединения завершаются по контексту запросов
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := a.apiServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("Error during API server shutdown", err, nil)
	}

	cancelApp()
	a.logger.Info("Waiting for background processes to finish...", nil)
	wg.Wait()

	a.closeResources()
	a.logger.Info("Application shut down gracefully.", nil)

	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			// fluent может быть уже недоступен
			fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
		}
	}
	return runErr
}

// closeResources закрывает всё, кроме fluent-клиента: он нужен до последнего лога.
func (a *App) closeResources() {
	for _, unsubscribe := range a.unsubscribe {
		unsubscribe()
	}
	a.unsubscribe = nil

	if a.refreshConsumer != nil {
		if err := a.refreshConsumer.Close(); err != nil {
			a.logger.Error("Error closing refresh consumer", err, nil)
		}
	}
	if a.refreshProducer != nil {
		if err := a.refreshProducer.Close(); err != nil {
			a.logger.Error("Error closing refresh producer", err, nil)
		}
	}
	if a.rabbitConn != nil {
		if err := a.rabbitConn.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ connection", err, nil)
		}
	}
	if a.dispatcher != nil {
		a.dispatcher.Close()
	}
	if a.propertyCache != nil {
		a.propertyCache.Stop()
	}
	for _, stop := range a.sessionStops {
		stop()
	}
	a.sessionStops = nil
	if a.dbPool != nil {
		a.dbPool.Close()
		a.logger.Info("PostgreSQL pool closed.", nil)
	}
}
