package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	natsio "github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cardtienda/backend/internal/adapter/catalog"
	"github.com/cardtienda/backend/internal/adapter/email"
	mongoadapter "github.com/cardtienda/backend/internal/adapter/mongo"
	natsadapter "github.com/cardtienda/backend/internal/adapter/nats"
	redisadapter "github.com/cardtienda/backend/internal/adapter/redis"
	"github.com/cardtienda/backend/internal/app/config"
	"github.com/cardtienda/backend/internal/cart"
	"github.com/cardtienda/backend/internal/platform/logger"
	"github.com/cardtienda/backend/internal/port/rest"
	"github.com/cardtienda/backend/internal/service"
)

type App struct {
	cfg         *config.Config
	log         logger.Logger
	server      *rest.Server
	mongoClient *mongo.Client
	redisClient *redis.Client
	natsConn    *natsio.Conn
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	logCfg := logger.ZapLoggerConfig{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		TimeFormat: cfg.Logger.TimeFormat,
	}
	appLogger, err := logger.NewZapLogger(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger.Info("Logger initialized")
	appLogger.Infof("Configuration loaded: Env=%s, HTTP Port: %s", cfg.Env, cfg.HTTPServer.Port)

	appLogger.Info("Initializing MongoDB client...")
	mongoClient, err := mongoadapter.NewClient(ctx, cfg.MongoDB)
	if err != nil {
		appLogger.Errorf("Failed to initialize MongoDB client: %v", err)
		return nil, fmt.Errorf("failed to initialize MongoDB client: %w", err)
	}
	appLogger.Info("MongoDB client initialized successfully")

	appLogger.Info("Initializing Redis client...")
	redisClient, err := redisadapter.NewClient(ctx, cfg.Redis)
	if err != nil {
		appLogger.Errorf("Failed to initialize Redis client: %v", err)
		return nil, fmt.Errorf("failed to initialize Redis client: %w", err)
	}
	appLogger.Info("Redis client initialized successfully")

	appLogger.Info("Connecting to NATS...")
	natsConn, err := natsadapter.NewConnection(cfg.NATS)
	if err != nil {
		appLogger.Errorf("Failed to connect to NATS: %v", err)
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	msgPublisher, err := natsadapter.NewPublisher(natsConn)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}
	appLogger.Info("NATS publisher initialized")

	emailSender, err := email.NewSMTPSender(cfg.SMTP, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SMTP sender: %w", err)
	}
	appLogger.Info("SMTP sender initialized")

	catalogClient, err := catalog.NewClient(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize catalog client: %w", err)
	}
	appLogger.Infof("Catalog client initialized for %s", cfg.Catalog.BaseURL)

	orderRepo := mongoadapter.NewOrderRepository(mongoClient, cfg.MongoDB)
	quoteRepo := mongoadapter.NewQuoteRepository(mongoClient, cfg.MongoDB)
	gestionRepo := mongoadapter.NewGestionRepository(mongoClient, cfg.MongoDB)
	cardCache := redisadapter.NewCardDetailCache(redisClient)
	cartStore := redisadapter.NewCartStore(redisClient, cfg.Cart.TTL)
	appLogger.Info("Repositories initialized")

	sessions := cart.NewSessionManager(cartStore, appLogger)

	cardService := service.NewCardService(catalogClient, cardCache, gestionRepo, appLogger, service.CardServiceConfig{
		CacheTTL: cfg.CardCache.TTL,
	})
	cartService := service.NewCartService(sessions, cardService, appLogger)
	orderService := service.NewOrderService(orderRepo, sessions, msgPublisher, emailSender, appLogger)
	quoteService := service.NewQuoteService(quoteRepo, cardService, msgPublisher, appLogger)
	gestionService := service.NewGestionService(gestionRepo, catalogClient, cardCache, appLogger)
	ticketService := service.NewTicketService(orderService, appLogger)
	appLogger.Info("Services initialized")

	handlers := rest.Handlers{
		Cards:   rest.NewCardHandler(cardService, appLogger),
		Carts:   rest.NewCartHandler(cartService, appLogger),
		Orders:  rest.NewOrderHandler(orderService, ticketService, appLogger),
		Quotes:  rest.NewQuoteHandler(quoteService, appLogger),
		Gestion: rest.NewGestionHandler(gestionService, appLogger),
	}
	router := rest.NewRouter(handlers, cfg.Auth.JWTSecret, appLogger)
	server := rest.NewServer(cfg.HTTPServer, router, appLogger)
	appLogger.Info("HTTP server instance created")

	return &App{
		cfg:         cfg,
		log:         appLogger,
		server:      server,
		mongoClient: mongoClient,
		redisClient: redisClient,
		natsConn:    natsConn,
	}, nil
}

func (a *App) Run() {
	a.log.Info("Starting application components...")

	go func() {
		if err := a.server.Start(); err != nil {
			a.log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()
	a.log.Info("HTTP server started in a goroutine")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit
	a.log.Infof("Received shutdown signal: %v. Shutting down application...", receivedSignal)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPServer.ShutdownTimeout+5*time.Second)
	defer cancel()

	if err := a.server.Stop(shutdownCtx); err != nil {
		a.log.Errorf("Error during HTTP server graceful shutdown: %v", err)
	} else {
		a.log.Info("HTTP server stopped successfully")
	}

	if a.natsConn != nil {
		a.natsConn.Close()
		a.log.Info("NATS connection closed")
	}

	a.log.Info("Closing database connections...")

	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(shutdownCtx); err != nil {
			a.log.Errorf("Error disconnecting from MongoDB: %v", err)
		} else {
			a.log.Info("MongoDB connection closed successfully")
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Errorf("Error closing Redis client: %v", err)
		} else {
			a.log.Info("Redis client closed successfully")
		}
	}

	a.log.Info("Application shut down successfully")
}
