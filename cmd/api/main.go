package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/contactkeeper/contact-service/internal/api/http"
	"github.com/contactkeeper/contact-service/internal/api/http/handlers"
	"github.com/contactkeeper/contact-service/internal/auth"
	"github.com/contactkeeper/contact-service/internal/config"
	"github.com/contactkeeper/contact-service/internal/events"
	"github.com/contactkeeper/contact-service/internal/observability"
	"github.com/contactkeeper/contact-service/internal/persistence"
	"github.com/contactkeeper/contact-service/internal/repository"
	"github.com/contactkeeper/contact-service/internal/service"
	"github.com/contactkeeper/contact-service/internal/worker"
)

// stores holds the repositories for the selected driver plus its readiness probe and cleanup.
type stores struct {
	users    repository.UserRepository
	contacts repository.ContactRepository
	probe    handlers.Pinger
	close    func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer st.close()

	healthDeps := map[string]handlers.Pinger{}
	if st.probe != nil {
		healthDeps[cfg.Store.Driver] = st.probe
	}

	contactRepo := st.contacts
	if cfg.Redis.Enabled {
		rdb := persistence.NewRedis(ctx, cfg.Redis, logger)
		defer rdb.Close()
		contactRepo = repository.NewCachedContactRepository(contactRepo, rdb.ClientHandle(), cfg.Redis.ContactCacheTTL, logger)
		healthDeps["redis"] = rdb
	}

	dispatcher := events.NewInMemoryDispatcher()
	notifier := worker.NewNotificationWorker(service.NewNotificationService(logger, cfg.Notification), logger, worker.DefaultQueueSize)
	notifier.Register(dispatcher)
	workerDone := make(chan struct{})
	go func() {
		notifier.Run(ctx)
		close(workerDone)
	}()

	authService, err := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:   st.users,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal("failed to init auth service", zap.Error(err))
	}
	contactService := service.NewContactService(service.ContactDependencies{
		ContactRepo: contactRepo,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})

	metrics := observability.NewMetrics("contact_service")
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), metrics)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger, metrics),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, healthDeps),
		Users:          handlers.NewUsersHandler(authService),
		Contacts:       handlers.NewContactsHandler(contactService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.App.Addr()), zap.String("store", cfg.Store.Driver))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	cancel()
	<-workerDone
}

func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*stores, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		pool := pg.PoolHandle()
		return &stores{
			users:    repository.NewUserRepository(pool),
			contacts: repository.NewContactRepository(pool),
			probe:    pg,
			close:    pg.Close,
		}, nil

	case config.StoreDriverMongo:
		mg, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, err
		}
		if err := repository.EnsureMongoIndexes(ctx, mg.Database); err != nil {
			mg.Close(context.Background())
			return nil, err
		}
		return &stores{
			users:    repository.NewMongoUserRepository(mg.Database),
			contacts: repository.NewMongoContactRepository(mg.Database),
			probe:    mg,
			close:    func() { mg.Close(context.Background()) },
		}, nil

	default:
		logger.Warn("using in-memory store; data is lost on restart")
		return &stores{
			users:    repository.NewMemoryUserRepository(),
			contacts: repository.NewMemoryContactRepository(),
			close:    func() {},
		}, nil
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
