// Package bootstrap wires configuration, stores and handlers into a gin engine.
package bootstrap

import (
	"context"
	"fmt"

	"mini-shop/config"
	"mini-shop/controllers"
	"mini-shop/libs"
	"mini-shop/middleware"
	"mini-shop/repositories"
	"mini-shop/repositories/memory"
	"mini-shop/routes"
	"mini-shop/services"
	"mini-shop/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type App struct {
	Router    *gin.Engine
	Store     repositories.Store
	Committer *services.OrderCommitter

	closers []func()
}

// Close waits for background notifications, then releases connections.
func (a *App) Close() {
	if a.Committer != nil {
		a.Committer.Wait()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	app := &App{}

	store, err := openStore(ctx, cfg, logger, app)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = store

	cache, err := config.ConnectRedis(ctx, cfg)
	if err != nil {
		logger.Warn("redis unavailable, running without cache", zap.Error(err))
		cache = nil
	}
	if cache != nil {
		app.closers = append(app.closers, func() { _ = cache.Close() })
		logger.Info("redis connected")
	}

	return app.wire(cfg, logger, cache), nil
}

// NewWithStore builds the app over an existing store; used by tests.
func NewWithStore(cfg config.Config, logger *zap.Logger, store repositories.Store, cache *redis.Client) *App {
	app := &App{Store: store}
	return app.wire(cfg, logger, cache)
}

func (a *App) wire(cfg config.Config, logger *zap.Logger, cache *redis.Client) *App {
	jwtAuth := utils.NewJWTAuthenticator(cfg.JWTSecret, cfg.JWTExpiry)

	products := services.NewProductService(a.Store, cache, logger)
	opts := []services.CommitterOption{services.WithCacheInvalidator(products)}

	smtp := libs.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}
	if smtp.Enabled() {
		mailer, err := libs.NewMailer(smtp)
		if err != nil {
			logger.Warn("order emails disabled", zap.Error(err))
		} else {
			opts = append(opts, services.WithNotifier(mailer))
		}
	}

	a.Committer = services.NewOrderCommitter(a.Store, logger, opts...)

	handlers := routes.Handlers{
		Auth:    controllers.NewAuthController(services.NewAuthService(a.Store, jwtAuth), logger),
		Product: controllers.NewProductController(products, logger),
		Cart:    controllers.NewCartController(services.NewCartService(a.Store), logger),
		Order:   controllers.NewOrderController(a.Committer, services.NewOrderQuery(a.Store), logger),
		System:  &controllers.SystemController{},
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORSMiddleware(cfg.OriginURL))
	routes.SetupRoutes(router, handlers, jwtAuth)

	a.Router = router
	return a
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger, app *App) (repositories.Store, error) {
	if cfg.StoreDriver == config.DriverMemory {
		logger.Info("using in-memory store")
		return memory.New(), nil
	}

	applied, err := config.RunMigrations(cfg)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info("database migrations checked", zap.Bool("applied", applied))

	pool, err := config.ConnectDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, pool.Close)
	logger.Info("database connected")

	return repositories.NewPgStore(pool), nil
}
