package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/smm-webpanel/internal/config"
	"github.com/iliyamo/smm-webpanel/internal/database"
	"github.com/iliyamo/smm-webpanel/internal/handler"
	"github.com/iliyamo/smm-webpanel/internal/logger"
	"github.com/iliyamo/smm-webpanel/internal/mail"
	"github.com/iliyamo/smm-webpanel/internal/middleware"
	"github.com/iliyamo/smm-webpanel/internal/queue"
	"github.com/iliyamo/smm-webpanel/internal/repository"
	"github.com/iliyamo/smm-webpanel/internal/router"
	"github.com/iliyamo/smm-webpanel/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	log := logger.New(os.Stdout, cfg.Env)

	if cfg.RunMigrations {
		if err := database.Migrate(cfg); err != nil {
			log.WithError(err).Fatal("migrations failed")
		}
	}
	db, err := database.Open(cfg)
	if err != nil {
		log.WithError(err).Fatal("database unavailable")
	}
	defer db.Close()

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Warn("redis unreachable; rate limiting and response cache disabled")
	} else {
		defer rdb.Close()
	}

	users := repository.NewUserRepo(db)
	services := repository.NewServiceRepo(db)
	orders := repository.NewOrderRepo(db)
	logs := repository.NewLogRepo(db)
	settings := repository.NewSettingRepo(db)
	coupons := repository.NewCouponRepo(db)

	tx := service.SQLTx{DB: db}
	ledger := service.NewLedger(tx, users, repository.NewTransactionRepo(db))
	flow := service.NewOrderService(tx, services, orders, coupons, ledger,
		service.NewQueuePublisher(cfg.RabbitURL), log)

	h := router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, users, repository.NewTokenRepo(db), logs, mail.New(cfg.SMTP, log), log),
		Users:        handler.NewUserHandler(users, cfg.BcryptCost, log),
		Catalog:      handler.NewCatalogHandler(services, repository.NewCategoryRepo(db), log),
		Orders:       handler.NewOrderHandler(flow, orders, logs, log),
		Transactions: handler.NewTransactionHandler(ledger, repository.NewTransactionRepo(db), settings, log),
		Tickets:      handler.NewTicketHandler(repository.NewTicketRepo(db), log),
		Admin:        handler.NewAdminHandler(settings, logs, orders, coupons, log),
		External:     handler.NewExternalHandler(flow, orders, services, logs, log),
		Dashboard:    handler.NewDashboardHandler(repository.NewStatsRepo(db), users, orders, log),
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.ErrorHandler(log, cfg.PublicDir)
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.Secure())
	e.Use(echomw.CORS())
	e.Use(echomw.BodyLimit("10M"))
	e.Use(middleware.RequestLogger(log))

	router.Register(e, h, router.Options{
		JWTSecret: cfg.JWTSecret,
		Users:     users,
		Redis:     rdb,
		APILimit:  config.LoadRateLimitConfig("RATE_LIMIT_", config.DefaultAPIRateLimit()),
		AuthLimit: config.LoadRateLimitConfig("AUTH_RATE_LIMIT_", config.DefaultAuthRateLimit()),
		Cache:     config.LoadCacheConfig(),
		PublicDir: cfg.PublicDir,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return queue.NewConsumer(cfg.RabbitURL, cfg.EventLogDir, log).Run(ctx)
	})

	g.Go(func() error {
		addr := ":" + cfg.Port
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
