package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"example.com/shop-demo/internal/config"
	"example.com/shop-demo/internal/infra/catalog"
	"example.com/shop-demo/internal/infra/mail"
	"example.com/shop-demo/internal/infra/metrics"
	"example.com/shop-demo/internal/infra/persistence"
	"example.com/shop-demo/internal/infra/persistence/localstore"
	"example.com/shop-demo/internal/infra/persistence/mysql"
	"example.com/shop-demo/internal/infra/persistence/postgres"
	"example.com/shop-demo/internal/infra/persistence/redis"
	"example.com/shop-demo/internal/infra/security"
	httpapi "example.com/shop-demo/internal/interface/http"
	"example.com/shop-demo/internal/logger"
	authuc "example.com/shop-demo/internal/usecase/auth"
	cartuc "example.com/shop-demo/internal/usecase/cart"
	productuc "example.com/shop-demo/internal/usecase/product"
	useruc "example.com/shop-demo/internal/usecase/user"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slots, closeSlots, err := openSlotStore(ctx, cfg)
	if err != nil {
		log.WithError(err).WithField("driver", cfg.StorageDriver).Fatal("could not open storage")
	}
	defer closeSlots()
	log.WithField("driver", cfg.StorageDriver).Info("storage ready")

	users := localstore.NewUserRepository(slots)
	sessions := localstore.NewSessionRepository(slots)
	hasher := security.NewBcryptService(cfg.BcryptCost)
	tokens := security.NewJWTService(cfg.JWTSecret, cfg.JWTTTL)

	var notifier authuc.WelcomeNotifier
	if cfg.SMTPAddr != "" {
		notifier = mail.NewWelcomeMailer(cfg.SMTPAddr, cfg.SMTPFrom)
	}

	authSvc := authuc.NewService(users, sessions, hasher, tokens, notifier, log)
	if cfg.SeedDemoUsers {
		if err := authSvc.SeedDemoUsers(ctx); err != nil {
			log.WithError(err).Fatal("could not seed demo users")
		}
	}

	client, err := catalog.NewClient(catalog.Options{
		BaseURL: cfg.ProductAPIBaseURL,
		Timeout: cfg.ProductAPITimeout,
	}, log)
	if err != nil {
		log.WithError(err).Fatal("invalid catalog configuration")
	}
	productSvc := productuc.NewService(client)

	m := metrics.New()
	store := cartuc.Open(ctx, localstore.NewCartSnapshot(slots), log, m)
	log.WithField("items", store.Snapshot().Len()).Info("cart loaded")

	var pinger persistence.Pinger
	if p, ok := slots.(persistence.Pinger); ok {
		pinger = p
	}

	api := httpapi.NewAPI(httpapi.Dependencies{
		AuthService:    authSvc,
		UserService:    useruc.NewService(users, sessions, hasher),
		ProductService: productSvc,
		CartService:    cartuc.NewService(store, productSvc),
		Logger:         log,
		Metrics:        m,
		Storage:        pinger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("shutdown")
		}
	}()

	log.Infof("listening on :%s ...", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("server stopped")
	}
	log.Info("bye")
}

func openSlotStore(ctx context.Context, cfg config.Config) (persistence.Store, func(), error) {
	noop := func() {}

	switch cfg.StorageDriver {
	case "memory":
		return persistence.NewMemoryStore(), noop, nil

	case "file":
		fs, err := persistence.NewFileStore(cfg.FilePath)
		if err != nil {
			return nil, noop, err
		}
		return fs, noop, nil

	case "mysql":
		db, err := mysql.Open(cfg.MySQLDSN)
		if err != nil {
			return nil, noop, err
		}
		s := mysql.NewSlotStore(db)
		if err := s.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		return s, func() { _ = db.Close() }, nil

	case "postgres":
		pool, err := postgres.Connect(ctx, cfg.PGDSN)
		if err != nil {
			return nil, noop, err
		}
		s := postgres.NewSlotStore(pool)
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, noop, err
		}
		return s, pool.Close, nil

	case "redis":
		rdb, err := redis.NewClient(cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return nil, noop, err
		}
		s := redis.NewSlotStore(rdb, cfg.RedisPrefix)
		if err := s.Ping(ctx); err != nil {
			_ = rdb.Close()
			return nil, noop, err
		}
		return s, func() { _ = rdb.Close() }, nil
	}

	return nil, noop, errors.New("unknown STORAGE_DRIVER " + cfg.StorageDriver)
}
