package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	redisv9 "github.com/redis/go-redis/v9"

	"account_backend/internal/app/di"
	"account_backend/internal/app/router"
	twofactorhandler "account_backend/internal/feature/twofactor/transport/handler"
	twofactorusecase "account_backend/internal/feature/twofactor/usecase"
	useradapters "account_backend/internal/feature/users/adapters"
	userhandler "account_backend/internal/feature/users/transport/handler"
	userusecase "account_backend/internal/feature/users/usecase"
	"account_backend/internal/platform/config"
	platformdb "account_backend/internal/platform/db"
	platformhandler "account_backend/internal/platform/http/handler"
	jwtmw "account_backend/internal/platform/jwt"
	"account_backend/internal/platform/password"
	infraredis "account_backend/internal/platform/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// logger
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		log.Printf("[WARN] unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// db
	db, err := platformdb.OpenDB(platformdb.Config{
		Driver:     cfg.Database.Driver,
		User:       cfg.Database.User,
		Password:   cfg.Database.Password,
		Name:       cfg.Database.Name,
		Host:       cfg.Database.Host,
		Port:       cfg.Database.Port,
		SSLMode:    cfg.Database.SSLMode,
		SQLitePath: cfg.Database.SQLitePath,
	}, cfg.Database.ConnectTimeout)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Database.RunMigrations {
		if err := di.Migrate(db); err != nil {
			log.Fatal(err)
		}
		log.Println("migrations applied")
	}

	// Redis
	var rdb *redisv9.Client
	if !cfg.Redis.Enabled() {
		log.Println("[WARN] REDIS_HOST not set. 2FA grants are stored in the database.")
	} else if tmp, err := infraredis.NewRedisClient(cfg.Redis); err != nil {
		log.Println("[WARN] Redis unavailable. 2FA grants are stored in the database:", err)
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// Repository
	userStore := useradapters.NewUserGorm(db, logger)
	grants := di.NewGrantStore(rdb, db, logger)

	// Usecase
	usersUC := userusecase.NewUserUsecase(
		userStore,
		password.NewBcrypt(cfg.Auth.BcryptCost),
		jwtmw.NewGenerator(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		grants,
		logger,
	)
	twoFactorUC := twofactorusecase.NewTwoFactorUsecase(userStore, grants, cfg.Auth.TOTPIssuer, cfg.Auth.TwoFactorTTL, logger)

	// Handler
	usersH := userhandler.NewUserHandler(usersUC)
	twoFactorH := twofactorhandler.NewTwoFactorHandler(twoFactorUC)
	checks := map[string]platformhandler.Check{
		"db": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	r := router.NewRouter(usersH, twoFactorH, platformhandler.NewHealth(checks), cfg.Auth.JWTSecret)

	if cfg.Auth.JWTSecret == "" {
		log.Println("[WARN] JWT_SECRET is not set. Set a strong secret in production.")
	}

	if err := r.Run(cfg.Server.Addr); err != nil {
		log.Fatal(err)
	}
}
