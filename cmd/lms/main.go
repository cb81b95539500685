package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	myMemoryRepo "github.com/Miraines/MoonyAndStarry/learning-service/internal/adapters/db/memory"
	myPostgresRepo "github.com/Miraines/MoonyAndStarry/learning-service/internal/adapters/db/postgres"
	myRedisRepo "github.com/Miraines/MoonyAndStarry/learning-service/internal/adapters/db/redis"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/adapters/mail"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/adapters/social/oidc"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/adapters/storage/s3"
	httpTransport "github.com/Miraines/MoonyAndStarry/learning-service/internal/adapters/transport/http"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/app/auth/jwt"
	appsvc "github.com/Miraines/MoonyAndStarry/learning-service/internal/app/auth/service"
	ordersvc "github.com/Miraines/MoonyAndStarry/learning-service/internal/app/order"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/repo"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/media"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/social"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/infra/config"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/infra/db"
	lg "github.com/Miraines/MoonyAndStarry/learning-service/internal/infra/log"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/infra/metrics"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/infra/migrate"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/infra/server"
	"golang.org/x/sync/errgroup"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		lg.Must("development", "info").Fatal("failed to load config", zap.Error(err))
	}

	zapLog := lg.Must(cfg.Env, cfg.LogLevel)
	defer zapLog.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	gdb, err := db.Connect(rootCtx, cfg, m, zapLog)
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		zapLog.Fatal("db handle", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := migrate.Up(sqlDB); err != nil {
		zapLog.Fatal("run migrations", zap.Error(err))
	}

	checks := map[string]httpTransport.Check{
		"postgres": func(ctx context.Context) error { return db.Ping(ctx, gdb) },
	}

	sessions, closeSessions := newSessionCache(cfg, checks, zapLog)
	defer closeSessions()

	jwtUtil, err := jwt.NewJWTUtil(cfg)
	if err != nil {
		zapLog.Fatal("failed to init JWT util", zap.Error(err))
	}
	activation, err := jwt.NewActivationCodec(cfg.ActivationSecret, cfg.ActivationTokenTTL)
	if err != nil {
		zapLog.Fatal("failed to init activation codec", zap.Error(err))
	}

	mailer, err := mail.NewSMTPSender(cfg, zapLog)
	if err != nil {
		zapLog.Fatal("failed to init mailer", zap.Error(err))
	}

	var avatars media.AvatarStore
	if cfg.S3Bucket != "" {
		store, err := s3.NewS3AvatarStore(rootCtx, cfg)
		if err != nil {
			zapLog.Fatal("failed to init avatar storage", zap.Error(err))
		}
		avatars = store
	} else {
		zapLog.Warn("S3_BUCKET is not set, avatar upload disabled")
	}

	var verifier social.IdentityVerifier
	if cfg.GoogleClientID != "" {
		v, err := oidc.New(rootCtx, oidc.GoogleIssuer, cfg.GoogleClientID)
		if err != nil {
			zapLog.Fatal("failed to init id_token verifier", zap.Error(err))
		}
		verifier = v
	}

	validate := validator.New()
	userRepo := myPostgresRepo.NewPostgresUserRepo(gdb)

	authService := appsvc.New(appsvc.Deps{
		Users:      userRepo,
		Sessions:   sessions,
		Tokens:     jwtUtil,
		Activation: activation,
		Mailer:     mailer,
		Avatars:    avatars,
		Verifier:   verifier,
		Config:     cfg,
		Validate:   validate,
		Log:        zapLog,
	})
	orderService := ordersvc.New(ordersvc.Deps{
		Users:         userRepo,
		Sessions:      sessions,
		Courses:       myPostgresRepo.NewPostgresCourseRepo(gdb),
		Orders:        myPostgresRepo.NewPostgresOrderRepo(gdb),
		Notifications: myPostgresRepo.NewPostgresNotificationRepo(gdb),
		Mailer:        mailer,
		Validate:      validate,
		Log:           zapLog,
	})

	handler := httpTransport.NewHandler(
		authService,
		orderService,
		httpTransport.CookieOptions{Domain: cfg.CookieDomain, Secure: cfg.IsProduction()},
		checks,
		zapLog,
	)

	g, ctx := errgroup.WithContext(rootCtx)

	router := httpTransport.NewRouter(httpTransport.RouterDeps{
		Handler: handler,
		Guard:   authService,
		Config:  cfg,
		Metrics: m,
		Log:     zapLog,
		Stop:    ctx.Done(),
	})

	g.Go(func() error {
		return server.StartHTTPServer(ctx, cfg.HTTPAddress, router, zapLog)
	})

	<-ctx.Done()
	zapLog.Info("shutdown signal received")
	if err := g.Wait(); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
	}
}

// newSessionCache выбирает бэкенд кэша сессий; для Redis добавляет проверку готовности.
func newSessionCache(
	cfg *config.Config,
	checks map[string]httpTransport.Check,
	log *zap.Logger,
) (repo.SessionCache, func()) {
	if !cfg.UsesRedis() {
		log.Warn("in-process session cache, sessions are lost on restart")
		return myMemoryRepo.NewSessionCache(), func() {}
	}

	redisCli := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	checks["redis"] = func(ctx context.Context) error { return redisCli.Ping(ctx).Err() }
	return myRedisRepo.NewRedisSessionCache(redisCli), func() { _ = redisCli.Close() }
}
