package db

import (
	"context"
	"time"

	"github.com/Miraines/MoonyAndStarry/learning-service/internal/infra/config"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/infra/metrics"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const maxBackoff = 30 * time.Second

type OpenFunc func() (*gorm.DB, error)

var ping = Ping

// Connect opens the postgres store, retrying with capped exponential backoff
// until DB_CONNECT_MAX_RETRIES is spent or ctx is done.
func Connect(ctx context.Context, cfg *config.Config, m *metrics.Metrics, log *zap.Logger) (*gorm.DB, error) {
	open := func() (*gorm.DB, error) {
		return gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	}
	return ConnectWith(ctx, open, cfg.DBConnectMaxRetries, cfg.DBConnectBaseDelay, m, log)
}

func ConnectWith(
	ctx context.Context,
	open OpenFunc,
	maxRetries uint64,
	base time.Duration,
	m *metrics.Metrics,
	log *zap.Logger,
) (*gorm.DB, error) {
	b := retry.NewExponential(base)
	b = retry.WithCappedDuration(maxBackoff, b)
	b = retry.WithMaxRetries(maxRetries, b)

	var (
		conn    *gorm.DB
		attempt int
	)
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		db, err := open()
		if err == nil {
			if err = ping(ctx, db); err != nil {
				closePool(db, log)
			}
		}
		if err != nil {
			m.DBConnectAttempts.WithLabelValues("error").Inc()
			log.Warn("store connect failed", zap.Int("attempt", attempt), zap.Error(err))
			return retry.RetryableError(err)
		}
		m.DBConnectAttempts.WithLabelValues("ok").Inc()
		conn = db
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("store connected", zap.Int("attempts", attempt))
	return conn, nil
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// closePool освобождает пул неудачной попытки до следующего повтора.
func closePool(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("store pool close failed", zap.Error(err))
	}
}
