package app

import (
	"database/sql"
	"fmt"
	"strings"

	"balanceboard/internal/gateway/config"
	"balanceboard/internal/gateway/repository/history"
	"balanceboard/internal/gateway/repository/profile"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

type gatewayStores struct {
	profiles profile.Provider
	history  history.Store
	closers  []func() error
}

func initStores(cfg *config.Config, logger *zap.Logger) (*gatewayStores, error) {
	var (
		stores *gatewayStores
		err    error
	)
	if dsn := strings.TrimSpace(cfg.DatabaseURL); dsn != "" {
		stores, err = initPostgresStores(dsn, logger)
	} else {
		stores, err = initLocalStores(cfg, logger)
	}
	if err != nil {
		return nil, err
	}

	cached, err := profile.NewCachedProvider(stores.profiles, cfg.ProfileCacheSize)
	if err != nil {
		stores.close()
		return nil, fmt.Errorf("failed to initialize profile cache: %w", err)
	}
	stores.profiles = cached

	if cfg.Archive.Enabled {
		archive, err := history.NewS3Archive(stores.history, history.S3Config{
			Endpoint:  cfg.Archive.Endpoint,
			Region:    cfg.Archive.Region,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			Bucket:    cfg.Archive.Bucket,
			UseSSL:    cfg.Archive.UseSSL,
		})
		if err != nil {
			stores.close()
			return nil, fmt.Errorf("failed to initialize decision archive: %w", err)
		}
		logger.Info("decision archive: s3", zap.String("bucket", cfg.Archive.Bucket), zap.String("endpoint", cfg.Archive.Endpoint))
		stores.history = archive
	}
	return stores, nil
}

func initPostgresStores(dsn string, logger *zap.Logger) (*gatewayStores, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	logger.Info("stores: postgres")
	return &gatewayStores{
		profiles: profile.NewPostgresProvider(db),
		history:  history.NewPostgresStore(db),
		closers:  []func() error{db.Close},
	}, nil
}

func initLocalStores(cfg *config.Config, logger *zap.Logger) (*gatewayStores, error) {
	stores := &gatewayStores{profiles: profile.NewMemoryProvider()}
	if path := strings.TrimSpace(cfg.HistorySQLitePath); path != "" {
		s, err := history.OpenSQLite(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open history db: %w", err)
		}
		logger.Info("stores: sqlite history", zap.String("path", path))
		stores.history = s
		stores.closers = append(stores.closers, s.Close)
		return stores, nil
	}
	logger.Info("stores: in-memory")
	stores.history = history.NewMemoryStore()
	return stores, nil
}

func (s *gatewayStores) close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}
