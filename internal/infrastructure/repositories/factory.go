package repositories

import (
	"context"
	"database/sql"

	"sourcehub/internal/core/ports"
	"sourcehub/internal/infrastructure/repositories/memory"
	sqliterepo "sourcehub/internal/infrastructure/repositories/sqlite"
	"sourcehub/pkg/config"

	"go.uber.org/zap"
)

// RepositoryFactory creates repositories with fallback support
type RepositoryFactory struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// NewRepositoryFactory opens the SQLite store. When the store cannot be
// opened it falls back to memory repositories, which lose everything on
// restart.
func NewRepositoryFactory(cfg *config.Config, logger *zap.SugaredLogger) (*RepositoryFactory, error) {
	factory := &RepositoryFactory{logger: logger}

	db, err := sqliterepo.NewDatabase(cfg.Store.Path, cfg.Store.MaxOpenConns, cfg.Store.MaxIdleConns, logger)
	if err != nil {
		logger.Warnw("failed to open SQLite store, falling back to memory repositories",
			"path", cfg.Store.Path,
			"error", err,
		)
		return factory, nil
	}

	factory.db = db
	logger.Info("using SQLite repositories")
	return factory, nil
}

func (f *RepositoryFactory) CreateSourceRepository() ports.SourceRepository {
	if f.db != nil {
		return sqliterepo.NewSourceRepository(f.db)
	}
	return memory.NewMemorySourceRepository()
}

func (f *RepositoryFactory) CreateVideoRepository() ports.VideoRepository {
	if f.db != nil {
		return sqliterepo.NewVideoRepository(f.db)
	}
	return memory.NewMemoryVideoRepository()
}

func (f *RepositoryFactory) CreateAccountRepository() ports.AccountRepository {
	if f.db != nil {
		return sqliterepo.NewAccountRepository(f.db)
	}
	return memory.NewMemoryAccountRepository()
}

// Close closes the store if open
func (f *RepositoryFactory) Close() error {
	if f.db != nil {
		return f.db.Close()
	}
	return nil
}

// HealthCheck checks store health
func (f *RepositoryFactory) HealthCheck(ctx context.Context) error {
	if f.db != nil {
		return f.db.PingContext(ctx)
	}
	return nil
}
