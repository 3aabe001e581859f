package telemetry

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	"codeberg.org/mutker/vuclock/internal/errors"
	"codeberg.org/mutker/vuclock/internal/logger"

	_ "github.com/mattn/go-sqlite3"
)

type Repository interface {
	Store(ctx context.Context, snapshot *Snapshot) error
	Close() error
}

type sqliteRepository struct {
	db *sql.DB
	mu sync.Mutex
}

func NewRepository(cfg Config) (Repository, error) {
	errFactory := errors.New()

	if cfg.DBPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	logger.Debug().Msgf("Initializing telemetry repository at: %s", cfg.DBPath)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteRepository{
		db: db,
	}, nil
}

func (r *sqliteRepository) Store(ctx context.Context, snapshot *Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `
        INSERT INTO snapshots (
            timestamp, hour, minute, second,
            hour_level, minute_level, second_level,
            hour_target, minute_target, second_target
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(timestamp) DO UPDATE SET
            hour = excluded.hour,
            minute = excluded.minute,
            second = excluded.second,
            hour_level = excluded.hour_level,
            minute_level = excluded.minute_level,
            second_level = excluded.second_level,
            hour_target = excluded.hour_target,
            minute_target = excluded.minute_target,
            second_target = excluded.second_target
    `,
		snapshot.Timestamp.Unix(),
		snapshot.Clock.Hour,
		snapshot.Clock.Minute,
		snapshot.Clock.Second,
		snapshot.Levels.Hour,
		snapshot.Levels.Minute,
		snapshot.Levels.Second,
		snapshot.Targets.Hour,
		snapshot.Targets.Minute,
		snapshot.Targets.Second,
	)
	if err != nil {
		return errors.New().Wrap(ErrStorageAccess, err)
	}

	return nil
}

func (r *sqliteRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.db.Close(); err != nil {
		return errors.New().Wrap(ErrStorageClose, err)
	}
	return nil
}
