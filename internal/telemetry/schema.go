package telemetry

import (
	"database/sql"

	"codeberg.org/mutker/vuclock/internal/errors"
)

// initSchema initializes the database schema for telemetry data
func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS snapshots (
            timestamp INTEGER PRIMARY KEY,
            hour INTEGER,
            minute INTEGER,
            second INTEGER,
            hour_level INTEGER,
            minute_level INTEGER,
            second_level INTEGER,
            hour_target INTEGER,
            minute_target INTEGER,
            second_target INTEGER
        )
    `)
	if err != nil {
		return errors.New().Wrap(ErrStorageInit, err)
	}

	return nil
}
