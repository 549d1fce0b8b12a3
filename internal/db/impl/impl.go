package impl

import (
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
	"github.com/tarnsocial/tarn/internal/config"
	"github.com/tarnsocial/tarn/internal/db"
)

type dbImpl struct {
	Config config.Configuration
	db     *sql.DB
}

func New(config config.Configuration, d *sql.DB) db.DB {
	return &dbImpl{
		Config: config,
		db:     d,
	}
}

// HandleError takes a database error and returns a higher level error that
// hides the implementation details and can be more easily handled by the
// calling functions without doing type assertions, checking error codes and
// comparing to sentinel errors.
func (d *dbImpl) HandleError(err error) error {
	var sqliteErr sqlite3.Error
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return db.ErrNotFound
	case errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint:
		return db.ErrConflict
	default:
		log.Error().Err(err).Msg("database error")
		return err
	}
}
