// Package initialization sets up the process dependencies: the SQLite
// database, its migrations, the task queue schema and the instance actor.
package initialization

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/golang-migrate/migrate"
	"github.com/golang-migrate/migrate/database/sqlite3"
	_ "github.com/golang-migrate/migrate/source/file"
	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"
	"github.com/tarnsocial/tarn/internal/registry"
)

func OpenDB(connString string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", connString)
	if err != nil {
		log.Error().Err(err).Str("connection string", connString).Msg("failed to open database")
	}
	return db, err
}

// SetupDB applies all pending migrations. Already being up to date is not an
// error.
func SetupDB(db *sql.DB, folder, dbname string) error {
	log.Info().Msg("starting migrations")
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		log.Error().Err(err).Msg("failed to create sqlite3 migration driver")
		return err
	}

	mig, err := migrate.NewWithDatabaseInstance("file://"+folder, dbname, driver)
	if err != nil {
		log.Error().Err(err).Msg("failed to create Migrate object")
		return err
	}

	if err = mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Error().Err(err).Msg("failed to run migrations")
		return err
	}
	return nil
}

// InitQueue creates the backlite client on the shared database and installs
// its task tables.
func InitQueue(db *sql.DB) (*backlite.Client, error) {
	client, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      2,
		ReleaseAfter:    10 * time.Minute,
		CleanupInterval: time.Hour,
	})
	if err != nil {
		return nil, err
	}
	if err = client.Install(); err != nil {
		return nil, err
	}
	return client, nil
}

// EnsureInstanceActor creates the instance actor and its key pair on first
// boot. Everything outbound is signed as this actor until a user or group
// actor exists.
func EnsureInstanceActor(ctx context.Context, reg *registry.Registry) error {
	actor, err := reg.InstanceActor(ctx)
	if err != nil {
		return err
	}
	log.Info().Str("actor", actor.Uri.String()).Msg("instance actor ready")
	return nil
}
