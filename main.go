package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	zero "github.com/rs/zerolog/log"
	"github.com/tarnsocial/tarn/internal/activitypub"
	"github.com/tarnsocial/tarn/internal/client"
	"github.com/tarnsocial/tarn/internal/config"
	dbimpl "github.com/tarnsocial/tarn/internal/db/impl"
	"github.com/tarnsocial/tarn/internal/delivery"
	"github.com/tarnsocial/tarn/internal/inbound"
	"github.com/tarnsocial/tarn/internal/initialization"
	"github.com/tarnsocial/tarn/internal/queue"
	"github.com/tarnsocial/tarn/internal/registry"
	"github.com/tarnsocial/tarn/internal/signature"
	"github.com/tarnsocial/tarn/internal/ssrf"
	"github.com/tarnsocial/tarn/internal/state"
	"github.com/tarnsocial/tarn/internal/utils"
	"github.com/tarnsocial/tarn/internal/web"
	"github.com/tarnsocial/tarn/internal/wellknown"

	_ "github.com/mattn/go-sqlite3"
)

func main() {
	zero.Logger = zero.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.ReadConfig()
	if err != nil {
		zero.Fatal().Err(err).Msg("configuration error")
	}
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	d, err := initialization.OpenDB(cfg.DbUrl)
	if err != nil {
		os.Exit(1)
	}
	zero.Info().Msg("database connection established")

	if err = initialization.SetupDB(d, cfg.MigrationsFolder, cfg.DbUrl); err != nil {
		os.Exit(1)
	}

	database := dbimpl.New(cfg, d)
	reg := registry.New(cfg, database)

	ctx := context.Background()
	if err = initialization.EnsureInstanceActor(ctx, reg); err != nil {
		zero.Fatal().Err(err).Msg("unable to bootstrap the instance actor")
	}

	// Remote fetches are signed as the instance actor.
	instance, err := reg.InstanceActor(ctx)
	if err != nil {
		zero.Fatal().Err(err).Send()
	}
	kp, err := reg.KeyPair(ctx, instance)
	if err != nil {
		zero.Fatal().Err(err).Send()
	}
	instanceKey, err := utils.ParseRSAPrivateKey(kp.PrivateKeyPem)
	if err != nil {
		zero.Fatal().Err(err).Msg("stored instance key is unreadable")
	}

	validator := ssrf.New(nil, cfg.ValidateDns)
	httpClient := client.NewHTTPClient(cfg.HttpTimeout, validator)

	fetcher, err := client.New(httpClient, validator, instanceKey, kp.KeyId)
	if err != nil {
		zero.Fatal().Err(err).Send()
	}

	signer := signature.New(cfg, fetcher)
	builder := activitypub.NewBuilder(cfg)
	deliverer := delivery.New(cfg, httpClient, validator, signer, database)

	tasks, err := initialization.InitQueue(d)
	if err != nil {
		zero.Fatal().Err(err).Msg("unable to set up the task queue")
	}
	q := queue.New(ctx, cfg, database, reg, builder, deliverer, tasks)

	dispatcher, err := inbound.New(cfg, database, builder, signer, fetcher, q)
	if err != nil {
		zero.Fatal().Err(err).Send()
	}

	go func() {
		for range time.Tick(time.Hour) {
			validator.Sweep()
			signer.Sweep()
		}
	}()

	s := &state.State{
		DB:         database,
		Config:     cfg,
		Registry:   reg,
		Builder:    builder,
		Dispatcher: dispatcher,
	}

	router := chi.NewRouter()
	web.Mount(s, router)
	wellknown.Mount(s, router)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	zero.Info().Uint16("port", cfg.Port).Str("domain", cfg.Domain).Msg("started server")
	if err = server.ListenAndServe(); err != nil {
		zero.Fatal().Err(err).Msg("server stopped")
	}
}
