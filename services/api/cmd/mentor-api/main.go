package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"mentorbill/pkg/bus"
	pkgdb "mentorbill/pkg/db"
	gos3 "mentorbill/pkg/s3"
	"mentorbill/pkg/telemetry"
	"mentorbill/services/api"
	"mentorbill/services/mentoring"
	"mentorbill/services/rooms"
	"mentorbill/services/scheduler"
)

const serviceName = "mentor-api"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := api.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	shutdownTelemetry, requestMiddleware, err := telemetry.Init(ctx, serviceName, cfg.OTLPEndpoint, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("init telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	pool, err := pkgdb.Open(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	if err := pkgdb.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	orm, err := api.ConnectORM(cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect orm")
	}

	store := &api.Store{DB: pool, ORM: orm}

	if cfg.NATSURL != "" {
		eventBus, err := bus.New(cfg.NATSURL)
		if err != nil {
			log.Fatal().Err(err).Msg("connect nats")
		}
		defer eventBus.Close()
		store.Bus = eventBus
	}

	if cfg.StatementsBucket != "" {
		s3Client, err := gos3.NewClientFromEnv()
		if err != nil {
			log.Fatal().Err(err).Msg("init statement archive")
		}
		store.S3 = s3Client
	}

	var roomProvider mentoring.RoomProvider
	if cfg.RoomAPIBase != "" {
		client, err := rooms.New(cfg.RoomAPIBase, cfg.RoomAPIKey, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("init room provider")
		}
		roomProvider = client
	}

	app, err := api.New(store, cfg, roomProvider, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("init api")
	}

	sched := scheduler.New(app.Generator(), app.Reaper(), app.Repo(), cfg.BillingInterval, log.Logger)
	sched.Start(ctx)

	routes, err := app.Routes()
	if err != nil {
		log.Fatal().Err(err).Msg("build routes")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           requestMiddleware(routes),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("starting mentor-api")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown server")
	}
}
