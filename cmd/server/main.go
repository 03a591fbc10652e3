package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/Aquabet/webapp/internal/api"
	"github.com/Aquabet/webapp/internal/config"
	"github.com/Aquabet/webapp/internal/events"
	"github.com/Aquabet/webapp/internal/metrics"
	"github.com/Aquabet/webapp/internal/repository"
	"github.com/Aquabet/webapp/internal/secrets"
	"github.com/Aquabet/webapp/internal/service"
	"github.com/Aquabet/webapp/internal/storage"
	_ "github.com/Aquabet/webapp/migrations"
)

func main() {
	godotenv.Load(".env.dev")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogger(cfg.LogLevel)

	ctx := context.Background()

	if cfg.Secrets.Name != "" {
		resolver, err := secrets.NewResolver(ctx, cfg.AWS)
		if err != nil {
			log.Fatalf("Failed to initialize secrets resolver: %v", err)
		}
		creds, err := resolver.DatabaseCredentials(ctx, cfg.Secrets.Name)
		if err != nil {
			log.Fatalf("Failed to resolve database credentials: %v", err)
		}
		creds.Apply(&cfg.DB)
		slog.Info("Database credentials resolved from secrets manager", "secret", cfg.Secrets.Name)
	}

	db, err := sqlx.Connect("pgx", cfg.DB.URL())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	slog.Info("Database connected.")

	runMigrations(db)

	objectStore, err := storage.NewObjectStore(ctx, cfg.AWS, cfg.S3)
	if err != nil {
		log.Fatalf("Failed to initialize object store: %v", err)
	}

	publisher, err := events.NewSNSPublisher(ctx, cfg.AWS, cfg.SNS.TopicARN, cfg.BaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize SNS publisher: %v", err)
	}

	emitter := metrics.NewNoop()
	if cfg.Statsd.Enabled {
		emitter = metrics.NewStatsd(cfg.Statsd.Address, cfg.Statsd.Prefix)
	}

	userRepo := repository.NewPostgresUserRepository(db)
	imageRepo := repository.NewPostgresImageRepository(db)

	userService := service.NewUserService(userRepo, publisher, emitter)
	pictureService := service.NewPictureService(imageRepo, objectStore, emitter)

	app := api.NewRouter(userService, pictureService, userRepo, emitter)

	slog.Info("Listening", "port", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}

// runMigrations brings the schema up before the listener accepts traffic.
// goose is idempotent, so restarts are no-ops.
func runMigrations(db *sqlx.DB) {
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("failed to set goose dialect: %v", err)
	}
	if err := goose.Up(db.DB, "migrations"); err != nil {
		log.Fatalf("goose: failed to run migrations: %v", err)
	}
	slog.Info("Migrations applied.")
}

func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler).With(slog.String("service", "webapp")))
}
