package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	"github.com/Domenick1991/carpool/config"
	"github.com/Domenick1991/carpool/internal/logging"
	"github.com/Domenick1991/carpool/internal/migrate"
	"github.com/Domenick1991/carpool/migrations"
	_ "github.com/lib/pq"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.NewLogger(cfg.Log.Level)

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("ping postgres: %v", err)
	}

	applied, err := migrate.New(db, logger).Apply(ctx, migrations.FS)
	if err != nil {
		log.Fatalf("migrate: %v", err)
	}
	logger.Info("migrations done", "applied", len(applied), "versions", applied)
}
