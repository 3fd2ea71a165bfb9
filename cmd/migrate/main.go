package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"tasktracker/internal/config"
	"tasktracker/internal/repository/postgres"
)

func main() {
	down := flag.Bool("down", false, "revert all migrations instead of applying them")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if cfg.Database.Driver != config.DriverPostgres {
		logger.Fatalf("migrations target postgres; the %s driver creates its schema on startup", cfg.Database.Driver)
	}
	if cfg.Database.URL == "" {
		logger.Fatal("DATABASE_URL not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg.Database.URL, 1)
	if err != nil {
		logger.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	run, verb := postgres.MigrateUp, "applied"
	if *down {
		run, verb = postgres.MigrateDown, "reverted"
	}

	done, err := run(ctx, pool)
	for _, m := range done {
		logger.WithField("migration", m.Name).Info(verb)
	}
	if err != nil {
		logger.Fatalf("migrate: %v", err)
	}
	logger.Infof("%d migration(s) %s", len(done), verb)
}
