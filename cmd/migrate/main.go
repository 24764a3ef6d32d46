package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/solbet/solbet-platform/internal/shared/config"
	"github.com/solbet/solbet-platform/internal/shared/db"
	"github.com/solbet/solbet-platform/internal/shared/logger"
)

// uso: migrate [-steps N] up|down|status
func main() {
	steps := flag.Int("steps", 1, "quantidade de migrações revertidas no down")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: migrate [-steps N] up|down|status")
		os.Exit(2)
	}

	cfg := config.Load()
	log, err := logger.New("migrate", cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	switch cmd := flag.Arg(0); cmd {
	case "up":
		v, err := db.MigrateUp(pg)
		if err != nil {
			log.Fatal("migrate up", zap.Error(err))
		}
		log.Info("migrations applied", zap.Uint("version", v))
	case "down":
		v, err := db.MigrateDown(pg, *steps)
		if err != nil {
			log.Fatal("migrate down", zap.Error(err))
		}
		log.Info("migrations reverted", zap.Int("steps", *steps), zap.Uint("version", v))
	case "status":
		v, dirty, err := db.MigrationStatus(pg)
		if err != nil {
			log.Fatal("migrate status", zap.Error(err))
		}
		log.Info("migration status", zap.Uint("version", v), zap.Bool("dirty", dirty))
	default:
		log.Fatal("unknown command", zap.String("cmd", cmd))
	}
}
