package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/pageza/ai-recipe-generator/backend/config"
	"github.com/pageza/ai-recipe-generator/backend/internal/database"
	"github.com/pageza/ai-recipe-generator/backend/internal/logger"
	"github.com/pageza/ai-recipe-generator/backend/internal/storage"
)

func main() {
	// Parse command line flags
	rollback := flag.Bool("rollback", false, "Drop the key-value table instead of creating it")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(config.IsProduction(), cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close(log)

	if err := run(cfg, log, *rollback); err != nil {
		log.Error("Migration failed", zap.Error(err))
		logger.Close(log)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger, rollback bool) error {
	db, err := database.Open(cfg, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if rollback {
		if err := db.Migrator().DropTable(&storage.Entry{}); err != nil {
			return fmt.Errorf("failed to drop %s: %w", storage.Entry{}.TableName(), err)
		}
		log.Info("Successfully rolled back migration", zap.String("table", storage.Entry{}.TableName()))
		return nil
	}

	if err := database.RunMigrations(db, log); err != nil {
		return err
	}
	log.Info("All migrations applied successfully")
	return nil
}
