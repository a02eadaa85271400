package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/ns-adiraghavan/adas-compassiq/backend/internal/config"
	"github.com/ns-adiraghavan/adas-compassiq/backend/internal/database"
	"github.com/ns-adiraghavan/adas-compassiq/backend/internal/repository"
	"github.com/ns-adiraghavan/adas-compassiq/backend/internal/seeder"
	"github.com/ns-adiraghavan/adas-compassiq/backend/pkg/utils"
	"github.com/sirupsen/logrus"
)

var (
	file    = flag.String("file", "seeds/feedback.yaml", "YAML file with curated feedback")
	dryRun  = flag.Bool("dry-run", false, "Parse and validate only, don't write to the database")
	verbose = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := utils.InitLogger(cfg.Log.Level)
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	f, err := os.Open(*file)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open seed file")
	}
	defer f.Close()

	if *dryRun {
		records, err := seeder.NewSeeder(nil, logger).Parse(f)
		if err != nil {
			logger.WithError(err).Fatal("Seed file is invalid")
		}
		logger.WithField("records", len(records)).Info("Dry run: seed file is valid")
		return
	}

	dbManager, err := database.NewManager(&database.Config{
		DatabaseURL: cfg.Database.URL,
		RedisURL:    cfg.Redis.URL,
		LogLevel:    cfg.Log.Level,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database manager")
	}
	defer dbManager.Close()

	if err := dbManager.Migrate(); err != nil {
		logger.WithError(err).Fatal("Database migration failed")
	}

	repoManager := repository.NewRepositoryManager(dbManager.DB)
	s := seeder.NewSeeder(repoManager.InsightFeedback, logger)

	records, err := s.Parse(f)
	if err != nil {
		logger.WithError(err).Fatal("Seed file is invalid")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	written, err := s.Seed(ctx, records)
	if err != nil {
		logger.WithError(err).WithField("written", written).Fatal("Feedback seeding failed")
	}

	logger.WithField("written", written).Info("Feedback seeding completed successfully!")
}
