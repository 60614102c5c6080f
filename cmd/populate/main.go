package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/seshat-edu/seshat-backend/internal/config"
	"github.com/seshat-edu/seshat-backend/internal/database"
	"github.com/seshat-edu/seshat-backend/internal/importer"
	"github.com/seshat-edu/seshat-backend/internal/logger"
	"github.com/seshat-edu/seshat-backend/internal/repository"
	"github.com/seshat-edu/seshat-backend/internal/validator"
)

func main() {
	var file string
	flag.StringVar(&file, "file", "questoes.json", "JSON array of questions to import")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	validator.Setup()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	fmt.Printf("=== Importing questions from %s ===\n", file)

	res, err := importer.New(repository.NewQuestionRepository(pool), log).ImportFile(ctx, file)
	if err != nil {
		log.Fatal().Err(err).Msg("Import aborted")
	}

	fmt.Println("--------------------------------------------------")
	fmt.Printf("Rows read:            %d\n", res.Total)
	fmt.Printf("Added:                %d\n", res.Added)
	fmt.Printf("Skipped (missing):    %d\n", res.Missing)
	fmt.Printf("Skipped (invalid):    %d\n", res.Invalid)
	fmt.Printf("Skipped (duplicates): %d\n", res.Duplicates)
	fmt.Printf("Failed inserts:       %d\n", res.Failed)
}
