package main

import (
	"context"
	"log"

	"github.com/JustinTDCT/organizer/internal/api"
	"github.com/JustinTDCT/organizer/internal/auth"
	"github.com/JustinTDCT/organizer/internal/catalog"
	"github.com/JustinTDCT/organizer/internal/config"
	"github.com/JustinTDCT/organizer/internal/db"
	"github.com/JustinTDCT/organizer/internal/jobs"
	"github.com/JustinTDCT/organizer/internal/organizer"
	"github.com/JustinTDCT/organizer/internal/repository"
	"github.com/JustinTDCT/organizer/internal/scanner"
	"github.com/JustinTDCT/organizer/internal/scheduler"
)

func main() {
	cfg := config.Load()

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := db.Migrate(database, "migrations"); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	log.Println("database connected")

	items := repository.NewMediaItemRepository(database)
	settingsRepo := repository.NewSettingsRepository(database)
	scanJobs := repository.NewScanJobRepository(database)
	organizeJobs := repository.NewOrganizeJobRepository(database)
	logs := repository.NewOrganizationLogRepository(database)
	seriesRepo := repository.NewSeriesRepository(database)
	movieRepo := repository.NewMovieRepository(database)

	settings, err := config.LoadSettings(database, cfg)
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	catalogClient := catalog.New(cfg.CatalogAPIKey)
	sc := scanner.New(items, catalogClient, cfg.FFprobePath)
	org := organizer.New(items, logs, seriesRepo, movieRepo)

	authValidator := auth.NewValidator(cfg.JWTSecret)

	jobQueue := jobs.NewQueue(cfg.RedisAddr)
	controller := jobs.NewController(jobQueue, scanJobs, organizeJobs)

	wsHub := api.NewWSHub()

	scanHandler := jobs.NewScanHandler(sc, scanJobs, settingsRepo, controller, wsHub)
	organizeHandler := jobs.NewOrganizeHandler(org, organizeJobs, settingsRepo, controller, wsHub)
	jobQueue.RegisterHandler(jobs.TaskScan, scanHandler)
	jobQueue.RegisterHandler(jobs.TaskOrganize, organizeHandler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := jobQueue.Start(ctx); err != nil {
			log.Printf("job queue worker error: %v", err)
		}
	}()
	defer jobQueue.Stop()

	sched, err := scheduler.New(cfg.ScanCron, controller, settingsRepo)
	if err != nil {
		log.Fatalf("invalid scan schedule: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	server := api.NewServer(cfg, database, authValidator, controller, wsHub,
		items, settingsRepo, scanJobs, organizeJobs, logs, org)

	log.Printf("configured source folders: %d", len(settings.SourceFolders))
	log.Printf("server starting on :%d", cfg.Port)
	log.Printf("websocket available at /api/v1/ws")
	if err := server.Start(cfg.Port); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
