package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/atelierworks/jewelqc-backend/config"
	"github.com/atelierworks/jewelqc-backend/database"
	"github.com/atelierworks/jewelqc-backend/handlers"
	"github.com/atelierworks/jewelqc-backend/media"
	"github.com/atelierworks/jewelqc-backend/qc"
	"github.com/atelierworks/jewelqc-backend/repository"
	"github.com/atelierworks/jewelqc-backend/services"
	"github.com/atelierworks/jewelqc-backend/workers"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	if dbDir := filepath.Dir(cfg.DatabasePath); dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			log.Fatalf("FATAL: Failed to create database directory %s: %v", dbDir, err)
		}
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatalf("FATAL: Failed to migrate database schemas: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("FATAL: Failed to get underlying sql.DB: %v", err)
	}
	defer sqlDB.Close()

	mediaSubDirs := map[media.AssetType]string{
		media.AssetTypeItem:      cfg.ItemsSubDir,
		media.AssetTypeThumbnail: cfg.ThumbnailsSubDir,
	}
	mediaStore, err := media.NewLocalStorage(cfg.MediaStoragePath, mediaSubDirs)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize media store: %v", err)
	}

	inspectionRepo := repository.NewInspectionRepository(db)
	reworkRepo := repository.NewReworkRepository(db)
	trialRepo := repository.NewTrialUsageRepository(db)
	waitlistRepo := repository.NewWaitlistRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	log.Printf("Initializing media worker pool (Workers: %d, Queue Size: %d)...", cfg.NumMediaWorkers, cfg.MediaQueueSize)
	mediaProcessor := workers.NewMediaProcessor(inspectionRepo, mediaStore, cfg.ThumbnailMaxSize, cfg.MediaQueueSize, cfg.NumMediaWorkers)
	defer mediaProcessor.Stop()

	// requeue media tasks left pending by a previous run
	pending, err := inspectionRepo.GetInspectionsRequiringProcessing()
	if err != nil {
		log.Printf("WARN: Failed to list inspections with pending media tasks: %v", err)
	} else {
		for _, insp := range pending {
			if insp.ItemImagePath == nil {
				continue
			}
			if insp.ThumbnailStatus == database.StatusPending {
				mediaProcessor.QueueJob(workers.MediaJob{InspectionID: insp.ID, StoredPath: *insp.ItemImagePath, TaskType: workers.TaskThumbnail})
			}
			if insp.MetadataStatus == database.StatusPending {
				mediaProcessor.QueueJob(workers.MediaJob{InspectionID: insp.ID, StoredPath: *insp.ItemImagePath, TaskType: workers.TaskMetadata})
			}
		}
		if len(pending) > 0 {
			log.Printf("Requeued media tasks for %d inspection(s)", len(pending))
		}
	}

	inspector := qc.NewInspector(qc.Config{
		Mode:                qc.DetectionMode(cfg.QCMode),
		ConfidenceThreshold: cfg.ConfidenceThreshold,
	}, qc.NewCannyContourFinder(), nil)

	qcService := services.NewQCService(
		inspectionRepo, reworkRepo, trialRepo, waitlistRepo, analyticsRepo,
		mediaStore, mediaProcessor, inspector, cfg.TrialLimit,
	)

	log.Printf("Using database: %s", cfg.DatabasePath)
	log.Printf("Storing media in: %s", cfg.MediaStoragePath)
	log.Printf("QC mode: %s, confidence threshold: %.2f, trial limit: %d", cfg.QCMode, cfg.ConfidenceThreshold, cfg.TrialLimit)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   strings.Split(cfg.AllowedOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	inspectionHandler := &handlers.InspectionHandler{Service: qcService}
	reworkHandler := &handlers.ReworkHandler{Service: qcService}
	trialHandler := &handlers.TrialHandler{Service: qcService}
	waitlistHandler := &handlers.WaitlistHandler{Service: qcService, Waitlist: waitlistRepo}
	analyticsHandler := &handlers.AnalyticsHandler{DB: sqlDB}

	r.Route("/api", func(r chi.Router) {
		r.Route("/qc", func(r chi.Router) {
			r.Post("/inspect", inspectionHandler.Inspect)
			r.Post("/triage", inspectionHandler.Triage)

			r.Route("/inspections", func(r chi.Router) {
				r.Get("/", inspectionHandler.List)
				r.Get("/{inspectionID}", inspectionHandler.Get)
			})

			r.Route("/rework", func(r chi.Router) {
				r.Post("/", reworkHandler.Create)
				r.Get("/", reworkHandler.List)
				r.Get("/{jobID}", reworkHandler.Get)
				r.Patch("/{jobID}", reworkHandler.Advance)
			})

		})

		r.Get("/trials/status", trialHandler.Status)

		r.Route("/waitlist", func(r chi.Router) {
			r.Post("/", waitlistHandler.Join)
			r.Get("/", waitlistHandler.List)
			r.Get("/status", waitlistHandler.Status)
		})

		r.Get("/analytics/summary", analyticsHandler.Summary)

		r.Get(fmt.Sprintf("/%s/*", cfg.ItemsSubDir), handlers.AssetServer(cfg.MediaStoragePath, cfg.ItemsSubDir))
		r.Get(fmt.Sprintf("/%s/*", cfg.ThumbnailsSubDir), handlers.AssetServer(cfg.MediaStoragePath, cfg.ThumbnailsSubDir))
	})

	serverAddr := ":" + cfg.Port
	fmt.Printf("Server starting on http://localhost:%s\n", cfg.Port)
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
