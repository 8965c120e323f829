package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

const (
	DefaultItemsSubDir      = "items"
	DefaultThumbnailsSubDir = "thumbnails"
)

const (
	defaultMediaQueueSize   = 200
	defaultNumMediaWorkers  = 4
	defaultThumbnailMaxSize = 300
	defaultTrialLimit       = 3
)

type Config struct {
	// database path
	DatabasePath string

	// media storage configuration
	MediaStoragePath string // primary root for stored assets (item uploads, thumbs)
	ItemsSubDir      string // subdirectory name for original item uploads
	ThumbnailsSubDir string // subdirectory name for generated thumbnails

	// thumbnail generation settings
	ThumbnailMaxSize int

	// worker settings
	MediaQueueSize  int
	NumMediaWorkers int

	// inspection settings
	QCMode              string // "simulated" or "ml"
	ConfidenceThreshold float64

	// trial gating
	TrialLimit int

	// http
	Port           string
	AllowedOrigins string
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvFloatOrDefault(envVar string, defaultVal float64) float64 {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseFloat(valStr, 64)
	if err != nil || val <= 0 || val > 1 {
		log.Printf("Warning: Invalid %s '%s'. Using default %v. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	dbPath := getEnvOrDefault("DATABASE_PATH", "jewelqc.db")

	mediaStorage := getEnvOrDefault("MEDIA_STORAGE_PATH", filepath.Join(".", "media_storage"))
	absMediaStorage, err := filepath.Abs(mediaStorage)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for media storage '%s': %w", mediaStorage, err)
	}

	qcMode := getEnvOrDefault("QC_MODE", "simulated")
	if qcMode != "simulated" && qcMode != "ml" {
		log.Printf("Warning: Invalid QC_MODE '%s'. Using 'simulated'.", qcMode)
		qcMode = "simulated"
	}

	cfg := Config{
		DatabasePath:        dbPath,
		MediaStoragePath:    absMediaStorage,
		ItemsSubDir:         getEnvOrDefault("ITEMS_SUBDIR", DefaultItemsSubDir),
		ThumbnailsSubDir:    getEnvOrDefault("THUMBNAILS_SUBDIR", DefaultThumbnailsSubDir),
		ThumbnailMaxSize:    getEnvIntOrDefault("THUMBNAIL_MAX_SIZE", defaultThumbnailMaxSize),
		MediaQueueSize:      getEnvIntOrDefault("MEDIA_QUEUE_SIZE", defaultMediaQueueSize),
		NumMediaWorkers:     getEnvIntOrDefault("NUM_MEDIA_WORKERS", defaultNumMediaWorkers),
		QCMode:              qcMode,
		ConfidenceThreshold: getEnvFloatOrDefault("QC_CONFIDENCE_THRESHOLD", 0.7),
		TrialLimit:          getEnvIntOrDefault("TRIAL_LIMIT", defaultTrialLimit),
		Port:                getEnvOrDefault("PORT", "8080"),
		AllowedOrigins:      getEnvOrDefault("ALLOWED_ORIGINS", "*"),
	}

	return cfg, nil
}
