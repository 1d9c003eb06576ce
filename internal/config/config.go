// Package config loads process configuration from the environment and
// folds the persisted Settings row over it, the teacher's env/envInt and
// MergeFromDB pattern.
package config

import (
	"database/sql"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/JustinTDCT/organizer/internal/models"
)

// Config is process-level configuration: transport addresses and defaults
// that Settings may override once the store is reachable.
type Config struct {
	Port        int
	DatabaseURL string
	RedisAddr   string
	JWTSecret   string

	CatalogAPIKey string
	MoviesRoot    string
	TVRoot        string
	AutoOrganize  bool

	// BrowseRoots is the filesystem-browser allow-list (spec.md §6).
	BrowseRoots []string

	ScanCron    string
	FFprobePath string
}

func Load() *Config {
	return &Config{
		Port:        envInt("PORT", 8080),
		DatabaseURL: env("DATABASE_URL", "postgres://organizer:organizer@db:5432/organizer?sslmode=disable"),
		RedisAddr:   env("REDIS_ADDR", "redis:6379"),
		JWTSecret:   env("JWT_SECRET", "change-me-in-production"),

		CatalogAPIKey: env("CATALOG_API_KEY", ""),
		MoviesRoot:    env("MOVIES_ROOT", ""),
		TVRoot:        env("TV_ROOT", ""),
		AutoOrganize:  envBool("AUTO_ORGANIZE", false),

		BrowseRoots: []string{"/", "/mnt", "/media", "/home", "/data", "/opt", "/srv", "/storage", "/nas", "/volume1", "/shares"},

		ScanCron:    env("SCAN_CRON", ""),
		FFprobePath: env("FFPROBE_PATH", "ffprobe"),
	}
}

// LoadSettings reads the singleton Settings row from the database, falling
// back to env-derived defaults when no row exists yet.
func LoadSettings(db *sql.DB, cfg *Config) (*models.Settings, error) {
	settings := &models.Settings{
		MoviesRoot:   cfg.MoviesRoot,
		TVRoot:       cfg.TVRoot,
		AutoOrganize: cfg.AutoOrganize,
	}

	row := db.QueryRow(`SELECT catalog_api_key_hash, source_folders, movies_root, tv_root, auto_organize FROM settings WHERE id = 1`)

	var hash sql.NullString
	var folders pq.StringArray
	var moviesRoot, tvRoot sql.NullString
	var autoOrganize sql.NullBool

	err := row.Scan(&hash, &folders, &moviesRoot, &tvRoot, &autoOrganize)
	if err == sql.ErrNoRows {
		log.Println("config: no settings row yet, using environment defaults")
		return settings, nil
	}
	if err != nil {
		return nil, err
	}

	settings.CatalogAPIKeyHash = hash.String
	settings.SourceFolders = models.DecodeSourceFolders([]string(folders))
	if moviesRoot.Valid {
		settings.MoviesRoot = moviesRoot.String
	}
	if tvRoot.Valid {
		settings.TVRoot = tvRoot.String
	}
	if autoOrganize.Valid {
		settings.AutoOrganize = autoOrganize.Bool
	}
	return settings, nil
}

// HashCatalogAPIKey hashes a plaintext catalog API key for storage at rest.
func HashCatalogAPIKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}
