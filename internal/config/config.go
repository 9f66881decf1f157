package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
}

type AppConfig struct {
	Environment string
	DataDir     string
	LogFilePath string
}

type DatabaseConfig struct {
	// Path of the SQLite file; ":memory:" keeps everything in RAM.
	Path string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	dataDir := getEnv("STATICLINK_DATA_DIR", defaultDataDir())

	return &Config{
		App: AppConfig{
			Environment: getEnv("GO_ENV", "development"),
			DataDir:     dataDir,
			LogFilePath: getEnv("LOG_FILE_PATH", filepath.Join(dataDir, "staticlink.log")),
		},
		Database: DatabaseConfig{
			Path: getEnv("STATICLINK_DB_PATH", filepath.Join(dataDir, "staticlink.db")),
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".staticlink")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
