package common

import (
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Binaries BinariesConfig
	Data     DataConfig
	Batch    BatchConfig
	Predict  PredictConfig
	Database DatabaseConfig
	LogLevel slog.Level
}

// BinariesConfig locates the external training/prediction executables.
type BinariesConfig struct {
	BuildDir string
	// LibraryPathVar is prefixed with BuildDir in every child environment.
	LibraryPathVar string
}

// DataConfig holds corpus-related configuration
type DataConfig struct {
	Root string
}

// BatchConfig holds job scheduling configuration
type BatchConfig struct {
	OutDir     string
	WorkDir    string
	Workers    int
	JobTimeout time.Duration
}

// PredictConfig holds the fixed prediction flags
type PredictConfig struct {
	Particles int
	Samples   int
}

// DatabaseConfig holds the optional run store configuration
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Binaries: BinariesConfig{
			BuildDir:       getEnv("TOPICLM_BUILD_DIR", "./build/src"),
			LibraryPathVar: getEnv("TOPICLM_LIBRARY_PATH_VAR", "LD_LIBRARY_PATH"),
		},
		Data: DataConfig{
			Root: getEnv("TOPICLM_DATA_ROOT", "/home/noji/data"),
		},
		Batch: BatchConfig{
			OutDir:     getEnv("EXP_OUT_DIR", "."),
			WorkDir:    getEnv("EXP_WORK_DIR", "."),
			Workers:    getEnvAsInt("EXP_WORKERS", runtime.NumCPU()),
			JobTimeout: getEnvAsDuration("EXP_JOB_TIMEOUT", 0),
		},
		Predict: PredictConfig{
			Particles: getEnvAsInt("PREDICT_PARTICLES", 10),
			Samples:   getEnvAsInt("PREDICT_SAMPLES", 10),
		},
		Database: DatabaseConfig{
			DSN:             getEnv("RESULTS_DB", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 4),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		LogLevel: parseLevel(getEnv("LOG_LEVEL", "info")),
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("TOPICLM_BUILD_DIR", c.Binaries.BuildDir, Required).
		Field("TOPICLM_LIBRARY_PATH_VAR", c.Binaries.LibraryPathVar, Required).
		Field("TOPICLM_DATA_ROOT", c.Data.Root, Required).
		Field("EXP_OUT_DIR", c.Batch.OutDir, Required).
		Field("EXP_WORKERS", c.Batch.Workers, Positive).
		Field("PREDICT_PARTICLES", c.Predict.Particles, Positive).
		Field("PREDICT_SAMPLES", c.Predict.Samples, Positive)
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
