package shared

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"place_pulse/internal/adapters/extract"
	"place_pulse/internal/app"
)

type Config struct {
	AppEnv       string
	HTTPAddr     string
	MetricsAddr  string
	MySQLDSN     string
	RedisAddr    string
	RedisDB      int
	RedisPass    string
	BatchSize    int
	MatchPolicy  string
	CreatePlaces bool
	ClassifyN    int
	CacheTTL     time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:       env("APP_ENV", "prod"),
		HTTPAddr:     env("HTTP_ADDR", ":8080"),
		MetricsAddr:  env("METRICS_ADDR", ":9100"),
		MySQLDSN:     env("MYSQL_DSN", "root:root@tcp(localhost:3306)/placepulse?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:    env("REDIS_ADDR", "localhost:6379"),
		RedisPass:    env("REDIS_PASSWORD", ""),
		RedisDB:      atoi("REDIS_DB", 0),
		BatchSize:    atoi("IMPORT_BATCH_SIZE", app.DefaultBatchSize),
		MatchPolicy:  env("MATCH_POLICY", "strict"),
		CreatePlaces: env("IMPORT_CREATE_PLACES", "true") == "true",
		ClassifyN:    atoi("CLASSIFY_BATCH_SIZE", app.DefaultBatchSize),
		CacheTTL:     time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Import-file validation errors.
var (
	ErrBadMatchPolicy = errors.New("match_policy must be \"strict\" or \"relaxed\"")
	ErrBadBatchSize   = errors.New("batch_size must be non-negative")
)

// ImportFile is an optional per-run YAML overlay for the import command.
// Anything left zero falls back to the environment config.
type ImportFile struct {
	BatchSize    int             `yaml:"batch_size"`
	MatchPolicy  string          `yaml:"match_policy"`
	CreatePlaces *bool           `yaml:"create_places"`
	Columns      extract.Columns `yaml:"columns"`
}

func LoadImportFile(path string) (ImportFile, error) {
	var f ImportFile
	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("read import config: %w", err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parse import config: %w", err)
	}
	if err := f.Validate(); err != nil {
		return f, err
	}
	return f, nil
}

func (f ImportFile) Validate() error {
	if f.MatchPolicy != "" && f.MatchPolicy != "strict" && f.MatchPolicy != "relaxed" {
		return ErrBadMatchPolicy
	}
	if f.BatchSize < 0 {
		return ErrBadBatchSize
	}
	return nil
}

// ImportOptions merges the env config with an optional file overlay into
// the options the import service takes.
func (c Config) ImportOptions(f ImportFile) app.ImportOptions {
	opts := app.ImportOptions{
		BatchSize:     c.BatchSize,
		Policy:        app.MatchStrict,
		CreateMissing: c.CreatePlaces,
	}
	if c.MatchPolicy == "relaxed" {
		opts.Policy = app.MatchRelaxed
	}
	if f.BatchSize > 0 {
		opts.BatchSize = f.BatchSize
	}
	if f.MatchPolicy != "" {
		opts.Policy = app.MatchStrict
		if f.MatchPolicy == "relaxed" {
			opts.Policy = app.MatchRelaxed
		}
	}
	if f.CreatePlaces != nil {
		opts.CreateMissing = *f.CreatePlaces
	}
	return opts
}
