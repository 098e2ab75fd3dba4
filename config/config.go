package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"estate_matcher/matching"
	"estate_matcher/storage"
)

// DefaultMatchingFile is overlaid on top of the environment when present
const DefaultMatchingFile = "config/matching.yaml"

type Config struct {
	DatabaseURL string
	DBPath      string
	LogLevel    string
	LogFile     string
	Scheduler   SchedulerConfig
	Matching    MatchingConfig
	S3          storage.S3Config
}

type SchedulerConfig struct {
	Interval time.Duration
	Cron     string
}

// MatchingConfig holds the engine knobs. The yaml file may set any subset.
type MatchingConfig struct {
	MinScore       float64 `yaml:"min_score"`
	MaxResults     int     `yaml:"max_results"`
	StrictMode     bool    `yaml:"strict_mode"`
	PrioritizeNew  bool    `yaml:"prioritize_new"`
	CandidateLimit int     `yaml:"candidate_limit"`
	PropertyLimit  int     `yaml:"property_limit"`
	Workers        int     `yaml:"workers"`
}

// matchingFile mirrors MatchingConfig with pointers so unset keys keep the env value.
type matchingFile struct {
	MinScore       *float64 `yaml:"min_score"`
	MaxResults     *int     `yaml:"max_results"`
	StrictMode     *bool    `yaml:"strict_mode"`
	PrioritizeNew  *bool    `yaml:"prioritize_new"`
	CandidateLimit *int     `yaml:"candidate_limit"`
	PropertyLimit  *int     `yaml:"property_limit"`
	Workers        *int     `yaml:"workers"`
	Cron           *string  `yaml:"cron"`
	Interval       *string  `yaml:"interval"`
}

func Load() (*Config, error) {
	return LoadFrom(DefaultMatchingFile)
}

// LoadFrom reads .env and the environment, then overlays the yaml file at path.
// A missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBPath:      getEnv("DB_PATH", "matcher.db"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     getEnv("LOG_FILE", "matcher.log"),
		Scheduler: SchedulerConfig{
			Cron: os.Getenv("MATCH_CRON"),
		},
		Matching: MatchingConfig{
			MinScore:       getEnvFloat("MATCH_MIN_SCORE", matching.DefaultMinScore),
			MaxResults:     getEnvInt("MATCH_MAX_RESULTS", matching.DefaultMaxResults),
			StrictMode:     getEnvBool("MATCH_STRICT", false),
			PrioritizeNew:  getEnvBool("MATCH_PRIORITIZE_NEW", false),
			CandidateLimit: getEnvInt("MATCH_CANDIDATE_LIMIT", 500),
			PropertyLimit:  getEnvInt("MATCH_PROPERTY_LIMIT", 500),
			Workers:        getEnvInt("MATCH_WORKERS", 0),
		},
		S3: storage.S3Config{
			Bucket:          os.Getenv("S3_BUCKET"),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		},
	}

	if interval := os.Getenv("MATCH_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err == nil {
			cfg.Scheduler.Interval = d
		}
	}

	if err := cfg.overlay(path); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) overlay(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var f matchingFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	m := &c.Matching
	if f.MinScore != nil {
		m.MinScore = *f.MinScore
	}
	if f.MaxResults != nil {
		m.MaxResults = *f.MaxResults
	}
	if f.StrictMode != nil {
		m.StrictMode = *f.StrictMode
	}
	if f.PrioritizeNew != nil {
		m.PrioritizeNew = *f.PrioritizeNew
	}
	if f.CandidateLimit != nil {
		m.CandidateLimit = *f.CandidateLimit
	}
	if f.PropertyLimit != nil {
		m.PropertyLimit = *f.PropertyLimit
	}
	if f.Workers != nil {
		m.Workers = *f.Workers
	}
	if f.Cron != nil {
		c.Scheduler.Cron = *f.Cron
	}
	if f.Interval != nil {
		d, err := time.ParseDuration(*f.Interval)
		if err != nil {
			return fmt.Errorf("parse %s: interval: %w", path, err)
		}
		c.Scheduler.Interval = d
	}
	return nil
}

// MatchOptions converts the matching knobs to engine options. Out of range
// values fall back to the engine defaults.
func (c *Config) MatchOptions() matching.Options {
	opts := matching.DefaultOptions()
	m := c.Matching
	if m.MinScore >= 0 && m.MinScore <= 100 {
		opts.MinScore = m.MinScore
	}
	if m.MaxResults > 0 {
		opts.MaxResults = m.MaxResults
	}
	opts.StrictMode = m.StrictMode
	opts.PrioritizeNew = m.PrioritizeNew
	return opts
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
