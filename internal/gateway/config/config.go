package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port              string        `yaml:"port"`
	Env               string        `yaml:"env"`
	LLM               LLMConfig     `yaml:"llm"`
	Session           SessionConfig `yaml:"session"`
	DatabaseURL       string        `yaml:"database_url"`
	HistorySQLitePath string        `yaml:"history_sqlite_path"`
	ProfileCacheSize  int           `yaml:"profile_cache_size"`
	Archive           ArchiveConfig `yaml:"archive"`
	Log               LogConfig     `yaml:"log"`
}

type LLMConfig struct {
	// Provider is "gemini" or "fake".
	Provider string        `yaml:"provider"`
	APIKey   string        `yaml:"api_key"`
	Model    string        `yaml:"model"`
	RPS      float64       `yaml:"rps"`
	Burst    int           `yaml:"burst"`
	Timeout  time.Duration `yaml:"timeout"`
}

type SessionConfig struct {
	TTL             time.Duration `yaml:"ttl"`
	Max             int           `yaml:"max"`
	TriageAttempts  int           `yaml:"triage_attempts"`
	ValidateAnswers bool          `yaml:"validate_answers"`
	GroundDecisions bool          `yaml:"ground_decisions"`
}

// ArchiveConfig points at the S3-compatible bucket finalized reports go to.
type ArchiveConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Load reads .env, then the YAML file at path (CONFIG_FILE when path is
// empty, skipped when neither is set), then environment overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	env := firstNonEmpty(strings.TrimSpace(os.Getenv("APP_ENV")), "local")
	cfg := defaults(env)

	path = firstNonEmpty(strings.TrimSpace(path), strings.TrimSpace(os.Getenv("CONFIG_FILE")))
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	cfg.Port = normalizePort(cfg.Port)
	cfg.Archive.Enabled = cfg.Archive.Enabled || cfg.Archive.Endpoint != ""
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "gemini"
		if cfg.LLM.APIKey == "" {
			cfg.LLM.Provider = "fake"
		}
	}
	return &cfg, cfg.validate()
}

func applyEnv(cfg *Config) error {
	str := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	str(&cfg.Port, "PORT")
	str(&cfg.LLM.Provider, "LLM_PROVIDER")
	str(&cfg.LLM.APIKey, "GEMINI_API_KEY")
	str(&cfg.LLM.Model, "LLM_MODEL")
	str(&cfg.DatabaseURL, "DATABASE_URL")
	str(&cfg.HistorySQLitePath, "HISTORY_SQLITE_PATH")
	str(&cfg.Archive.Endpoint, "ARCHIVE_S3_ENDPOINT")
	str(&cfg.Archive.Region, "ARCHIVE_S3_REGION")
	str(&cfg.Archive.Bucket, "ARCHIVE_S3_BUCKET")
	str(&cfg.Log.Level, "LOG_LEVEL")
	cfg.Archive.AccessKey = firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER")), cfg.Archive.AccessKey)
	cfg.Archive.SecretKey = firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD")), cfg.Archive.SecretKey)

	var errs []string
	parse := func(key string, fn func(string) error) {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return
		}
		if err := fn(v); err != nil {
			errs = append(errs, fmt.Sprintf("%s=%q: %v", key, v, err))
		}
	}
	parse("LLM_RPS", func(v string) (err error) { cfg.LLM.RPS, err = strconv.ParseFloat(v, 64); return })
	parse("LLM_BURST", func(v string) (err error) { cfg.LLM.Burst, err = strconv.Atoi(v); return })
	parse("LLM_TIMEOUT", func(v string) (err error) { cfg.LLM.Timeout, err = time.ParseDuration(v); return })
	parse("SESSION_TTL", func(v string) (err error) { cfg.Session.TTL, err = time.ParseDuration(v); return })
	parse("SESSION_MAX", func(v string) (err error) { cfg.Session.Max, err = strconv.Atoi(v); return })
	parse("TRIAGE_ATTEMPTS", func(v string) (err error) { cfg.Session.TriageAttempts, err = strconv.Atoi(v); return })
	parse("VALIDATE_ANSWERS", func(v string) (err error) { cfg.Session.ValidateAnswers, err = strconv.ParseBool(v); return })
	parse("GROUND_DECISIONS", func(v string) (err error) { cfg.Session.GroundDecisions, err = strconv.ParseBool(v); return })
	parse("PROFILE_CACHE_SIZE", func(v string) (err error) { cfg.ProfileCacheSize, err = strconv.Atoi(v); return })
	parse("ARCHIVE_S3_USE_SSL", func(v string) (err error) { cfg.Archive.UseSSL, err = strconv.ParseBool(v); return })
	parse("LOG_DEV", func(v string) (err error) { cfg.Log.Development, err = strconv.ParseBool(v); return })
	if len(errs) > 0 {
		return fmt.Errorf("invalid environment: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validate() error {
	switch c.LLM.Provider {
	case "gemini":
		if c.LLM.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for provider gemini")
		}
	case "fake":
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Provider)
	}
	if c.LLM.RPS < 0 || c.LLM.Burst < 0 || c.LLM.Timeout < 0 {
		return fmt.Errorf("llm limits must not be negative")
	}
	if c.Session.Max < 0 || c.Session.TriageAttempts < 0 {
		return fmt.Errorf("session limits must not be negative")
	}
	return nil
}

func normalizePort(port string) string {
	port = strings.TrimSpace(port)
	if port == "" {
		return ":8081"
	}
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
