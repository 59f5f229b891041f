package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all service configuration.
type Config struct {
	Server      ServerConfig     `yaml:"server"`
	Store       StoreConfig      `yaml:"store"`
	LLM         LLMConfig        `yaml:"llm"`
	Lock        LockConfig       `yaml:"lock"`
	Compaction  CompactionConfig `yaml:"compaction"`
	Notify      NotifyConfig     `yaml:"notify"`
	Logging     LoggingConfig    `yaml:"logging"`
	Specialists []SpecialistSeed `yaml:"specialists"`

	envErrs []error
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StoreConfig selects the document store: memory, postgres or firestore.
type StoreConfig struct {
	Backend          string `yaml:"backend"`
	DatabaseURL      string `yaml:"database_url"`
	FirestoreProject string `yaml:"firestore_project"`
}

// LLMConfig selects the text generator: openai or gemini.
type LLMConfig struct {
	Provider     string        `yaml:"provider"`
	APIKey       string        `yaml:"api_key"`
	Model        string        `yaml:"model"`
	SummaryModel string        `yaml:"summary_model"`
	BaseURL      string        `yaml:"base_url"`
	Temperature  float32       `yaml:"temperature"`
	Timeout      time.Duration `yaml:"timeout"`
}

// LockConfig selects the per-conversation lock: none, local or redis.
type LockConfig struct {
	Backend   string        `yaml:"backend"`
	RedisAddr string        `yaml:"redis_addr"`
	RedisDB   int           `yaml:"redis_db"`
	TTL       time.Duration `yaml:"ttl"`
}

type CompactionConfig struct {
	Threshold int           `yaml:"threshold"`
	Keep      int           `yaml:"keep"`
	Timeout   time.Duration `yaml:"timeout"`
}

// NotifyConfig enables Postgres handoff notifications when Channel is set.
type NotifyConfig struct {
	Channel string `yaml:"channel"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// SpecialistSeed is upserted into the store at startup.
type SpecialistSeed struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Specialty string `yaml:"specialty"`
	Available bool   `yaml:"available"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", ShutdownTimeout: 15 * time.Second},
		Store:  StoreConfig{Backend: "memory"},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
			Timeout:     60 * time.Second,
		},
		Lock:       LockConfig{Backend: "none", RedisAddr: "localhost:6379", TTL: 2 * time.Minute},
		Compaction: CompactionConfig{Threshold: 30, Keep: 10, Timeout: 60 * time.Second},
		Logging:    LoggingConfig{Level: "info"},
	}
}

// Load reads path over the defaults (a missing path is not an error when
// empty), then applies environment overrides and validates.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func (c *Config) applyEnv() {
	setString(&c.Server.Port, "PORT")
	setString(&c.Store.Backend, "STORE_BACKEND")
	setString(&c.Store.DatabaseURL, "DATABASE_URL")
	setString(&c.Store.FirestoreProject, "FIRESTORE_PROJECT")
	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.Model, "OPENAI_MODEL_CHAT")
	setString(&c.LLM.SummaryModel, "OPENAI_MODEL_SUMMARY")
	setString(&c.LLM.BaseURL, "OPENAI_BASE_URL")
	switch c.LLM.Provider {
	case "gemini":
		setString(&c.LLM.APIKey, "GEMINI_API_KEY")
	default:
		setString(&c.LLM.APIKey, "OPENAI_API_KEY")
	}
	setString(&c.Lock.Backend, "LOCK_BACKEND")
	setString(&c.Lock.RedisAddr, "REDIS_ADDR")
	c.setInt(&c.Compaction.Threshold, "COMPACTION_THRESHOLD")
	c.setInt(&c.Compaction.Keep, "COMPACTION_KEEP")
	setString(&c.Notify.Channel, "POSTGRES_NOTIFY_CHANNEL")
	setString(&c.Logging.Level, "LOG_LEVEL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// setInt records a malformed value for Validate instead of ignoring it.
func (c *Config) setInt(dst *int, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		c.envErrs = append(c.envErrs, fmt.Errorf("%s: %q is not an integer", key, v))
		return
	}
	*dst = n
}

// Validate rejects combinations the service cannot start with.
func (c *Config) Validate() error {
	errs := append([]error(nil), c.envErrs...)
	switch c.Store.Backend {
	case "memory":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, errors.New("store.database_url (DATABASE_URL) is required for postgres"))
		}
	case "firestore":
		if c.Store.FirestoreProject == "" {
			errs = append(errs, errors.New("store.firestore_project is required for firestore"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}
	switch c.LLM.Provider {
	case "openai", "gemini":
	default:
		errs = append(errs, fmt.Errorf("unknown llm provider %q", c.LLM.Provider))
	}
	switch c.Lock.Backend {
	case "none", "local":
	case "redis":
		if c.Lock.RedisAddr == "" {
			errs = append(errs, errors.New("lock.redis_addr is required for redis locks"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown lock backend %q", c.Lock.Backend))
	}
	if c.Compaction.Keep <= 0 || c.Compaction.Threshold <= c.Compaction.Keep {
		errs = append(errs, fmt.Errorf("compaction threshold (%d) must exceed keep (%d) and keep must be positive",
			c.Compaction.Threshold, c.Compaction.Keep))
	}
	if c.Compaction.Timeout <= 0 {
		errs = append(errs, errors.New("compaction.timeout must be positive"))
	}
	if c.Notify.Channel != "" && c.Store.Backend != "postgres" {
		errs = append(errs, errors.New("notify.channel requires the postgres store"))
	}
	return errors.Join(errs...)
}
