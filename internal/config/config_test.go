package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "STORE_BACKEND", "DATABASE_URL", "FIRESTORE_PROJECT", "LLM_PROVIDER",
	"OPENAI_MODEL_CHAT", "OPENAI_MODEL_SUMMARY", "OPENAI_BASE_URL", "OPENAI_API_KEY",
	"GEMINI_API_KEY", "LOCK_BACKEND", "REDIS_ADDR", "COMPACTION_THRESHOLD",
	"COMPACTION_KEEP", "POSTGRES_NOTIFY_CHANNEL", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 30, cfg.Compaction.Threshold)
	assert.Equal(t, 10, cfg.Compaction.Keep)
	assert.Equal(t, "none", cfg.Lock.Backend)
}

func TestSaveAndLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Server.Port = "9090"
	cfg.Lock.Backend = "local"
	cfg.Compaction.Timeout = 30 * time.Second
	cfg.Specialists = []SpecialistSeed{
		{ID: "sp-1", Name: "Nguyễn Văn An", Specialty: "Tim mạch", Available: true},
	}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7070")
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/triage?sslmode=disable")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GEMINI_API_KEY", "gm-test")
	t.Setenv("COMPACTION_THRESHOLD", "40")
	t.Setenv("COMPACTION_KEEP", "8")
	t.Setenv("POSTGRES_NOTIFY_CHANNEL", "handoffs")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Store.Backend)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, 40, cfg.Compaction.Threshold)
	assert.Equal(t, 8, cfg.Compaction.Keep)
	assert.Equal(t, "handoffs", cfg.Notify.Channel)
}

func TestLoad_MalformedIntegerEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("COMPACTION_THRESHOLD", "thirty")
	t.Setenv("COMPACTION_KEEP", "10x")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `COMPACTION_THRESHOLD: "thirty" is not an integer`)
	assert.Contains(t, err.Error(), `COMPACTION_KEEP: "10x" is not an integer`)
}

func TestLoad_GeminiKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GEMINI_API_KEY", "gm-test")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gm-test", cfg.LLM.APIKey)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]struct {
		mutate func(*Config)
		want   string
	}{
		"unknown store":     {func(c *Config) { c.Store.Backend = "mongo" }, `unknown store backend "mongo"`},
		"postgres no url":   {func(c *Config) { c.Store.Backend = "postgres" }, "database_url"},
		"firestore no proj": {func(c *Config) { c.Store.Backend = "firestore" }, "firestore_project"},
		"unknown provider":  {func(c *Config) { c.LLM.Provider = "claude" }, `unknown llm provider "claude"`},
		"unknown lock":      {func(c *Config) { c.Lock.Backend = "etcd" }, `unknown lock backend "etcd"`},
		"redis no addr":     {func(c *Config) { c.Lock.Backend = "redis"; c.Lock.RedisAddr = "" }, "redis_addr"},
		"threshold too low": {func(c *Config) { c.Compaction.Threshold = 10 }, "must exceed keep"},
		"keep zero":         {func(c *Config) { c.Compaction.Keep = 0 }, "must exceed keep"},
		"zero timeout":      {func(c *Config) { c.Compaction.Timeout = 0 }, "timeout must be positive"},
		"notify without pg": {func(c *Config) { c.Notify.Channel = "handoffs" }, "requires the postgres store"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Store.Backend = "mongo"
	cfg.LLM.Provider = "claude"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongo")
	assert.Contains(t, err.Error(), "claude")
}
