package config

import (
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"ADVISOR_API_URL", "ADVISOR_HTTP_TIMEOUT_SECS", "ADVISOR_TICK_MS", "ADVISOR_TICK_MAX_STEP",
		"ADVISOR_INVESTMENT_STEP", "ADVISOR_LOG_LEVEL", "REDIS_URL", "CATALOG_REFRESH_SECS",
		"SERVER_PORT", "SERVER_RATE_LIMIT_PER_MIN", "SERVER_MODELS", "OPENAI_API_KEY", "OPENAI_MODEL",
		"TELEGRAM_BOT_TOKEN", "SSH_PORT", "SSH_HOST_KEY_PATH", "SSH_ALLOWED_FINGERPRINTS", "TRACING_ENABLED",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	if cfg.AdvisorAPIURL != "http://localhost:8080/api" {
		t.Fatalf("expected default api url, got %s", cfg.AdvisorAPIURL)
	}
	if cfg.TickMillis != 500 || cfg.TickMaxStep != 10 || cfg.InvestmentStep != 100 {
		t.Fatalf("unexpected progress defaults: %+v", cfg)
	}
	if cfg.HTTPTimeoutSecs != 0 || cfg.LogLevel != "info" || cfg.RedisURL != "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.ServerPort != 8080 || cfg.ServerRateLimitPerMin != 30 || cfg.SSHPort != 2222 {
		t.Fatalf("unexpected port defaults: %+v", cfg)
	}
	if len(cfg.ServerModels) != 1 || cfg.ServerModels[0].Provider != "static" || cfg.ServerModels[0].DisplayName != "Reference portfolio" {
		t.Fatalf("unexpected default models: %+v", cfg.ServerModels)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" || cfg.TracingEnabled {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.Warnings) == 0 {
		t.Fatal("expected warnings for unset optional services")
	}
}

func TestLoadWithEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADVISOR_API_URL", "https://advisor.example/api")
	t.Setenv("ADVISOR_TICK_MS", "250")
	t.Setenv("ADVISOR_INVESTMENT_STEP", "50")
	t.Setenv("ADVISOR_LOG_LEVEL", "DEBUG")
	t.Setenv("REDIS_URL", "redis:6379")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("TRACING_ENABLED", "true")

	cfg := Load()
	if cfg.AdvisorAPIURL != "https://advisor.example/api" || cfg.RedisURL != "redis:6379" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.TickMillis != 250 || cfg.InvestmentStep != 50 || cfg.LogLevel != "debug" || !cfg.TracingEnabled {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.ServerModels) != 2 || cfg.ServerModels[1].Provider != "openai" || cfg.ServerModels[1].ModelName != "gpt-4o-mini" {
		t.Fatalf("openai key should add the openai model: %+v", cfg.ServerModels)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADVISOR_TICK_MS", "bad")
	t.Setenv("ADVISOR_TICK_MAX_STEP", "-3")
	t.Setenv("ADVISOR_LOG_LEVEL", "loud")
	t.Setenv("SERVER_MODELS", "nonsense")

	cfg := Load()
	if cfg.TickMillis != 500 || cfg.TickMaxStep != 10 || cfg.LogLevel != "info" {
		t.Fatalf("invalid values should fall back to defaults: %+v", cfg)
	}
	if len(cfg.ServerModels) != 1 || cfg.ServerModels[0].ModelName != "reference" {
		t.Fatalf("invalid models should fall back: %+v", cfg.ServerModels)
	}
	found := false
	for _, w := range cfg.Warnings {
		if strings.Contains(w, "ADVISOR_TICK_MS") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected tick warning, got %v", cfg.Warnings)
	}
}

func TestParseModels(t *testing.T) {
	models, err := ParseModels("openai:gpt-4o:GPT-4o: omni, static:reference")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("expected 2 models, got %+v", models)
	}
	if models[0].DisplayName != "GPT-4o: omni" || models[1].DisplayName != "reference" {
		t.Fatalf("unexpected display names: %+v", models)
	}
	if _, err := ParseModels("openai"); err == nil {
		t.Fatal("expected error for missing model name")
	}
	if _, err := ParseModels(" , "); err == nil {
		t.Fatal("expected error for empty list")
	}
}

func TestLoadSSHAllowedKeys(t *testing.T) {
	clearEnv(t)
	t.Setenv("SSH_ALLOWED_FINGERPRINTS", " SHA256:abc , ,SHA256:def")

	cfg := Load()
	if len(cfg.SSHAllowedKeys) != 2 || cfg.SSHAllowedKeys[0] != "SHA256:abc" || cfg.SSHAllowedKeys[1] != "SHA256:def" {
		t.Fatalf("unexpected allowlist: %v", cfg.SSHAllowedKeys)
	}
}
