package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"etf-advisor/internal/domain"
)

const defaultModels = "static:reference:Reference portfolio"

type Config struct {
	AdvisorAPIURL      string
	AdvisorAPIKey      string
	HTTPTimeoutSecs    int
	TickMillis         int
	TickMaxStep        float64
	InvestmentStep     float64
	LogLevel           string
	LogFile            string
	RedisURL           string
	CatalogCacheTTLSec int
	CatalogRefreshSecs int

	ServerPort            int
	ServerAPIKey          string
	ServerRateLimitPerMin int
	ServerModels          []domain.LLMModel

	OpenAIAPIKey string
	OpenAIModel  string

	TelegramBotToken string

	SSHPort        int
	SSHHostKeyPath string
	// SSHAllowedKeys lists SHA256 key fingerprints; empty admits every key.
	SSHAllowedKeys []string

	TracingEnabled bool
	OTLPEndpoint   string

	// Warnings collects problems found while loading, for logging once a
	// logger exists.
	Warnings []string
}

func Load() *Config {
	cfg := &Config{
		AdvisorAPIKey:    os.Getenv("ADVISOR_API_KEY"),
		LogFile:          strings.TrimSpace(os.Getenv("ADVISOR_LOG_FILE")),
		RedisURL:         strings.TrimSpace(os.Getenv("REDIS_URL")),
		ServerAPIKey:     os.Getenv("SERVER_API_KEY"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		OTLPEndpoint:     strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
	}

	cfg.AdvisorAPIURL = strings.TrimSpace(os.Getenv("ADVISOR_API_URL"))
	if cfg.AdvisorAPIURL == "" {
		cfg.AdvisorAPIURL = "http://localhost:8080/api"
	}

	cfg.HTTPTimeoutSecs = cfg.intVar("ADVISOR_HTTP_TIMEOUT_SECS", 0, 0)
	cfg.TickMillis = cfg.intVar("ADVISOR_TICK_MS", 500, 1)
	cfg.TickMaxStep = cfg.floatVar("ADVISOR_TICK_MAX_STEP", 10)
	cfg.InvestmentStep = cfg.floatVar("ADVISOR_INVESTMENT_STEP", domain.DefaultInvestmentStep)

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(os.Getenv("ADVISOR_LOG_LEVEL")))
	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "trace", "debug", "info", "warn", "error":
	default:
		cfg.warn("unsupported ADVISOR_LOG_LEVEL=%q, defaulting to info", cfg.LogLevel)
		cfg.LogLevel = "info"
	}

	if cfg.RedisURL == "" {
		cfg.warn("REDIS_URL not set, catalog mirror disabled")
	}
	cfg.CatalogCacheTTLSec = cfg.intVar("CATALOG_CACHE_TTL_SECS", 300, 1)
	cfg.CatalogRefreshSecs = cfg.intVar("CATALOG_REFRESH_SECS", 60, 1)

	cfg.ServerPort = cfg.intVar("SERVER_PORT", 8080, 1)
	cfg.ServerRateLimitPerMin = cfg.intVar("SERVER_RATE_LIMIT_PER_MIN", 30, 0)

	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}
	if cfg.OpenAIAPIKey == "" {
		cfg.warn("OPENAI_API_KEY not set, openai models will be disabled")
	}

	raw := strings.TrimSpace(os.Getenv("SERVER_MODELS"))
	if raw == "" {
		raw = defaultModels
		if cfg.OpenAIAPIKey != "" {
			raw += ",openai:" + cfg.OpenAIModel + ":OpenAI " + cfg.OpenAIModel
		}
	}
	models, err := ParseModels(raw)
	if err != nil {
		cfg.warn("invalid SERVER_MODELS: %v, defaulting to %q", err, defaultModels)
		models, _ = ParseModels(defaultModels)
	}
	cfg.ServerModels = models

	if cfg.TelegramBotToken == "" {
		cfg.warn("TELEGRAM_BOT_TOKEN not set, bot disabled")
	}

	cfg.SSHPort = cfg.intVar("SSH_PORT", 2222, 1)
	cfg.SSHHostKeyPath = strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH"))
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/id_ed25519"
	}
	for _, fp := range strings.Split(os.Getenv("SSH_ALLOWED_FINGERPRINTS"), ",") {
		if fp = strings.TrimSpace(fp); fp != "" {
			cfg.SSHAllowedKeys = append(cfg.SSHAllowedKeys, fp)
		}
	}

	cfg.TracingEnabled = strings.EqualFold(strings.TrimSpace(os.Getenv("TRACING_ENABLED")), "true")

	return cfg
}

// ParseModels reads a comma separated list of provider:model_name:Display Name
// entries. The display name defaults to the model name.
func ParseModels(raw string) ([]domain.LLMModel, error) {
	var models []domain.LLMModel
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) < 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
			return nil, fmt.Errorf("entry %q is not provider:model_name[:display name]", entry)
		}
		m := domain.LLMModel{
			Provider:  strings.ToLower(strings.TrimSpace(parts[0])),
			ModelName: strings.TrimSpace(parts[1]),
		}
		m.DisplayName = m.ModelName
		if len(parts) == 3 && strings.TrimSpace(parts[2]) != "" {
			m.DisplayName = strings.TrimSpace(parts[2])
		}
		models = append(models, m)
	}
	if len(models) == 0 {
		return nil, fmt.Errorf("no models listed")
	}
	return models, nil
}

func (c *Config) warn(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

// intVar returns def when name is unset, not an integer, or below floor.
func (c *Config) intVar(name string, def, floor int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < floor {
		c.warn("invalid %s=%q, defaulting to %d", name, v, def)
		return def
	}
	return n
}

// floatVar returns def unless name holds a positive number.
func (c *Config) floatVar(name string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || n <= 0 {
		c.warn("invalid %s=%q, defaulting to %g", name, v, def)
		return def
	}
	return n
}
