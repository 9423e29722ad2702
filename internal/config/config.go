package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName            string
	AppEnv             string
	AppPort            string
	AllowOrigins       string
	DatabaseURL        string
	RedisURL           string
	NATSURL            string
	JWTSecret          string
	PathCacheTTL       time.Duration
	GenerateRateMax    int
	GenerateRateWindow time.Duration
	AIProvider         string
	OpenAIAPIKey       string
	AnthropicAPIKey    string
	AIModel            string
	AIMaxTokens        int
	AITemperature      float32
	AICallTimeout      time.Duration
	AIMaxAttempts      int
	AIBreakerThreshold int
	AIBreakerCooldown  time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// AIEnabled reports whether a text generation provider is configured.
func (c Config) AIEnabled() bool {
	switch c.AIProvider {
	case "openai":
		return c.OpenAIAPIKey != ""
	case "anthropic":
		return c.AnthropicAPIKey != ""
	default:
		return false
	}
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("LEARNORA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Learnora API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("allow.origins", "*")
	v.SetDefault("path.cache_ttl", "5m")
	v.SetDefault("generate.rate_max", 10)
	v.SetDefault("generate.rate_window", "1m")
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.max_tokens", 2048)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.call_timeout", "20s")
	v.SetDefault("ai.max_attempts", 3)
	v.SetDefault("ai.breaker_threshold", 4)
	v.SetDefault("ai.breaker_cooldown", "30s")

	cacheTTL, err := parseDuration(v, "path.cache_ttl", "path cache ttl")
	if err != nil {
		return Config{}, err
	}
	rateWindow, err := parseDuration(v, "generate.rate_window", "generate rate window")
	if err != nil {
		return Config{}, err
	}
	callTimeout, err := parseDuration(v, "ai.call_timeout", "ai call timeout")
	if err != nil {
		return Config{}, err
	}
	breakerCooldown, err := parseDuration(v, "ai.breaker_cooldown", "ai breaker cooldown")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:            v.GetString("app.name"),
		AppEnv:             v.GetString("app.env"),
		AppPort:            v.GetString("app.port"),
		AllowOrigins:       v.GetString("allow.origins"),
		DatabaseURL:        v.GetString("database.url"),
		RedisURL:           v.GetString("redis.url"),
		NATSURL:            v.GetString("nats.url"),
		JWTSecret:          v.GetString("jwt.secret"),
		PathCacheTTL:       cacheTTL,
		GenerateRateMax:    v.GetInt("generate.rate_max"),
		GenerateRateWindow: rateWindow,
		AIProvider:         strings.ToLower(v.GetString("ai.provider")),
		OpenAIAPIKey:       v.GetString("openai_api_key"),
		AnthropicAPIKey:    v.GetString("anthropic_api_key"),
		AIModel:            v.GetString("ai.model"),
		AIMaxTokens:        v.GetInt("ai.max_tokens"),
		AITemperature:      float32(v.GetFloat64("ai.temperature")),
		AICallTimeout:      callTimeout,
		AIMaxAttempts:      v.GetInt("ai.max_attempts"),
		AIBreakerThreshold: v.GetInt("ai.breaker_threshold"),
		AIBreakerCooldown:  breakerCooldown,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.GenerateRateMax <= 0 {
		cfg.GenerateRateMax = 10
	}

	if cfg.AIMaxTokens <= 0 {
		cfg.AIMaxTokens = 2048
	}

	if cfg.AIMaxAttempts <= 0 {
		cfg.AIMaxAttempts = 3
	}

	if cfg.AIBreakerThreshold <= 0 {
		cfg.AIBreakerThreshold = 4
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key, label string) (time.Duration, error) {
	parsed, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", label, err)
	}
	return parsed, nil
}
