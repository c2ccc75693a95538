package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the grading service.
type Config struct {
	AppName              string
	AppEnv               string
	AppPort              string
	JWTSecret            string
	JWTRoles             []string
	RedisURL             string
	NATSURL              string
	NATSSubject          string
	ClassifierProvider   string
	EncoderProvider      string
	OpenAIAPIKey         string
	OpenAIBaseURL        string
	OpenAIChatModel      string
	OpenAIEmbeddingModel string
	GeminiAPIKey         string
	GeminiEmbeddingModel string
	InferenceURL         string
	InferenceTimeout     time.Duration
	SimilarityThreshold  float64
	EmbeddingCacheTTL    time.Duration
	GradeRateLimit       int
	GradeRateLimitWindow time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// SemanticEnabled reports whether both model collaborators are configured.
func (c Config) SemanticEnabled() bool {
	return c.ClassifierProvider != "" && c.EncoderProvider != ""
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GEMA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "GEMA Grader")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("nats.subject", "gema.grading.verdicts")
	v.SetDefault("ai.classifier", "openai")
	v.SetDefault("ai.encoder", "openai")
	v.SetDefault("openai.chat_model", "gpt-4o-mini")
	v.SetDefault("openai.embedding_model", "text-embedding-3-small")
	v.SetDefault("gemini.embedding_model", "text-embedding-004")
	v.SetDefault("inference.timeout", "10s")
	v.SetDefault("semantic.threshold", 0.65)
	v.SetDefault("embedding.cache_ttl", "24h")
	v.SetDefault("rate_limit.max", 60)
	v.SetDefault("rate_limit.window", "1m")

	inferenceTimeout, err := parseDuration(v, "inference.timeout")
	if err != nil {
		return Config{}, err
	}
	cacheTTL, err := parseDuration(v, "embedding.cache_ttl")
	if err != nil {
		return Config{}, err
	}
	rateWindow, err := parseDuration(v, "rate_limit.window")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:              v.GetString("app.name"),
		AppEnv:               v.GetString("app.env"),
		AppPort:              v.GetString("app.port"),
		JWTSecret:            v.GetString("jwt.secret"),
		JWTRoles:             splitAndTrim(v.GetString("jwt.roles")),
		RedisURL:             v.GetString("redis.url"),
		NATSURL:              v.GetString("nats.url"),
		NATSSubject:          v.GetString("nats.subject"),
		ClassifierProvider:   strings.ToLower(strings.TrimSpace(v.GetString("ai.classifier"))),
		EncoderProvider:      strings.ToLower(strings.TrimSpace(v.GetString("ai.encoder"))),
		OpenAIAPIKey:         v.GetString("openai_api_key"),
		OpenAIBaseURL:        v.GetString("openai.base_url"),
		OpenAIChatModel:      v.GetString("openai.chat_model"),
		OpenAIEmbeddingModel: v.GetString("openai.embedding_model"),
		GeminiAPIKey:         v.GetString("gemini_api_key"),
		GeminiEmbeddingModel: v.GetString("gemini.embedding_model"),
		InferenceURL:         v.GetString("inference.url"),
		InferenceTimeout:     inferenceTimeout,
		SimilarityThreshold:  v.GetFloat64("semantic.threshold"),
		EmbeddingCacheTTL:    cacheTTL,
		GradeRateLimit:       v.GetInt("rate_limit.max"),
		GradeRateLimitWindow: rateWindow,
	}

	if cfg.SimilarityThreshold <= 0 || cfg.SimilarityThreshold > 1 {
		return Config{}, fmt.Errorf("semantic threshold must be in (0, 1], got %v", cfg.SimilarityThreshold)
	}

	for _, provider := range []string{cfg.ClassifierProvider, cfg.EncoderProvider} {
		switch provider {
		case "", "none", "openai", "gemini", "http":
		default:
			return Config{}, fmt.Errorf("unknown ai provider %q", provider)
		}
	}
	if cfg.ClassifierProvider == "none" {
		cfg.ClassifierProvider = ""
	}
	if cfg.EncoderProvider == "none" {
		cfg.EncoderProvider = ""
	}
	if cfg.ClassifierProvider == "gemini" {
		return Config{}, fmt.Errorf("gemini provides embeddings only; choose openai or http for the classifier")
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(part))
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
