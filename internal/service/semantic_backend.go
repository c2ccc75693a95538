package service

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-grader/internal/config"
	"github.com/noah-isme/gema-grader/pkg/ai"
)

type modelNamer interface {
	Model() string
}

// NewSemanticCollaborators builds the classifier and encoder selected by configuration.
// Both are nil when semantic grading is disabled. Encoders are wrapped with a Redis
// cache when redisClient is non-nil.
func NewSemanticCollaborators(cfg config.Config, redisClient *redis.Client, logger zerolog.Logger) (ai.Classifier, ai.Encoder, error) {
	if !cfg.SemanticEnabled() {
		return nil, nil, nil
	}

	classifier, err := newClassifier(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	encoder, err := newEncoder(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	namespace := cfg.EncoderProvider
	if named, ok := encoder.(modelNamer); ok {
		namespace = fmt.Sprintf("%s:%s", cfg.EncoderProvider, named.Model())
	}

	return classifier, ai.NewCachedEncoder(encoder, redisClient, namespace, cfg.EmbeddingCacheTTL, logger), nil
}

func newClassifier(cfg config.Config, logger zerolog.Logger) (ai.Classifier, error) {
	switch cfg.ClassifierProvider {
	case "openai":
		return ai.NewOpenAIClassifier(openAIConfig(cfg, logger))
	case "http":
		return ai.NewHTTPClassifier(ai.InferenceConfig{BaseURL: cfg.InferenceURL, Timeout: cfg.InferenceTimeout})
	default:
		return nil, fmt.Errorf("unsupported classifier provider %q", cfg.ClassifierProvider)
	}
}

func newEncoder(cfg config.Config, logger zerolog.Logger) (ai.Encoder, error) {
	switch cfg.EncoderProvider {
	case "openai":
		return ai.NewOpenAIEncoder(openAIConfig(cfg, logger))
	case "gemini":
		return ai.NewGeminiEncoder(ai.GeminiConfig{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiEmbeddingModel})
	case "http":
		return ai.NewHTTPEncoder(ai.InferenceConfig{BaseURL: cfg.InferenceURL, Timeout: cfg.InferenceTimeout})
	default:
		return nil, fmt.Errorf("unsupported encoder provider %q", cfg.EncoderProvider)
	}
}

func openAIConfig(cfg config.Config, logger zerolog.Logger) ai.OpenAIConfig {
	return ai.OpenAIConfig{
		APIKey:         cfg.OpenAIAPIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		ChatModel:      cfg.OpenAIChatModel,
		EmbeddingModel: cfg.OpenAIEmbeddingModel,
		Logger:         logger,
	}
}
