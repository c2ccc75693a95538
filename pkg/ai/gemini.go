package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/option"
)

// GeminiConfig configures the Gemini embedding encoder.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// GeminiEncoder implements Encoder with the Gemini embedding models.
type GeminiEncoder struct {
	cfg    GeminiConfig
	tracer trace.Tracer
}

// NewGeminiEncoder validates the configuration and returns an encoder.
func NewGeminiEncoder(cfg GeminiConfig) (*GeminiEncoder, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = "text-embedding-004"
	}

	return &GeminiEncoder{
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/gema-grader/pkg/ai/gemini"),
	}, nil
}

// Model reports the embedding model, used to namespace cached vectors.
func (e *GeminiEncoder) Model() string {
	return e.cfg.Model
}

// Encode embeds text with a short-lived client.
func (e *GeminiEncoder) Encode(parent context.Context, text string) ([]float32, error) {
	ctx, span := e.tracer.Start(parent, "gemini.encode", trace.WithAttributes(
		attribute.String("model", e.cfg.Model),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		modelDuration.WithLabelValues("gemini", operationEncode).Observe(time.Since(start).Seconds())
	}()

	client, err := genai.NewClient(ctx, option.WithAPIKey(e.cfg.APIKey))
	if err != nil {
		return nil, e.fail(span, fmt.Errorf("gemini client: %w", err))
	}
	defer client.Close()

	res, err := client.EmbeddingModel(e.cfg.Model).EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, e.fail(span, fmt.Errorf("gemini encode: %w", err))
	}
	if res == nil || res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, e.fail(span, fmt.Errorf("%w: no embedding returned from gemini", ErrUnparseableOutput))
	}

	return res.Embedding.Values, nil
}

func (e *GeminiEncoder) fail(span trace.Span, err error) error {
	modelFailures.WithLabelValues("gemini", operationEncode).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
