package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	modelDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gema",
		Subsystem: "ai",
		Name:      "inference_duration_seconds",
		Help:      "Duration of model inference requests",
	}, []string{"provider", "operation"})

	modelFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gema",
		Subsystem: "ai",
		Name:      "inference_failures_total",
		Help:      "Number of failed model inference requests",
	}, []string{"provider", "operation"})
)

const (
	operationClassify = "classify"
	operationEncode   = "encode"
)

// OpenAIConfig defines configuration options for the OpenAI collaborators.
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	EmbeddingModel string
	MaxTokens      int
	Logger         zerolog.Logger
}

func (cfg OpenAIConfig) client() *openai.Client {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(config)
}

func (cfg OpenAIConfig) logger() zerolog.Logger {
	if cfg.Logger.GetLevel() == zerolog.Disabled {
		return zerolog.Nop()
	}
	return cfg.Logger
}

// OpenAIClassifier implements Classifier with a chat completion in JSON mode.
type OpenAIClassifier struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIClassifier builds a classifier using the provided configuration.
func NewOpenAIClassifier(cfg OpenAIConfig) (*OpenAIClassifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = openai.GPT4oMini
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 64
	}

	return &OpenAIClassifier{
		client: cfg.client(),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/gema-grader/pkg/ai/openai"),
		logger: cfg.logger().With().Str("component", "openai_classifier").Logger(),
	}, nil
}

// Classify asks the chat model for the NLI label of the pair and validates the JSON it returns.
func (c *OpenAIClassifier) Classify(parent context.Context, pair string) (Entailment, error) {
	ctx, span := c.tracer.Start(parent, "openai.classify", trace.WithAttributes(
		attribute.String("model", c.cfg.ChatModel),
	))
	defer span.End()

	premise, hypothesis := SplitPair(pair)
	request := openai.ChatCompletionRequest{
		Model:       c.cfg.ChatModel,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: classifierSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPairPrompt(premise, hypothesis),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, request)
	modelDuration.WithLabelValues("openai", operationClassify).Observe(time.Since(start).Seconds())
	if err != nil {
		return Entailment{}, c.fail(span, fmt.Errorf("openai classify: %w", err))
	}

	if len(resp.Choices) == 0 {
		return Entailment{}, c.fail(span, fmt.Errorf("%w: no choices returned from openai", ErrUnparseableOutput))
	}

	result, err := parseEntailmentJSON([]byte(strings.TrimSpace(resp.Choices[0].Message.Content)))
	if err != nil {
		return Entailment{}, c.fail(span, err)
	}

	c.logger.Debug().
		Str("label", string(result.Label)).
		Float64("score", result.Score).
		Int("total_tokens", resp.Usage.TotalTokens).
		Msg("pair classified")

	return result, nil
}

func (c *OpenAIClassifier) fail(span trace.Span, err error) error {
	modelFailures.WithLabelValues("openai", operationClassify).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func classifierSystemPrompt() string {
	return "You are a natural language inference model. Given a premise and a hypothesis, respond with a JSON object " +
		"containing label (one of entailment, contradiction, neutral) and score (your confidence between 0 and 1)."
}

func buildPairPrompt(premise, hypothesis string) string {
	builder := strings.Builder{}
	builder.WriteString("## Premise\n")
	builder.WriteString(premise)
	builder.WriteString("\n\n## Hypothesis\n")
	builder.WriteString(hypothesis)
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

// OpenAIEncoder implements Encoder against the OpenAI embeddings API.
type OpenAIEncoder struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
}

// NewOpenAIEncoder builds an encoder using the provided configuration.
func NewOpenAIEncoder(cfg OpenAIConfig) (*OpenAIEncoder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = string(openai.SmallEmbedding3)
	}

	return &OpenAIEncoder{
		client: cfg.client(),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/gema-grader/pkg/ai/openai"),
	}, nil
}

// Model reports the embedding model, used to namespace cached vectors.
func (e *OpenAIEncoder) Model() string {
	return e.cfg.EmbeddingModel
}

// Encode returns the embedding of text.
func (e *OpenAIEncoder) Encode(parent context.Context, text string) ([]float32, error) {
	ctx, span := e.tracer.Start(parent, "openai.encode", trace.WithAttributes(
		attribute.String("model", e.cfg.EmbeddingModel),
	))
	defer span.End()

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.cfg.EmbeddingModel),
	})
	modelDuration.WithLabelValues("openai", operationEncode).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, e.fail(span, fmt.Errorf("openai encode: %w", err))
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, e.fail(span, fmt.Errorf("%w: no embedding returned from openai", ErrUnparseableOutput))
	}

	return resp.Data[0].Embedding, nil
}

func (e *OpenAIEncoder) fail(span trace.Span, err error) error {
	modelFailures.WithLabelValues("openai", operationEncode).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func decodeJSON(content []byte, target interface{}) error {
	if err := json.Unmarshal(content, target); err != nil {
		return fmt.Errorf("%w: %v", ErrUnparseableOutput, err)
	}
	return nil
}
