package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// InferenceConfig points at a self-hosted model server that exposes
// text-embeddings-inference style /predict and /embed routes.
type InferenceConfig struct {
	BaseURL string
	Timeout time.Duration
	Client  *http.Client
}

func (cfg InferenceConfig) normalized() (InferenceConfig, error) {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return cfg, fmt.Errorf("inference base url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: cfg.Timeout}
	}
	return cfg, nil
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

type inferencePrediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// HTTPClassifier calls POST {base}/predict with {"inputs": pair} and expects
// a list of {"label","score"} predictions.
type HTTPClassifier struct {
	cfg InferenceConfig
}

// NewHTTPClassifier builds a classifier for a self-hosted inference server.
func NewHTTPClassifier(cfg InferenceConfig) (*HTTPClassifier, error) {
	cfg, err := cfg.normalized()
	if err != nil {
		return nil, err
	}
	return &HTTPClassifier{cfg: cfg}, nil
}

// Classify returns the highest-scoring prediction for the pair.
func (h *HTTPClassifier) Classify(ctx context.Context, pair string) (Entailment, error) {
	start := time.Now()
	var predictions []inferencePrediction
	err := postJSON(ctx, h.cfg, "/predict", inferenceRequest{Inputs: pair}, &predictions)
	modelDuration.WithLabelValues("http", operationClassify).Observe(time.Since(start).Seconds())
	if err != nil {
		modelFailures.WithLabelValues("http", operationClassify).Inc()
		return Entailment{}, err
	}

	if len(predictions) == 0 {
		modelFailures.WithLabelValues("http", operationClassify).Inc()
		return Entailment{}, fmt.Errorf("%w: empty prediction list", ErrUnparseableOutput)
	}

	best := predictions[0]
	for _, p := range predictions[1:] {
		if p.Score > best.Score {
			best = p
		}
	}

	label, err := ParseLabel(best.Label)
	if err == nil {
		err = validScore(best.Score)
	}
	if err != nil {
		modelFailures.WithLabelValues("http", operationClassify).Inc()
		return Entailment{}, err
	}

	return Entailment{Label: label, Score: best.Score}, nil
}

// HTTPEncoder calls POST {base}/embed with {"inputs": text} and expects [[...]].
type HTTPEncoder struct {
	cfg InferenceConfig
}

// NewHTTPEncoder builds an encoder for a self-hosted inference server.
func NewHTTPEncoder(cfg InferenceConfig) (*HTTPEncoder, error) {
	cfg, err := cfg.normalized()
	if err != nil {
		return nil, err
	}
	return &HTTPEncoder{cfg: cfg}, nil
}

// Model reports the server address, used to namespace cached vectors.
func (h *HTTPEncoder) Model() string {
	return h.cfg.BaseURL
}

// Encode returns the first embedding produced by the server.
func (h *HTTPEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	var vectors [][]float32
	err := postJSON(ctx, h.cfg, "/embed", inferenceRequest{Inputs: text}, &vectors)
	modelDuration.WithLabelValues("http", operationEncode).Observe(time.Since(start).Seconds())
	if err == nil && (len(vectors) == 0 || len(vectors[0]) == 0) {
		err = fmt.Errorf("%w: no embedding returned", ErrUnparseableOutput)
	}
	if err != nil {
		modelFailures.WithLabelValues("http", operationEncode).Inc()
		return nil, err
	}

	return vectors[0], nil
}

func postJSON(ctx context.Context, cfg InferenceConfig, path string, body interface{}, target interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode inference request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := cfg.Client.Do(req)
	if err != nil {
		return fmt.Errorf("inference %s: %w", path, err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read inference response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("inference %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(content)))
	}

	return decodeJSON(content, target)
}
