package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-grader/internal/config"
	"github.com/noah-isme/gema-grader/pkg/ai"
)

func TestNewSemanticCollaboratorsDisabled(t *testing.T) {
	classifier, encoder, err := NewSemanticCollaborators(config.Config{ClassifierProvider: "openai"}, nil, testLogger())
	require.NoError(t, err)
	require.Nil(t, classifier)
	require.Nil(t, encoder)
}

func TestNewSemanticCollaboratorsRequiresCredentials(t *testing.T) {
	_, _, err := NewSemanticCollaborators(config.Config{ClassifierProvider: "openai", EncoderProvider: "openai"}, nil, testLogger())
	require.Error(t, err)

	_, _, err = NewSemanticCollaborators(config.Config{ClassifierProvider: "http", EncoderProvider: "gemini", InferenceURL: "http://localhost:1"}, nil, testLogger())
	require.Error(t, err)
}

func TestNewSemanticCollaboratorsHTTPWithCache(t *testing.T) {
	var embedCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/predict", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{
			{"label": "ENTAILMENT", "score": 0.91},
			{"label": "NEUTRAL", "score": 0.09},
		})
	})
	mux.HandleFunc("/embed", func(w http.ResponseWriter, r *http.Request) {
		embedCalls++
		_ = json.NewEncoder(w).Encode([][]float32{{0.1, 0.2, 0.3}})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	defer client.Close()

	cfg := config.Config{
		ClassifierProvider: "http",
		EncoderProvider:    "http",
		InferenceURL:       server.URL,
		InferenceTimeout:   time.Second,
		EmbeddingCacheTTL:  time.Minute,
	}
	classifier, encoder, err := NewSemanticCollaborators(cfg, client, testLogger())
	require.NoError(t, err)

	result, err := classifier.Classify(context.Background(), ai.JoinPair("a", "b"))
	require.NoError(t, err)
	require.Equal(t, ai.LabelEntailment, result.Label)

	for i := 0; i < 2; i++ {
		vector, err := encoder.Encode(context.Background(), "the sky is blue")
		require.NoError(t, err)
		require.Equal(t, []float32{0.1, 0.2, 0.3}, vector)
	}
	require.Equal(t, 1, embedCalls)
	require.NotEmpty(t, mini.Keys())
}
