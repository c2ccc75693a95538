package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPClassifierPicksHighestScore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/predict", r.URL.Path)

		var req inferenceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "a </s></s> b", req.Inputs)

		_, _ = w.Write([]byte(`[{"label":"NEUTRAL","score":0.2},{"label":"CONTRADICTION","score":0.7},{"label":"ENTAILMENT","score":0.1}]`))
	}))
	defer server.Close()

	classifier, err := NewHTTPClassifier(InferenceConfig{BaseURL: server.URL + "/"})
	require.NoError(t, err)

	result, err := classifier.Classify(context.Background(), JoinPair("a", "b"))
	require.NoError(t, err)
	require.Equal(t, Entailment{Label: LabelContradiction, Score: 0.7}, result)
}

func TestHTTPClassifierPropagatesServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	classifier, err := NewHTTPClassifier(InferenceConfig{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = classifier.Classify(context.Background(), "a </s></s> b")
	require.Error(t, err)
	require.Contains(t, err.Error(), "503")
}

func TestHTTPEncoder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embed", r.URL.Path)
		if r.Header.Get("X-Empty") != "" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`[[0.5,0.5]]`))
	}))
	defer server.Close()

	encoder, err := NewHTTPEncoder(InferenceConfig{BaseURL: server.URL})
	require.NoError(t, err)

	vector, err := encoder.Encode(context.Background(), "text")
	require.NoError(t, err)
	require.Equal(t, []float32{0.5, 0.5}, vector)

	emptyClient := &http.Client{Transport: headerTransport{key: "X-Empty", value: "1"}}
	emptyEncoder, err := NewHTTPEncoder(InferenceConfig{BaseURL: server.URL, Client: emptyClient})
	require.NoError(t, err)

	_, err = emptyEncoder.Encode(context.Background(), "text")
	require.True(t, errors.Is(err, ErrUnparseableOutput))
}

func TestInferenceConfigRequiresURL(t *testing.T) {
	_, err := NewHTTPClassifier(InferenceConfig{})
	require.Error(t, err)
	_, err = NewHTTPEncoder(InferenceConfig{BaseURL: " "})
	require.Error(t, err)
}

type headerTransport struct {
	key   string
	value string
}

func (h headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set(h.key, h.value)
	return http.DefaultTransport.RoundTrip(clone)
}
