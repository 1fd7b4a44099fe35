package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selivandex/ticker-sentiment/internal/sentiment"
)

func TestHuggingFaceClassifier_Classify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "AAPL beat earnings estimates", body["inputs"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[[{"label":"positive","score":0.9},{"label":"neutral","score":0.1}]]`))
	}))
	defer srv.Close()

	classifier := NewHuggingFaceClassifier(srv.URL, "hf_test")
	got, err := classifier.Classify(context.Background(), "AAPL beat earnings estimates")
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "positive", got[0].Label)
	assert.InDelta(t, 0.9, got[0].Score, 1e-9)

	// end to end through the scorer
	scorer := sentiment.NewScorer(classifier)
	assert.Equal(t, 100, scorer.Score(context.Background(), "AAPL beat earnings estimates"))
}

func TestHuggingFaceClassifier_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload string
		delay   time.Duration
	}{
		{"model loading", http.StatusServiceUnavailable, `{"error":"Model is currently loading"}`, 0},
		{"flat array", http.StatusOK, `[{"label":"positive","score":0.9}]`, 0},
		{"object", http.StatusOK, `{"error":"bad input"}`, 0},
		{"empty outer array", http.StatusOK, `[]`, 0},
		{"timeout", http.StatusOK, `[[{"label":"positive","score":1}]]`, 200 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(tt.delay)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.payload))
			}))
			defer srv.Close()

			classifier := NewHuggingFaceClassifier(srv.URL, "hf_test",
				WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}),
			)

			_, err := classifier.Classify(context.Background(), "some long enough text")
			assert.Error(t, err)

			// the scorer absorbs every one of these
			scorer := sentiment.NewScorer(classifier)
			assert.Equal(t, 50, scorer.Score(context.Background(), "some long enough text"))
		})
	}
}

func TestHuggingFaceClassifier_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	scorer := sentiment.NewScorer(NewHuggingFaceClassifier(url, "hf_test"))
	assert.Equal(t, 50, scorer.Score(context.Background(), "network is down for this one"))
}
