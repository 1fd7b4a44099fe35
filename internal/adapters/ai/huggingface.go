package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/selivandex/ticker-sentiment/pkg/models"
)

// DefaultTimeout bounds a single classification call
const DefaultTimeout = 10 * time.Second

// HuggingFaceClassifier calls a hosted text-classification model
type HuggingFaceClassifier struct {
	modelURL string
	token    string
	client   *http.Client
}

// HuggingFaceOption configures the classifier
type HuggingFaceOption func(*HuggingFaceClassifier)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) HuggingFaceOption {
	return func(h *HuggingFaceClassifier) {
		h.client = client
	}
}

// NewHuggingFaceClassifier creates new classifier for the given model endpoint
func NewHuggingFaceClassifier(modelURL, token string, opts ...HuggingFaceOption) *HuggingFaceClassifier {
	h := &HuggingFaceClassifier{
		modelURL: modelURL,
		token:    token,
		client:   &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

func (h *HuggingFaceClassifier) Name() string {
	return "huggingface"
}

// Classify sends {inputs: text} and returns the first label distribution of
// the nested [[{label, score}]] response
func (h *HuggingFaceClassifier) Classify(ctx context.Context, text string) ([]models.LabelScore, error) {
	body, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.modelURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+h.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("HTTP error %d: %s", resp.StatusCode, string(respBody))
	}

	var result [][]models.LabelScore
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("unexpected response shape: empty outer array")
	}

	return result[0], nil
}
