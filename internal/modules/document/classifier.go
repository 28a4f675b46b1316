package document

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Classifier infers the kind of an uploaded file.
type Classifier interface {
	Classify(ctx context.Context, fileName, contentType string, data []byte) (Classification, error)
}

// HTTPClassifier calls a hosted classification endpoint. It does not retry.
type HTTPClassifier struct {
	url    string
	apiKey string
	client *http.Client
}

type classifyRequest struct {
	FileName    string   `json:"file_name"`
	ContentType string   `json:"content_type"`
	Content     []byte   `json:"content"` // base64 in JSON
	Candidates  []string `json:"candidates"`
}

// NewHTTPClassifier creates a classifier client with the given request timeout.
func NewHTTPClassifier(url, apiKey string, timeout time.Duration) *HTTPClassifier {
	return &HTTPClassifier{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClassifier) Classify(ctx context.Context, fileName, contentType string, data []byte) (Classification, error) {
	body, err := json.Marshal(classifyRequest{
		FileName:    fileName,
		ContentType: contentType,
		Content:     data,
		Candidates: []string{
			string(KindBookkeepingCert), string(KindTaxCert),
			string(KindBankConfirmation), string(KindInvoice),
		},
	})
	if err != nil {
		return Classification{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Classification{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Classification{}, fmt.Errorf("classifier request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Classification{}, fmt.Errorf("failed to read classifier response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Classification{}, fmt.Errorf("classifier error (%d): %s", resp.StatusCode, string(respBody))
	}

	var out Classification
	if err := json.Unmarshal(respBody, &out); err != nil {
		return Classification{}, fmt.Errorf("failed to decode classifier response: %w", err)
	}
	return out, nil
}

// NoopClassifier is used when no classifier is configured. Every result is inconclusive.
type NoopClassifier struct{}

func (NoopClassifier) Classify(context.Context, string, string, []byte) (Classification, error) {
	return Classification{}, nil
}
