package approval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/creditai/pricing-service/internal/models"
)

// Client calls the external model-serving endpoint that scores a feature
// vector into a default probability.
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewClient builds a predictor client for the given endpoint URL.
func NewClient(url string, log *logrus.Logger) *Client {
	return &Client{
		url: url,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log,
	}
}

type predictionResponse struct {
	Probability float64 `json:"probability"`
}

// PredictDefault posts the feature vector and returns the scored default
// probability.
func (c *Client) PredictDefault(ctx context.Context, features models.FeatureVector) (float64, error) {
	payload, err := json.Marshal(features)
	if err != nil {
		return 0, fmt.Errorf("encode features: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("model request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read model response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("model returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed predictionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, fmt.Errorf("decode model response: %w", err)
	}
	if parsed.Probability < 0 || parsed.Probability > 1 {
		return 0, fmt.Errorf("model returned probability out of range: %f", parsed.Probability)
	}

	c.log.Debugf("Model scored default probability %.4f", parsed.Probability)
	return parsed.Probability, nil
}
