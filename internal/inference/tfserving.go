package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/steermate/steermate-backend-go/internal/models"
)

// TFServingClassifier calls a TensorFlow-Serving REST predict endpoint, e.g.
// http://host:8501/v1/models/signs:predict.
type TFServingClassifier struct {
	url    string
	client *http.Client
}

func NewTFServingClassifier(url string, client *http.Client) *TFServingClassifier {
	return &TFServingClassifier{url: url, client: client}
}

type predictRequest struct {
	Instances [][][][]float32 `json:"instances"`
}

type predictResponse struct {
	Predictions [][]float64 `json:"predictions"`
	Error       string      `json:"error,omitempty"`
}

func (c *TFServingClassifier) Predict(ctx context.Context, in *Input) (*models.SignPrediction, error) {
	body, err := json.Marshal(predictRequest{Instances: [][][][]float32{in.Tensor()}})
	if err != nil {
		return nil, fmt.Errorf("failed to encode predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: backend returned %s", ErrUnavailable, resp.Status)
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode predict response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("predict request rejected (%s): %s", resp.Status, out.Error)
	}
	if len(out.Predictions) == 0 {
		return nil, fmt.Errorf("predict response has no predictions")
	}
	return fromScores(out.Predictions[0])
}
