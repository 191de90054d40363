// Package inference classifies road-sign images. The service ships a random
// placeholder and a client for a TensorFlow-Serving style REST endpoint; no
// model runs in-process.
package inference

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"

	"github.com/steermate/steermate-backend-go/internal/config"
	"github.com/steermate/steermate-backend-go/internal/models"
)

var (
	// ErrUnavailable means no inference backend is configured or reachable.
	ErrUnavailable = errors.New("sign inference service not available")
	// ErrInvalidImage means the upload could not be decoded as an image.
	ErrInvalidImage = errors.New("invalid image")
)

// DefaultBBox is returned with every prediction; the classifier does not localise.
var DefaultBBox = []float64{0.1, 0.1, 0.9, 0.9}

// Classifier predicts a sign label for a preprocessed image.
type Classifier interface {
	Predict(ctx context.Context, in *Input) (*models.SignPrediction, error)
}

// New builds the classifier for the configured mode. Disabled mode yields a
// nil Classifier, which callers treat as unavailable.
func New(cfg config.InferenceConfig) (Classifier, error) {
	switch cfg.Mode {
	case config.InferenceDisabled, "":
		return nil, nil
	case config.InferenceStub:
		return NewStubClassifier(rand.NewPCG(rand.Uint64(), rand.Uint64())), nil
	case config.InferenceTFServing:
		return NewTFServingClassifier(cfg.URL, &http.Client{Timeout: cfg.Timeout}), nil
	default:
		return nil, fmt.Errorf("unsupported inference mode %q", cfg.Mode)
	}
}

// fromScores picks the highest scoring label. scores must follow SignLabels order.
func fromScores(scores []float64) (*models.SignPrediction, error) {
	if len(scores) != len(models.SignLabels) {
		return nil, fmt.Errorf("expected %d class scores, got %d", len(models.SignLabels), len(scores))
	}
	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}
	bbox := make([]float64, len(DefaultBBox))
	copy(bbox, DefaultBBox)
	return &models.SignPrediction{
		Class:      models.SignLabels[best],
		Confidence: scores[best],
		BBox:       bbox,
	}, nil
}
