package inference

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/steermate/steermate-backend-go/internal/models"
)

// StubClassifier draws random class scores. It stands in for a model during
// development and carries no predictive value.
type StubClassifier struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewStubClassifier(src rand.Source) *StubClassifier {
	return &StubClassifier{rng: rand.New(src)}
}

func (s *StubClassifier) Predict(ctx context.Context, in *Input) (*models.SignPrediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scores := make([]float64, len(models.SignLabels))
	s.mu.Lock()
	for i := range scores {
		scores[i] = s.rng.Float64()
	}
	s.mu.Unlock()

	return fromScores(scores)
}
