package service

import (
	"context"
	"io"

	"github.com/steermate/steermate-backend-go/internal/analysis"
	"github.com/steermate/steermate-backend-go/internal/inference"
	"github.com/steermate/steermate-backend-go/internal/models"
	"github.com/steermate/steermate-backend-go/internal/repository"
)

// ReportService builds trip reports, trend summaries and sign predictions
type ReportService struct {
	trips      *TripService
	repo       *repository.TripRepository
	classifier inference.Classifier // nil when inference is disabled
}

// NewReportService creates a new report service
func NewReportService(trips *TripService, repo *repository.TripRepository, classifier inference.Classifier) *ReportService {
	return &ReportService{trips: trips, repo: repo, classifier: classifier}
}

// Generate builds the report for a trip owned by userID
func (s *ReportService) Generate(ctx context.Context, userID, tripID int64) (*models.TripReport, error) {
	trip, err := s.trips.Get(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	return analysis.BuildReport(trip), nil
}

// Trends summarises the user's latest trips
func (s *ReportService) Trends(ctx context.Context, userID int64, filter models.TrendFilter) (*models.TripTrends, error) {
	trips, err := s.repo.ListRecent(ctx, userID, filter.Limit)
	if err != nil {
		return nil, err
	}
	return analysis.BuildTrends(trips), nil
}

// PredictionAvailable reports whether a classifier is configured.
func (s *ReportService) PredictionAvailable() bool {
	return s.classifier != nil
}

// PredictSign classifies an uploaded image. Returns inference.ErrUnavailable
// when no classifier is configured.
func (s *ReportService) PredictSign(ctx context.Context, image io.Reader) (*models.SignPrediction, error) {
	if s.classifier == nil {
		return nil, inference.ErrUnavailable
	}
	in, err := inference.Preprocess(image)
	if err != nil {
		return nil, err
	}
	return s.classifier.Predict(ctx, in)
}
