package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/steermate/steermate-backend-go/internal/models"
	"github.com/steermate/steermate-backend-go/internal/repository"
	"github.com/steermate/steermate-backend-go/internal/spatial"
)

// TripService handles business logic for trips
type TripService struct {
	repo   *repository.TripRepository
	logger *zap.Logger
}

// NewTripService creates a new trip service
func NewTripService(repo *repository.TripRepository, logger *zap.Logger) *TripService {
	return &TripService{repo: repo, logger: logger}
}

// Upload validates the payload and persists the trip with its children
// atomically. The stored trip is read back so the caller sees exactly what
// was written.
func (s *TripService) Upload(ctx context.Context, userID int64, upload *models.TripUpload) (*models.Trip, error) {
	for i, e := range upload.Events {
		if e.Lat == nil || e.Lon == nil {
			return nil, fmt.Errorf("%w: events[%d] is missing coordinates", ErrInvalidTrip, i)
		}
		if !spatial.ValidCoordinate(*e.Lat, *e.Lon) {
			return nil, fmt.Errorf("%w: events[%d] has invalid coordinates (%v, %v)", ErrInvalidTrip, i, *e.Lat, *e.Lon)
		}
		if !models.KnownEventType(e.EventType) {
			s.logger.Warn("unrecognised event type",
				zap.Int64("user_id", userID), zap.String("event_type", e.EventType))
		}
	}
	for _, d := range upload.SignDetections {
		if !models.KnownSignLabel(d.ClassName) {
			s.logger.Warn("unrecognised sign label",
				zap.Int64("user_id", userID), zap.String("class_name", d.ClassName))
		}
	}

	trip := upload.ToTrip(userID)
	if err := s.repo.Create(ctx, trip); err != nil {
		return nil, err
	}

	s.logger.Info("trip uploaded",
		zap.Int64("user_id", userID),
		zap.Int64("trip_id", trip.ID),
		zap.Int("events", len(trip.Events)),
		zap.Int("sign_detections", len(trip.SignDetections)),
	)
	return s.Get(ctx, userID, trip.ID)
}

// List returns one page of the user's trips, newest first, and the total count
func (s *TripService) List(ctx context.Context, userID int64, filter models.TripFilter) (*models.TripsResponse, error) {
	trips, err := s.repo.ListByUser(ctx, userID, filter.Skip, filter.Limit)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.TripsResponse{
		Data:  trips,
		Total: total,
		Skip:  filter.Skip,
		Limit: filter.Limit,
	}, nil
}

// Get retrieves one trip owned by userID
func (s *TripService) Get(ctx context.Context, userID, tripID int64) (*models.Trip, error) {
	trip, err := s.repo.GetForUser(ctx, tripID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTripNotFound
	}
	return trip, err
}
