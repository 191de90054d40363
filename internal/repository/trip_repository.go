package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/steermate/steermate-backend-go/internal/database"
	"github.com/steermate/steermate-backend-go/internal/models"
)

// TripRepository handles database operations for trips and their children
type TripRepository struct {
	db *sqlx.DB
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db *sqlx.DB) *TripRepository {
	return &TripRepository{db: db}
}

const (
	tripColumns = `id, user_id, start_time, end_time, duration_seconds,
		distance_m, avg_speed_m_s, max_speed_m_s, unsafe_events, created_at`
	eventColumns = `id, trip_id, event_type, timestamp, lat, lon, speed_m_s, accel_m_s2`
	signColumns  = `id, trip_id, ts, class_name, confidence, bbox`
)

// Create inserts the trip and all of its events and sign detections in one
// transaction. Generated IDs are written back into trip and its children.
// On any error nothing is persisted.
func (r *TripRepository) Create(ctx context.Context, trip *models.Trip) error {
	if trip.CreatedAt.IsZero() {
		trip.CreatedAt = time.Now().UTC()
	}

	return database.Transaction(ctx, r.db, func(tx *sqlx.Tx) error {
		insertTrip := tx.Rebind(`INSERT INTO trips (
				user_id, start_time, end_time, duration_seconds, distance_m,
				avg_speed_m_s, max_speed_m_s, unsafe_events, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)

		err := tx.QueryRowxContext(ctx, insertTrip,
			trip.UserID,
			trip.StartTime,
			trip.EndTime,
			trip.DurationSeconds,
			trip.DistanceM,
			trip.AvgSpeedMS,
			trip.MaxSpeedMS,
			trip.UnsafeEvents,
			trip.CreatedAt,
		).Scan(&trip.ID)
		if err != nil {
			return fmt.Errorf("failed to create trip: %w", err)
		}

		insertEvent := tx.Rebind(`INSERT INTO trip_events (
				trip_id, event_type, timestamp, lat, lon, speed_m_s, accel_m_s2
			) VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`)

		for i := range trip.Events {
			e := &trip.Events[i]
			e.TripID = trip.ID
			err := tx.QueryRowxContext(ctx, insertEvent,
				e.TripID, e.EventType, e.Timestamp, e.Lat, e.Lon, e.SpeedMS, e.AccelMS2,
			).Scan(&e.ID)
			if err != nil {
				return fmt.Errorf("failed to create trip event %d: %w", i, err)
			}
		}

		insertSign := tx.Rebind(`INSERT INTO sign_detections (
				trip_id, ts, class_name, confidence, bbox
			) VALUES (?, ?, ?, ?, ?) RETURNING id`)

		for i := range trip.SignDetections {
			s := &trip.SignDetections[i]
			s.TripID = trip.ID
			err := tx.QueryRowxContext(ctx, insertSign,
				s.TripID, s.Ts, s.ClassName, s.Confidence, s.BBox,
			).Scan(&s.ID)
			if err != nil {
				return fmt.Errorf("failed to create sign detection %d: %w", i, err)
			}
		}

		return nil
	})
}

// GetForUser retrieves one trip with its children. The trip must belong to
// userID; otherwise ErrNotFound is returned, same as for a missing trip.
func (r *TripRepository) GetForUser(ctx context.Context, tripID, userID int64) (*models.Trip, error) {
	query := r.db.Rebind(`SELECT ` + tripColumns + ` FROM trips WHERE id = ? AND user_id = ?`)

	var t models.Trip
	err := r.db.GetContext(ctx, &t, query, tripID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	trips := []models.Trip{t}
	if err := r.loadChildren(ctx, trips); err != nil {
		return nil, err
	}
	return &trips[0], nil
}

// ListByUser retrieves a page of the user's trips, newest first, with children
func (r *TripRepository) ListByUser(ctx context.Context, userID int64, skip, limit int) ([]models.Trip, error) {
	query := r.db.Rebind(`SELECT ` + tripColumns + ` FROM trips
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`)

	trips := []models.Trip{}
	if err := r.db.SelectContext(ctx, &trips, query, userID, limit, skip); err != nil {
		return nil, fmt.Errorf("failed to query trips: %w", err)
	}

	if err := r.loadChildren(ctx, trips); err != nil {
		return nil, err
	}
	return trips, nil
}

// CountByUser returns how many trips the user owns
func (r *TripRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var total int64
	err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM trips WHERE user_id = ?`), userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count trips: %w", err)
	}
	return total, nil
}

// ListRecent retrieves the user's latest trips without children
func (r *TripRepository) ListRecent(ctx context.Context, userID int64, limit int) ([]models.Trip, error) {
	query := r.db.Rebind(`SELECT ` + tripColumns + ` FROM trips
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`)

	trips := []models.Trip{}
	if err := r.db.SelectContext(ctx, &trips, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to query recent trips: %w", err)
	}
	return trips, nil
}

// loadChildren fills Events and SignDetections for every trip with one
// query per child table. Children keep insertion order.
func (r *TripRepository) loadChildren(ctx context.Context, trips []models.Trip) error {
	if len(trips) == 0 {
		return nil
	}

	ids := make([]int64, len(trips))
	index := make(map[int64]int, len(trips))
	for i := range trips {
		ids[i] = trips[i].ID
		index[trips[i].ID] = i
		trips[i].Events = []models.TripEvent{}
		trips[i].SignDetections = []models.SignDetection{}
	}

	query, args, err := sqlx.In(`SELECT `+eventColumns+` FROM trip_events WHERE trip_id IN (?) ORDER BY id`, ids)
	if err != nil {
		return fmt.Errorf("failed to build event query: %w", err)
	}
	var events []models.TripEvent
	if err := r.db.SelectContext(ctx, &events, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to query trip events: %w", err)
	}
	for _, e := range events {
		t := &trips[index[e.TripID]]
		t.Events = append(t.Events, e)
	}

	query, args, err = sqlx.In(`SELECT `+signColumns+` FROM sign_detections WHERE trip_id IN (?) ORDER BY id`, ids)
	if err != nil {
		return fmt.Errorf("failed to build sign detection query: %w", err)
	}
	var signs []models.SignDetection
	if err := r.db.SelectContext(ctx, &signs, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to query sign detections: %w", err)
	}
	for _, s := range signs {
		t := &trips[index[s.TripID]]
		t.SignDetections = append(t.SignDetections, s)
	}

	return nil
}
