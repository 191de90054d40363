package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Trip represents one recorded driving session with aggregate metrics.
// Numeric columns are nullable in storage, hence the pointers.
type Trip struct {
	ID     int64 `json:"id" db:"id"`
	UserID int64 `json:"user_id" db:"user_id"`

	// Temporal info
	StartTime       *time.Time `json:"start_time" db:"start_time"`
	EndTime         *time.Time `json:"end_time" db:"end_time"`
	DurationSeconds *int64     `json:"duration_seconds" db:"duration_seconds"`

	// Trip characteristics, SI units
	DistanceM    *float64 `json:"distance_m" db:"distance_m"`
	AvgSpeedMS   *float64 `json:"avg_speed_m_s" db:"avg_speed_m_s"`
	MaxSpeedMS   *float64 `json:"max_speed_m_s" db:"max_speed_m_s"`
	UnsafeEvents *int64   `json:"unsafe_events" db:"unsafe_events"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Children, in creation order
	Events         []TripEvent     `json:"events" db:"-"`
	SignDetections []SignDetection `json:"sign_detections" db:"-"`
}

// TripEvent is a timestamped safety-relevant incident during a trip.
type TripEvent struct {
	ID        int64      `json:"id" db:"id"`
	TripID    int64      `json:"-" db:"trip_id"`
	EventType string     `json:"event_type" db:"event_type"`
	Timestamp *time.Time `json:"timestamp" db:"timestamp"`
	Lat       *float64   `json:"lat" db:"lat"`
	Lon       *float64   `json:"lon" db:"lon"`
	SpeedMS   *float64   `json:"speed_m_s" db:"speed_m_s"`
	AccelMS2  *float64   `json:"accel_m_s2" db:"accel_m_s2"`
}

// SignDetection is a road-sign classification result recorded during a trip.
type SignDetection struct {
	ID         int64       `json:"id" db:"id"`
	TripID     int64       `json:"-" db:"trip_id"`
	Ts         *time.Time  `json:"ts" db:"ts"`
	ClassName  string      `json:"class_name" db:"class_name"`
	Confidence *float64    `json:"confidence" db:"confidence"`
	BBox       BoundingBox `json:"bbox" db:"bbox"`
}

// Event type constants. The column is an open string; these are the types
// the report rules know about.
const (
	EventHardBrake   = "hard_brake"
	EventOverspeed   = "overspeed"
	EventHarshAccel  = "harsh_accel"
	EventUnsafeCurve = "unsafe_curve"
)

// KnownEventType reports whether t belongs to the recognised vocabulary.
func KnownEventType(t string) bool {
	switch t {
	case EventHardBrake, EventOverspeed, EventHarshAccel, EventUnsafeCurve:
		return true
	}
	return false
}

// SignLabels is the classifier vocabulary, in model output order.
var SignLabels = []string{
	"speed_limit_30",
	"speed_limit_50",
	"speed_limit_60",
	"speed_limit_80",
	"speed_limit_100",
	"speed_limit_120",
	"stop",
	"yield",
	"no_entry",
}

// KnownSignLabel reports whether label belongs to SignLabels.
func KnownSignLabel(label string) bool {
	for _, l := range SignLabels {
		if l == label {
			return true
		}
	}
	return false
}

// BoundingBox is an open key-value region document, stored as JSON text.
type BoundingBox map[string]any

// Value implements driver.Valuer
func (b BoundingBox) Value() (driver.Value, error) {
	if b == nil {
		return nil, nil
	}
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bbox: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (b *BoundingBox) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*b = nil
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("unsupported bbox type %T", src)
	}

	var out BoundingBox
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("failed to decode bbox: %w", err)
	}
	*b = out
	return nil
}

// TripsResponse represents a paginated response of trips
type TripsResponse struct {
	Data  []Trip `json:"data"`
	Total int64  `json:"total"`
	Skip  int    `json:"skip"`
	Limit int    `json:"limit"`
}
