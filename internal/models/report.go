package models

import "time"

// TripReport is the generated report for a single trip.
type TripReport struct {
	TripID         int64                 `json:"trip_id"`
	Summary        ReportSummary         `json:"summary"`
	Events         []ReportEvent         `json:"events"`
	SignDetections []ReportSignDetection `json:"sign_detections"`
	Analytics      ReportAnalytics       `json:"analytics"`
}

// ReportSummary holds unit-converted trip metrics. Missing numeric values are
// reported as 0; missing timestamps stay null.
type ReportSummary struct {
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	DurationSeconds int64      `json:"duration_seconds"`
	DistanceKm      float64    `json:"distance_km"`
	AvgSpeedKmh     float64    `json:"avg_speed_kmh"`
	MaxSpeedKmh     float64    `json:"max_speed_kmh"`
	UnsafeEvents    int64      `json:"unsafe_events"`
}

type ReportEvent struct {
	Type         string     `json:"type"`
	Timestamp    *time.Time `json:"timestamp"`
	Location     Location   `json:"location"`
	SpeedKmh     float64    `json:"speed_kmh"`
	Acceleration float64    `json:"acceleration"`
}

type Location struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type ReportSignDetection struct {
	Timestamp  *time.Time  `json:"timestamp"`
	Class      string      `json:"class"`
	Confidence float64     `json:"confidence"`
	BBox       BoundingBox `json:"bbox"`
}

type ReportAnalytics struct {
	EventBreakdown  map[string]int `json:"event_breakdown"`
	Recommendations []string       `json:"recommendations"`
}

// TripTrends summarises a user's most recent trips.
type TripTrends struct {
	TotalTrips      int         `json:"total_trips"`
	AvgUnsafeEvents float64     `json:"avg_unsafe_events"`
	TotalDistanceKm float64     `json:"total_distance_km"`
	RecentTrips     []TrendTrip `json:"recent_trips"`
}

type TrendTrip struct {
	TripID       int64      `json:"trip_id"`
	Date         *time.Time `json:"date"`
	UnsafeEvents int64      `json:"unsafe_events"`
	DistanceKm   float64    `json:"distance_km"`
}

// SignPrediction is the classifier output returned by predict_sign.
type SignPrediction struct {
	Class      string    `json:"class"`
	Confidence float64   `json:"confidence"`
	BBox       []float64 `json:"bbox"`
}
