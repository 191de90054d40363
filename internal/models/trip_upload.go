package models

// TripUpload is the ingestion payload: trip metrics plus ordered children.
// Pointer fields make "required" reject explicit nulls as well as absent keys.
type TripUpload struct {
	StartTime       *Timestamp `json:"start_time" binding:"required"`
	EndTime         *Timestamp `json:"end_time" binding:"required"`
	DurationSeconds *int64     `json:"duration_seconds" binding:"required,gte=0"`
	DistanceM       *float64   `json:"distance_m" binding:"required,gte=0"`
	AvgSpeedMS      *float64   `json:"avg_speed_m_s" binding:"required,gte=0"`
	MaxSpeedMS      *float64   `json:"max_speed_m_s" binding:"required,gte=0"`
	UnsafeEvents    *int64     `json:"unsafe_events" binding:"required,gte=0"`

	Events         []TripEventUpload     `json:"events" binding:"dive"`
	SignDetections []SignDetectionUpload `json:"sign_detections" binding:"dive"`
}

type TripEventUpload struct {
	EventType string     `json:"event_type" binding:"required"`
	Timestamp *Timestamp `json:"timestamp" binding:"required"`
	Lat       *float64   `json:"lat" binding:"required"`
	Lon       *float64   `json:"lon" binding:"required"`
	SpeedMS   *float64   `json:"speed_m_s" binding:"required"`
	AccelMS2  *float64   `json:"accel_m_s2" binding:"required"`
}

type SignDetectionUpload struct {
	Ts         *Timestamp  `json:"ts" binding:"required"`
	ClassName  string      `json:"class_name" binding:"required"`
	Confidence *float64    `json:"confidence" binding:"required,gte=0,lte=1"`
	BBox       BoundingBox `json:"bbox" binding:"required"`
}

// ToTrip converts the payload into an unsaved Trip owned by userID.
func (u *TripUpload) ToTrip(userID int64) *Trip {
	trip := &Trip{
		UserID:          userID,
		StartTime:       u.StartTime.Ptr(),
		EndTime:         u.EndTime.Ptr(),
		DurationSeconds: u.DurationSeconds,
		DistanceM:       u.DistanceM,
		AvgSpeedMS:      u.AvgSpeedMS,
		MaxSpeedMS:      u.MaxSpeedMS,
		UnsafeEvents:    u.UnsafeEvents,
		Events:          make([]TripEvent, 0, len(u.Events)),
		SignDetections:  make([]SignDetection, 0, len(u.SignDetections)),
	}
	for _, e := range u.Events {
		trip.Events = append(trip.Events, TripEvent{
			EventType: e.EventType,
			Timestamp: e.Timestamp.Ptr(),
			Lat:       e.Lat,
			Lon:       e.Lon,
			SpeedMS:   e.SpeedMS,
			AccelMS2:  e.AccelMS2,
		})
	}
	for _, s := range u.SignDetections {
		trip.SignDetections = append(trip.SignDetections, SignDetection{
			Ts:         s.Ts.Ptr(),
			ClassName:  s.ClassName,
			Confidence: s.Confidence,
			BBox:       s.BBox,
		})
	}
	return trip
}
