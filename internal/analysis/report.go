package analysis

import (
	"github.com/steermate/steermate-backend-go/internal/models"
	"github.com/steermate/steermate-backend-go/internal/stats"
)

// BuildReport produces the report for a trip loaded with its children.
func BuildReport(trip *models.Trip) *models.TripReport {
	breakdown := EventBreakdown(trip.Events)

	report := &models.TripReport{
		TripID: trip.ID,
		Summary: models.ReportSummary{
			StartTime:       trip.StartTime,
			EndTime:         trip.EndTime,
			DurationSeconds: intOrZero(trip.DurationSeconds),
			DistanceKm:      stats.MetersToKm(floatOrZero(trip.DistanceM)),
			AvgSpeedKmh:     stats.MpsToKmh(floatOrZero(trip.AvgSpeedMS)),
			MaxSpeedKmh:     stats.MpsToKmh(floatOrZero(trip.MaxSpeedMS)),
			UnsafeEvents:    intOrZero(trip.UnsafeEvents),
		},
		Events:         make([]models.ReportEvent, 0, len(trip.Events)),
		SignDetections: make([]models.ReportSignDetection, 0, len(trip.SignDetections)),
		Analytics: models.ReportAnalytics{
			EventBreakdown:  breakdown,
			Recommendations: Recommendations(breakdown),
		},
	}

	for _, e := range trip.Events {
		report.Events = append(report.Events, models.ReportEvent{
			Type:         e.EventType,
			Timestamp:    e.Timestamp,
			Location:     models.Location{Lat: e.Lat, Lon: e.Lon},
			SpeedKmh:     stats.MpsToKmh(floatOrZero(e.SpeedMS)),
			Acceleration: stats.Round(floatOrZero(e.AccelMS2), 2),
		})
	}

	for _, s := range trip.SignDetections {
		report.SignDetections = append(report.SignDetections, models.ReportSignDetection{
			Timestamp:  s.Ts,
			Class:      s.ClassName,
			Confidence: stats.Round(floatOrZero(s.Confidence), 3),
			BBox:       s.BBox,
		})
	}

	return report
}

// EventBreakdown counts events per distinct event type.
func EventBreakdown(events []models.TripEvent) map[string]int {
	breakdown := make(map[string]int)
	for _, e := range events {
		breakdown[e.EventType]++
	}
	return breakdown
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func intOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
