package analysis

import (
	"github.com/steermate/steermate-backend-go/internal/models"
	"github.com/steermate/steermate-backend-go/internal/stats"
)

// BuildTrends aggregates a window of trips, already ordered newest first.
func BuildTrends(trips []models.Trip) *models.TripTrends {
	trends := &models.TripTrends{
		TotalTrips:  len(trips),
		RecentTrips: make([]models.TrendTrip, 0, len(trips)),
	}

	unsafe := make([]float64, 0, len(trips))
	for _, t := range trips {
		unsafe = append(unsafe, float64(intOrZero(t.UnsafeEvents)))
		if t.DistanceM != nil {
			trends.TotalDistanceKm += *t.DistanceM / 1000
		}

		trends.RecentTrips = append(trends.RecentTrips, models.TrendTrip{
			TripID:       t.ID,
			Date:         t.StartTime,
			UnsafeEvents: intOrZero(t.UnsafeEvents),
			DistanceKm:   stats.MetersToKm(floatOrZero(t.DistanceM)),
		})
	}
	// Mean guards the empty window
	trends.AvgUnsafeEvents = stats.Mean(unsafe)

	return trends
}
