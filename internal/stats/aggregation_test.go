package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, Mean([]float64{}))
	assert.InDelta(t, 2.5, Mean([]float64{1, 2, 3, 4}), 1e-9)
}

func TestRound(t *testing.T) {
	cases := []struct {
		v      float64
		places int
		want   float64
	}{
		{50.004, 2, 50.0},
		{0.12345, 3, 0.123},
		{0.1235, 3, 0.124},
		{-4.996, 2, -5.0},
		{72, 2, 72},
	}
	for _, c := range cases {
		assert.InDelta(t, c.want, Round(c.v, c.places), 1e-9, "Round(%v, %d)", c.v, c.places)
	}
}

func TestUnitConversions(t *testing.T) {
	assert.InDelta(t, 50.0, MetersToKm(50000), 1e-9)
	assert.InDelta(t, 1.23, MetersToKm(1234), 1e-9)
	assert.InDelta(t, 50.0, MpsToKmh(13.89), 1e-9)
	assert.InDelta(t, 72.0, MpsToKmh(20), 1e-9)
}
