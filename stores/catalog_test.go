package stores

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKnownDistances(t *testing.T) {
	// Paris → London
	assert.InDelta(t, 344, haversineKM(48.8566, 2.3522, 51.5074, -0.1278), 5)
	// Same point
	assert.InDelta(t, 0, haversineKM(40.0, -74.0, 40.0, -74.0), 0.001)
	// ~111km per degree of latitude at the equator
	assert.InDelta(t, 111, haversineKM(0, 0, 1, 0), 1)
}
