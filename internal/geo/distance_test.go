package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKm(t *testing.T) {
	// Same point
	assert.Zero(t, HaversineKm(43.2220, 76.8512, 43.2220, 76.8512))

	// One degree of latitude is ~111.19 km everywhere
	d := HaversineKm(43.0, 76.85, 44.0, 76.85)
	assert.InDelta(t, 111.19, d, 0.05)

	// Symmetric
	assert.InDelta(t,
		HaversineKm(43.2220, 76.8512, 51.1605, 71.4704),
		HaversineKm(51.1605, 71.4704, 43.2220, 76.8512),
		1e-9)

	// Almaty to Astana is roughly 970 km
	assert.InDelta(t, 970, HaversineKm(43.2220, 76.8512, 51.1605, 71.4704), 20)
}
