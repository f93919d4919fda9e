package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceZeroForSamePoint(t *testing.T) {
	p := Point{Latitude: 61.2012, Longitude: -149.9102}
	assert.Zero(t, Distance(p, p))
}

func TestDistanceOneDegreeLatitude(t *testing.T) {
	// One degree of latitude is EarthRadiusMiles * pi / 180, about 69.09 mi.
	a := Point{Latitude: 0, Longitude: 0}
	b := Point{Latitude: 1, Longitude: 0}
	assert.InDelta(t, 69.09, Distance(a, b), 0.05)
}

func TestDistanceKnownCityPair(t *testing.T) {
	// Anchorage to Fairbanks, roughly 260 miles great circle.
	anchorage := Point{Latitude: 61.2181, Longitude: -149.9003}
	fairbanks := Point{Latitude: 64.8378, Longitude: -147.7164}
	assert.InDelta(t, 260, Distance(anchorage, fairbanks), 5)
}

func TestDistanceSymmetric(t *testing.T) {
	a := Point{Latitude: 61.1953, Longitude: -149.8944}
	b := Point{Latitude: 61.1405, Longitude: -149.8652}
	assert.Equal(t, Distance(a, b), Distance(b, a))
}
