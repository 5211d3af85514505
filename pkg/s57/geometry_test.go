package s57

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeometry_CoordinatesFlattensPolygon(t *testing.T) {
	ring := Ring{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}, {Lat: 0, Lon: 0}}
	g := NewPolygon([]Ring{ring})
	assert.Equal(t, []Coordinate(ring), g.Coordinates())
}

func TestGeometry_CoordinatesPoint(t *testing.T) {
	c := Coordinate{Lat: 47.64, Lon: -122.34}
	g := NewPoint(c)
	assert.Equal(t, []Coordinate{c}, g.Coordinates())
}

func TestEnsureClosed_AppendsFirstWhenOpen(t *testing.T) {
	coords := []Coordinate{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}}
	closed := ensureClosed(coords)
	assert.Equal(t, coords[0], closed[len(closed)-1])
	assert.Len(t, closed, 4)
}

func TestEnsureClosed_NoopWhenAlreadyClosed(t *testing.T) {
	coords := []Coordinate{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 0, Lon: 0}}
	closed := ensureClosed(coords)
	assert.Len(t, closed, 3)
}

func TestNearlyEqual_WithinAndOutsideTolerance(t *testing.T) {
	a := Coordinate{Lat: 1.0, Lon: 1.0}
	b := Coordinate{Lat: 1.0 + closeEpsilon/2, Lon: 1.0}
	c := Coordinate{Lat: 1.01, Lon: 1.0}
	assert.True(t, nearlyEqual(a, b))
	assert.False(t, nearlyEqual(a, c))
}
