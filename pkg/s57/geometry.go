package s57

import "math"

// GeometryKind tags the variant held by a Geometry.
type GeometryKind int

const (
	GeomPoint GeometryKind = iota
	GeomLine
	GeomPolygon
)

// Coordinate is a (lat, lon) pair in decimal degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// closeEpsilon is the tolerance the assembler uses to decide a chain is
// "approximately closed" and eligible for auto-close (spec §4.5 rule 4).
const closeEpsilon = 1e-6

func nearlyEqual(a, b Coordinate) bool {
	return math.Abs(a.Lat-b.Lat) < closeEpsilon && math.Abs(a.Lon-b.Lon) < closeEpsilon
}

// Ring is a closed sequence of coordinates: first == last, length >= 4.
type Ring []Coordinate

// Geometry is the tagged point/line/polygon variant the assembler produces.
// Only the field matching Kind is meaningful.
type Geometry struct {
	Kind    GeometryKind
	Point   Coordinate
	Line    []Coordinate
	Polygon []Ring
}

func NewPoint(c Coordinate) Geometry        { return Geometry{Kind: GeomPoint, Point: c} }
func NewLine(coords []Coordinate) Geometry  { return Geometry{Kind: GeomLine, Line: coords} }
func NewPolygon(rings []Ring) Geometry      { return Geometry{Kind: GeomPolygon, Polygon: rings} }

// Coordinates flattens the geometry to its constituent points, for MBR
// computation and point-radius queries.
func (g Geometry) Coordinates() []Coordinate {
	switch g.Kind {
	case GeomPoint:
		return []Coordinate{g.Point}
	case GeomLine:
		return g.Line
	case GeomPolygon:
		var out []Coordinate
		for _, r := range g.Polygon {
			out = append(out, r...)
		}
		return out
	default:
		return nil
	}
}

// ensureClosed appends the first coordinate if the ring isn't already
// closed.
func ensureClosed(coords []Coordinate) []Coordinate {
	if len(coords) == 0 {
		return coords
	}
	first, last := coords[0], coords[len(coords)-1]
	if first == last {
		return coords
	}
	return append(coords, first)
}
