package s57

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/samber/lo"
)

// linearScanThreshold is the feature count below which a linear scan beats
// the overhead of building an R-tree (spec §4.8).
const linearScanThreshold = 200

// maxNodeEntries bounds an R-tree node's fanout for the STR bulk-load.
const maxNodeEntries = 16

// Bounds is an axis-aligned lat/lon bounding box.
type Bounds struct {
	MinLat, MinLon, MaxLat, MaxLon float64
}

// Contains reports whether c falls within b, inclusive of the edges.
func (b Bounds) Contains(c Coordinate) bool {
	return c.Lat >= b.MinLat && c.Lat <= b.MaxLat && c.Lon >= b.MinLon && c.Lon <= b.MaxLon
}

// SpatialIndex answers bounding-box, radius, and type queries over a set of
// features, regardless of whether it is backed by a linear scan or an
// R-tree (spec §4.8).
type SpatialIndex interface {
	AddFeature(f Feature)
	AddFeatures(fs []Feature)
	Clear()
	QueryBounds(b Bounds) []Feature
	QueryPoint(c Coordinate, radiusDegrees float64) []Feature
	QueryByType(acronym string) []Feature
	QueryTypes(acronyms []string) []Feature
	QueryNavigationAids() []Feature
	QueryDepthFeatures() []Feature
	GetAllFeatures() []Feature
	FeatureCount() int
	PresentFeatureTypes() []string
	CalculateBounds() (Bounds, bool)
}

// navAidClasses and depthClasses are the acronym sets consulted by
// QueryNavigationAids/QueryDepthFeatures.
var navAidClasses = map[string]bool{
	"BOYLAT": true, "BOYISD": true, "BOYSPP": true, "BOYCAR": true,
	"LIGHTS": true, "BCNLAT": true, "BCNCAR": true, "BCNISD": true, "BCNSPP": true,
}

var depthClasses = map[string]bool{
	"DEPARE": true, "SOUNDG": true, "DEPCNT": true, "DRGARE": true,
}

// NewSpatialIndex selects a linear-scan or R-tree backed index. The R-tree
// is built lazily by the first spatial query once the index holds at least
// linearScanThreshold features; any AddFeature or AddFeatures call discards
// a built tree, so the next spatial query rebuilds it from all features.
func NewSpatialIndex(forceLinear bool) SpatialIndex {
	if forceLinear {
		return newLinearIndex()
	}
	return &autoIndex{}
}

// linearIndex is a plain slice scan, used below linearScanThreshold or when
// forced.
type linearIndex struct {
	features []Feature
}

func newLinearIndex() *linearIndex { return &linearIndex{} }

func (idx *linearIndex) AddFeature(f Feature)    { idx.features = append(idx.features, f) }
func (idx *linearIndex) AddFeatures(fs []Feature) { idx.features = append(idx.features, fs...) }
func (idx *linearIndex) Clear()                  { idx.features = nil }

func (idx *linearIndex) QueryBounds(b Bounds) []Feature {
	var out []Feature
	for _, f := range idx.features {
		for _, c := range f.Geometry.Coordinates() {
			if b.Contains(c) {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

func (idx *linearIndex) QueryPoint(c Coordinate, radiusDegrees float64) []Feature {
	var out []Feature
	for _, f := range idx.features {
		for _, fc := range f.Geometry.Coordinates() {
			if euclideanDistance(c, fc) <= radiusDegrees {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

func (idx *linearIndex) QueryByType(acronym string) []Feature {
	return lo.Filter(idx.features, func(f Feature, _ int) bool { return f.ObjectClass.Acronym == acronym })
}

func (idx *linearIndex) QueryTypes(acronyms []string) []Feature {
	want := lo.SliceToMap(acronyms, func(a string) (string, struct{}) { return a, struct{}{} })
	return lo.Filter(idx.features, func(f Feature, _ int) bool {
		_, ok := want[f.ObjectClass.Acronym]
		return ok
	})
}

func (idx *linearIndex) QueryNavigationAids() []Feature {
	return lo.Filter(idx.features, func(f Feature, _ int) bool { return navAidClasses[f.ObjectClass.Acronym] })
}

func (idx *linearIndex) QueryDepthFeatures() []Feature {
	return lo.Filter(idx.features, func(f Feature, _ int) bool { return depthClasses[f.ObjectClass.Acronym] })
}

func (idx *linearIndex) GetAllFeatures() []Feature { return idx.features }
func (idx *linearIndex) FeatureCount() int         { return len(idx.features) }

func (idx *linearIndex) PresentFeatureTypes() []string {
	seen := map[string]bool{}
	var out []string
	for _, f := range idx.features {
		if !seen[f.ObjectClass.Acronym] {
			seen[f.ObjectClass.Acronym] = true
			out = append(out, f.ObjectClass.Acronym)
		}
	}
	sort.Strings(out)
	return out
}

func (idx *linearIndex) CalculateBounds() (Bounds, bool) {
	return calculateBounds(idx.features)
}

func euclideanDistance(a, b Coordinate) float64 {
	dLat := a.Lat - b.Lat
	dLon := a.Lon - b.Lon
	return math.Sqrt(dLat*dLat + dLon*dLon)
}

func calculateBounds(features []Feature) (Bounds, bool) {
	var b Bounds
	found := false
	for _, f := range features {
		for _, c := range f.Geometry.Coordinates() {
			if !found {
				b = Bounds{MinLat: c.Lat, MaxLat: c.Lat, MinLon: c.Lon, MaxLon: c.Lon}
				found = true
				continue
			}
			b.MinLat = math.Min(b.MinLat, c.Lat)
			b.MaxLat = math.Max(b.MaxLat, c.Lat)
			b.MinLon = math.Min(b.MinLon, c.Lon)
			b.MaxLon = math.Max(b.MaxLon, c.Lon)
		}
	}
	return b, found
}

// autoIndex defers to a linearIndex until enough features accumulate to
// justify an R-tree, then rebuilds via STR bulk-load (spec §4.8).
type autoIndex struct {
	features []Feature
	tree     *rtreego.Rtree
	byID     map[rtreego.Spatial]Feature
}

func (idx *autoIndex) AddFeature(f Feature) {
	idx.features = append(idx.features, f)
	idx.tree = nil
}

func (idx *autoIndex) AddFeatures(fs []Feature) {
	idx.features = append(idx.features, fs...)
	idx.tree = nil
}

func (idx *autoIndex) Clear() {
	idx.features = nil
	idx.tree = nil
	idx.byID = nil
}

func (idx *autoIndex) ensureBuilt() {
	if idx.tree != nil || len(idx.features) < linearScanThreshold {
		return
	}
	idx.tree, idx.byID = strBulkLoad(idx.features)
}

// strBulkLoad orders features the way a Sort-Tile-Recursive load does
// (P = ceil(N/M), S = ceil(sqrt(P)) vertical slices of ceil(N/S) entries,
// sorted by minX, each slice sorted by minY) and inserts them one at a time
// in that order into an rtreego tree with node capacity maxNodeEntries. It
// does not pack leaves or internal levels itself: the node layout is the
// one rtreego's own insertion produces.
func strBulkLoad(features []Feature) (*rtreego.Rtree, map[rtreego.Spatial]Feature) {
	type entry struct {
		rect       rtreego.Rect
		minX, minY float64
		f          Feature
	}
	entries := make([]entry, 0, len(features))
	for _, f := range features {
		r, minLat, minLon, ok := featureRect(f)
		if !ok {
			continue
		}
		entries = append(entries, entry{rect: r, minX: minLat, minY: minLon, f: f})
	}

	n := len(entries)
	m := maxNodeEntries
	p := int(math.Ceil(float64(n) / float64(m)))
	if p < 1 {
		p = 1
	}
	s := int(math.Ceil(math.Sqrt(float64(p))))
	if s < 1 {
		s = 1
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].minX != entries[j].minX {
			return entries[i].minX < entries[j].minX
		}
		return entries[i].minY < entries[j].minY
	})

	sliceSize := int(math.Ceil(float64(n) / float64(s)))
	if sliceSize < 1 {
		sliceSize = n
	}
	byID := make(map[rtreego.Spatial]Feature, n)
	tree := rtreego.NewTree(2, maxNodeEntries/2, maxNodeEntries)

	for start := 0; start < n; start += sliceSize {
		end := start + sliceSize
		if end > n {
			end = n
		}
		slice := entries[start:end]
		sort.Slice(slice, func(i, j int) bool {
			return slice[i].minY < slice[j].minY
		})
		for _, e := range slice {
			obj := spatialFeature{rect: e.rect}
			byID[obj] = e.f
			tree.Insert(obj)
		}
	}
	return tree, byID
}

// spatialFeature adapts a precomputed rtreego.Rect to the rtreego.Spatial
// interface so strBulkLoad can insert without recomputing bounds.
type spatialFeature struct {
	rect rtreego.Rect
}

func (s spatialFeature) Bounds() rtreego.Rect { return s.rect }

// featureRect returns f's bounding rectangle plus its raw min-lat/min-lon
// corner (used for STR's sort-by-minX-then-minY step, since rtreego.Rect
// exposes no coordinate accessors of its own).
func featureRect(f Feature) (rect rtreego.Rect, minLat, minLon float64, ok bool) {
	coords := f.Geometry.Coordinates()
	if len(coords) == 0 {
		return rtreego.Rect{}, 0, 0, false
	}
	b, _ := calculateBounds([]Feature{f})
	width := b.MaxLat - b.MinLat
	length := b.MaxLon - b.MinLon
	const epsilon = 1e-9
	if width < epsilon {
		width = epsilon
	}
	if length < epsilon {
		length = epsilon
	}
	rect, err := rtreego.NewRect(rtreego.Point{b.MinLat, b.MinLon}, []float64{width, length})
	if err != nil {
		return rtreego.Rect{}, 0, 0, false
	}
	return rect, b.MinLat, b.MinLon, true
}

func (idx *autoIndex) QueryBounds(b Bounds) []Feature {
	idx.ensureBuilt()
	if idx.tree == nil {
		return (&linearIndex{features: idx.features}).QueryBounds(b)
	}
	width := b.MaxLat - b.MinLat
	length := b.MaxLon - b.MinLon
	rect, err := rtreego.NewRect(rtreego.Point{b.MinLat, b.MinLon}, []float64{math.Max(width, 1e-9), math.Max(length, 1e-9)})
	if err != nil {
		return nil
	}
	results := idx.tree.SearchIntersect(rect)
	out := make([]Feature, 0, len(results))
	for _, r := range results {
		if f, ok := idx.byID[r]; ok {
			out = append(out, f)
		}
	}
	return out
}

func (idx *autoIndex) QueryPoint(c Coordinate, radiusDegrees float64) []Feature {
	idx.ensureBuilt()
	if idx.tree == nil {
		return (&linearIndex{features: idx.features}).QueryPoint(c, radiusDegrees)
	}
	b := Bounds{MinLat: c.Lat - radiusDegrees, MaxLat: c.Lat + radiusDegrees, MinLon: c.Lon - radiusDegrees, MaxLon: c.Lon + radiusDegrees}
	candidates := idx.QueryBounds(b)
	var out []Feature
	for _, f := range candidates {
		for _, fc := range f.Geometry.Coordinates() {
			if euclideanDistance(c, fc) <= radiusDegrees {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

func (idx *autoIndex) QueryByType(acronym string) []Feature {
	return lo.Filter(idx.features, func(f Feature, _ int) bool { return f.ObjectClass.Acronym == acronym })
}

func (idx *autoIndex) QueryTypes(acronyms []string) []Feature {
	want := lo.SliceToMap(acronyms, func(a string) (string, struct{}) { return a, struct{}{} })
	return lo.Filter(idx.features, func(f Feature, _ int) bool {
		_, ok := want[f.ObjectClass.Acronym]
		return ok
	})
}

func (idx *autoIndex) QueryNavigationAids() []Feature {
	return lo.Filter(idx.features, func(f Feature, _ int) bool { return navAidClasses[f.ObjectClass.Acronym] })
}

func (idx *autoIndex) QueryDepthFeatures() []Feature {
	return lo.Filter(idx.features, func(f Feature, _ int) bool { return depthClasses[f.ObjectClass.Acronym] })
}

func (idx *autoIndex) GetAllFeatures() []Feature { return idx.features }
func (idx *autoIndex) FeatureCount() int         { return len(idx.features) }

func (idx *autoIndex) PresentFeatureTypes() []string {
	return (&linearIndex{features: idx.features}).PresentFeatureTypes()
}

func (idx *autoIndex) CalculateBounds() (Bounds, bool) {
	return calculateBounds(idx.features)
}
