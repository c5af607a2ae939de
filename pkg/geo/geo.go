// Package geo provides the viewport math behind the map display:
// bounding-box computation, fit-to-bounds with padding, coordinate
// projection onto a character grid, and an R-Tree index over route
// vertices for nearest-vertex lookups.
package geo

import (
	"math"

	"github.com/dhconnelly/rtreego"

	"github.com/kass/go-route-map/pkg/models"
)

const (
	tolerance   = 0.000001
	minChildren = 25
	maxChildren = 50
	dimensions  = 2
	earthRadius = 6371.0 // km
)

// BoundsOf returns the bounding box of the given geometry. The second
// return value is false for empty geometry, in which case callers must
// leave their viewport untouched.
func BoundsOf(geometry []models.Coordinate) (models.BoundingBox, bool) {
	if len(geometry) == 0 {
		return models.BoundingBox{}, false
	}

	box := models.BoundingBox{BottomLeft: geometry[0], TopRight: geometry[0]}
	for _, c := range geometry[1:] {
		box.BottomLeft.Lat = math.Min(box.BottomLeft.Lat, c.Lat)
		box.BottomLeft.Lon = math.Min(box.BottomLeft.Lon, c.Lon)
		box.TopRight.Lat = math.Max(box.TopRight.Lat, c.Lat)
		box.TopRight.Lon = math.Max(box.TopRight.Lon, c.Lon)
	}
	return box, true
}

// Pad expands the box by the given fraction of its span on every side.
// A degenerate box (single point) is padded by a small absolute margin
// so the viewport never collapses to zero area.
func Pad(box models.BoundingBox, fraction float64) models.BoundingBox {
	latSpan := box.TopRight.Lat - box.BottomLeft.Lat
	lonSpan := box.TopRight.Lon - box.BottomLeft.Lon

	latPad := latSpan * fraction
	lonPad := lonSpan * fraction
	if latSpan == 0 {
		latPad = 0.001
	}
	if lonSpan == 0 {
		lonPad = 0.001
	}

	return models.BoundingBox{
		BottomLeft: models.Coordinate{Lat: box.BottomLeft.Lat - latPad, Lon: box.BottomLeft.Lon - lonPad},
		TopRight:   models.Coordinate{Lat: box.TopRight.Lat + latPad, Lon: box.TopRight.Lon + lonPad},
	}
}

// Viewport is the visible region of the map. Fitting the same geometry
// twice yields the same bounds both times.
type Viewport struct {
	bounds models.BoundingBox
	fitted bool
}

// Fit adjusts the viewport to contain the whole geometry with the given
// padding fraction. Empty geometry leaves the viewport unchanged and
// reports false.
func (v *Viewport) Fit(geometry []models.Coordinate, padFraction float64) bool {
	box, ok := BoundsOf(geometry)
	if !ok {
		return false
	}
	v.bounds = Pad(box, padFraction)
	v.fitted = true
	return true
}

// Bounds returns the current fitted bounds. The second return value is
// false before the first successful Fit.
func (v *Viewport) Bounds() (models.BoundingBox, bool) {
	return v.bounds, v.fitted
}

// Project maps a coordinate to a cell on a w×h character grid using an
// equirectangular projection of the fitted bounds. Row 0 is the top
// (northern) edge. The boolean is false when the coordinate falls
// outside the viewport or no fit has happened yet.
func (v *Viewport) Project(c models.Coordinate, w, h int) (col, row int, ok bool) {
	if !v.fitted || w < 1 || h < 1 {
		return 0, 0, false
	}

	latSpan := v.bounds.TopRight.Lat - v.bounds.BottomLeft.Lat
	lonSpan := v.bounds.TopRight.Lon - v.bounds.BottomLeft.Lon
	if latSpan <= 0 || lonSpan <= 0 {
		return 0, 0, false
	}

	col = int((c.Lon - v.bounds.BottomLeft.Lon) / lonSpan * float64(w-1))
	row = int((v.bounds.TopRight.Lat - c.Lat) / latSpan * float64(h-1))
	if col < 0 || col >= w || row < 0 || row >= h {
		return 0, 0, false
	}
	return col, row, true
}

// CellSizeDegrees returns the degrees of latitude and longitude covered
// by one cell of a w×h grid. Used to translate marker nudges into
// coordinate deltas.
func (v *Viewport) CellSizeDegrees(w, h int) (dLat, dLon float64) {
	if !v.fitted || w < 2 || h < 2 {
		// Sensible nudge before any route is shown.
		return 0.001, 0.001
	}
	dLat = (v.bounds.TopRight.Lat - v.bounds.BottomLeft.Lat) / float64(h-1)
	dLon = (v.bounds.TopRight.Lon - v.bounds.BottomLeft.Lon) / float64(w-1)
	return dLat, dLon
}

// Haversine returns the great-circle distance between two coordinates
// in kilometers.
func Haversine(a, b models.Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180.0
	lon1 := a.Lon * math.Pi / 180.0
	lat2 := b.Lat * math.Pi / 180.0
	lon2 := b.Lon * math.Pi / 180.0

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadius * c
}

// vertex wraps a route vertex for R-Tree indexing.
type vertex struct {
	coord models.Coordinate
	rect  *rtreego.Rect
}

func (v *vertex) Bounds() *rtreego.Rect {
	return v.rect
}

// VertexIndex is an R-Tree over the vertices of a single route
// geometry. It is rebuilt whenever the displayed route changes and
// answers nearest-vertex queries for the marker snap readout.
type VertexIndex struct {
	tree *rtreego.Rtree
	size int
}

// NewVertexIndex indexes the given geometry. An empty geometry yields
// an empty index.
func NewVertexIndex(geometry []models.Coordinate) *VertexIndex {
	idx := &VertexIndex{tree: rtreego.NewTree(dimensions, minChildren, maxChildren)}
	for _, c := range geometry {
		p := rtreego.Point{c.Lat, c.Lon}
		idx.tree.Insert(&vertex{coord: c, rect: p.ToRect(tolerance)})
		idx.size++
	}
	return idx
}

// Size returns the number of indexed vertices.
func (idx *VertexIndex) Size() int {
	return idx.size
}

// Nearest returns the route vertex closest to c and its haversine
// distance in kilometers. ok is false for an empty index.
func (idx *VertexIndex) Nearest(c models.Coordinate) (models.Coordinate, float64, bool) {
	if idx == nil || idx.size == 0 {
		return models.Coordinate{}, 0, false
	}

	results := idx.tree.NearestNeighbors(1, rtreego.Point{c.Lat, c.Lon})
	if len(results) == 0 || results[0] == nil {
		return models.Coordinate{}, 0, false
	}

	v := results[0].(*vertex)
	return v.coord, Haversine(c, v.coord), true
}
