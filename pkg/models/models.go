// Package models defines the value types shared by the route client,
// the state container and the terminal UI.
package models

import "math"

// Algorithm selects the shortest-path algorithm the routing service runs.
type Algorithm string

const (
	AlgorithmDijkstra Algorithm = "dijkstra"
	AlgorithmAStar    Algorithm = "astar"
)

// Weight selects the edge-weight metric the routing service optimizes.
type Weight string

const (
	WeightDistance Weight = "distance"
	WeightTime     Weight = "time"
)

// Coordinate represents a geographic location in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Round6 returns the coordinate rounded to six decimal digits, the
// precision used for marker drags.
func (c Coordinate) Round6() Coordinate {
	return Coordinate{Lat: round6(c.Lat), Lon: round6(c.Lon)}
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// RouteRequest is an immutable snapshot of every input needed to compute
// a route. A snapshot is always fully populated; use DefaultRequest to
// obtain one with sane defaults.
type RouteRequest struct {
	Origin        Coordinate `json:"origin"`
	Destination   Coordinate `json:"destination"`
	Place         string     `json:"place"`
	Algorithm     Algorithm  `json:"algorithm"`
	Weight        Weight     `json:"weight"`
	AvoidHighways bool       `json:"avoid_highways"`
}

// DefaultRequest returns a snapshot mirroring the routing service's own
// defaults.
func DefaultRequest() RouteRequest {
	return RouteRequest{
		Origin:        Coordinate{Lat: 40.742, Lon: -74.032},
		Destination:   Coordinate{Lat: 40.735, Lon: -74.027},
		Place:         "Hoboken, New Jersey, USA",
		Algorithm:     AlgorithmDijkstra,
		Weight:        WeightDistance,
		AvoidHighways: false,
	}
}

// RouteResult is a parsed response from the routing service. The echoed
// parameters report what the server actually used, which may differ from
// the request if the server clamped or defaulted them.
type RouteResult struct {
	Geometry        []Coordinate `json:"geometry"`
	DistanceMeters  float64      `json:"distance_m"`
	DurationSeconds float64      `json:"duration_s"`
	NodeCount       int          `json:"nodes"`
	Algorithm       Algorithm    `json:"algorithm"`
	Weight          Weight       `json:"weight"`
	AvoidHighways   bool         `json:"avoid_highways"`
}

// BoundingBox represents a rectangular area defined by two corners.
type BoundingBox struct {
	BottomLeft Coordinate
	TopRight   Coordinate
}

// Contains reports whether c lies inside the box (inclusive).
func (b BoundingBox) Contains(c Coordinate) bool {
	return c.Lat >= b.BottomLeft.Lat && c.Lat <= b.TopRight.Lat &&
		c.Lon >= b.BottomLeft.Lon && c.Lon <= b.TopRight.Lon
}
