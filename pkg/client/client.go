// Package client talks to the routing service over HTTP and converts
// its GeoJSON responses into route results.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/kass/go-route-map/pkg/models"
)

const routePath = "/route-geojson"

// NetworkError indicates the request never produced a successful
// response: a transport failure or a non-2xx status.
type NetworkError struct {
	Status  int    // 0 on transport failure
	Message string // server-supplied error text, if any
	Err     error  // underlying transport error, if any
}

func (e *NetworkError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("routing service error: %s", e.Message)
	case e.Status != 0:
		return fmt.Sprintf("routing service returned status %d", e.Status)
	default:
		return fmt.Sprintf("routing service unreachable: %v", e.Err)
	}
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DecodeError indicates the response body was not parseable as the
// expected GeoJSON route feature.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed route response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Client issues route requests against a single routing service.
type Client struct {
	baseURL string
	http    *http.Client
	logger  log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets a per-request timeout. Zero means no timeout; a hung
// request is then only ever abandoned by being superseded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger sets the structured logger for request/outcome logging.
func WithLogger(l log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a Client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		logger:  log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// geoJSONFeature mirrors the service's response: a LineString feature
// whose coordinates are [lon, lat] pairs.
type geoJSONFeature struct {
	Type     string `json:"type"`
	Geometry struct {
		Type        string      `json:"type"`
		Coordinates [][]float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		Algorithm     string  `json:"algorithm"`
		Weight        string  `json:"weight"`
		AvoidHighways bool    `json:"avoid_highways"`
		DistanceM     float64 `json:"distance_m"`
		DurationS     float64 `json:"duration_s"`
		Nodes         int     `json:"nodes"`
	} `json:"properties"`
}

// Route issues one request for the given snapshot and returns the
// parsed result. Failures are always *NetworkError or *DecodeError.
func (c *Client) Route(ctx context.Context, req models.RouteRequest) (*models.RouteResult, error) {
	u, err := url.Parse(c.baseURL + routePath)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	q := u.Query()
	q.Set("origin_lat", formatDegrees(req.Origin.Lat))
	q.Set("origin_lon", formatDegrees(req.Origin.Lon))
	q.Set("dest_lat", formatDegrees(req.Destination.Lat))
	q.Set("dest_lon", formatDegrees(req.Destination.Lon))
	q.Set("place", req.Place)
	q.Set("algo", string(req.Algorithm))
	q.Set("weight", string(req.Weight))
	q.Set("avoid_highways", strconv.FormatBool(req.AvoidHighways))
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	started := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		level.Error(c.logger).Log("msg", "route request failed", "err", err)
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		nerr := &NetworkError{Status: resp.StatusCode, Message: serverError(body)}
		level.Error(c.logger).Log("msg", "route request rejected", "status", resp.StatusCode, "err", nerr.Message)
		return nil, nerr
	}

	var feature geoJSONFeature
	if err := json.Unmarshal(body, &feature); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if feature.Type != "Feature" {
		return nil, &DecodeError{Err: fmt.Errorf("unexpected GeoJSON type %q", feature.Type)}
	}

	geometry := make([]models.Coordinate, 0, len(feature.Geometry.Coordinates))
	for i, pair := range feature.Geometry.Coordinates {
		if len(pair) < 2 {
			return nil, &DecodeError{Err: fmt.Errorf("coordinate %d has %d components", i, len(pair))}
		}
		// GeoJSON order is [lon, lat].
		geometry = append(geometry, models.Coordinate{Lat: pair[1], Lon: pair[0]})
	}

	result := &models.RouteResult{
		Geometry:        geometry,
		DistanceMeters:  feature.Properties.DistanceM,
		DurationSeconds: feature.Properties.DurationS,
		NodeCount:       feature.Properties.Nodes,
		Algorithm:       models.Algorithm(feature.Properties.Algorithm),
		Weight:          models.Weight(feature.Properties.Weight),
		AvoidHighways:   feature.Properties.AvoidHighways,
	}

	level.Info(c.logger).Log(
		"msg", "route computed",
		"algo", result.Algorithm,
		"weight", result.Weight,
		"distance_m", result.DistanceMeters,
		"nodes", result.NodeCount,
		"took", time.Since(started),
	)

	return result, nil
}

// serverError extracts the service's {"error": "..."} message, if the
// body carries one.
func serverError(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Error
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
