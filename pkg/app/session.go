package app

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/kass/go-route-map/pkg/models"
)

// SaveSession gob-encodes the request snapshot so the next session can
// start where this one left off.
func SaveSession(path string, req models.RouteRequest) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create session file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(req); err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return nil
}

// LoadSession restores the snapshot saved by SaveSession. Callers treat
// any error as "no previous session" and fall back to defaults.
func LoadSession(path string) (models.RouteRequest, error) {
	file, err := os.Open(path)
	if err != nil {
		return models.RouteRequest{}, fmt.Errorf("failed to open session file: %w", err)
	}
	defer file.Close()

	var req models.RouteRequest
	if err := gob.NewDecoder(file).Decode(&req); err != nil {
		return models.RouteRequest{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return req, nil
}
