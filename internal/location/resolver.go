// Package location turns a browser geolocation result into a human-readable place.
package location

import (
	"context"
	"github.com/myrjola/crimewatch/internal/errors"
	"log/slog"
	"strconv"
)

// ErrUnavailable means no live location can be used and the user has to enter one manually.
var ErrUnavailable = errors.NewSentinel("live location unavailable")

// Failure is the reason the browser could not provide a position.
type Failure string

const (
	FailureNone             Failure = ""
	FailurePermissionDenied Failure = "permission-denied"
	FailureUnavailable      Failure = "position-unavailable"
	FailureTimeout          Failure = "timeout"
	FailureUnsupported      Failure = "unsupported"
)

// Fix is the outcome of a browser geolocation request.
type Fix struct {
	Latitude  float64 `schema:"latitude"`
	Longitude float64 `schema:"longitude"`
	Failure   Failure `schema:"failure"`
}

// Geocoder looks up a display name for coordinates.
type Geocoder interface {
	Reverse(ctx context.Context, lat float64, lon float64) (string, error)
}

type Resolver struct {
	geocoder Geocoder
	logger   *slog.Logger
}

func NewResolver(geocoder Geocoder, logger *slog.Logger) *Resolver {
	return &Resolver{
		geocoder: geocoder,
		logger:   logger.With(slog.String("source", "location")),
	}
}

// Resolve returns a display string for the fix.
//
// A browser failure or out of range coordinates yield ErrUnavailable. Geocoding problems fall back to the raw
// "latitude, longitude" string.
func (r *Resolver) Resolve(ctx context.Context, fix Fix) (string, error) {
	if fix.Failure != FailureNone {
		return "", errors.Wrap(ErrUnavailable, "browser geolocation failed", slog.String("failure", string(fix.Failure)))
	}
	if fix.Latitude < -90 || fix.Latitude > 90 || fix.Longitude < -180 || fix.Longitude > 180 {
		return "", errors.Wrap(ErrUnavailable, "coordinates out of range",
			slog.Float64("lat", fix.Latitude), slog.Float64("lon", fix.Longitude))
	}

	name, err := r.geocoder.Reverse(ctx, fix.Latitude, fix.Longitude)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "reverse geocoding failed, using coordinates", errors.SlogError(err))
	}
	if err != nil || name == "" {
		return Coordinates(fix.Latitude, fix.Longitude), nil
	}
	return name, nil
}

// Coordinates formats the pair as "latitude, longitude".
func Coordinates(lat float64, lon float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + ", " + strconv.FormatFloat(lon, 'f', -1, 64)
}
