package domain

import (
	"context"
	"log/slog"
)

// GeocodingResult contains place data returned by a geocoding provider.
type GeocodingResult struct {
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// Geocoder resolves coordinates to place details.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}

// NameFromGeocoding renames a numbered fire after the place nearest its
// location. If geocoder is nil, the lookup fails, or no place comes back,
// the fire keeps its city-based name.
func NameFromGeocoding(ctx context.Context, fire FireRecord, geocoder Geocoder, logger *slog.Logger) FireRecord {
	if geocoder == nil {
		return fire
	}

	result, err := geocoder.ReverseGeocode(ctx, fire.Location.Lat, fire.Location.Lon)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"fire_id", fire.FireID,
			"lat", fire.Location.Lat,
			"lon", fire.Location.Lon,
			"error", err,
		)
		return fire
	}
	if result.PlaceName == "" {
		return fire
	}

	fire.Name = FireName(result.PlaceName, fire.FireID)
	return fire
}
