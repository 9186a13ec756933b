package processor

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Keithclinton/Counter-Front/internal/errors"
)

// unknownCoordinate is the sentinel clients send when they have no GPS fix.
const unknownCoordinate = "unknown"

// defaultBrand is assumed when the client omits the brand field.
const defaultBrand = "County"

type coordinates struct {
	lat *float64
	lon *float64
}

// validate checks the request before any file is written. It returns the
// parsed coordinates on success.
func (p *Processor) validate(req *Request) (coordinates, error) {
	req.Brand = strings.TrimSpace(req.Brand)
	if req.Brand == "" {
		req.Brand = defaultBrand
	}
	if req.Filename == "" || req.Reader == nil {
		return coordinates{}, validationError("file", "image file is required")
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(req.Filename)), ".")
	if !p.Settings.AllowedExtension(ext) {
		return coordinates{}, validationError("extension", "unsupported file type: "+ext)
	}

	if max := p.Settings.Upload.MaxSize; max > 0 && req.Size > max {
		return coordinates{}, validationError("size", "file exceeds maximum upload size")
	}

	coords, err := parseCoordinates(req.Latitude, req.Longitude)
	if err != nil {
		return coordinates{}, err
	}
	return coords, nil
}

// parseCoordinates interprets the raw form values. The sentinel "Unknown"
// in either field yields a scan without a location. Both fields must parse
// and fall inside the valid WGS84 ranges otherwise.
func parseCoordinates(latRaw, lonRaw string) (coordinates, error) {
	latRaw = strings.TrimSpace(latRaw)
	lonRaw = strings.TrimSpace(lonRaw)

	if latRaw == "" || lonRaw == "" ||
		strings.EqualFold(latRaw, unknownCoordinate) ||
		strings.EqualFold(lonRaw, unknownCoordinate) {
		return coordinates{}, nil
	}

	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return coordinates{}, validationError("coordinates", "invalid latitude: "+latRaw)
	}
	lon, err := strconv.ParseFloat(lonRaw, 64)
	if err != nil {
		return coordinates{}, validationError("coordinates", "invalid longitude: "+lonRaw)
	}

	if lat < -90 || lat > 90 {
		return coordinates{}, validationError("coordinates", "latitude out of range")
	}
	if lon < -180 || lon > 180 {
		return coordinates{}, validationError("coordinates", "longitude out of range")
	}

	return coordinates{lat: &lat, lon: &lon}, nil
}

func validationError(field, msg string) error {
	return errors.Newf("%s", msg).
		Component("processor").
		Category(errors.CategoryValidation).
		Context("field", field).
		Build()
}

// validationReason extracts the failing field from a validation error for
// metrics labeling.
func validationReason(err error) string {
	var enhanced *errors.EnhancedError
	if errors.As(err, &enhanced) {
		if field, ok := enhanced.Context["field"].(string); ok {
			return field
		}
	}
	return "other"
}
