package trips

import (
	"fmt"
	"strconv"
	"time"
)

// empty durations become null, anything else must be an integer.
func parseDuration(value string) (any, error) {
	if value == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDuration, value)
	}
	return n, nil
}

// timestamps arrive in three shapes depending on the publication year:
// already ISO-8601 (passed through untouched), 'M/D/YYYY H:MM', or
// 'M/D/YY H:MM'. parsed values are formatted as ISO-8601 without a zone.
func normalizeTimestamp(value string) (string, error) {
	if value == "" {
		return value, nil
	}
	if iso8601Pattern.MatchString(value) {
		return value, nil
	}

	t, err := time.Parse("1/2/2006 15:04", value)
	if err != nil {
		// some quarters only have a two-digit year
		t, err = time.Parse("1/2/06 15:04", value)
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
		}
	}
	return t.Format("2006-01-02T15:04:05"), nil
}

// derives a WKT point from a lat/lon pair, preserving the original
// coordinate text. WKT puts longitude first, the reverse of the input
// field order. returns nil when either coordinate is missing or not a
// number, partial coordinates are common in older archives.
func latLonToPoint(lat, lon string) any {
	if lat == "" || lon == "" {
		return nil
	}
	_, latErr := strconv.ParseFloat(lat, 64)
	_, lonErr := strconv.ParseFloat(lon, 64)
	if latErr != nil || lonErr != nil {
		return nil
	}
	return fmt.Sprintf("POINT(%s %s)", lon, lat)
}
