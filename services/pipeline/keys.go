package pipeline

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
)

var ErrInvalidLabel = fmt.Errorf("invalid archive label")

var labelPattern = regexp.MustCompile(`^(\d{4}) Q(\d) .*$`)
var rawKeyPattern = regexp.MustCompile(`^indego-trips-(\d{4})-(\d)\.zip$`)

// ParseLabel extracts the (year, quarter) identity from a portal label
// like "2023 Q4 Trip Data". labels drive all storage keys, so a label
// that doesn't match the pattern makes its item unprocessable.
func ParseLabel(label string) (year int, quarter int, err error) {
	groups := labelPattern.FindStringSubmatch(label)
	if groups == nil {
		return 0, 0, fmt.Errorf("%w: %q, expected 'YYYY QX ...'", ErrInvalidLabel, label)
	}
	year, _ = strconv.Atoi(groups[1])
	quarter, _ = strconv.Atoi(groups[2])
	return year, quarter, nil
}

// ParseRawKey is the inverse of RawKey, applied to the basename so it
// accepts keys listed from either backend.
func ParseRawKey(key string) (year int, quarter int, err error) {
	groups := rawKeyPattern.FindStringSubmatch(path.Base(key))
	if groups == nil {
		return 0, 0, fmt.Errorf("%w: raw key %q, expected 'indego-trips-YYYY-Q.zip'", ErrInvalidLabel, key)
	}
	year, _ = strconv.Atoi(groups[1])
	quarter, _ = strconv.Atoi(groups[2])
	return year, quarter, nil
}

func RawKey(year, quarter int) string {
	return fmt.Sprintf("trips/indego-trips-%d-%d.zip", year, quarter)
}

func ProcessedKey(year, quarter int) string {
	return fmt.Sprintf("year=%d/quarter=%d/data.jsonl", year, quarter)
}
