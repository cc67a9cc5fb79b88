// Package trips turns one raw quarterly archive into the canonical
// trip-record schema. the upstream publisher has changed its formatting
// several times over the years (two-digit years, mixed timestamp
// formats, renamed in-archive files), all of that is reconciled here.
package trips

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var (
	ErrMissingTripsFile = fmt.Errorf("no trips file found in the zip archive")
	ErrInvalidDuration  = fmt.Errorf("invalid duration value")
	ErrInvalidTimestamp = fmt.Errorf("invalid timestamp value")
)

// Record is one normalized trip. every input column is carried through,
// plus the derived fields: integer (or null) duration, ISO-8601
// start_time/end_time, and start_pt/end_pt WKT points.
type Record map[string]any

var iso8601Pattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(T| )\d{2}:\d{2}:\d{2}(\.\d+)?Z?$`)

// Normalize reads the trips file embedded in a raw archive and maps
// every row to the canonical schema. a single malformed value fails the
// whole archive, output row count always equals input row count.
func Normalize(archive []byte) ([]Record, error) {
	z, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	// archives sometimes carry a second file describing stations, the
	// trips file is the one with "trips" in its name. some quarters it
	// is called "echo" instead.
	var tripsFile *zip.File
	for _, f := range z.File {
		name := strings.ToLower(f.Name)
		if strings.Contains(name, "trips") || strings.Contains(name, "echo") {
			tripsFile = f
			break
		}
	}
	if tripsFile == nil {
		return nil, ErrMissingTripsFile
	}

	r, err := tripsFile.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", tripsFile.Name, err)
	}
	defer r.Close()

	return normalizeCsv(r)
}

func normalizeCsv(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	// header defines the field set, some years have ragged rows
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		record := Record{}
		for i, field := range header {
			if i < len(row) {
				record[field] = row[i]
			} else {
				record[field] = ""
			}
		}

		stringField := func(name string) string {
			v, _ := record[name].(string)
			return v
		}

		duration, err := parseDuration(stringField("duration"))
		if err != nil {
			return nil, err
		}
		record["duration"] = duration

		for _, field := range []string{"start_time", "end_time"} {
			iso, err := normalizeTimestamp(stringField(field))
			if err != nil {
				return nil, err
			}
			record[field] = iso
		}

		record["start_pt"] = latLonToPoint(stringField("start_lat"), stringField("start_lon"))
		record["end_pt"] = latLonToPoint(stringField("end_lat"), stringField("end_lon"))

		records = append(records, record)
	}

	return records, nil
}
