// Package popularity answers "how busy is each station" over the
// normalized trip warehouse. stations are scored by their average daily
// trip counts as an origin (P_o) and as a destination (P_d) within an
// hour-of-day window.
package popularity

import (
	"context"
	"database/sql"

	_ "embed"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("indego.services.popularity")

//go:embed schema.sql
var Schema string

type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) Service {
	return Service{db: db}
}

type StationPopularity struct {
	StationId string  `json:"station_id"`
	Geometry  string  `json:"geometry"`
	POrigin   float64 `json:"P_o"`
	PDest     float64 `json:"P_d"`
	P         float64 `json:"P"`
}

const popularityQuery = `
WITH daily_origin_trip_count AS (
    SELECT
        start_station AS station_id,
        start_date AS trip_date,
        MIN(start_pt) AS station_pt,
        COUNT(*) AS trip_count
    FROM indego_trips
    WHERE CAST(strftime('%H', start_time) AS INTEGER) BETWEEN ? AND ?
    GROUP BY start_station, start_date
),

daily_destination_trip_count AS (
    SELECT
        end_station AS station_id,
        end_date AS trip_date,
        MIN(end_pt) AS station_pt,
        COUNT(*) AS trip_count
    FROM indego_trips
    WHERE CAST(strftime('%H', end_time) AS INTEGER) BETWEEN ? AND ?
    GROUP BY end_station, end_date
),

average_trip_count AS (
    SELECT
        o.station_id AS station_id,
        MIN(o.station_pt) AS station_pt,
        AVG(o.trip_count) AS p_o,
        AVG(d.trip_count) AS p_d
    FROM daily_origin_trip_count AS o
    JOIN daily_destination_trip_count AS d
        ON o.station_id = d.station_id AND o.trip_date = d.trip_date
    GROUP BY o.station_id
)

SELECT
    station_id,
    station_pt,
    p_o,
    p_d,
    p_o + p_d AS p
FROM average_trip_count
`

// GetPopularity aggregates trips whose start/end hour falls in
// [startHour, endHour]. bounds must satisfy 0 <= startHour <= 22,
// 1 <= endHour <= 23 and startHour < endHour.
func (s Service) GetPopularity(ctx context.Context, startHour, endHour int) ([]StationPopularity, error) {
	ctx, span := tracer.Start(ctx, "GetPopularity")
	defer span.End()

	err := validateHours(startHour, endHour)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, popularityQuery,
		startHour, endHour,
		startHour, endHour,
	)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer rows.Close()

	var result []StationPopularity
	for rows.Next() {
		var p StationPopularity
		var geometry sql.NullString
		err := rows.Scan(&p.StationId, &geometry, &p.POrigin, &p.PDest, &p.P)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		p.Geometry = geometry.String
		result = append(result, p)
	}
	err = rows.Err()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return result, nil
}

type ValidationError struct {
	message string
}

func (e ValidationError) Error() string {
	return e.message
}

func validateHours(startHour, endHour int) error {
	if startHour < 0 || startHour > 22 {
		return ValidationError{"start_hour must be between 0 and 22"}
	}
	if endHour < 1 || endHour > 23 {
		return ValidationError{"end_hour must be between 1 and 23"}
	}
	if startHour >= endHour {
		return ValidationError{"start_hour must be less than end_hour"}
	}
	return nil
}
