package popularity

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"indego-backend/lib/telemetry"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupService(t *testing.T) Service {
	cleanup := telemetry.SetupForTesting("test:popularity")
	t.Cleanup(cleanup)

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(Schema)
	if err != nil {
		t.Fatal(err)
	}
	return NewService(db)
}

type seedTrip struct {
	startStation, endStation string
	startTime, endTime       string
	startDate, endDate       string
	startPt, endPt           string
}

func seed(t *testing.T, s Service, trip seedTrip) {
	_, err := s.db.Exec(`
		INSERT INTO indego_trips (
			trip_id, duration, start_time, end_time, start_date, end_date,
			start_station, end_station, start_pt, end_pt
		) VALUES ('t', 600, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trip.startTime, trip.endTime, trip.startDate, trip.endDate,
		trip.startStation, trip.endStation, trip.startPt, trip.endPt,
	)
	if err != nil {
		t.Fatal(err)
	}
}

func TestGetPopularity(t *testing.T) {
	s := setupService(t)

	// station 3004: two outbound and one inbound trip on the same day
	for i := 0; i < 2; i++ {
		seed(t, s, seedTrip{
			startStation: "3004", endStation: "3007",
			startTime: "2023-01-05T08:30:00", endTime: "2023-01-05T08:45:00",
			startDate: "2023-01-05", endDate: "2023-01-05",
			startPt: "POINT(-75.16 39.95)", endPt: "POINT(-75.18 39.94)",
		})
	}
	seed(t, s, seedTrip{
		startStation: "3007", endStation: "3004",
		startTime: "2023-01-05T09:10:00", endTime: "2023-01-05T09:20:00",
		startDate: "2023-01-05", endDate: "2023-01-05",
		startPt: "POINT(-75.18 39.94)", endPt: "POINT(-75.16 39.95)",
	})

	result, err := s.GetPopularity(context.Background(), 0, 23)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, result, 2)

	byStation := map[string]StationPopularity{}
	for _, p := range result {
		byStation[p.StationId] = p
	}

	p3004 := byStation["3004"]
	require.Equal(t, "POINT(-75.16 39.95)", p3004.Geometry)
	require.InDelta(t, 2.0, p3004.POrigin, 1e-9)
	require.InDelta(t, 1.0, p3004.PDest, 1e-9)
	require.InDelta(t, 3.0, p3004.P, 1e-9)
}

func TestGetPopularityHourWindow(t *testing.T) {
	s := setupService(t)

	seed(t, s, seedTrip{
		startStation: "3004", endStation: "3004",
		startTime: "2023-01-05T08:30:00", endTime: "2023-01-05T08:45:00",
		startDate: "2023-01-05", endDate: "2023-01-05",
		startPt: "POINT(-75.16 39.95)", endPt: "POINT(-75.16 39.95)",
	})

	// the morning trip is outside an evening window
	result, err := s.GetPopularity(context.Background(), 17, 20)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, result, 0)

	result, err = s.GetPopularity(context.Background(), 8, 9)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, result, 1)
}

func TestGetPopularityValidation(t *testing.T) {
	s := setupService(t)

	testCases := []struct {
		startHour, endHour int
	}{
		{-1, 23},
		{23, 23},
		{0, 0},
		{0, 24},
		{12, 12},
		{14, 9},
	}
	for _, test := range testCases {
		_, err := s.GetPopularity(context.Background(), test.startHour, test.endHour)
		var validation ValidationError
		require.ErrorAs(t, err, &validation, "start=%d end=%d", test.startHour, test.endHour)
	}
}

func TestHandler(t *testing.T) {
	s := setupService(t)
	seed(t, s, seedTrip{
		startStation: "3004", endStation: "3004",
		startTime: "2023-01-05T08:30:00", endTime: "2023-01-05T08:45:00",
		startDate: "2023-01-05", endDate: "2023-01-05",
		startPt: "POINT(-75.16 39.95)", endPt: "POINT(-75.16 39.95)",
	})

	server := httptest.NewServer(Handler(s))
	defer server.Close()

	res, err := http.Get(server.URL + "?start_hour=0&end_hour=23")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))

	var result []StationPopularity
	err = json.NewDecoder(res.Body).Decode(&result)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, result, 1)
	require.Equal(t, "3004", result[0].StationId)
}

func TestHandlerBadRequest(t *testing.T) {
	s := setupService(t)
	server := httptest.NewServer(Handler(s))
	defer server.Close()

	for _, query := range []string{
		"?start_hour=abc",
		"?start_hour=12&end_hour=9",
		"?end_hour=24",
	} {
		res, err := http.Get(server.URL + query)
		if err != nil {
			t.Fatal(err)
		}
		var body map[string]string
		err = json.NewDecoder(res.Body).Decode(&body)
		res.Body.Close()
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, http.StatusBadRequest, res.StatusCode, "query %s", query)
		require.NotEmpty(t, body["error"])
	}
}
