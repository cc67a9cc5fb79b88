package popularity

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
)

// Handler serves GET /popularity?start_hour=&end_hour=. both query
// params are optional and default to the whole day. responses carry
// permissive CORS headers, the map front-end lives on another domain.
func Handler(service Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCorsHeaders(w)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		startHour, err := hourParam(r, "start_hour", 0)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		endHour, err := hourParam(r, "end_hour", 23)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		result, err := service.GetPopularity(r.Context(), startHour, endHour)
		var validation ValidationError
		if errors.As(err, &validation) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err != nil {
			slog.Error("popularity query failed", "err", err)
			writeError(w, http.StatusInternalServerError, errors.New("internal server error"))
			return
		}
		if result == nil {
			result = []StationPopularity{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	})
}

func hourParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ValidationError{name + " must be an integer"}
	}
	return value, nil
}

func setCorsHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
