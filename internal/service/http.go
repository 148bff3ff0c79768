package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ohmnow/finsight/backend/internal/auth"
	"github.com/ohmnow/finsight/backend/internal/store"
)

// badRequestError marks caller mistakes so writeErr can map them to 400.
type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &badRequestError{msg: fmt.Sprintf(format, args...)}
}

// parseDateRange reads optional start/end query parameters. Both RFC 3339
// timestamps and plain dates (2006-01-02) are accepted; the end date is
// inclusive of the whole day.
func parseDateRange(r *http.Request) (*time.Time, *time.Time, error) {
	var startDate, endDate *time.Time

	if raw := r.URL.Query().Get("start"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return nil, nil, badRequest("invalid start date %q", raw)
		}
		startDate = &t
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return nil, nil, badRequest("invalid end date %q", raw)
		}
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			t = t.Add(24*time.Hour - time.Second)
		}
		endDate = &t
	}
	return startDate, endDate, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func (s *InsightsService) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// writeErr maps service errors onto HTTP status codes.
func (s *InsightsService) writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var badReq *badRequestError
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.As(err, &badReq):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
