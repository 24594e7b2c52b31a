// Package handlers exposes the REST surface consumed by the salon's
// front end. DTOs use the camelCase wire format the clients expect;
// domain errors map onto 400/404/409 through writeDomainError.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"salonbook/internal/booking"
	"salonbook/libs/httpx"
)

// customerHeader identifies the caller. Authentication happens upstream;
// the engine trusts the header as resolved identity.
const customerHeader = "X-Customer-Id"

func writeDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, booking.ErrInvalidArgument):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, booking.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrConflict):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	default:
		logger.Error("request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

func parseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, strings.TrimSpace(s))
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}
