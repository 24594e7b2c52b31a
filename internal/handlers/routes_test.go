package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

// The admin front end hard-codes these paths; registration must match them
// exactly or its calls 404.
func TestRegisteredRoutesMatchClientPaths(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := http.NewServeMux()
	NewServicesHandler(nil, logger).Register(mux)
	NewStaffHandler(nil, logger).Register(mux)
	NewBusinessHandler(nil, logger).Register(mux)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/service-categories"},
		{http.MethodPost, "/api/service-categories"},
		{http.MethodPut, "/api/service-categories/cat1"},
		{http.MethodDelete, "/api/service-categories/cat1"},
		{http.MethodGet, "/api/services/svc1"},
		{http.MethodGet, "/api/staff/st1/availability-overrides"},
		{http.MethodPost, "/api/staff/st1/availability-override"},
		{http.MethodDelete, "/api/staff/st1/availability-override/ov1"},
		{http.MethodGet, "/api/business/settings"},
	}
	for _, c := range cases {
		req := httptest.NewRequest(c.method, c.path, nil)
		if _, pattern := mux.Handler(req); pattern == "" {
			t.Errorf("%s %s is not routed", c.method, c.path)
		}
	}
}
