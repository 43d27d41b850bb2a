package obs

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestInstrumentLabelsByRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/clients/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	handler := Instrument(mux)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/clients/abc123", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	count := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "GET /v1/clients/{id}", "404"))
	require.Equal(t, float64(1), count)
	require.Equal(t, float64(0), testutil.ToFloat64(httpInFlight))
}

func TestInstrumentFallsBackToRawPath(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/nope", nil)
	require.Equal(t, "/nope", routeLabel(r))
}
