package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"nutricore/internal/platform/metrics"
)

func TestLatency_LabelsByRoutePattern(t *testing.T) {
	m := metrics.New()

	r := chi.NewRouter()
	r.Use(Latency(m))
	r.Get("/profiles/{role}/{profileID}/verification", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, path := range []string{
		"/profiles/dietitian/1111/verification",
		"/profiles/dietitian/2222/verification",
		"/profiles/user/3333/verification",
	} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	}

	// Three distinct URLs, one matched pattern, one series.
	assert.Equal(t, 1, promtestutil.CollectAndCount(m.RequestLatency, "nutricore_http_request_duration_seconds"))

	// Unmatched requests collapse into a single extra series instead of one
	// per probed URL.
	for _, path := range []string{"/nope", "/also-nope"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	}
	assert.Equal(t, 2, promtestutil.CollectAndCount(m.RequestLatency, "nutricore_http_request_duration_seconds"))
}
