package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-DemoBookingService/pkg/metrics"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestAuth(t *testing.T) {
	var seen int64
	h := Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetUserID(r.Context())
		require.True(t, ok)
		seen = id
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "42", http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"not a number", "abc", http.StatusUnauthorized},
		{"negative", "-3", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/demo-slots", nil)
			if tt.header != "" {
				req.Header.Set(UserIDHeader, tt.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	assert.Equal(t, int64(42), seen)
}

func TestGetUserIDWithoutAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := GetUserID(req.Context())
	assert.False(t, ok)

	id, ok := GetUserID(WithUserID(req.Context(), 7))
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)
}

func TestRateLimiterPerIP(t *testing.T) {
	limiter := NewRateLimiter(60, 2)
	clock := time.Date(2026, 11, 2, 8, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }
	h := limiter.Middleware(http.HandlerFunc(okHandler))

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/demo-bookings", nil)
		req.RemoteAddr = ip + ":51000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))

	// у другого IP свой бакет
	assert.Equal(t, http.StatusOK, send("10.0.0.2"))

	// 60 в минуту: через секунду появляется один токен
	clock = clock.Add(time.Second)
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
}

func TestRateLimiterSweepsIdleVisitors(t *testing.T) {
	limiter := NewRateLimiter(60, 1)
	clock := time.Date(2026, 11, 2, 8, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }

	assert.True(t, limiter.allow("10.0.0.1"))
	clock = clock.Add(limiterIdleTTL + time.Minute)
	assert.True(t, limiter.allow("10.0.0.2"))

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.NotContains(t, limiter.visitors, "10.0.0.1")
	assert.Contains(t, limiter.visitors, "10.0.0.2")
}

func TestRateLimiterOnlyMethods(t *testing.T) {
	limiter := NewRateLimiter(60, 1)
	h := limiter.OnlyMethods(http.MethodPost)(http.HandlerFunc(okHandler))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/demo-slots/available", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/demo-bookings", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/demo-bookings", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestClientIPIgnoresForwardedForWithoutTrustedProxy(t *testing.T) {
	limiter := NewRateLimiter(60, 1)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:4444"
	assert.Equal(t, "192.0.2.10", limiter.clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "192.0.2.10", limiter.clientIP(req))
}

func TestClientIPBehindTrustedProxy(t *testing.T) {
	limiter := NewRateLimiter(60, 1)
	require.NoError(t, limiter.TrustProxies("10.0.0.0/8", "192.0.2.1"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:4444"

	// левое значение подставил клиент, правое добавил наш прокси
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 203.0.113.5, 10.0.0.1")
	assert.Equal(t, "203.0.113.5", limiter.clientIP(req))

	req.Header.Del("X-Forwarded-For")
	assert.Equal(t, "10.0.0.7", limiter.clientIP(req))

	// недоверенный отправитель не может подменить адрес
	req.RemoteAddr = "198.51.100.9:4444"
	req.Header.Set("X-Forwarded-For", "203.0.113.5")
	assert.Equal(t, "198.51.100.9", limiter.clientIP(req))

	req.RemoteAddr = "192.0.2.1:4444"
	assert.Equal(t, "203.0.113.5", limiter.clientIP(req))
}

func TestTrustProxiesRejectsGarbage(t *testing.T) {
	limiter := NewRateLimiter(60, 1)
	assert.Error(t, limiter.TrustProxies("not-an-ip"))
}

func TestRateLimiterNotBypassedByForwardedFor(t *testing.T) {
	limiter := NewRateLimiter(60, 1)
	clock := time.Date(2026, 11, 2, 8, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }
	h := limiter.Middleware(http.HandlerFunc(okHandler))

	send := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/demo-bookings", nil)
		req.RemoteAddr = "198.51.100.9:51000"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.3"))
}

func TestMetricsMiddlewareUsesRouteTemplate(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegisterer("demo-booking", reg)

	r := mux.NewRouter()
	r.Use(MetricsMiddleware(m))
	r.HandleFunc("/admin/demo-slots/{slotId}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodDelete)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/demo-slots/3f1c2a9e-8b7d-4e21-9a55-0c6d7e8f9a10", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	families, err := reg.Gather()
	require.NoError(t, err)

	var labels map[string]string
	for _, mf := range families {
		if mf.GetName() != "http_requests_total" {
			continue
		}
		require.Len(t, mf.GetMetric(), 1)
		labels = map[string]string{}
		for _, lp := range mf.GetMetric()[0].GetLabel() {
			labels[lp.GetName()] = lp.GetValue()
		}
	}

	require.NotNil(t, labels)
	assert.Equal(t, "/admin/demo-slots/{slotId}", labels["path"])
	assert.Equal(t, "204", labels["status"])
	assert.Equal(t, "DELETE", labels["method"])
}

func TestMetricsMiddlewareWithNilMetrics(t *testing.T) {
	h := MetricsMiddleware(nil)(http.HandlerFunc(okHandler))
	rec := httptest.NewRecorder()

	assert.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}
