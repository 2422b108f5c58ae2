package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
}

func TestHostCheck(t *testing.T) {
	h := HostCheck("widgets.tapfolio.app")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Host = "widgets.tapfolio.app"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	// Port is stripped before comparing.
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Host = "widgets.tapfolio.app:443"
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Host = "evil.example.com"
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestHostCheckEmptyAllowsAll(t *testing.T) {
	h := HostCheck("")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Host = "anything.example.com"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestProductionSecurityEnforcesHost(t *testing.T) {
	var h http.Handler = okHandler()
	chain := ProductionSecurity("widgets.tapfolio.app")
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Host = "evil.example.com"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Host = "widgets.tapfolio.app"
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
}
