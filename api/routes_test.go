package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/invoicebox/backend/usecases"
	"github.com/invoicebox/backend/utils"
)

func TestRoutes_requireAuthentication(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	addRoutes(router, Configuration{DefaultTimeout: time.Second, LoginRateLimit: 1, LoginBurst: 1},
		usecases.Usecases{}, utils.NewAuthentication(nil))

	routes := []struct{ method, path string }{
		{http.MethodGet, "/users/me"},
		{http.MethodGet, "/workspaces"},
		{http.MethodGet, "/workspaces/assignable-permissions"},
		{http.MethodPost, "/workspaces/verify-add-employee"},
		{http.MethodDelete, "/workspaces/3f0e9b2e-8a57-4a53-b3a4-2b1f3c1d6e11/members/me"},
		{http.MethodGet, "/workspaces/3f0e9b2e-8a57-4a53-b3a4-2b1f3c1d6e11/roles/me"},
		{http.MethodGet, "/workspaces/3f0e9b2e-8a57-4a53-b3a4-2b1f3c1d6e11/stat"},
	}
	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(route.method, route.path, nil))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRoutes_inboundMailRequiresToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	addRoutes(router, Configuration{DefaultTimeout: time.Second, LoginRateLimit: 1, LoginBurst: 1},
		usecases.Usecases{}, utils.NewAuthentication(nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/emails/inbound", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestClientRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewClientRateLimiter(0.001, 2)
	router := gin.New()
	router.POST("/auth/login", limiter.Middleware, func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2:1234"), "another client has its own bucket")
}
