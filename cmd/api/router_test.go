package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"accessapi/internal/config"
	"accessapi/internal/logging"
	"accessapi/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		ProjectName:      "Access API",
		SecretKey:        []byte("a"),
		RefreshSecretKey: []byte("b"),
		AccessTokenTTL:   30 * time.Minute,
		RefreshTokenTTL:  7 * 24 * time.Hour,
		CORSAllowOrigins: []string{"http://localhost:5173"},
	}
	return newApp(cfg, testutil.NewDB(t), logging.NewWithWriter(io.Discard, "error"))
}

func TestRouter_MetricsExposeRequests(t *testing.T) {
	a := testApp(t)

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `http_requests_total{method="GET",path="/health",status="200"}`)
	assert.Contains(t, body, "go_goroutines")
}

func TestRouter_CORSPreflight(t *testing.T) {
	a := testApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/users/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_SwaggerDoc(t *testing.T) {
	a := testApp(t)

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/users/login")
}

func TestRouter_SeedThenLoginEndToEnd(t *testing.T) {
	a := testApp(t)
	_, err := a.rbac.Seed(t.Context())
	require.NoError(t, err)

	register := `{"username":"ops","email":"ops@example.com","password":"secret123"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/users/", strings.NewReader(register))
	req.Header.Set("Content-Type", "application/json")
	a.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/users/login", bytes.NewBufferString(`{"username":"ops","password":"secret123"}`))
	req.Header.Set("Content-Type", "application/json")
	a.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
}
