package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCORSMiddleware_Disabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	assert.Nil(t, createCORSMiddleware(false, "https://console.example.com", logger))
	assert.Nil(t, createCORSMiddleware(true, "", logger))
	assert.Nil(t, createCORSMiddleware(true, " , ,", logger))
}

func TestCreateCORSMiddleware_Preflight(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	middleware := createCORSMiddleware(true, " https://console.example.com , https://ops.example.com ", logger)
	require.NotNil(t, middleware)

	router := gin.New()
	router.Use(middleware)
	router.GET("/v1/environments/:environment_id/secrets", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name        string
		origin      string
		allowOrigin string
	}{
		{name: "listed origin", origin: "https://ops.example.com", allowOrigin: "https://ops.example.com"},
		{name: "unlisted origin", origin: "https://evil.example.com", allowOrigin: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/v1/environments/abc/secrets", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.allowOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestParseOrigins(t *testing.T) {
	assert.Nil(t, parseOrigins(""))
	assert.Equal(t,
		[]string{"https://console.example.com", "https://ops.example.com"},
		parseOrigins("https://console.example.com, ,https://ops.example.com "),
	)
}
