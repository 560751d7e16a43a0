package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	provider, err := NewProvider("envsecrets")
	require.NoError(t, err)
	defer func() { assert.NoError(t, provider.Shutdown(context.Background())) }()

	router := gin.New()
	router.Use(HTTPMetricsMiddleware(provider.MeterProvider(), "envsecrets"))
	router.GET("/v1/leases/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})
	router.POST("/v1/dynamic-secrets/:id/leases", func(c *gin.Context) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "bad_gateway"})
	})

	for range 3 {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/leases/"+uuid.NewString(), nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/dynamic-secrets/"+uuid.NewString()+"/leases", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	body := scrape(t, provider)
	assert.Contains(t, body, "envsecrets_http_requests_total")
	assert.Contains(t, body, `path="/v1/leases/:id"`)
	assert.Contains(t, body, `status_code="502"`)
	assert.Contains(t, body, `path="unmatched"`)
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/v1/environments/:environment_id/secrets", routeLabel("/v1/environments/:environment_id/secrets"))
	assert.Equal(t, "/", routeLabel("/"))
	assert.Equal(t, unmatchedRoute, routeLabel(""))
}
