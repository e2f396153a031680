package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ngprojetos/inscricao-eventos/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestLogger_DifferentStatusCodes(t *testing.T) {
	router := gin.New()
	router.Use(RequestLogger())

	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"OK", "/ok", http.StatusOK},
		{"Bad Request", "/bad", http.StatusBadRequest},
		{"Internal Server Error", "/boom", http.StatusInternalServerError},
		{"Not Found", "/missing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path+"?cpf=12345678909", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRequestLogger_LabelsStatusAsNumber(t *testing.T) {
	router := gin.New()
	router.Use(RequestLogger())
	router.GET("/labelled", func(c *gin.Context) { c.Status(http.StatusAccepted) })

	before := testutil.CollectAndCount(observability.RequestDuration)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/labelled", nil))
	require.Equal(t, http.StatusAccepted, w.Code)

	assert.Equal(t, before+1, testutil.CollectAndCount(observability.RequestDuration))
	_, err := observability.RequestDuration.GetMetricWithLabelValues("/labelled", http.MethodGet, "202")
	assert.NoError(t, err)
}

func TestRequestTracker(t *testing.T) {
	router := gin.New()
	router.Use(RequestTracker())

	var during float64
	router.GET("/test", func(c *gin.Context) {
		during = testutil.ToFloat64(observability.ActiveConnections)
		c.Status(http.StatusOK)
	})

	before := testutil.ToFloat64(observability.ActiveConnections)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, before+1, during)
	assert.Equal(t, before, testutil.ToFloat64(observability.ActiveConnections))
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())

	var capturedID string
	router.GET("/test", func(c *gin.Context) {
		capturedID = c.GetString(RequestIDKey)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	require.NotEmpty(t, capturedID)
	_, err := uuid.Parse(capturedID)
	assert.NoError(t, err)
	assert.Equal(t, capturedID, w.Header().Get("X-Request-ID"))
}

func TestRequestID_WithProvidedID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())

	var capturedID string
	router.GET("/test", func(c *gin.Context) {
		capturedID = c.GetString(RequestIDKey)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Request-ID", "custom-request-id-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "custom-request-id-123", capturedID)
	assert.Equal(t, "custom-request-id-123", w.Header().Get("X-Request-ID"))
}

func TestRequestID_RejectsOversizedHeader(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	long := make([]byte, 200)
	for i := range long {
		long[i] = 'a'
	}
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Request-ID", string(long))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	_, err := uuid.Parse(w.Header().Get("X-Request-ID"))
	assert.NoError(t, err)
}
