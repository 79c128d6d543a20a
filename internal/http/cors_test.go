package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCreateCORSMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name    string
		enabled bool
		origins string
		wantNil bool
	}{
		{name: "Disabled", enabled: false, origins: "https://ehr.example.com", wantNil: true},
		{name: "EnabledWithoutOrigins", enabled: true, origins: "", wantNil: true},
		{name: "EnabledWithOnlyCommas", enabled: true, origins: " , ,", wantNil: true},
		{name: "EnabledWithOrigins", enabled: true, origins: "https://ehr.example.com", wantNil: false},
		{name: "EnabledWithOnlyWildcard", enabled: true, origins: "*", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			middleware := createCORSMiddleware(tt.enabled, tt.origins, logger)
			if tt.wantNil {
				assert.Nil(t, middleware)
			} else {
				assert.NotNil(t, middleware)
			}
		})
	}
}

func TestParseOrigins(t *testing.T) {
	t.Run("Success_TrimsAndSkipsBlanks", func(t *testing.T) {
		origins, rejected := parseOrigins(" https://ehr.example.com ,, https://portal.example.com/ ")
		assert.Equal(t, []string{"https://ehr.example.com", "https://portal.example.com"}, origins)
		assert.Empty(t, rejected)
	})

	t.Run("Success_Empty", func(t *testing.T) {
		origins, rejected := parseOrigins("")
		assert.Nil(t, origins)
		assert.Nil(t, rejected)
	})

	t.Run("Error_UnsafeOriginsRejected", func(t *testing.T) {
		origins, rejected := parseOrigins(
			"*, https://*.example.com, ftp://files.example.com, https://ehr.example.com/app, ehr.example.com, http://localhost:8080",
		)
		assert.Equal(t, []string{"http://localhost:8080"}, origins)
		assert.Equal(t, []string{
			"*",
			"https://*.example.com",
			"ftp://files.example.com",
			"https://ehr.example.com/app",
			"ehr.example.com",
		}, rejected)
	})
}

func corsRouter(enabled bool) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := gin.New()
	if middleware := createCORSMiddleware(enabled, "https://ehr.example.com", logger); middleware != nil {
		router.Use(middleware)
	}
	router.POST("/v1/fields/decrypt", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"value": ""})
	})
	return router
}

func TestCORS_Preflight(t *testing.T) {
	t.Run("Success_AllowedOrigin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/v1/fields/decrypt", nil)
		req.Header.Set("Origin", "https://ehr.example.com")
		req.Header.Set("Access-Control-Request-Method", "POST")
		corsRouter(true).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://ehr.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	})

	t.Run("Error_UnlistedOriginGetsNoHeaders", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/v1/fields/decrypt", nil)
		req.Header.Set("Origin", "https://attacker.example.net")
		req.Header.Set("Access-Control-Request-Method", "POST")
		corsRouter(true).ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Success_NoHeadersWhenDisabled", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/fields/decrypt", nil)
		req.Header.Set("Origin", "https://ehr.example.com")
		corsRouter(false).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}
