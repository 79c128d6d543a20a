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

type staticVerifier struct {
	token string
	calls int
}

func (v *staticVerifier) Verify(plainToken string) bool {
	v.calls++
	return plainToken == v.token
}

func newAuthRouter(verifier TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := gin.New()
	router.Use(AuthenticationMiddleware(verifier, logger))
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func TestAuthenticationMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{"Success_ValidToken", "Bearer good-token", http.StatusOK},
		{"Success_CaseInsensitiveScheme", "bEaReR good-token", http.StatusOK},
		{"Error_MissingHeader", "", http.StatusUnauthorized},
		{"Error_WrongScheme", "Basic good-token", http.StatusUnauthorized},
		{"Error_EmptyToken", "Bearer ", http.StatusUnauthorized},
		{"Error_WrongToken", "Bearer bad-token", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAuthRouter(&staticVerifier{token: "good-token"})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusUnauthorized {
				assert.JSONEq(t,
					`{"error":"unauthorized","message":"Authentication is required"}`,
					w.Body.String())
			}
		})
	}
}
