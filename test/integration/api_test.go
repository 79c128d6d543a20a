// Package integration runs the field API end to end against PostgreSQL and MySQL audit sinks.
package integration

import (
	"bytes"
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/phivault/internal/app"
	auditDTO "github.com/allisson/phivault/internal/audit/http/dto"
	authService "github.com/allisson/phivault/internal/auth/service"
	"github.com/allisson/phivault/internal/config"
	fieldDTO "github.com/allisson/phivault/internal/field/http/dto"
	"github.com/allisson/phivault/internal/testutil"
)

const ssn = "123-45-6789"

type integrationTestContext struct {
	container *app.Container
	db        *sql.DB
	server    *httptest.Server
	token     string
}

func (ctx *integrationTestContext) makeRequest(
	t *testing.T,
	method, path string,
	body interface{},
	useAuth bool,
) (*http.Response, []byte) {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, ctx.server.URL+path, bodyReader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if useAuth {
		req.Header.Set("Authorization", "Bearer "+ctx.token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, respBody
}

func randomBase64(t *testing.T, n int) string {
	t.Helper()
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(b)
}

func setupIntegrationTest(t *testing.T, dbDriver string) *integrationTestContext {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var db *sql.DB
	var dsn string
	switch dbDriver {
	case "postgres":
		testutil.SkipIfNoPostgres(t)
		db = testutil.SetupPostgresDB(t)
		dsn = testutil.GetPostgresTestDSN()
	case "mysql":
		testutil.SkipIfNoMySQL(t)
		db = testutil.SetupMySQLDB(t)
		dsn = testutil.GetMySQLTestDSN()
	default:
		t.Fatalf("unsupported driver %s", dbDriver)
	}

	tokenService, err := authService.NewAPITokenService("")
	require.NoError(t, err)
	token, tokenHash, err := tokenService.Generate()
	require.NoError(t, err)

	cfg := &config.Config{
		Environment:             "development",
		EncryptionKey:           randomBase64(t, 32),
		EncryptionSalt:          randomBase64(t, 16),
		EnableLocalEncryption:   true,
		EncryptionAlgorithm:     "aes-gcm",
		EncryptionKDFIterations: 100000,
		CacheDriver:             config.CacheDriverMemory,
		CacheNamespace:          "phi",
		CacheOperationTimeout:   100 * time.Millisecond,
		CacheSweepInterval:      time.Minute,
		AuditDriver:             config.AuditDriverDatabase,
		AuditTimeout:            2 * time.Second,
		DBDriver:                dbDriver,
		DBConnectionString:      dsn,
		DBMaxOpenConnections:    5,
		DBMaxIdleConnections:    2,
		DBConnMaxLifetime:       time.Minute,
		LogLevel:                "error",
		APITokenHash:            tokenHash,
		MetricsEnabled:          false,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	container, err := app.NewContainer(context.Background(), cfg, logger)
	require.NoError(t, err)

	ctx := &integrationTestContext{
		container: container,
		db:        db,
		server:    httptest.NewServer(container.HTTPServer().GetHandler()),
		token:     token,
	}
	t.Cleanup(func() {
		ctx.server.Close()
		assert.NoError(t, container.Shutdown(context.Background()))
		testutil.TeardownDB(t, db)
	})
	return ctx
}

func fieldContext() fieldDTO.FieldContextRequest {
	return fieldDTO.FieldContextRequest{
		FieldName:      "ssn",
		ResourceType:   "patient",
		ResourceID:     "p-1",
		UserID:         "u-1",
		OrganizationID: "org-1",
	}
}

func TestIntegration_FieldLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	for _, driver := range []string{"postgres", "mysql"} {
		t.Run(driver, func(t *testing.T) {
			ctx := setupIntegrationTest(t, driver)

			resp, _ := ctx.makeRequest(t, http.MethodGet, "/ready", nil, false)
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			resp, _ = ctx.makeRequest(t, http.MethodPost, "/v1/fields/encrypt", map[string]any{
				"value": ssn, "context": fieldContext(),
			}, false)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

			// Encrypt
			resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/fields/encrypt", map[string]any{
				"value": ssn, "context": fieldContext(),
			}, true)
			require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
			var encrypted fieldDTO.EncryptFieldResponse
			require.NoError(t, json.Unmarshal(body, &encrypted))
			assert.True(t, strings.HasPrefix(encrypted.Envelope, "1:"))
			assert.NotContains(t, encrypted.Envelope, ssn)

			// Decrypt twice: miss then hit
			for i := 0; i < 2; i++ {
				resp, body = ctx.makeRequest(t, http.MethodPost, "/v1/fields/decrypt", map[string]any{
					"envelope": encrypted.Envelope, "context": fieldContext(),
				}, true)
				require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
				var decrypted fieldDTO.DecryptFieldResponse
				require.NoError(t, json.Unmarshal(body, &decrypted))
				assert.Equal(t, ssn, decrypted.Value)
			}

			resp, body = ctx.makeRequest(t, http.MethodGet, "/v1/cache/stats", nil, true)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			var stats fieldDTO.CacheStatsResponse
			require.NoError(t, json.Unmarshal(body, &stats))
			assert.Equal(t, int64(1), stats.Hits)
			assert.Equal(t, int64(1), stats.Misses)
			assert.Equal(t, int64(1), stats.Sets)

			// Invalidate the resource
			resp, body = ctx.makeRequest(t, http.MethodPost, "/v1/cache/invalidate", map[string]any{
				"resource_type": "patient", "resource_id": "p-1", "context": fieldContext(),
			}, true)
			require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
			var invalidated fieldDTO.InvalidateResponse
			require.NoError(t, json.Unmarshal(body, &invalidated))
			assert.Equal(t, int64(1), invalidated.Removed)

			// Tampered envelope
			tampered := []byte(encrypted.Envelope)
			if tampered[5] == 'A' {
				tampered[5] = 'B'
			} else {
				tampered[5] = 'A'
			}
			resp, body = ctx.makeRequest(t, http.MethodPost, "/v1/fields/decrypt", map[string]any{
				"envelope": string(tampered), "context": fieldContext(),
			}, true)
			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
			assert.NotContains(t, string(body), ssn)

			// Audit trail
			resp, body = ctx.makeRequest(t, http.MethodGet, "/v1/audit-events?limit=100", nil, true)
			require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
			assert.NotContains(t, string(body), ssn)
			assert.NotContains(t, string(body), encrypted.Envelope)

			var list auditDTO.ListAuditEventsResponse
			require.NoError(t, json.Unmarshal(body, &list))

			operations := make(map[string]bool)
			failedDecrypt := false
			for _, event := range list.Data {
				operations[event.Operation] = true
				assert.Equal(t, "ssn", event.FieldName)
				if event.Operation == "invalidate" {
					continue
				}
				assert.Equal(t, "high_phi", event.Classification)
				if event.Operation == "decrypt" && !event.Success {
					failedDecrypt = true
				}
			}
			for _, op := range []string{"encrypt", "decrypt", "cache_get", "cache_set", "invalidate"} {
				assert.True(t, operations[op], "missing audit operation %s", op)
			}
			assert.True(t, failedDecrypt, "tampered decrypt should be audited as a failure")
			assert.Equal(t, len(list.Data), testutil.CountAuditEvents(t, ctx.db))
		})
	}
}

func TestIntegration_AuditEventsCleanup(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	for _, driver := range []string{"postgres", "mysql"} {
		t.Run(driver, func(t *testing.T) {
			ctx := setupIntegrationTest(t, driver)

			testutil.CreateTestAuditEvent(t, ctx.db, driver, "dob", time.Now().AddDate(0, 0, -120))
			testutil.CreateTestAuditEvent(t, ctx.db, driver, "mrn", time.Now())

			uc := ctx.container.AuditEventUseCase()
			deleted, err := uc.DeleteOlderThan(context.Background(), 90, true)
			require.NoError(t, err)
			assert.Equal(t, int64(1), deleted)
			assert.Equal(t, 2, testutil.CountAuditEvents(t, ctx.db))

			deleted, err = uc.DeleteOlderThan(context.Background(), 90, false)
			require.NoError(t, err)
			assert.Equal(t, int64(1), deleted)
			assert.Equal(t, 1, testutil.CountAuditEvents(t, ctx.db))
		})
	}
}
