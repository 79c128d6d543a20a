package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertBizMetricLine matches name{...labels...} value, tolerating the otel_scope labels
// the exporter adds.
func assertBizMetricLine(t *testing.T, output, name, labels, value string) {
	t.Helper()
	pattern := name + `\{[^}]*` + labels + `[^}]*\} ` + value
	assert.Regexp(t, pattern, output)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, StatusSuccess, StatusOf(nil))
	assert.Equal(t, StatusError, StatusOf(errors.New("boom")))
}

func TestBusinessMetrics(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "test_app")
	require.NoError(t, err)

	ctx := context.Background()
	bm.RecordOperation(ctx, "field", "encrypt_field", StatusSuccess)
	bm.RecordOperation(ctx, "field", "encrypt_field", StatusSuccess)
	bm.RecordOperation(ctx, "cache", "invalidate_user", StatusError)
	bm.RecordDuration(ctx, "field", "decrypt_field", 250*time.Millisecond, StatusSuccess)

	output := scrape(t, provider)
	assertBizMetricLine(
		t, output, "test_app_operations_total",
		`domain="field",operation="encrypt_field",status="success"`, "2",
	)
	assertBizMetricLine(
		t, output, "test_app_operations_total",
		`domain="cache",operation="invalidate_user",status="error"`, "1",
	)
	assertBizMetricLine(
		t, output, "test_app_operation_duration_seconds_count",
		`domain="field",operation="decrypt_field",status="success"`, "1",
	)
}

func TestNoOpBusinessMetrics(t *testing.T) {
	bm := NewNoOpBusinessMetrics()
	assert.NotPanics(t, func() {
		bm.RecordOperation(context.Background(), "field", "encrypt_field", StatusSuccess)
		bm.RecordDuration(context.Background(), "field", "encrypt_field", time.Second, StatusError)
	})
}
