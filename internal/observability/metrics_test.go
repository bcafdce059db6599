package observability

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics("contacts")

	m.RecordRequest("/api/contacts", "GET", 200, 12*time.Millisecond)
	m.RecordRequest("/api/contacts", "GET", 200, 8*time.Millisecond)
	m.RecordError("/api/contacts/:id", "PUT", "FORBIDDEN")
	m.RecordTokenVerification("expired")
	m.RecordTokenVerification("valid")
	m.RecordTokenVerification("valid")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/contacts", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("/api/contacts/:id", "PUT", "FORBIDDEN")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.tokenVerifications.WithLabelValues("valid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tokenVerifications.WithLabelValues("expired")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "INTERNAL_ERROR")
		m.RecordTokenVerification("valid")
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics("contacts")
	m.RecordTokenVerification("signature_invalid")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(string(body), `contacts_token_verifications_total{result="signature_invalid"} 1`))
}
