package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/students", 200)
	m.Submission(nil)
	m.Export(errors.New("boom"), 2*time.Second)
	m.Purge(nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, `hosteldesk_http_requests_total{method="GET",route="/students",status="200"} 1`)
	assert.Contains(t, text, `hosteldesk_student_submissions_total{result="ok"} 1`)
	assert.Contains(t, text, `hosteldesk_pdf_exports_total{result="error"} 1`)
	assert.Contains(t, text, `hosteldesk_blob_purges_total{result="ok"} 1`)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("GET", "/", 200)
		m.Submission(nil)
		m.Export(nil, time.Second)
		m.Purge(nil)
	})
}
