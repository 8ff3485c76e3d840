package reporting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/orderflow-backend/pkg/config"
)

func TestCapturePostsReport(t *testing.T) {
	received := make(chan Report, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var report Report
		require.NoError(t, json.NewDecoder(r.Body).Decode(&report))
		received <- report
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	reporter := New(config.ReportingConfig{
		Endpoint: srv.URL,
		Token:    "secret",
		Timeout:  2 * time.Second,
	}, nil)

	reporter.Capture(context.Background(), Report{
		Message:   "panic: boom",
		RequestID: "req-1",
	})

	select {
	case report := <-received:
		assert.Equal(t, "panic: boom", report.Message)
		assert.Equal(t, "req-1", report.RequestID)
		assert.False(t, report.Timestamp.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("report was not delivered")
	}
}

func TestNewWithoutEndpointIsNoop(t *testing.T) {
	reporter := New(config.ReportingConfig{}, nil)
	// must not panic or block
	reporter.Capture(context.Background(), Report{Message: "ignored"})
}

func TestFromPanicIncludesStack(t *testing.T) {
	report := FromPanic("boom", "req-2")
	assert.Equal(t, "panic: boom", report.Message)
	assert.Equal(t, "req-2", report.RequestID)
	assert.NotEmpty(t, report.Stack)
}
