package reporting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/avolkov/orderflow-backend/pkg/config"
	"github.com/avolkov/orderflow-backend/pkg/logger"
)

// Reporter ships unhandled errors to an external error tracker.
type Reporter interface {
	Capture(ctx context.Context, report Report)
}

// Report is the payload posted to the tracker.
type Report struct {
	Message   string            `json:"message"`
	Stack     string            `json:"stack,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Context   map[string]string `json:"context,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

type httpReporter struct {
	endpoint string
	token    string
	client   *http.Client
	logg     *logger.Logger
}

// noopReporter swallows reports when no endpoint is configured.
type noopReporter struct{}

func (noopReporter) Capture(context.Context, Report) {}

// New builds a Reporter from config. Without an endpoint it returns a no-op
// so callers never need a nil check.
func New(cfg config.ReportingConfig, logg *logger.Logger) Reporter {
	if cfg.Endpoint == "" {
		return noopReporter{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &httpReporter{
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
		client:   &http.Client{Timeout: timeout},
		logg:     logg,
	}
}

// Capture posts the report best-effort. Delivery failures are logged and
// never propagated to the request path.
func (r *httpReporter) Capture(ctx context.Context, report Report) {
	if report.Timestamp.IsZero() {
		report.Timestamp = time.Now().UTC()
	}

	body, err := json.Marshal(report)
	if err != nil {
		if r.logg != nil {
			r.logg.Error(ctx, "marshal error report", err)
		}
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		if r.logg != nil {
			r.logg.Error(ctx, "build error report request", err)
		}
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		if r.logg != nil {
			r.logg.Error(ctx, "deliver error report", err)
		}
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		if r.logg != nil {
			r.logg.Error(ctx, "error tracker rejected report", fmt.Errorf("status %d", resp.StatusCode))
		}
	}
}

// FromPanic builds a report for a recovered panic value.
func FromPanic(recovered any, requestID string) Report {
	return Report{
		Message:   fmt.Sprintf("panic: %v", recovered),
		Stack:     string(debug.Stack()),
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
	}
}
