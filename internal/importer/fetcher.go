package importer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/avolkov/orderflow-backend/pkg/config"
	pkgerrors "github.com/avolkov/orderflow-backend/pkg/errors"
)

// Fetcher pulls price-list documents from partner URLs with a bounded
// timeout and body size.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

func NewFetcher(cfg config.ImporterConfig) *Fetcher {
	return &Fetcher{
		client:   &http.Client{Timeout: cfg.FetchTimeout},
		maxBytes: cfg.MaxBodyBytes,
	}
}

// Fetch validates the URL and returns the document body.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	parsed, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid url")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "url scheme must be http or https")
	}
	if parsed.Host == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "url host is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build fetch request")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch price list")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("price list source responded with status %d", resp.StatusCode))
	}

	limited := io.LimitReader(resp.Body, f.maxBytes+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read price list body")
	}
	if int64(len(body)) > f.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("price list exceeds %d bytes", f.maxBytes))
	}
	return body, nil
}
