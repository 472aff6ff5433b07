package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oakwood-commons/prodlookup/pkg/logger"
)

// DefaultTimeout bounds a single fetch.
const DefaultTimeout = 30 * time.Second

// maxBodyBytes caps the response body read from the endpoint.
const maxBodyBytes = 64 << 20

// HTTPSource fetches the record array with a GET request. Responses are
// never served from a cache.
type HTTPSource struct {
	url     string
	client  *http.Client
	timeout time.Duration
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient overrides the client used for requests.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		if c != nil {
			s.client = c
		}
	}
}

// WithTimeout sets the per-request timeout. Zero or negative keeps the default.
func WithTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPSource) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func NewHTTPSource(url string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{url: url, client: http.DefaultClient, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *HTTPSource) String() string { return s.url }

// Load performs the GET and decodes the body as a JSON array of objects.
func (s *HTTPSource) Load(ctx context.Context) ([]Record, error) {
	lgr := logger.FromContext(ctx).WithValues(logger.SourceKey, s.url)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		lgr.V(1).Info("fetch failed", "error", err.Error())
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &StatusError{Code: resp.StatusCode, URL: s.url}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrTransport, err)
	}

	records, err := DecodeJSON(body)
	if err != nil {
		return nil, err
	}
	lgr.V(1).Info("fetched records", "count", len(records), "elapsed", time.Since(start).String())
	return records, nil
}
