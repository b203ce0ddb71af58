package datasets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// hostClient handles HTTP communication with the dataset host.
type hostClient struct {
	// baseURL is the base URL of the host (e.g., "https://huggingface.co/datasets").
	baseURL string

	// httpClient is used for HTTP requests.
	httpClient HTTPClient

	// logger receives diagnostic messages. May be nil.
	logger Logger

	// timeout bounds each call to fetch.
	timeout time.Duration

	// metrics records request outcomes. May be nil.
	metrics *metrics
}

// newHostClient creates a new host client.
// The baseURL is normalized by removing any trailing slashes.
func newHostClient(baseURL string, client HTTPClient, logger Logger, timeout time.Duration, m *metrics) *hostClient {
	return &hostClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		logger:     logger,
		timeout:    timeout,
		metrics:    m,
	}
}

// response is a fully read HTTP response.
type response struct {
	status int
	body   []byte
}

func (r response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// fetch issues a bounded GET for url. The whole exchange, body included,
// must finish within h.timeout. Transport failures are returned as *Error;
// HTTP status codes are not errors here.
func (h *hostClient) fetch(ctx context.Context, repoID, url string, layout Layout) (response, error) {
	ctx, span := tracer.Start(ctx, "datasets.fetch", trace.WithAttributes(
		attribute.String("dataset.repo_id", repoID),
		attribute.String("dataset.layout", layout.String()),
		attribute.String("http.url", url),
	))
	defer span.End()

	start := time.Now()
	attemptCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return response{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Pragma", "no-cache")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return response{}, h.transportError(span, repoID, url, layout, start, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	var body []byte
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return response{}, h.transportError(span, repoID, url, layout, start, err)
		}
	}

	outcome := outcomeOK
	switch {
	case resp.StatusCode == http.StatusNotFound:
		outcome = outcomeNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		outcome = outcomeStatus
	}
	h.metrics.observe(layout, outcome, time.Since(start))

	if h.logger != nil {
		h.logger.Debug("dataset host response", "url", url, "status", resp.StatusCode, "bytes", len(body))
	}

	return response{status: resp.StatusCode, body: body}, nil
}

// transportError classifies a failed exchange as a timeout or a network error.
func (h *hostClient) transportError(span trace.Span, repoID, url string, layout Layout, start time.Time, err error) error {
	kind, outcome := KindNetwork, outcomeNetwork
	if isTimeout(err) {
		kind, outcome = KindTimeout, outcomeTimeout
	}
	h.metrics.observe(layout, outcome, time.Since(start))

	span.RecordError(err)
	span.SetStatus(codes.Error, kind.String())

	if h.logger != nil {
		h.logger.Warn("dataset host request failed", "url", url, "kind", kind.String(), "error", err)
	}

	return &Error{Kind: kind, RepoID: repoID, URL: url, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// open issues an unbounded GET for a dataset file. The caller must close the
// returned body. Only ctx limits the transfer.
func (h *hostClient) open(ctx context.Context, repoID, url string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		kind := KindNetwork
		if isTimeout(err) {
			kind = KindTimeout
		}
		return nil, 0, &Error{Kind: kind, RepoID: repoID, URL: url, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, 0, &Error{Kind: KindHTTPStatus, RepoID: repoID, URL: url, StatusCode: resp.StatusCode}
	}

	return resp.Body, resp.ContentLength, nil
}
