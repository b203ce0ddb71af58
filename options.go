package datasets

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultRequestTimeout bounds each info.json request.
const DefaultRequestTimeout = 10 * time.Second

// ResolverOption configures a Resolver.
type ResolverOption func(*resolverConfig)

// resolverConfig holds configuration for Resolver construction.
type resolverConfig struct {
	// httpClient is used for all HTTP requests to the dataset host.
	httpClient HTTPClient

	// logger receives diagnostic log messages.
	logger Logger

	// timeout bounds each info.json request.
	timeout time.Duration

	// cache records the layout that served each dataset.
	cache *LayoutCache

	// registerer receives the resolver's metrics. May be nil.
	registerer prometheus.Registerer
}

// newResolverConfig returns a resolverConfig with default values.
func newResolverConfig() *resolverConfig {
	return &resolverConfig{
		httpClient: http.DefaultClient,
		timeout:    DefaultRequestTimeout,
	}
}

// WithHTTPClient sets a custom HTTP client for dataset host requests.
// Useful for testing with mock servers.
// If not set, http.DefaultClient is used.
func WithHTTPClient(client HTTPClient) ResolverOption {
	return func(c *resolverConfig) {
		c.httpClient = client
	}
}

// WithLogger sets a logger for diagnostic output.
// If not set, logging is disabled.
func WithLogger(logger Logger) ResolverOption {
	return func(c *resolverConfig) {
		c.logger = logger
	}
}

// WithTimeout overrides DefaultRequestTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) ResolverOption {
	return func(c *resolverConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLayoutCache shares cache between resolvers.
// If not set, each Resolver owns a fresh cache.
func WithLayoutCache(cache *LayoutCache) ResolverOption {
	return func(c *resolverConfig) {
		c.cache = cache
	}
}

// WithMetrics registers request metrics with reg.
// If not set, no metrics are recorded.
func WithMetrics(reg prometheus.Registerer) ResolverOption {
	return func(c *resolverConfig) {
		c.registerer = reg
	}
}

// HTTPClient is the interface for HTTP operations.
// *http.Client satisfies this interface.
type HTTPClient interface {
	// Do sends an HTTP request and returns an HTTP response.
	Do(req *http.Request) (*http.Response, error)
}

// Logger is the interface for diagnostic logging.
// *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}
