package datasets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Resolver resolves dataset metadata and file URLs on a dataset host.
// All methods are safe for concurrent use.
// For CLI integration, use NewCommand instead.
type Resolver interface {
	// Info fetches and parses the dataset's meta/info.json.
	// On success the layout that served it is recorded in the layout cache.
	Info(ctx context.Context, repoID string) (DatasetInfo, error)

	// Version returns the dataset's codebase_version after checking it
	// against SupportedVersions.
	Version(ctx context.Context, repoID string) (string, error)

	// VersionedURL returns the URL of path within the dataset, using the
	// cached layout for repoID. It performs no I/O and never fails.
	VersionedURL(repoID, version, path string) string

	// Download writes the dataset file at path to dest.
	// The optional progress callback receives byte deltas as they are read.
	Download(ctx context.Context, repoID, path, dest string, progress func(delta int64)) (int64, error)

	// Layout returns the layout VersionedURL would use for repoID.
	Layout(repoID string) Layout
}

// Ensure resolver implements Resolver interface.
var _ Resolver = (*resolver)(nil)

// NewResolver creates a new Resolver with the given configuration.
// An empty BaseURL selects DefaultBaseURL.
func NewResolver(cfg Config, opts ...ResolverOption) (Resolver, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		return nil, errors.New("datasets: BaseURL must be an http or https URL")
	}

	rcfg := newResolverConfig()
	for _, opt := range opts {
		opt(rcfg)
	}
	if rcfg.cache == nil {
		rcfg.cache = NewLayoutCache()
	}

	m, err := newMetrics(rcfg.registerer)
	if err != nil {
		return nil, fmt.Errorf("datasets: %w", err)
	}
	host := newHostClient(cfg.BaseURL, rcfg.httpClient, rcfg.logger, rcfg.timeout, m)

	return &resolver{
		preference: cfg.Layout,
		host:       host,
		cache:      rcfg.cache,
		logger:     rcfg.logger,
	}, nil
}

// resolver is the concrete implementation of the Resolver interface.
type resolver struct {
	// preference is fixed at construction.
	preference Preference

	// host handles dataset host communication.
	host *hostClient

	// cache records which layout served each dataset.
	cache *LayoutCache

	// logger receives diagnostic messages. May be nil.
	logger Logger
}

// Layout returns the pinned layout, or the cached one under PreferenceAuto,
// defaulting to LayoutHF for datasets that were never fetched.
func (r *resolver) Layout(repoID string) Layout {
	if l, ok := r.preference.fixed(); ok {
		return l
	}
	if l, ok := r.cache.Get(repoID); ok {
		return l
	}
	return LayoutHF
}

// VersionedURL returns <base>/<path> for the resolved layout. version is
// accepted for call-site symmetry and does not affect the URL.
func (r *resolver) VersionedURL(repoID, version, path string) string {
	return BaseURL(r.host.baseURL, repoID, r.Layout(repoID)) + "/" + path
}

// Info fetches meta/info.json. Under PreferenceAuto the hf layout is tried
// first and the flat layout only when hf answers exactly 404.
func (r *resolver) Info(ctx context.Context, repoID string) (DatasetInfo, error) {
	ctx, span := tracer.Start(ctx, "datasets.Info", trace.WithAttributes(
		attribute.String("dataset.repo_id", repoID),
		attribute.String("dataset.preference", r.preference.String()),
	))
	defer span.End()

	info, err := r.info(ctx, repoID)
	if err != nil {
		err = normalize(repoID, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "info failed")
		return DatasetInfo{}, err
	}
	return info, nil
}

func (r *resolver) info(ctx context.Context, repoID string) (DatasetInfo, error) {
	if err := ValidateRepoID(repoID); err != nil {
		return DatasetInfo{}, err
	}

	layout, fixed := r.preference.fixed()
	url := InfoURL(r.host.baseURL, repoID, layout)
	resp, err := r.host.fetch(ctx, repoID, url, layout)
	if err != nil {
		return DatasetInfo{}, err
	}

	if !fixed && resp.status == http.StatusNotFound {
		if r.logger != nil {
			r.logger.Debug("hf layout not found, trying flat layout", "repo_id", repoID)
		}
		layout = LayoutFlat
		url = InfoURL(r.host.baseURL, repoID, layout)
		resp, err = r.host.fetch(ctx, repoID, url, layout)
		if err != nil {
			return DatasetInfo{}, err
		}
	}

	if !resp.ok() {
		return DatasetInfo{}, &Error{Kind: KindHTTPStatus, RepoID: repoID, URL: url, StatusCode: resp.status}
	}

	// Only the presence of features is checked; other fields decode leniently.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(resp.body, &fields); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return DatasetInfo{}, &Error{Kind: KindDecode, RepoID: repoID, URL: url, Err: err}
		}
		return DatasetInfo{}, &Error{Kind: KindStructural, RepoID: repoID, URL: url, Err: err}
	}
	if !featuresPresent(fields["features"]) {
		return DatasetInfo{}, &Error{Kind: KindStructural, RepoID: repoID, URL: url}
	}
	info := infoFromFields(fields)

	r.cache.Set(repoID, layout)

	if r.logger != nil {
		r.logger.Info("resolved dataset info",
			"repo_id", repoID,
			"layout", layout.String(),
			"codebase_version", info.CodebaseVersion)
	}

	return info, nil
}

// Version fetches info.json and validates its codebase_version.
func (r *resolver) Version(ctx context.Context, repoID string) (string, error) {
	ctx, span := tracer.Start(ctx, "datasets.Version", trace.WithAttributes(
		attribute.String("dataset.repo_id", repoID),
	))
	defer span.End()

	v, err := r.version(ctx, repoID)
	if err != nil {
		err = normalize(repoID, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "version failed")
		return "", err
	}
	span.SetAttributes(attribute.String("dataset.codebase_version", v))
	return v, nil
}

func (r *resolver) version(ctx context.Context, repoID string) (string, error) {
	info, err := r.Info(ctx, repoID)
	if err != nil {
		return "", err
	}
	if err := CheckVersion(repoID, info.CodebaseVersion); err != nil {
		return "", err
	}
	return info.CodebaseVersion, nil
}
