package datasets

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for dataset resolution.
// Use errors.Is() to check for specific error conditions; every *Error
// matches the sentinel of its Kind.
var (
	// ErrTimeout indicates a request to the dataset host did not complete in time.
	ErrTimeout = errors.New("datasets: request timed out")

	// ErrNetworkError indicates a network or connection failure.
	ErrNetworkError = errors.New("datasets: network error")

	// ErrHTTPStatus indicates the dataset host answered with a non-success status.
	ErrHTTPStatus = errors.New("datasets: unexpected response status")

	// ErrInvalidResponse indicates the response body could not be decoded.
	ErrInvalidResponse = errors.New("datasets: invalid response body")

	// ErrMissingFeatures indicates info.json lacks the features mapping.
	ErrMissingFeatures = errors.New("datasets: info.json does not have the expected features structure")

	// ErrMissingVersion indicates info.json lacks codebase_version.
	ErrMissingVersion = errors.New("datasets: info.json does not contain codebase_version")

	// ErrUnsupportedVersion indicates the dataset's codebase_version is not supported.
	ErrUnsupportedVersion = errors.New("datasets: unsupported codebase version")

	// ErrIncompatible is the catch-all for failures that carry no more specific kind.
	ErrIncompatible = errors.New("datasets: dataset is not compatible")

	// ErrInvalidRepoID indicates a malformed dataset identifier.
	ErrInvalidRepoID = errors.New("datasets: invalid dataset identifier")

	// ErrStorageError indicates a filesystem operation failed.
	ErrStorageError = errors.New("datasets: storage error")

	// ErrTemplate indicates a path template could not be expanded.
	ErrTemplate = errors.New("datasets: invalid path template")
)

// Kind classifies a resolution failure.
type Kind int

const (
	KindIncompatible Kind = iota
	KindTimeout
	KindNetwork
	KindHTTPStatus
	KindDecode
	KindStructural
	KindMissingVersion
	KindUnsupportedVersion
)

var kindNames = map[Kind]string{
	KindIncompatible:       "incompatible",
	KindTimeout:            "timeout",
	KindNetwork:            "network",
	KindHTTPStatus:         "http_status",
	KindDecode:             "decode",
	KindStructural:         "structural",
	KindMissingVersion:     "missing_version",
	KindUnsupportedVersion: "unsupported_version",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) sentinel() error {
	switch k {
	case KindTimeout:
		return ErrTimeout
	case KindNetwork:
		return ErrNetworkError
	case KindHTTPStatus:
		return ErrHTTPStatus
	case KindDecode:
		return ErrInvalidResponse
	case KindStructural:
		return ErrMissingFeatures
	case KindMissingVersion:
		return ErrMissingVersion
	case KindUnsupportedVersion:
		return ErrUnsupportedVersion
	default:
		return ErrIncompatible
	}
}

// Error is returned by all Resolver operations that touch the network.
type Error struct {
	// Kind classifies the failure.
	Kind Kind

	// RepoID is the dataset the operation was for.
	RepoID string

	// URL is the last URL requested, if any.
	URL string

	// StatusCode is set for KindHTTPStatus.
	StatusCode int

	// Version is the offending codebase_version for KindUnsupportedVersion.
	Version string

	// Err is the underlying cause. May be nil.
	Err error
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindTimeout:
		msg = fmt.Sprintf("datasets: request for %s timed out", e.URL)
	case KindNetwork:
		msg = fmt.Sprintf("datasets: fetching %s failed", e.URL)
	case KindHTTPStatus:
		msg = fmt.Sprintf("datasets: fetching %s: status %d", e.URL, e.StatusCode)
	case KindDecode:
		msg = fmt.Sprintf("datasets: parsing %s", e.URL)
	case KindStructural:
		msg = ErrMissingFeatures.Error()
	case KindMissingVersion:
		msg = ErrMissingVersion.Error()
	case KindUnsupportedVersion:
		msg = fmt.Sprintf("datasets: dataset %s has codebase version %s, which is not supported; "+
			"supported versions are %s", e.RepoID, e.Version, strings.Join(SupportedVersions, ", "))
	default:
		msg = fmt.Sprintf("datasets: dataset %s is not compatible with this tool; "+
			"failed to read dataset information from the main revision", e.RepoID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// KindOf returns the Kind of the first *Error in err's chain.
// The second result is false when err carries no *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// normalize passes *Error values through and wraps anything else as
// KindIncompatible for repoID.
func normalize(repoID string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindIncompatible, RepoID: repoID, Err: err}
}
