package datasets

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{
			name:    "ErrTimeout",
			err:     ErrTimeout,
			wantMsg: "datasets: request timed out",
		},
		{
			name:    "ErrNetworkError",
			err:     ErrNetworkError,
			wantMsg: "datasets: network error",
		},
		{
			name:    "ErrMissingFeatures",
			err:     ErrMissingFeatures,
			wantMsg: "datasets: info.json does not have the expected features structure",
		},
		{
			name:    "ErrMissingVersion",
			err:     ErrMissingVersion,
			wantMsg: "datasets: info.json does not contain codebase_version",
		},
		{
			name:    "ErrInvalidRepoID",
			err:     ErrInvalidRepoID,
			wantMsg: "datasets: invalid dataset identifier",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestErrorKindSentinels(t *testing.T) {
	tests := []struct {
		kind Kind
		want error
	}{
		{KindTimeout, ErrTimeout},
		{KindNetwork, ErrNetworkError},
		{KindHTTPStatus, ErrHTTPStatus},
		{KindDecode, ErrInvalidResponse},
		{KindStructural, ErrMissingFeatures},
		{KindMissingVersion, ErrMissingVersion},
		{KindUnsupportedVersion, ErrUnsupportedVersion},
		{KindIncompatible, ErrIncompatible},
	}

	all := []error{
		ErrTimeout, ErrNetworkError, ErrHTTPStatus, ErrInvalidResponse,
		ErrMissingFeatures, ErrMissingVersion, ErrUnsupportedVersion, ErrIncompatible,
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			err := &Error{Kind: tt.kind, RepoID: "org/name"}
			for _, sentinel := range all {
				got := errors.Is(err, sentinel)
				if want := sentinel == tt.want; got != want {
					t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.kind, sentinel, got, want)
				}
			}
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	t.Run("http status", func(t *testing.T) {
		err := &Error{Kind: KindHTTPStatus, URL: "https://h/x/meta/info.json", StatusCode: 503}
		if !strings.Contains(err.Error(), "503") {
			t.Errorf("Error() = %q, want status code", err.Error())
		}
	})

	t.Run("incompatible names dataset", func(t *testing.T) {
		err := &Error{Kind: KindIncompatible, RepoID: "org/name"}
		msg := err.Error()
		if !strings.Contains(msg, "org/name") || !strings.Contains(msg, "main revision") {
			t.Errorf("Error() = %q", msg)
		}
	})

	t.Run("cause appended", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := &Error{Kind: KindNetwork, URL: "https://h", Err: cause}
		if !strings.HasSuffix(err.Error(), ": connection reset") {
			t.Errorf("Error() = %q", err.Error())
		}
		if !errors.Is(err, cause) {
			t.Error("errors.Is should find the cause")
		}
	})

	t.Run("unknown kind string", func(t *testing.T) {
		if got := Kind(99).String(); got != "Kind(99)" {
			t.Errorf("String() = %q", got)
		}
	})
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("loading: %w", &Error{Kind: KindTimeout})
	kind, ok := KindOf(wrapped)
	if !ok || kind != KindTimeout {
		t.Errorf("KindOf() = %v, %v; want %v, true", kind, ok, KindTimeout)
	}

	if _, ok := KindOf(errors.New("plain")); ok {
		t.Error("KindOf(plain) should report false")
	}
}

func TestNormalize(t *testing.T) {
	if normalize("org/name", nil) != nil {
		t.Error("normalize(nil) should be nil")
	}

	tagged := &Error{Kind: KindStructural}
	if got := normalize("org/name", tagged); got != tagged {
		t.Errorf("normalize() replaced a tagged error: %v", got)
	}

	plain := errors.New("creating request: bad url")
	got := normalize("org/name", plain)
	if !errors.Is(got, ErrIncompatible) {
		t.Errorf("normalize() = %v, want ErrIncompatible", got)
	}
	if !errors.Is(got, plain) {
		t.Error("normalize() lost the cause")
	}
	var e *Error
	if !errors.As(got, &e) || e.RepoID != "org/name" {
		t.Errorf("normalize() RepoID = %q", e.RepoID)
	}
}
