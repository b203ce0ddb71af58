package datasets

import (
	"fmt"
	"slices"

	goversion "github.com/hashicorp/go-version"
)

// SupportedVersions lists the codebase_version values this package accepts.
// Membership is an exact string match.
var SupportedVersions = []string{"v3.0", "v2.1", "v2.0"}

// IsSupportedVersion reports whether v is one of SupportedVersions.
func IsSupportedVersion(v string) bool {
	return slices.Contains(SupportedVersions, v)
}

// CheckVersion validates a codebase_version read from repoID's info.json.
// Returns a KindMissingVersion error for "", a KindUnsupportedVersion error
// for values outside SupportedVersions, and nil otherwise.
func CheckVersion(repoID, v string) error {
	if v == "" {
		return &Error{Kind: KindMissingVersion, RepoID: repoID}
	}
	if !IsSupportedVersion(v) {
		return &Error{Kind: KindUnsupportedVersion, RepoID: repoID, Version: v}
	}
	return nil
}

// SchemaMajor returns the major component of a codebase_version tag such as
// "v2.1". It does not check SupportedVersions.
func SchemaMajor(v string) (int, error) {
	parsed, err := goversion.NewVersion(v)
	if err != nil {
		return 0, fmt.Errorf("parsing codebase version %q: %w", v, err)
	}
	return parsed.Segments()[0], nil
}

// SchemaMajor returns the major component of i.CodebaseVersion.
func (i DatasetInfo) SchemaMajor() (int, error) {
	return SchemaMajor(i.CodebaseVersion)
}
