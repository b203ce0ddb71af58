// Package datasets resolves dataset metadata and file URLs on a remote
// dataset host such as the Hugging Face Hub or a plain static mirror.
//
// The package serves two primary use cases:
//
//  1. Programmatic API via the Resolver interface - Applications can use
//     NewResolver to fetch a dataset's meta/info.json, validate its
//     codebase_version, and build URLs for files within the dataset.
//
//  2. Embeddable CLI via NewCommand - Parent CLI tools can attach a
//     "datasets" subcommand tree to their Cobra root command.
//
// # Layouts
//
// A host serves a dataset under one of two URL layouts:
//   - hf:   <base>/<repo-id>/resolve/main/<path>
//   - flat: <base>/<repo-id>/<path>
//
// Config.Layout pins one of them, or leaves the choice to the Resolver
// (PreferenceAuto). In auto mode Info tries hf first and falls back to flat
// only when hf answers 404. The layout that served info.json is remembered in
// a LayoutCache and used by VersionedURL for later requests; datasets that
// were never fetched default to hf.
//
// # Errors
//
// Operations that reach the host return *Error values tagged with a Kind.
// Each Kind also matches a sentinel such as ErrTimeout or
// ErrUnsupportedVersion with errors.Is.
//
// # Thread Safety
//
// Resolver methods and LayoutCache are safe for concurrent use.
package datasets
