// Command xprim-datasets is a CLI harness for the datasets package.
//
// Configuration is loaded from environment variables:
//   - DATASET_URL: Base URL of the dataset host (default https://huggingface.co/datasets)
//   - DATASET_URL_LAYOUT: "hf", "flat", or anything else for automatic detection
package main

import (
	"errors"
	"os"

	datasets "github.com/prethora/xprim-datasets"
)

// CLI exit codes for standardized error reporting.
const (
	// ExitSuccess indicates the operation completed successfully.
	ExitSuccess = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError = 1

	// ExitInvalidArgs indicates invalid command line arguments.
	ExitInvalidArgs = 2

	// ExitNotFound indicates the dataset host answered with an error status.
	ExitNotFound = 3

	// ExitNetworkError indicates a network failure or timeout.
	ExitNetworkError = 5

	// ExitIncompatible indicates the dataset is malformed or has an unsupported version.
	ExitIncompatible = 6

	// ExitStorageError indicates a filesystem operation failed.
	ExitStorageError = 7
)

func main() {
	cmd := datasets.NewCommand(datasets.ConfigFromEnv())
	if err := cmd.Execute(); err != nil {
		os.Exit(exitCodeFromError(err))
	}
}

// exitCodeFromError maps error types to exit codes.
func exitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, datasets.ErrInvalidRepoID), errors.Is(err, datasets.ErrTemplate):
		return ExitInvalidArgs
	case errors.Is(err, datasets.ErrStorageError):
		return ExitStorageError
	case errors.Is(err, datasets.ErrHTTPStatus):
		return ExitNotFound
	case errors.Is(err, datasets.ErrTimeout), errors.Is(err, datasets.ErrNetworkError):
		return ExitNetworkError
	case errors.Is(err, datasets.ErrMissingFeatures),
		errors.Is(err, datasets.ErrInvalidResponse),
		errors.Is(err, datasets.ErrMissingVersion),
		errors.Is(err, datasets.ErrUnsupportedVersion):
		return ExitIncompatible
	default:
		return ExitGeneralError
	}
}
