package datasets

import "os"

// Environment variables read by ConfigFromEnv.
const (
	// EnvBaseURL overrides DefaultBaseURL.
	EnvBaseURL = "DATASET_URL"

	// EnvLayout selects the layout preference: "hf", "flat", or anything
	// else for auto.
	EnvLayout = "DATASET_URL_LAYOUT"
)

// ConfigFromEnv builds a Config from the process environment.
// The environment is read once; later changes do not affect the result.
func ConfigFromEnv() Config {
	base := os.Getenv(EnvBaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	return Config{
		BaseURL: base,
		Layout:  ParsePreference(os.Getenv(EnvLayout)),
	}
}
