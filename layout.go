package datasets

import (
	"strings"
	"sync"
)

// Layout is the URL path convention a dataset is served under.
type Layout int

const (
	// LayoutHF serves files under <base>/<id>/resolve/main.
	LayoutHF Layout = iota

	// LayoutFlat serves files directly under <base>/<id>.
	LayoutFlat
)

func (l Layout) String() string {
	if l == LayoutFlat {
		return "flat"
	}
	return "hf"
}

// Preference selects how a Resolver picks a Layout.
type Preference int

const (
	// PreferenceAuto tries LayoutHF first and falls back to LayoutFlat on 404.
	PreferenceAuto Preference = iota

	// PreferenceHF always uses LayoutHF.
	PreferenceHF

	// PreferenceFlat always uses LayoutFlat.
	PreferenceFlat
)

func (p Preference) String() string {
	switch p {
	case PreferenceHF:
		return "hf"
	case PreferenceFlat:
		return "flat"
	default:
		return "auto"
	}
}

// ParsePreference maps a case-insensitive "hf" or "flat" to the fixed
// preference. Anything else, including "", is PreferenceAuto.
func ParsePreference(s string) Preference {
	switch strings.ToLower(s) {
	case "hf":
		return PreferenceHF
	case "flat":
		return PreferenceFlat
	default:
		return PreferenceAuto
	}
}

// fixed returns the layout a non-auto preference pins.
func (p Preference) fixed() (Layout, bool) {
	switch p {
	case PreferenceHF:
		return LayoutHF, true
	case PreferenceFlat:
		return LayoutFlat, true
	default:
		return LayoutHF, false
	}
}

// LayoutCache remembers which layout last served each dataset's info.json.
// Entries are only added or overwritten, never evicted. The cache is
// advisory: concurrent writers for the same id race and any of them may win.
// The zero value is not usable; use NewLayoutCache.
type LayoutCache struct {
	mu      sync.RWMutex
	layouts map[string]Layout
}

// NewLayoutCache returns an empty cache.
func NewLayoutCache() *LayoutCache {
	return &LayoutCache{layouts: make(map[string]Layout)}
}

// Get returns the cached layout for repoID.
func (c *LayoutCache) Get(repoID string) (Layout, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.layouts[repoID]
	return l, ok
}

// Set records layout for repoID, replacing any previous entry.
func (c *LayoutCache) Set(repoID string, layout Layout) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.layouts[repoID] = layout
}

// Len returns the number of cached datasets.
func (c *LayoutCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.layouts)
}

// BaseURL returns the root URL of a dataset's files under layout.
func BaseURL(base, repoID string, layout Layout) string {
	if layout == LayoutFlat {
		return base + "/" + repoID
	}
	return base + "/" + repoID + "/resolve/main"
}

// InfoURL returns the URL of a dataset's meta/info.json under layout.
func InfoURL(base, repoID string, layout Layout) string {
	return BaseURL(base, repoID, layout) + "/meta/info.json"
}
