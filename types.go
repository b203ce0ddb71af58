package datasets

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// DefaultBaseURL is the dataset host used when no base URL is configured.
const DefaultBaseURL = "https://huggingface.co/datasets"

// Config configures a Resolver.
type Config struct {
	// BaseURL is the base URL of the dataset host.
	// Example: "https://huggingface.co/datasets"
	BaseURL string

	// Layout is the URL layout preference. The zero value is PreferenceAuto.
	Layout Preference
}

// DatasetInfo is the parsed meta/info.json document of a dataset.
type DatasetInfo struct {
	// CodebaseVersion tags the schema the dataset was written with, e.g. "v2.1".
	CodebaseVersion string `json:"codebase_version" yaml:"codebase_version"`

	// RobotType is nil when the document has null or no robot_type.
	RobotType *string `json:"robot_type" yaml:"robot_type"`

	TotalEpisodes int `json:"total_episodes" yaml:"total_episodes"`
	TotalFrames   int `json:"total_frames" yaml:"total_frames"`
	TotalTasks    int `json:"total_tasks" yaml:"total_tasks"`
	TotalVideos   int `json:"total_videos,omitempty" yaml:"total_videos,omitempty"`
	TotalChunks   int `json:"total_chunks,omitempty" yaml:"total_chunks,omitempty"`

	// ChunksSize is the number of episodes (v2.x) or files (v3.0) per chunk.
	ChunksSize int `json:"chunks_size" yaml:"chunks_size"`

	DataFilesSizeInMB  float64 `json:"data_files_size_in_mb,omitempty" yaml:"data_files_size_in_mb,omitempty"`
	VideoFilesSizeInMB float64 `json:"video_files_size_in_mb,omitempty" yaml:"video_files_size_in_mb,omitempty"`

	FPS float64 `json:"fps" yaml:"fps"`

	// Splits maps split names to "start:end" episode ranges.
	Splits map[string]string `json:"splits" yaml:"splits"`

	// DataPath is the template for data file paths.
	DataPath string `json:"data_path" yaml:"data_path"`

	// VideoPath is the template for video file paths. Empty for datasets without video.
	VideoPath string `json:"video_path" yaml:"video_path"`

	// Features describes every recorded feature. Nil when the document's
	// features field is missing or is not an object.
	Features map[string]Feature `json:"features" yaml:"features"`
}

// Feature describes one recorded feature of a dataset.
type Feature struct {
	Dtype string `json:"dtype" yaml:"dtype"`
	Shape []int  `json:"shape" yaml:"shape"`

	// Names is a list, a mapping, or nil depending on the feature.
	Names any `json:"names,omitempty" yaml:"names,omitempty"`

	Info map[string]any `json:"info,omitempty" yaml:"info,omitempty"`
}

// VideoKeys returns the sorted names of all features stored as video.
func (i DatasetInfo) VideoKeys() []string {
	var keys []string
	for name, f := range i.Features {
		if f.Dtype == "video" {
			keys = append(keys, name)
		}
	}
	sort.Strings(keys)
	return keys
}

// EpisodeChunk returns the chunk an episode belongs to in a v2.x dataset.
// Returns 0 when ChunksSize is not set.
func (i DatasetInfo) EpisodeChunk(episodeIndex int) int {
	if i.ChunksSize <= 0 {
		return 0
	}
	return episodeIndex / i.ChunksSize
}

// Split returns the episode range of the named split.
func (i DatasetInfo) Split(name string) (start, end int, err error) {
	s, ok := i.Splits[name]
	if !ok {
		return 0, 0, fmt.Errorf("split %q not found", name)
	}
	return ParseSplit(s)
}

// ParseSplit parses a "start:end" split range.
func ParseSplit(s string) (start, end int, err error) {
	lo, hi, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid split range %q", s)
	}
	start, err = strconv.Atoi(lo)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid split start %q: %w", lo, err)
	}
	end, err = strconv.Atoi(hi)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid split end %q: %w", hi, err)
	}
	if end < start {
		return 0, 0, fmt.Errorf("invalid split range %q: end before start", s)
	}
	return start, end, nil
}

// ValidateRepoID checks that id can be used as a URL path segment on the
// dataset host, e.g. "lerobot/aloha_static_coffee".
// Returns ErrInvalidRepoID if the format is invalid.
func ValidateRepoID(id string) error {
	if id == "" {
		return ErrInvalidRepoID
	}
	if strings.HasPrefix(id, "/") || strings.HasSuffix(id, "/") {
		return fmt.Errorf("%w: %q has a leading or trailing slash", ErrInvalidRepoID, id)
	}
	if strings.IndexFunc(id, unicode.IsSpace) != -1 {
		return fmt.Errorf("%w: %q contains whitespace", ErrInvalidRepoID, id)
	}
	for _, seg := range strings.Split(id, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return fmt.Errorf("%w: %q has an empty or relative segment", ErrInvalidRepoID, id)
		}
	}
	return nil
}
