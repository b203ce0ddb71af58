package datasets

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// outputFormat selects how structured results are printed.
type outputFormat struct {
	json bool
	yaml bool
}

// NewCommand creates a Cobra command tree for dataset resolution.
// The returned command should be added to a parent CLI's root command.
//
// Commands provided:
//   - datasets info <repo-id>
//   - datasets version <repo-id>
//   - datasets url <repo-id> [path] [--resolve] [--data | --video KEY] [--var k=v]
//   - datasets get <repo-id> <path> [-o FILE]
//
// Global flags: --json, --yaml, --quiet, --verbose
func NewCommand(cfg Config, opts ...ResolverOption) *cobra.Command {
	var (
		format  outputFormat
		quiet   bool
		verbose bool
	)

	// Resolver will be created in PersistentPreRunE
	var res Resolver

	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "Inspect remote datasets",
		Long:  "Resolve dataset metadata, schema versions, and file URLs on a dataset host.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip resolver creation for help commands
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			if format.json && format.yaml {
				return fmt.Errorf("--json and --yaml are mutually exclusive")
			}

			ropts := opts
			if verbose {
				logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
				ropts = append(ropts[:len(ropts):len(ropts)], WithLogger(logger))
			}

			var err error
			res, err = NewResolver(cfg, ropts...)
			if err != nil {
				return fmt.Errorf("failed to initialize resolver: %w", err)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVar(&format.json, "json", false, "Output in JSON format")
	cmd.PersistentFlags().BoolVar(&format.yaml, "yaml", false, "Output in YAML format")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	cmd.AddCommand(infoCmd(&res, &format))
	cmd.AddCommand(versionCmd(&res, &format))
	cmd.AddCommand(urlCmd(&res))
	cmd.AddCommand(getCmd(&res, &quiet))

	return cmd
}

func infoCmd(res *Resolver, format *outputFormat) *cobra.Command {
	return &cobra.Command{
		Use:   "info <repo-id>",
		Short: "Show dataset information",
		Long:  "Fetch and show the dataset's meta/info.json.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := (*res).Info(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return outputInfo(cmd.OutOrStdout(), args[0], (*res).Layout(args[0]), info, *format)
		},
	}
}

func versionCmd(res *Resolver, format *outputFormat) *cobra.Command {
	return &cobra.Command{
		Use:   "version <repo-id>",
		Short: "Print the dataset's codebase version",
		Long:  "Print the dataset's codebase_version if it is one this tool supports.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := (*res).Version(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			result := struct {
				RepoID  string `json:"repo_id" yaml:"repo_id"`
				Version string `json:"codebase_version" yaml:"codebase_version"`
			}{args[0], v}
			if ok, err := encodeStructured(cmd.OutOrStdout(), result, *format); ok {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

func urlCmd(res *Resolver) *cobra.Command {
	var (
		resolve  bool
		data     bool
		videoKey string
		vars     map[string]int
	)

	cmd := &cobra.Command{
		Use:   "url <repo-id> [path]",
		Short: "Print the URL of a dataset file",
		Long: "Print the URL of a file within a dataset. With --data or --video the path " +
			"is built from the dataset's path templates and --var values.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repoID := args[0]

			templated := data || videoKey != ""
			if templated && len(args) == 2 {
				return fmt.Errorf("path argument cannot be combined with --data or --video")
			}
			if !templated && len(args) == 1 {
				return fmt.Errorf("path argument required without --data or --video")
			}
			if data && videoKey != "" {
				return fmt.Errorf("--data and --video are mutually exclusive")
			}

			if !templated {
				if resolve {
					if _, err := (*res).Info(ctx, repoID); err != nil {
						return err
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), (*res).VersionedURL(repoID, "", args[1]))
				return nil
			}

			info, err := (*res).Info(ctx, repoID)
			if err != nil {
				return err
			}

			values := make(map[string]any, len(vars)+1)
			for k, v := range vars {
				values[k] = v
			}
			if ep, ok := vars["episode_index"]; ok {
				if _, set := vars["episode_chunk"]; !set {
					values["episode_chunk"] = info.EpisodeChunk(ep)
				}
			}

			var path string
			if data {
				path, err = info.DataFile(values)
			} else {
				path, err = info.VideoFile(videoKey, values)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), (*res).VersionedURL(repoID, info.CodebaseVersion, path))
			return nil
		},
	}

	cmd.Flags().BoolVar(&resolve, "resolve", false, "Fetch info.json first so the dataset's actual layout is used")
	cmd.Flags().BoolVar(&data, "data", false, "Build the path from the data_path template")
	cmd.Flags().StringVar(&videoKey, "video", "", "Build the path from the video_path template for this video key")
	cmd.Flags().StringToIntVar(&vars, "var", nil, "Template values, e.g. --var episode_index=3")
	return cmd
}

func getCmd(res *Resolver, quiet *bool) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get <repo-id> <path>",
		Short: "Download a dataset file",
		Long:  "Download a file from a dataset to the local filesystem.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repoID, path := args[0], args[1]

			dest := output
			if dest == "" {
				dest = filepath.Base(path)
			}

			// Resolve the layout before building the file URL.
			if _, err := (*res).Info(ctx, repoID); err != nil {
				return err
			}

			var progress func(int64)
			var progressMu sync.Mutex
			var received int64
			start := time.Now()
			if !*quiet {
				progress = func(delta int64) {
					progressMu.Lock()
					defer progressMu.Unlock()
					received += delta
					renderProgress(cmd.ErrOrStderr(), received, start)
				}
			}

			n, err := (*res).Download(ctx, repoID, path, dest, progress)
			if !*quiet && received > 0 {
				fmt.Fprintln(cmd.ErrOrStderr())
			}
			if err != nil {
				return err
			}

			if !*quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", dest, formatSize(n))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file (default: base name of path)")
	return cmd
}

// Output helpers

// encodeStructured writes v as JSON or YAML when one is selected.
// The boolean result reports whether anything was written.
func encodeStructured(w io.Writer, v any, format outputFormat) (bool, error) {
	switch {
	case format.json:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case format.yaml:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	default:
		return false, nil
	}
}

func outputInfo(w io.Writer, repoID string, layout Layout, info DatasetInfo, format outputFormat) error {
	if ok, err := encodeStructured(w, info, format); ok {
		return err
	}

	robot := "-"
	if info.RobotType != nil {
		robot = *info.RobotType
	}

	fmt.Fprintf(w, "Dataset:      %s\n", repoID)
	fmt.Fprintf(w, "Layout:       %s\n", layout)
	fmt.Fprintf(w, "Version:      %s\n", info.CodebaseVersion)
	fmt.Fprintf(w, "Robot:        %s\n", robot)
	fmt.Fprintf(w, "Episodes:     %d\n", info.TotalEpisodes)
	fmt.Fprintf(w, "Frames:       %d\n", info.TotalFrames)
	fmt.Fprintf(w, "Tasks:        %d\n", info.TotalTasks)
	fmt.Fprintf(w, "FPS:          %g\n", info.FPS)
	if info.ChunksSize > 0 {
		fmt.Fprintf(w, "Chunk size:   %d\n", info.ChunksSize)
	}
	if info.DataFilesSizeInMB > 0 || info.VideoFilesSizeInMB > 0 {
		fmt.Fprintf(w, "Files:        data %.0f MB, video %.0f MB\n", info.DataFilesSizeInMB, info.VideoFilesSizeInMB)
	}

	if len(info.Splits) > 0 {
		names := make([]string, 0, len(info.Splits))
		for name := range info.Splits {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, name+"="+info.Splits[name])
		}
		fmt.Fprintf(w, "Splits:       %s\n", strings.Join(parts, ", "))
	}

	if len(info.Features) == 0 {
		return nil
	}

	names := make([]string, 0, len(info.Features))
	for name := range info.Features {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "\nFeatures:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  NAME\tDTYPE\tSHAPE")
	for _, name := range names {
		f := info.Features[name]
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", name, f.Dtype, formatShape(f.Shape))
	}
	return tw.Flush()
}

func formatShape(shape []int) string {
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = fmt.Sprint(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// renderProgress renders a single download status line.
// Format: Downloading 12.50 MB (5.2 MB/s, elapsed: 3s)
func renderProgress(w io.Writer, received int64, startTime time.Time) {
	elapsed := time.Since(startTime)

	var speed float64
	if elapsed.Seconds() > 0 {
		speed = float64(received) / elapsed.Seconds()
	}

	// \r to overwrite, \x1b[K to clear to end of line
	fmt.Fprintf(w, "\r\x1b[KDownloading %s (%s, elapsed: %s)",
		formatSize(received), formatSpeed(speed), formatDuration(elapsed))
}

// formatSpeed formats bytes per second as KB/s or MB/s.
func formatSpeed(bytesPerSec float64) string {
	const (
		KB = 1024
		MB = KB * 1024
	)

	if bytesPerSec >= MB {
		return fmt.Sprintf("%.1f MB/s", bytesPerSec/MB)
	}
	if bytesPerSec >= KB {
		return fmt.Sprintf("%.1f KB/s", bytesPerSec/KB)
	}
	return fmt.Sprintf("%.0f B/s", bytesPerSec)
}

// formatDuration formats a duration as human-readable text (e.g., "5s", "2m 30s", "1h 5m").
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "0s"
	}
	d = d.Round(time.Second)

	hours := int(d.Hours())
	mins := int(d.Minutes()) % 60
	secs := int(d.Seconds()) % 60

	if hours > 0 {
		if mins > 0 {
			return fmt.Sprintf("%dh %dm", hours, mins)
		}
		return fmt.Sprintf("%dh", hours)
	}
	if mins > 0 {
		if secs > 0 {
			return fmt.Sprintf("%dm %ds", mins, secs)
		}
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%ds", secs)
}
