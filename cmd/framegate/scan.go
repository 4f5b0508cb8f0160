package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/satriahrh/framegate/domain"
	"github.com/satriahrh/framegate/domain/entities"
	"github.com/satriahrh/framegate/domain/repositories"
)

// scanOptions holds flags for the scan command
type scanOptions struct {
	Extensions    []string
	ShowUnchanged bool
	NoProgress    bool
}

var scanOpts scanOptions

var scanCmd = &cobra.Command{
	Use:   "scan <dir>",
	Short: "Walk a directory of frames and report the ones that changed",
	Long: `Scan compares frame files in lexical order. Each frame is compared against the
last frame that was reported as changed, so slow drift still registers once it
accumulates. The first frame always counts as changed.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringSliceVar(&scanOpts.Extensions, "ext", []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp", ".tif", ".tiff"}, "frame file extensions to include")
	scanCmd.Flags().BoolVar(&scanOpts.ShowUnchanged, "all", false, "also print unchanged frames")
	scanCmd.Flags().BoolVar(&scanOpts.NoProgress, "no-progress", false, "hide the progress bar")
}

// frameOutcome is what scanFrames reports for every file
type frameOutcome struct {
	Path   string
	Result entities.ComparisonResult
	Err    error
}

type scanSummary struct {
	Total   int
	Changed int
	Failed  int
}

func runScan(cmd *cobra.Command, args []string) error {
	paths, err := listFrames(args[0], scanOpts.Extensions)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no frames with extensions %v in %s", scanOpts.Extensions, args[0])
	}

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetDescription("Scanning frames"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetVisibility(!scanOpts.NoProgress),
	)

	out := cmd.OutOrStdout()
	summary, err := scanFrames(cmd.Context(), detector, paths, readFrameFile, func(o frameOutcome) {
		bar.Add(1)
		switch {
		case o.Err != nil:
			logger.Warn("Skipping frame", zap.String("path", o.Path), zap.Error(o.Err))
		case o.Result.HasChanged:
			fmt.Fprintf(out, "changed    %.4f  %s\n", o.Result.SimilarityScore, o.Path)
		case scanOpts.ShowUnchanged:
			fmt.Fprintf(out, "unchanged  %.4f  %s\n", o.Result.SimilarityScore, o.Path)
		}
	})
	bar.Finish()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%d frames, %d changed, %d skipped\n", summary.Total, summary.Changed, summary.Failed)
	return nil
}

// listFrames returns the files in dir whose extension is in exts, sorted by name
func listFrames(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list frames: %w", err)
	}

	allowed := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = true
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if allowed[strings.ToLower(filepath.Ext(entry.Name()))] {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	return paths, nil
}

// scanFrames compares each frame against the baseline, which only advances
// when a frame is reported changed. Frames that fail to read, decode or
// compare are reported and skipped; any other error stops the scan.
func scanFrames(
	ctx context.Context,
	detector repositories.ChangeDetector,
	paths []string,
	read func(path string) (string, error),
	onFrame func(frameOutcome),
) (scanSummary, error) {
	var summary scanSummary
	var baseline string

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Total++

		encoded, err := read(path)
		if err != nil {
			summary.Failed++
			onFrame(frameOutcome{Path: path, Err: err})
			continue
		}

		result, err := detector.Detect(ctx, encoded, baseline)
		if err != nil {
			if domain.IsInvalidImage(err) || domain.IsComparison(err) {
				summary.Failed++
				onFrame(frameOutcome{Path: path, Err: err})
				continue
			}
			return summary, fmt.Errorf("%s: %w", path, err)
		}

		if result.HasChanged {
			summary.Changed++
			baseline = encoded
		}
		onFrame(frameOutcome{Path: path, Result: result})
	}

	return summary, nil
}
