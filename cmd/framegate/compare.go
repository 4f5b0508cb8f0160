package main

import (
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/satriahrh/framegate/adapters/imaging"
)

var compareCmd = &cobra.Command{
	Use:   "compare <current> [previous]",
	Short: "Compare a frame file against an optional previous frame file",
	Long: `Compare reads one or two image files and prints the comparison result as JSON.
Without a previous frame the first-frame result is printed.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCompare,
}

func runCompare(cmd *cobra.Command, args []string) error {
	current, err := readFrameFile(args[0])
	if err != nil {
		return err
	}

	var previous string
	if len(args) == 2 {
		previous, err = readFrameFile(args[1])
		if err != nil {
			return err
		}
	}

	result, err := detector.Detect(cmd.Context(), current, previous)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// readFrameFile loads an image file as a data-URL, or bare base64 when the
// extension has no known MIME type
func readFrameFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read frame: %w", err)
	}
	if mimeType := mime.TypeByExtension(filepath.Ext(path)); mimeType != "" {
		return imaging.EncodeDataURL(mimeType, data), nil
	}
	return imaging.EncodeBase64(data), nil
}
