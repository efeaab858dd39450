package cmd

import (
	"fmt"
	"os"

	"github.com/Mayur-HT/Snapshot/internal/cli/api"
	"github.com/Mayur-HT/Snapshot/internal/cli/output"
	"github.com/spf13/cobra"
)

const maxPhotosPerUpload = 20

var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload photos and share them with your groups",
	Long: `Upload one or more photos. Every member of every group you belong to
gets access to them. Larger selections are sent in batches of 20.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if err := requireAuth(); err != nil {
		return err
	}

	for _, p := range args {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", p)
		}
	}

	var uploaded []api.Photo
	for _, batch := range batches(args, maxPhotosPerUpload) {
		var resp api.Response[api.UploadResult]
		if err := apiClient.Upload("/photos/upload", "photos", batch, nil, &resp); err != nil {
			return fmt.Errorf("uploading: %w", err)
		}
		uploaded = append(uploaded, resp.Data.Photos...)
	}

	if flagJSON {
		output.JSON(uploaded)
		return nil
	}
	for _, p := range uploaded {
		fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s (%s)\n", p.OriginalName, output.FormatSize(p.Size))
	}
	return nil
}

func batches(items []string, size int) [][]string {
	var out [][]string
	for len(items) > size {
		out = append(out, items[:size])
		items = items[size:]
	}
	if len(items) > 0 {
		out = append(out, items)
	}
	return out
}
