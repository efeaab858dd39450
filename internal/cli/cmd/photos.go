package cmd

import (
	"fmt"
	"net/url"

	"github.com/Mayur-HT/Snapshot/internal/cli/api"
	"github.com/Mayur-HT/Snapshot/internal/cli/output"
	"github.com/spf13/cobra"
)

var (
	flagShared bool
	flagOutput string
)

var photosCmd = &cobra.Command{
	Use:   "photos",
	Short: "List and download photos",
}

var photosListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List your photos, or photos shared with you with --shared",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		path := "/photos/mine"
		if flagShared {
			path = "/photos/shared"
		}

		var resp api.Response[api.PhotoList]
		if err := apiClient.Get(path, nil, &resp); err != nil {
			return fmt.Errorf("listing photos: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data.Photos)
			return nil
		}
		output.PhotoTable(resp.Data.Photos)
		return nil
	},
}

var photosGetCmd = &cobra.Command{
	Use:   "get <photo-id>",
	Short: "Download a photo you own or that was shared with you",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		dest := flagOutput
		if dest == "" {
			dest = args[0]
		}
		if err := apiClient.DownloadToFile("/photos/"+url.PathEscape(args[0])+"/content", dest); err != nil {
			return fmt.Errorf("downloading photo: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", dest)
		return nil
	},
}

func init() {
	photosListCmd.Flags().BoolVar(&flagShared, "shared", false, "List photos shared with you")
	photosGetCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Destination file (default: the photo id)")

	photosCmd.AddCommand(photosListCmd, photosGetCmd)
	rootCmd.AddCommand(photosCmd)
}
