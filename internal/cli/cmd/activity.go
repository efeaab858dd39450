package cmd

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/Mayur-HT/Snapshot/internal/cli/api"
	"github.com/Mayur-HT/Snapshot/internal/cli/output"
	"github.com/spf13/cobra"
)

var flagLimit int

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show your recent account activity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		params := url.Values{}
		if flagLimit > 0 {
			params.Set("limit", strconv.Itoa(flagLimit))
		}

		var resp api.Response[api.ActivityList]
		if err := apiClient.Get("/users/me/activity", params, &resp); err != nil {
			return fmt.Errorf("fetching activity: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data.Activity)
			return nil
		}
		output.ActivityTable(resp.Data.Activity)
		return nil
	},
}

func init() {
	activityCmd.Flags().IntVar(&flagLimit, "limit", 50, "Maximum number of entries to show")
	rootCmd.AddCommand(activityCmd)
}
