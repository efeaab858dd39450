package cmd

import (
	"fmt"
	"os"

	"github.com/Mayur-HT/Snapshot/internal/cli/api"
	"github.com/Mayur-HT/Snapshot/internal/cli/config"
	"github.com/Mayur-HT/Snapshot/internal/cli/output"
	"github.com/spf13/cobra"
)

var (
	flagJSON      bool
	flagServerURL string

	cfg       *config.Config
	apiClient *api.Client
)

var rootCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Snapshot CLI: share photos with your groups from the terminal",
	Long: `Snapshot CLI talks to a Snapshot server to manage groups, invites and photos.

Get started:
  snapshot register --email me@example.com --name Me --password ... --selfie me.jpg
  snapshot login --email me@example.com --password ...
  snapshot groups create "Family"
  snapshot groups invite <group-id>
  snapshot upload beach.jpg sunset.jpg`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if flagServerURL != "" {
			cfg.ServerURL = flagServerURL
		}
		apiClient = api.NewClient(cfg.ServerURL, cfg.Token)
		output.Writer = cmd.OutOrStdout()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().StringVar(&flagServerURL, "server", "", "Override server URL (default: from config or http://localhost:3001)")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func requireAuth() error {
	if cfg == nil || !cfg.HasToken() {
		return fmt.Errorf("not authenticated, run \"snapshot login\" first")
	}
	return nil
}

// saveSession persists a token returned by register or login.
func saveSession(res api.AuthResult) error {
	cfg.Token = res.Token
	cfg.Email = res.User.Email
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}
