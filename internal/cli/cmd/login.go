package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/Mayur-HT/Snapshot/internal/cli/api"
	"github.com/Mayur-HT/Snapshot/internal/cli/output"
	"github.com/spf13/cobra"
)

var (
	flagEmail    string
	flagPassword string
	flagName     string
	flagSelfie   string
	flagInvite   string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to your Snapshot server",
	Long: `Sign in with email and password. The password may also be given through
the SNAPSHOT_PASSWORD environment variable.

Passing --invite redeems a group invite on the way in. A bad or expired
invite never blocks the login itself.`,
	RunE: runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE:  runRegister,
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVar(&flagEmail, "email", "", "Account email")
		c.Flags().StringVar(&flagPassword, "password", "", "Account password (or SNAPSHOT_PASSWORD)")
		c.Flags().StringVar(&flagInvite, "invite", "", "Invite token to redeem")
		_ = c.MarkFlagRequired("email")
	}
	registerCmd.Flags().StringVar(&flagName, "name", "", "Display name")
	registerCmd.Flags().StringVar(&flagSelfie, "selfie", "", "Path to a selfie image (max 10MB)")
	_ = registerCmd.MarkFlagRequired("name")
	_ = registerCmd.MarkFlagRequired("selfie")

	rootCmd.AddCommand(loginCmd, registerCmd)
}

func password() (string, error) {
	if flagPassword != "" {
		return flagPassword, nil
	}
	if p := os.Getenv("SNAPSHOT_PASSWORD"); p != "" {
		return p, nil
	}
	return "", errors.New("password is required: pass --password or set SNAPSHOT_PASSWORD")
}

func runLogin(cmd *cobra.Command, args []string) error {
	pw, err := password()
	if err != nil {
		return err
	}

	body := map[string]string{"email": flagEmail, "password": pw}
	if flagInvite != "" {
		body["inviteToken"] = flagInvite
	}

	var resp api.Response[api.AuthResult]
	if err := apiClient.Post("/auth/login", body, &resp); err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.Status == 401 {
			return fmt.Errorf("invalid email or password")
		}
		return fmt.Errorf("signing in: %w", err)
	}
	if err := saveSession(resp.Data); err != nil {
		return err
	}

	if flagJSON {
		output.JSON(resp.Data.User)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", resp.Data.User.Name, resp.Data.User.Email)
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	pw, err := password()
	if err != nil {
		return err
	}

	fields := map[string]string{
		"email":    flagEmail,
		"name":     flagName,
		"password": pw,
	}
	if flagInvite != "" {
		fields["inviteToken"] = flagInvite
	}

	var resp api.Response[api.AuthResult]
	if err := apiClient.Upload("/auth/register", "selfie", []string{flagSelfie}, fields, &resp); err != nil {
		return fmt.Errorf("registering: %w", err)
	}
	if err := saveSession(resp.Data); err != nil {
		return err
	}

	if flagJSON {
		output.JSON(resp.Data.User)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s (%s)\n", resp.Data.User.Name, resp.Data.User.Email)
	return nil
}
