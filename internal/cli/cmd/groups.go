package cmd

import (
	"fmt"
	"net/url"

	"github.com/Mayur-HT/Snapshot/internal/cli/api"
	"github.com/Mayur-HT/Snapshot/internal/cli/output"
	"github.com/spf13/cobra"
)

var flagInviteEmail string

var groupsCmd = &cobra.Command{
	Use:     "groups",
	Aliases: []string{"group"},
	Short:   "Manage groups, members and invites",
}

var groupsListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List the groups you belong to",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[api.GroupList]
		if err := apiClient.Get("/groups", nil, &resp); err != nil {
			return fmt.Errorf("listing groups: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data.Groups)
			return nil
		}
		output.GroupTable(resp.Data.Groups)
		return nil
	},
}

var groupsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a group you own",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[api.Group]
		if err := apiClient.Post("/groups", map[string]string{"name": args[0]}, &resp); err != nil {
			return fmt.Errorf("creating group: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created group %s (%s)\n", resp.Data.Name, resp.Data.ID)
		return nil
	},
}

var groupsInviteCmd = &cobra.Command{
	Use:   "invite <group-id>",
	Short: "Create a single-use invite link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var body interface{}
		if flagInviteEmail != "" {
			body = map[string]string{"email": flagInviteEmail}
		}

		var resp api.Response[api.InviteResult]
		if err := apiClient.Post("/groups/"+url.PathEscape(args[0])+"/invite", body, &resp); err != nil {
			return fmt.Errorf("creating invite: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data.Invite)
			return nil
		}
		output.InviteInfo(resp.Data.Invite)
		return nil
	},
}

var groupsAcceptCmd = &cobra.Command{
	Use:   "accept <token>",
	Short: "Join a group with an invite token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[api.AcceptResult]
		if err := apiClient.Get("/groups/accept/"+url.PathEscape(args[0]), nil, &resp); err != nil {
			return fmt.Errorf("accepting invite: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", resp.Data.Message, resp.Data.Group.Name)
		return nil
	},
}

var groupsAddCmd = &cobra.Command{
	Use:   "add <group-id> <email>",
	Short: "Add a registered user to a group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[api.Message]
		if err := apiClient.Post("/groups/"+url.PathEscape(args[0])+"/members", map[string]string{"email": args[1]}, &resp); err != nil {
			return fmt.Errorf("adding member: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), resp.Data.Message)
		return nil
	},
}

var groupsRemoveCmd = &cobra.Command{
	Use:   "remove <group-id> <user-id>",
	Short: "Remove a member (owner only)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[api.Message]
		path := fmt.Sprintf("/groups/%s/members/%s", url.PathEscape(args[0]), url.PathEscape(args[1]))
		if err := apiClient.Delete(path, &resp); err != nil {
			return fmt.Errorf("removing member: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), resp.Data.Message)
		return nil
	},
}

var groupsDeleteCmd = &cobra.Command{
	Use:   "rm <group-id>",
	Short: "Delete a group (owner only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp api.Response[api.Message]
		if err := apiClient.Delete("/groups/"+url.PathEscape(args[0]), &resp); err != nil {
			return fmt.Errorf("deleting group: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), resp.Data.Message)
		return nil
	},
}

func init() {
	groupsInviteCmd.Flags().StringVar(&flagInviteEmail, "email", "", "Address the invite is meant for")

	groupsCmd.AddCommand(groupsListCmd, groupsCreateCmd, groupsInviteCmd, groupsAcceptCmd, groupsAddCmd, groupsRemoveCmd, groupsDeleteCmd)
	rootCmd.AddCommand(groupsCmd)
}
