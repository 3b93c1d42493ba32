package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrEthical07/goBlog/api"
)

func newProfileCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "profile", Short: "Edit the signed-in user's profile"}

	var username, avatar, bio string
	update := &cobra.Command{
		Use:   "update",
		Short: "Change username, avatar or bio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in api.UpdateProfileInput
			flags := cmd.Flags()
			if flags.Changed("username") {
				in.Username = &username
			}
			if flags.Changed("avatar") {
				in.Avatar = &avatar
			}
			if flags.Changed("bio") {
				in.Bio = &bio
			}
			if in == (api.UpdateProfileInput{}) {
				return fmt.Errorf("nothing to update")
			}
			if _, err := a.resolve(cmd.Context()); err != nil {
				return err
			}
			u, err := a.client.UpdateProfile(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.printUser(u)
		},
	}
	update.Flags().StringVar(&username, "username", "", "new username")
	update.Flags().StringVar(&avatar, "avatar", "", "avatar URL")
	update.Flags().StringVar(&bio, "bio", "", "bio text")
	cmd.AddCommand(update)
	return cmd
}

func newPasswordCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "password", Short: "Manage the account password"}

	var oldPassword, newPassword string
	change := &cobra.Command{
		Use:   "change",
		Short: "Change the account password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if oldPassword == "" || newPassword == "" {
				return fmt.Errorf("--old and --new are required")
			}
			if err := a.client.ChangePassword(cmd.Context(), oldPassword, newPassword); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "password changed")
			return nil
		},
	}
	change.Flags().StringVar(&oldPassword, "old", "", "current password")
	change.Flags().StringVar(&newPassword, "new", "", "new password")
	cmd.AddCommand(change)
	return cmd
}
