package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gitmaxhq/gitmax/internal/domain/entities"
)

func newProfileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update your GitMax profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showProfile(cmd)
		},
	}

	cmd.AddCommand(newProfileUpdateCommand())

	return cmd
}

func showProfile(cmd *cobra.Command) error {
	cliCtx := getCliContext(cmd)

	var user entities.User
	if err := apiGet(cmd.Context(), cliCtx, "/api/profile", nil, &user); err != nil {
		return err
	}

	fmt.Printf("Username:     %s\n", user.Username)
	fmt.Printf("GitHub ID:    %s\n", user.GitHubID)
	if user.Email != nil {
		fmt.Printf("Email:        %s\n", *user.Email)
	}
	if user.GitHubURL != nil {
		fmt.Printf("GitHub URL:   %s\n", *user.GitHubURL)
	}
	fmt.Printf("Public repos: %d\n", user.PublicRepos)
	fmt.Printf("Followers:    %d\n", user.Followers)
	fmt.Printf("Following:    %d\n", user.Following)

	return nil
}

func newProfileUpdateCommand() *cobra.Command {
	var (
		username string
		email    string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update profile fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)

			update := entities.UserUpdate{}
			if cmd.Flags().Changed("username") {
				update.Username = &username
			}
			if cmd.Flags().Changed("email") {
				update.Email = &email
			}
			if update.Username == nil && update.Email == nil {
				return fmt.Errorf("nothing to update; pass --username or --email")
			}

			var user entities.User
			if err := apiPut(cmd.Context(), cliCtx, "/api/profile", update, &user); err != nil {
				return err
			}

			fmt.Println("✓ Profile updated")
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "New display username")
	cmd.Flags().StringVar(&email, "email", "", "New contact email")

	return cmd
}
