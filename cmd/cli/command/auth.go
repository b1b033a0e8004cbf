package command

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"playlog/cmd/cli/authentication"
	"playlog/cmd/cli/command/client"
	"playlog/internal/microservices/http-api/dto"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Register, log in and log out of the playlog API. Tokens are kept in the OS keyring.`,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a playlog account",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.RegisterRequest
		req.Email, _ = cmd.Flags().GetString("email")
		req.Password, _ = cmd.Flags().GetString("password")
		if name, _ := cmd.Flags().GetString("name"); name != "" {
			req.Name = &name
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		user, err := client.NewHTTPClient(apiURL).Register(ctx, req)
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}

		fmt.Println("✓ Registration successful! Please login to continue.")
		fmt.Printf("UserID: %s\n", user.ID)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to your playlog account",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.LoginRequest
		req.Email, _ = cmd.Flags().GetString("email")
		req.Password, _ = cmd.Flags().GetString("password")

		ctx, cancel := commandContext(cmd)
		defer cancel()

		resp, err := client.NewHTTPClient(apiURL).Login(ctx, req)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		err = authentication.StoreTokens(&authentication.StoredCredentials{
			AccessToken:  resp.AccessToken,
			RefreshToken: resp.RefreshToken,
			UserID:       resp.User.ID,
			Email:        resp.User.Email,
			ExpiresAt:    time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second).Unix(),
		})
		if err != nil {
			return fmt.Errorf("could not save credentials: %w", err)
		}

		fmt.Printf("✓ Logged in as %s\n", resp.User.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and forget the stored tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := authentication.GetTokens()
		if err != nil {
			fmt.Println("Not logged in.")
			return nil
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		// the server always answers 200; a failure here is a network problem
		if err := client.NewHTTPClient(apiURL).Logout(ctx, creds.RefreshToken); err != nil {
			fmt.Printf("warning: could not revoke token on server: %v\n", err)
		}
		if err := authentication.DeleteTokens(); err != nil {
			return err
		}

		fmt.Println("✓ Successfully logged out.")
		return nil
	},
}

func init() {
	authCmd.AddCommand(registerCmd, loginCmd, logoutCmd)

	registerCmd.Flags().StringP("email", "e", "", "Email address for the new account")
	registerCmd.Flags().StringP("password", "p", "", "Password (at least 8 characters)")
	registerCmd.Flags().StringP("name", "n", "", "Display name")
	registerCmd.MarkFlagRequired("email")
	registerCmd.MarkFlagRequired("password")

	loginCmd.Flags().StringP("email", "e", "", "Email address of the account")
	loginCmd.Flags().StringP("password", "p", "", "Password of the account")
	loginCmd.MarkFlagRequired("email")
	loginCmd.MarkFlagRequired("password")
}
