package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"playlog/cmd/cli/command/client"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a screenshot or save file and print its URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		httpClient, _, err := authedClient(ctx)
		if err != nil {
			return err
		}
		url, err := httpClient.Upload(ctx, args[0])
		if err != nil {
			return fmt.Errorf("upload failed: %w", err)
		}

		fmt.Println(url)
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile [user-id]",
	Short: "Show a user's profile (yours when no id is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		var userID string
		if len(args) == 1 {
			userID = args[0]
		} else {
			_, creds, err := authedClient(ctx)
			if err != nil {
				return err
			}
			userID = creds.UserID
		}

		profile, err := client.NewHTTPClient(apiURL).Profile(ctx, userID)
		if err != nil {
			return fmt.Errorf("could not load profile: %w", err)
		}

		fmt.Printf("User: %s\n", profile.User.Email)
		fmt.Printf("Reviews: %d (average %.1f/10)\n", profile.ReviewCount, profile.AverageRating)
		fmt.Printf("Total play time: %.1fh\n", profile.TotalPlayTime)
		fmt.Printf("Currently playing: %d\n", len(profile.CurrentlyPlaying))
		return nil
	},
}
