package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"playlog/cmd/cli/command/client"
	"playlog/internal/microservices/http-api/dto"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "List, write and delete reviews",
}

var listReviewCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the review feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		var q dto.ListQuery
		q.UserID, _ = cmd.Flags().GetString("user")
		q.GameID, _ = cmd.Flags().GetString("game")
		q.Limit, _ = cmd.Flags().GetInt("limit")

		ctx, cancel := commandContext(cmd)
		defer cancel()

		reviews, err := client.NewHTTPClient(apiURL).ListReviews(ctx, q)
		if err != nil {
			return fmt.Errorf("failed to list reviews: %w", err)
		}
		if len(reviews) == 0 {
			fmt.Println("No reviews yet.")
			return nil
		}
		for _, r := range reviews {
			printReview(r)
		}
		return nil
	},
}

var createReviewCmd = &cobra.Command{
	Use:   "create",
	Short: "Write a review",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.CreateReviewRequest
		req.GameID, _ = cmd.Flags().GetString("game")
		req.Platform, _ = cmd.Flags().GetString("platform")
		rating, _ := cmd.Flags().GetFloat64("rating")
		req.Rating = &rating
		if cmd.Flags().Changed("hours") {
			hours, _ := cmd.Flags().GetFloat64("hours")
			req.PlayTimeHours = &hours
		}
		if content, _ := cmd.Flags().GetString("content"); content != "" {
			req.Content = &content
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		httpClient, _, err := authedClient(ctx)
		if err != nil {
			return err
		}
		review, err := httpClient.CreateReview(ctx, req)
		if err != nil {
			return fmt.Errorf("could not create review: %w", err)
		}

		fmt.Println("✓ Review created")
		printReview(*review)
		return nil
	},
}

var editReviewCmd = &cobra.Command{
	Use:   "edit <review-id>",
	Short: "Change fields of one of your reviews",
	Long: `Only the flags you pass are sent. Passing an empty string to
--content, --start-date or --finish-date clears that field.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := reviewUpdate(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		httpClient, _, err := authedClient(ctx)
		if err != nil {
			return err
		}
		review, err := httpClient.UpdateReview(ctx, args[0], req)
		if err != nil {
			return fmt.Errorf("could not update review: %w", err)
		}

		fmt.Println("✓ Review updated")
		printReview(*review)
		return nil
	},
}

var errNothingToUpdate = errors.New("nothing to update, pass at least one flag")

func addReviewEditFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("rating", 0, "Rating from 0 to 10")
	cmd.Flags().String("platform", "", "Platform you played on")
	cmd.Flags().Float64("hours", 0, "Hours played")
	cmd.Flags().Bool("clear-hours", false, "Remove the play time")
	cmd.Flags().String("content", "", "Review text")
	cmd.Flags().String("start-date", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().String("finish-date", "", "Finish date (YYYY-MM-DD)")
	cmd.Flags().StringSlice("add-screenshot", nil, "Screenshot URL to attach (repeatable)")
	cmd.Flags().StringSlice("remove-screenshot", nil, "Screenshot id to remove (repeatable)")
	cmd.Flags().Bool("remove-save-file", false, "Remove the attached save file")
}

// reviewUpdate turns the changed flags into a PATCH body.
func reviewUpdate(cmd *cobra.Command) (dto.UpdateReviewRequest, error) {
	var req dto.UpdateReviewRequest
	flags := cmd.Flags()

	if flags.Changed("rating") {
		rating, _ := flags.GetFloat64("rating")
		req.Rating = dto.Of(rating)
	}
	if flags.Changed("platform") {
		platform, _ := flags.GetString("platform")
		req.Platform = dto.Of(platform)
	}
	switch drop, _ := flags.GetBool("clear-hours"); {
	case drop:
		req.PlayTimeHours = dto.Null[float64]()
	case flags.Changed("hours"):
		hours, _ := flags.GetFloat64("hours")
		req.PlayTimeHours = dto.Of(hours)
	}
	req.Content = optionalString(cmd, "content")
	req.StartDate = optionalString(cmd, "start-date")
	req.FinishDate = optionalString(cmd, "finish-date")

	urls, _ := flags.GetStringSlice("add-screenshot")
	for _, u := range urls {
		req.ScreenshotsToAdd = append(req.ScreenshotsToAdd, dto.ScreenshotInput{URL: u})
	}
	req.ScreenshotsToRemove, _ = flags.GetStringSlice("remove-screenshot")
	if remove, _ := flags.GetBool("remove-save-file"); remove {
		req.SaveFile = dto.Null[dto.SaveFileInput]()
	}

	if !req.Rating.Set && !req.Platform.Set && !req.PlayTimeHours.Set && !req.Content.Set &&
		!req.StartDate.Set && !req.FinishDate.Set && !req.SaveFile.Set &&
		len(req.ScreenshotsToAdd) == 0 && len(req.ScreenshotsToRemove) == 0 {
		return req, errNothingToUpdate
	}
	return req, nil
}

// optionalString maps an unchanged flag to an absent field and an empty one to null.
func optionalString(cmd *cobra.Command, name string) dto.Nullable[string] {
	if !cmd.Flags().Changed(name) {
		return dto.Nullable[string]{}
	}
	v, _ := cmd.Flags().GetString(name)
	if v == "" {
		return dto.Null[string]()
	}
	return dto.Of(v)
}

var deleteReviewCmd = &cobra.Command{
	Use:   "delete <review-id>",
	Short: "Delete one of your reviews",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		httpClient, _, err := authedClient(ctx)
		if err != nil {
			return err
		}
		if err := httpClient.DeleteReview(ctx, args[0]); err != nil {
			return fmt.Errorf("could not delete review: %w", err)
		}

		fmt.Println("✓ Review deleted")
		return nil
	},
}

func printReview(r dto.ReviewResponse) {
	title := r.GameID
	if r.Game != nil {
		title = r.Game.Title
	}
	fmt.Printf("ID: %s\n", r.ID)
	fmt.Printf("Game: %s (%s)\n", title, r.Platform)
	fmt.Printf("Rating: %.1f/10\n", r.Rating)
	if r.PlayTimeHours != nil {
		fmt.Printf("Played: %.1fh\n", *r.PlayTimeHours)
	}
	if r.Content != nil {
		fmt.Printf("%s\n", *r.Content)
	}
	fmt.Println(strings.Repeat("-", 50))
}

func init() {
	reviewCmd.AddCommand(listReviewCmd, createReviewCmd, editReviewCmd, deleteReviewCmd)
	addReviewEditFlags(editReviewCmd)

	listReviewCmd.Flags().String("user", "", "Only reviews by this user id")
	listReviewCmd.Flags().String("game", "", "Only reviews of this game id")
	listReviewCmd.Flags().Int("limit", 0, "Maximum number of reviews")

	createReviewCmd.Flags().String("game", "", "Local game id (see 'playlog game add')")
	createReviewCmd.Flags().String("platform", "", "Platform you played on")
	createReviewCmd.Flags().Float64("rating", 0, "Rating from 0 to 10")
	createReviewCmd.Flags().Float64("hours", 0, "Hours played")
	createReviewCmd.Flags().String("content", "", "Review text")
	createReviewCmd.MarkFlagRequired("game")
	createReviewCmd.MarkFlagRequired("platform")
	createReviewCmd.MarkFlagRequired("rating")
}
