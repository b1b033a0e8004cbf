package command

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"playlog/cmd/cli/command/client"
	"playlog/internal/microservices/http-api/dto"
)

var playingCmd = &cobra.Command{
	Use:   "playing",
	Short: "Track the games you are currently playing",
}

var listPlayingCmd = &cobra.Command{
	Use:   "list",
	Short: "Show currently-playing entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		var q dto.ListQuery
		q.UserID, _ = cmd.Flags().GetString("user")
		q.GameID, _ = cmd.Flags().GetString("game")

		ctx, cancel := commandContext(cmd)
		defer cancel()

		if mine, _ := cmd.Flags().GetBool("mine"); mine {
			_, creds, err := authedClient(ctx)
			if err != nil {
				return err
			}
			q.UserID = creds.UserID
		}

		entries, err := client.NewHTTPClient(apiURL).ListPlaying(ctx, q)
		if err != nil {
			return fmt.Errorf("failed to list entries: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("Nothing being played.")
			return nil
		}
		for _, e := range entries {
			title := e.GameID
			if e.Game != nil {
				title = e.Game.Title
			}
			fmt.Printf("ID: %s\n", e.ID)
			fmt.Printf("Game: %s (%s)\n", title, e.Platform)
			if e.PlayTimeHours != nil {
				fmt.Printf("Played: %.1fh\n", *e.PlayTimeHours)
			}
			if e.Notes != nil {
				fmt.Printf("Notes: %s\n", *e.Notes)
			}
			fmt.Println(strings.Repeat("-", 50))
		}
		return nil
	},
}

var startPlayingCmd = &cobra.Command{
	Use:   "start",
	Short: "Start tracking a game",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.CreateCurrentlyPlayingRequest
		req.GameID, _ = cmd.Flags().GetString("game")
		req.Platform, _ = cmd.Flags().GetString("platform")
		if cmd.Flags().Changed("hours") {
			hours, _ := cmd.Flags().GetFloat64("hours")
			req.PlayTimeHours = &hours
		}
		if notes, _ := cmd.Flags().GetString("notes"); notes != "" {
			req.Notes = &notes
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		httpClient, _, err := authedClient(ctx)
		if err != nil {
			return err
		}
		entry, err := httpClient.StartPlaying(ctx, req)
		if err != nil {
			return fmt.Errorf("could not start tracking: %w", err)
		}

		fmt.Printf("✓ Tracking started (entry %s)\n", entry.ID)
		return nil
	},
}

var editPlayingCmd = &cobra.Command{
	Use:   "edit <entry-id>",
	Short: "Change fields of one of your entries",
	Long: `Only the flags you pass are sent. Passing an empty string to
--notes or --start-date clears that field. --screenshot replaces the
whole set of screenshots.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := playingUpdate(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		httpClient, _, err := authedClient(ctx)
		if err != nil {
			return err
		}
		entry, err := httpClient.UpdatePlaying(ctx, args[0], req)
		if err != nil {
			return fmt.Errorf("could not update entry: %w", err)
		}

		fmt.Printf("✓ Entry %s updated\n", entry.ID)
		return nil
	},
}

func addPlayingEditFlags(cmd *cobra.Command) {
	cmd.Flags().String("platform", "", "Platform you play on")
	cmd.Flags().Float64("hours", 0, "Hours played so far")
	cmd.Flags().Bool("clear-hours", false, "Remove the play time")
	cmd.Flags().String("notes", "", "Notes")
	cmd.Flags().String("start-date", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringSlice("screenshot", nil, "Screenshot URL (repeatable), replaces the current set")
	cmd.Flags().Bool("clear-screenshots", false, "Remove every screenshot")
}

func playingUpdate(cmd *cobra.Command) (dto.UpdateCurrentlyPlayingRequest, error) {
	var req dto.UpdateCurrentlyPlayingRequest
	flags := cmd.Flags()

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
	req.Notes = optionalString(cmd, "notes")
	req.StartDate = optionalString(cmd, "start-date")

	switch drop, _ := flags.GetBool("clear-screenshots"); {
	case drop:
		req.Screenshots = dto.Null[[]dto.ScreenshotInput]()
	case flags.Changed("screenshot"):
		urls, _ := flags.GetStringSlice("screenshot")
		shots := make([]dto.ScreenshotInput, 0, len(urls))
		for _, u := range urls {
			shots = append(shots, dto.ScreenshotInput{URL: u})
		}
		req.Screenshots = dto.Of(shots)
	}

	if !req.Platform.Set && !req.PlayTimeHours.Set && !req.Notes.Set && !req.StartDate.Set && !req.Screenshots.Set {
		return req, errNothingToUpdate
	}
	return req, nil
}

var finishPlayingCmd = &cobra.Command{
	Use:   "finish <entry-id>",
	Short: "Finish a playthrough and turn it into a review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.ConvertRequest
		rating, _ := cmd.Flags().GetFloat64("rating")
		req.Rating = &rating
		if date, _ := cmd.Flags().GetString("finish-date"); date != "" {
			req.FinishDate = &date
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
		review, err := httpClient.ConvertPlaying(ctx, args[0], req)
		if err != nil {
			return fmt.Errorf("could not finish playthrough: %w", err)
		}

		fmt.Println("✓ Playthrough converted into a review")
		printReview(*review)
		return nil
	},
}

func init() {
	playingCmd.AddCommand(listPlayingCmd, startPlayingCmd, editPlayingCmd, finishPlayingCmd)
	addPlayingEditFlags(editPlayingCmd)

	listPlayingCmd.Flags().String("user", "", "Only entries of this user id")
	listPlayingCmd.Flags().String("game", "", "Only entries of this game id")
	listPlayingCmd.Flags().Bool("mine", false, "Only your own entries")

	startPlayingCmd.Flags().String("game", "", "Local game id (see 'playlog game add')")
	startPlayingCmd.Flags().String("platform", "", "Platform you play on")
	startPlayingCmd.Flags().Float64("hours", 0, "Hours played so far")
	startPlayingCmd.Flags().String("notes", "", "Notes")
	startPlayingCmd.MarkFlagRequired("game")
	startPlayingCmd.MarkFlagRequired("platform")

	finishPlayingCmd.Flags().Float64("rating", 0, "Rating from 0 to 10")
	finishPlayingCmd.Flags().String("finish-date", "", "Finish date (YYYY-MM-DD)")
	finishPlayingCmd.Flags().String("content", "", "Review text; defaults to the entry's notes")
	finishPlayingCmd.MarkFlagRequired("rating")
}
