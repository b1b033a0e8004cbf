package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"playlog/cmd/cli/command/client"
)

var gameCmd = &cobra.Command{
	Use:   "game",
	Short: "Search the catalog and add games",
}

var searchGameCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the game catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		games, err := client.NewHTTPClient(apiURL).SearchGames(ctx, strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		if len(games) == 0 {
			fmt.Println("No games found.")
			return nil
		}

		fmt.Printf("Found %d games:\n\n", len(games))
		for _, g := range games {
			fmt.Printf("IGDB ID: %d\n", g.ID)
			fmt.Printf("Title: %s\n", g.Name)
			if p := g.PlatformNames(); p != "" {
				fmt.Printf("Platforms: %s\n", p)
			}
			fmt.Println(strings.Repeat("-", 50))
		}
		return nil
	},
}

var addGameCmd = &cobra.Command{
	Use:   "add <igdb-id>",
	Short: "Add a catalog game locally and print its id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		igdbID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || igdbID <= 0 {
			return fmt.Errorf("invalid IGDB id %q", args[0])
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		game, err := client.NewHTTPClient(apiURL).AddGame(ctx, igdbID)
		if err != nil {
			return fmt.Errorf("could not add game: %w", err)
		}

		fmt.Printf("✓ %s is available as game %s\n", game.Title, game.ID)
		return nil
	},
}

func init() {
	gameCmd.AddCommand(searchGameCmd, addGameCmd)
}
