package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dust/internal/api"
	"dust/internal/ipc"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List games in the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.GameList()
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				if resp.Count == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Library is empty")
					return nil
				}
				table := renderTable(
					[]string{"ID", "Title", "Developer", "Source", "Play Time", "Last Played"},
					buildGameListRows(resp.Games),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				fmt.Fprintf(cmd.OutOrStdout(), "%d games\n", resp.Count)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the library as JSON")
	return cmd
}

func buildGameListRows(games []api.GameView) [][]string {
	rows := make([][]string, 0, len(games))
	for _, game := range games {
		lastPlayed := "-"
		if game.LastPlayed != "" {
			lastPlayed = formatDate(game.LastPlayed)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", game.ID),
			game.Title,
			orDash(game.Developer),
			game.SourceLabel,
			formatPlayTime(game.PlayTime),
			lastPlayed,
		})
	}
	return rows
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show details for one game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseGameID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.GameDescribe(id)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderPairs(gameDetailPairs(resp.Game)))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the game as JSON")
	return cmd
}

func gameDetailPairs(game api.GameView) [][2]string {
	pairs := [][2]string{
		{"ID", fmt.Sprintf("%d", game.ID)},
		{"Title", game.Title},
		{"Developer", orDash(game.Developer)},
		{"Genre", orDash(game.Genre)},
		{"Source", game.SourceLabel},
	}
	if game.DLSiteID != "" {
		pairs = append(pairs, [2]string{"DLSite ID", game.DLSiteID})
	}
	if game.ExecutablePath != "" {
		pairs = append(pairs, [2]string{"Directory", game.ExecutablePath})
	}
	if game.Executable != "" {
		pairs = append(pairs, [2]string{"Executable", game.Executable})
	}
	if len(game.Tags) > 0 {
		pairs = append(pairs, [2]string{"Tags", strings.Join(game.Tags, ", ")})
	}
	pairs = append(pairs, [2]string{"Play time", formatPlayTime(game.PlayTime)})
	if game.LastPlayed != "" {
		pairs = append(pairs, [2]string{"Last played", formatDate(game.LastPlayed)})
	}
	if game.InstallDate != "" {
		pairs = append(pairs, [2]string{"Added", formatDate(game.InstallDate)})
	}
	if game.Description != "" {
		pairs = append(pairs, [2]string{"Description", game.Description})
	}
	return pairs
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	var req api.AddGameRequest
	var tags []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a game to the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(req.Title) == "" {
				return fmt.Errorf("--title is required")
			}
			req.Tags = tags
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.GameAdd(req)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added game #%d: %s\n", resp.Game.ID, resp.Game.Title)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "Game title (required)")
	cmd.Flags().StringVar(&req.Developer, "developer", "", "Developer or circle name")
	cmd.Flags().StringVar(&req.Genre, "genre", "", "Genre label")
	cmd.Flags().StringVar(&req.Source, "source", "", "Source (local, dlsite, steam)")
	cmd.Flags().StringVar(&req.CatalogID, "dlsite-id", "", "DLSite product id (RJ/RE/VJ/BJ code)")
	cmd.Flags().StringVar(&req.ExecutablePath, "exec-path", "", "Directory containing the game")
	cmd.Flags().StringVar(&req.Executable, "executable", "", "Executable file name inside the directory")
	cmd.Flags().StringVar(&req.Description, "description", "", "Description text")
	cmd.Flags().StringVar(&req.CoverImage, "cover", "", "Cover image URL")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag to attach (repeatable)")
	cmd.Flags().BoolVar(&req.SkipFetch, "skip-fetch", false, "Skip the DLSite metadata fetch")
	cmd.Flags().StringVar(&req.OnDuplicate, "on-duplicate", "", "Duplicate handling: skip, update, or new")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the added game as JSON")
	return cmd
}

func newUpdateCommand(ctx *commandContext) *cobra.Command {
	var title, developer, genre, source, dlsiteID, execPath, executable, description, cover string
	var tags []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update stored fields on a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseGameID(args[0])
			if err != nil {
				return err
			}

			// Only fields whose flag was set end up in the patch, so an
			// empty string clears a field on purpose.
			var patch api.UpdateGameRequest
			changed := false
			set := func(name string, target **string, value *string) {
				if cmd.Flags().Changed(name) {
					*target = value
					changed = true
				}
			}
			set("title", &patch.Title, &title)
			set("developer", &patch.Developer, &developer)
			set("genre", &patch.Genre, &genre)
			set("source", &patch.Source, &source)
			set("dlsite-id", &patch.CatalogID, &dlsiteID)
			set("exec-path", &patch.ExecutablePath, &execPath)
			set("executable", &patch.Executable, &executable)
			set("description", &patch.Description, &description)
			set("cover", &patch.CoverImage, &cover)
			if cmd.Flags().Changed("tag") {
				patch.Tags = &tags
				changed = true
			}
			if !changed {
				return fmt.Errorf("nothing to update; pass at least one field flag")
			}

			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.GameUpdate(id, patch)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated game #%d: %s\n", resp.Game.ID, resp.Game.Title)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Game title")
	cmd.Flags().StringVar(&developer, "developer", "", "Developer or circle name")
	cmd.Flags().StringVar(&genre, "genre", "", "Genre label")
	cmd.Flags().StringVar(&source, "source", "", "Source (local, dlsite, steam)")
	cmd.Flags().StringVar(&dlsiteID, "dlsite-id", "", "DLSite product id")
	cmd.Flags().StringVar(&execPath, "exec-path", "", "Directory containing the game")
	cmd.Flags().StringVar(&executable, "executable", "", "Executable file name inside the directory")
	cmd.Flags().StringVar(&description, "description", "", "Description text")
	cmd.Flags().StringVar(&cover, "cover", "", "Cover image URL")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Replacement tag set (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the updated game as JSON")
	return cmd
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a game from the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseGameID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.GameRemove(id)
				if err != nil {
					return err
				}
				if resp.Removed {
					fmt.Fprintf(cmd.OutOrStdout(), "Removed game #%d\n", id)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Game %d not found\n", id)
				}
				return nil
			})
		},
	}
}
