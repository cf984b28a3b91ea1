package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"dust/internal/api"
	"dust/internal/config"
	"dust/internal/ipc"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scan [root]",
		Short: "Scan the library folder for new and changed games",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := ""
			if len(args) == 1 {
				expanded, err := config.ExpandPath(args[0])
				if err != nil {
					return err
				}
				root = expanded
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Scan(root)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp.Summary)
				}
				printScanSummary(cmd.OutOrStdout(), resp.Summary)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the scan summary as JSON")
	return cmd
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	var source string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "import <folder>",
		Short: "Import every game directory under a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Import(folder, source)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp.Summary)
				}
				printScanSummary(cmd.OutOrStdout(), resp.Summary)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "local", "Source to record for imported games (local, dlsite, steam)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the import summary as JSON")
	return cmd
}

func printScanSummary(out io.Writer, summary api.ScanSummary) {
	if strings.TrimSpace(summary.Message) != "" {
		fmt.Fprintln(out, summary.Message)
	} else {
		fmt.Fprintf(out, "Found %d new games, updated %d, skipped %d\n",
			summary.FoundGames, summary.UpdatedGames, summary.Skipped)
	}
	for _, title := range summary.FoundList {
		fmt.Fprintf(out, "  + %s\n", title)
	}
	for _, title := range summary.UpdatedList {
		fmt.Fprintf(out, "  ~ %s\n", title)
	}
	for _, failure := range summary.Failures {
		fmt.Fprintf(out, "  ! %s: %s\n", failure.Dir, failure.Error)
	}
	if summary.ErrorCount > 0 {
		fmt.Fprintf(out, "%d directories could not be processed\n", summary.ErrorCount)
	}
}
