package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dust/internal/api"
	"dust/internal/ipc"
)

func newDLSiteCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "dlsite <id>",
		Short: "Look up a DLSite product without touching the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.DLSiteInfo(args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderPairs(workDetailPairs(resp.Work)))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the lookup result as JSON")
	return cmd
}

func workDetailPairs(work api.WorkView) [][2]string {
	pairs := [][2]string{
		{"Product", work.ProductID},
		{"Title", work.Title},
		{"Circle", orDash(work.Developer)},
		{"Genre", orDash(work.Genre)},
	}
	if work.WorkType != "" {
		pairs = append(pairs, [2]string{"Work type", work.WorkType})
	}
	if work.AgeCategory != "" {
		pairs = append(pairs, [2]string{"Age rating", work.AgeCategory})
	}
	if work.ReleaseDate != "" {
		pairs = append(pairs, [2]string{"Released", work.ReleaseDate})
	}
	if len(work.Tags) > 0 {
		pairs = append(pairs, [2]string{"Tags", strings.Join(work.Tags, ", ")})
	}
	if work.Description != "" {
		pairs = append(pairs, [2]string{"Description", work.Description})
	}
	return pairs
}
