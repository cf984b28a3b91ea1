package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"dust/internal/api"
	"dust/internal/config"
	"dust/internal/ipc"
	"dust/internal/library"
)

type exportDocument struct {
	ExportedAt string         `json:"exportedAt"`
	Count      int            `json:"count"`
	Games      []api.GameView `json:"games"`
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var format string
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the library as JSON or YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unsupported format %q (json or yaml)", format)
			}

			games, err := collectGames(cmd.Context(), ctx)
			if err != nil {
				return err
			}
			doc := exportDocument{
				ExportedAt: time.Now().UTC().Format(time.RFC3339),
				Count:      len(games),
				Games:      games,
			}

			out := cmd.OutOrStdout()
			if target := strings.TrimSpace(outputPath); target != "" {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return err
				}
				f, err := os.Create(expanded)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer f.Close()
				if err := writeExport(f, format, doc); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d games to %s\n", doc.Count, expanded)
				return nil
			}
			return writeExport(out, format, doc)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Export format: json or yaml")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

// collectGames asks the daemon first and reads the database directly when it
// is not running, so exports work without a daemon.
func collectGames(ctx context.Context, cmdCtx *commandContext) ([]api.GameView, error) {
	if client, err := ipc.Dial(cmdCtx.socketPath()); err == nil {
		defer client.Close()
		resp, err := client.GameList()
		if err != nil {
			return nil, err
		}
		return resp.Games, nil
	}

	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := library.Open(cfg)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	records, err := store.ListGames(ctx)
	if err != nil {
		return nil, err
	}
	return api.FromGameRecords(records), nil
}

func writeExport(out io.Writer, format string, doc exportDocument) error {
	switch format {
	case "yaml":
		// Round-trip through JSON so YAML keys match the JSON export.
		raw, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(generic)
	default:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}
}
