package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dust/internal/api"
	"dust/internal/ipc"
	"dust/internal/logs"
	"dust/internal/logstream"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var lines int
	var filters logstream.Filters

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Display daemon logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			apiClient, err := logs.NewStreamClient(cfg.Paths.APIBind, cfg.Paths.APIToken)
			if err != nil {
				return err
			}
			tail := &lazyTailClient{ctx: ctx}
			defer tail.Close()

			out := cmd.OutOrStdout()
			printed, err := logstream.Stream(
				cmd.Context(),
				apiClient,
				tail,
				logstream.Options{Lines: lines, Follow: follow, Filters: filters},
				func(evt api.LogEvent) { fmt.Fprintln(out, formatLogEvent(evt)) },
				func(line string) { fmt.Fprintln(out, line) },
			)
			if err != nil {
				return err
			}
			if !printed && !follow {
				fmt.Fprintln(out, "No log entries available")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVarP(&lines, "lines", "n", 10, "Number of entries to show (0 for the default page)")
	cmd.Flags().StringVar(&filters.Component, "component", "", "Only events from one component (scanner, dlsite, api)")
	cmd.Flags().Int64Var(&filters.GameID, "game", 0, "Only events for one game id")
	cmd.Flags().StringVar(&filters.CatalogID, "catalog", "", "Only events for one DLSite product id")
	cmd.Flags().StringVar(&filters.AttemptID, "attempt", "", "Only events for one reconcile attempt")
	cmd.Flags().StringVar(&filters.Level, "level", "", "Only events at one level (info, warn, error)")
	cmd.Flags().StringVar(&filters.Search, "search", "", "Only events whose message or fields contain this text")
	return cmd
}

// lazyTailClient dials the daemon socket the first time the API fallback is
// actually needed, so `dust logs` does not require a socket while the HTTP
// API is reachable.
type lazyTailClient struct {
	ctx    *commandContext
	client *ipc.Client
}

func (l *lazyTailClient) LogTail(req ipc.LogTailRequest) (*ipc.LogTailResponse, error) {
	if l.client == nil {
		client, err := l.ctx.dialClient()
		if err != nil {
			return nil, err
		}
		l.client = client
	}
	return l.client.LogTail(req)
}

func (l *lazyTailClient) Close() error {
	if l.client == nil {
		return nil
	}
	return l.client.Close()
}
