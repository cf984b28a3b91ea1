package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dust/internal/ipc"
)

// The daemon never spawns the game process; launch prints the prepared
// handoff and the desktop shell (or the user) runs the executable, then
// reports the session token back through `dust session finish`.
func newLaunchCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "launch <id>",
		Short: "Prepare a launch handoff and open a play session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseGameID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Launch(id)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				info := resp.Launch
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Launching %s\n", info.Title)
				fmt.Fprintf(out, "  Executable:  %s\n", info.Executable)
				fmt.Fprintf(out, "  Working dir: %s\n", info.WorkingDir)
				fmt.Fprintf(out, "  Session:     %s\n", info.SessionToken)
				fmt.Fprintf(out, "Run `dust session finish %s` when the game exits.\n", info.SessionToken)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the launch handoff as JSON")
	return cmd
}

func newSessionCommand(ctx *commandContext) *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Manage play sessions",
	}

	var asJSON bool
	finishCmd := &cobra.Command{
		Use:   "finish <token>",
		Short: "Close a play session and credit its play time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.FinishSession(args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				receipt := resp.Receipt
				fmt.Fprintf(cmd.OutOrStdout(), "Credited %dm to game #%d (total %s)\n",
					receipt.Minutes, receipt.GameID, formatPlayTime(receipt.TotalPlayTime))
				return nil
			})
		},
	}
	finishCmd.Flags().BoolVar(&asJSON, "json", false, "Output the session receipt as JSON")

	sessionCmd.AddCommand(finishCmd)
	return sessionCmd
}
