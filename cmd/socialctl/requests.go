package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newRequestsCmd(a *app) *cobra.Command {
	requestsCmd := &cobra.Command{Use: "requests", Short: "Connection requests"}

	sendCmd := &cobra.Command{
		Use:   "send RECIPIENT_ID",
		Short: "Send a connection request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.client().post(cmd.Context(), "/api/connections/requests",
				map[string]string{"recipientId": args[0]})
			if err != nil {
				return err
			}
			return a.print(data)
		},
	}

	respondCmd := &cobra.Command{
		Use:       "respond REQUEST_ID accept|decline|cancel",
		Short:     "Accept, decline or cancel a request",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"accept", "decline", "cancel"},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[1] {
			case "accept", "decline", "cancel":
			default:
				return fmt.Errorf("unknown action %q", args[1])
			}
			path := fmt.Sprintf("/api/connections/requests/%s/action", url.PathEscape(args[0]))
			data, err := a.client().post(cmd.Context(), path, map[string]string{"action": args[1]})
			if err != nil {
				return err
			}
			return a.print(data)
		},
	}

	requestsCmd.AddCommand(
		sendCmd,
		respondCmd,
		listCmd(a, "incoming", "Pending requests sent to you", "/api/connections/requests/incoming"),
		listCmd(a, "outgoing", "Pending requests you sent", "/api/connections/requests/outgoing"),
		listCmd(a, "connections", "Accepted connections", "/api/connections"),
	)
	return requestsCmd
}

// listCmd is a no-argument GET subcommand.
func listCmd(a *app, use, short, path string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.client().get(cmd.Context(), path, nil)
			if err != nil {
				return err
			}
			return a.print(data)
		},
	}
}
