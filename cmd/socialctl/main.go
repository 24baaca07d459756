package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// app holds the persistent flags shared by every subcommand.
type app struct {
	api   string
	token string
	out   io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}
	rootCmd := &cobra.Command{
		Use:           "socialctl",
		Short:         "CLI client for the social service REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&a.api, "api", "a", envOr("SOCIAL_API", "http://localhost:8080"), "Social service base URL")
	rootCmd.PersistentFlags().StringVarP(&a.token, "token", "t", os.Getenv("SOCIAL_TOKEN"), "Bearer token")

	rootCmd.AddCommand(
		newUsersCmd(a),
		newRequestsCmd(a),
		newBankingCmd(a),
		newMessagesCmd(a),
		newDevTokenCmd(a),
	)
	return rootCmd
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
