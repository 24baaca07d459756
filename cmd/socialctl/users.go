package main

import (
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func newUsersCmd(a *app) *cobra.Command {
	usersCmd := &cobra.Command{Use: "users", Short: "User operations (create requires an admin token)"}

	var userID, username, email, first, last string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]string{
				"username":  username,
				"email":     email,
				"firstName": first,
				"lastName":  last,
			}
			if userID != "" {
				payload["userId"] = userID
			}
			data, err := a.client().post(cmd.Context(), "/api/users", payload)
			if err != nil {
				return err
			}
			return a.print(data)
		},
	}
	createCmd.Flags().StringVar(&userID, "id", "", "User ID (generated when empty)")
	createCmd.Flags().StringVarP(&username, "username", "u", "", "Username (required)")
	createCmd.Flags().StringVarP(&email, "email", "e", "", "Email (required)")
	createCmd.Flags().StringVar(&first, "first", "", "First name")
	createCmd.Flags().StringVar(&last, "last", "", "Last name")
	_ = createCmd.MarkFlagRequired("username")
	_ = createCmd.MarkFlagRequired("email")

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List other users",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if limit > 0 {
				q.Set("limit", strconv.Itoa(limit))
			}
			data, err := a.client().get(cmd.Context(), "/api/users", q)
			if err != nil {
				return err
			}
			return a.print(data)
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum users to return")

	usersCmd.AddCommand(createCmd, listCmd)
	return usersCmd
}
