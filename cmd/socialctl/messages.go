package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newMessagesCmd(a *app) *cobra.Command {
	messagesCmd := &cobra.Command{Use: "messages", Short: "Direct messages"}

	var to, conversationID, body string
	sendCmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message to a user (--to) or a conversation (--conversation)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (to == "") == (conversationID == "") {
				return fmt.Errorf("exactly one of --to or --conversation is required")
			}
			c := a.client()
			if to != "" {
				data, err := c.post(cmd.Context(), "/api/conversations", map[string][]string{"participantIds": {to}})
				if err != nil {
					return err
				}
				var conv struct {
					ConversationID string `json:"conversationId"`
				}
				if err := json.Unmarshal(data, &conv); err != nil {
					return fmt.Errorf("decode conversation: %w", err)
				}
				conversationID = conv.ConversationID
			}
			path := fmt.Sprintf("/api/conversations/%s/messages", url.PathEscape(conversationID))
			data, err := c.post(cmd.Context(), path, map[string]string{"body": body})
			if err != nil {
				return err
			}
			return a.print(data)
		},
	}
	sendCmd.Flags().StringVar(&to, "to", "", "Recipient user ID")
	sendCmd.Flags().StringVarP(&conversationID, "conversation", "c", "", "Conversation ID")
	sendCmd.Flags().StringVarP(&body, "body", "b", "", "Message text (required)")
	_ = sendCmd.MarkFlagRequired("body")

	var after string
	var limit int
	listMessagesCmd := &cobra.Command{
		Use:   "list CONVERSATION_ID",
		Short: "List messages oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if after != "" {
				if _, err := time.Parse(time.RFC3339Nano, after); err != nil {
					return fmt.Errorf("--after must be RFC3339: %w", err)
				}
				q.Set("after", after)
			}
			if limit > 0 {
				q.Set("limit", strconv.Itoa(limit))
			}
			path := fmt.Sprintf("/api/conversations/%s/messages", url.PathEscape(args[0]))
			data, err := a.client().get(cmd.Context(), path, q)
			if err != nil {
				return err
			}
			return a.print(data)
		},
	}
	listMessagesCmd.Flags().StringVar(&after, "after", "", "Only messages sent after this RFC3339 time")
	listMessagesCmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum messages to return")

	messagesCmd.AddCommand(sendCmd, listMessagesCmd)
	return messagesCmd
}
