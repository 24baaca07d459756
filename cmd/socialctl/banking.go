package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

type bankingPayload struct {
	BankName      string `json:"bankName"`
	AccountName   string `json:"accountName"`
	AccountNumber string `json:"accountNumber"`
	BranchCode    string `json:"branchCode,omitempty"`
	SwiftCode     string `json:"swiftCode,omitempty"`
	Instructions  string `json:"instructions,omitempty"`
	IsActive      bool   `json:"isActive"`
}

func newBankingCmd(a *app) *cobra.Command {
	bankingCmd := &cobra.Command{Use: "banking", Short: "Platform banking details"}

	var id string
	var validateOnly bool
	var in bankingPayload
	saveCmd := &cobra.Command{
		Use:   "save",
		Short: "Create a record, or update one with --id (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.client()
			var (
				data []byte
				err  error
			)
			switch {
			case validateOnly:
				data, err = c.post(cmd.Context(), "/api/admin/banking-details/validate", in)
			case id != "":
				data, err = c.put(cmd.Context(), fmt.Sprintf("/api/admin/banking-details/%s", url.PathEscape(id)), in)
			default:
				data, err = c.post(cmd.Context(), "/api/admin/banking-details", in)
			}
			if err != nil {
				return err
			}
			return a.print(data)
		},
	}
	f := saveCmd.Flags()
	f.StringVar(&id, "id", "", "Existing record ID to update")
	f.BoolVar(&validateOnly, "validate", false, "Only check the record, do not store it")
	f.StringVar(&in.BankName, "bank", "", "Bank name (required)")
	f.StringVar(&in.AccountName, "account-name", "", "Account holder name (required)")
	f.StringVar(&in.AccountNumber, "account-number", "", "Account number (required)")
	f.StringVar(&in.BranchCode, "branch", "", "Branch code")
	f.StringVar(&in.SwiftCode, "swift", "", "SWIFT code")
	f.StringVar(&in.Instructions, "instructions", "", "Payment instructions")
	f.BoolVar(&in.IsActive, "active", false, "Make this the active record")
	_ = saveCmd.MarkFlagRequired("bank")
	_ = saveCmd.MarkFlagRequired("account-name")
	_ = saveCmd.MarkFlagRequired("account-number")

	bankingCmd.AddCommand(
		listCmd(a, "active", "Show the active record", "/api/platform/banking-details/active"),
		listCmd(a, "list", "List all records (admin)", "/api/admin/banking-details"),
		saveCmd,
	)
	return bankingCmd
}
