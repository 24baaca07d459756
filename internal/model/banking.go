package model

import "time"

// BankingDetails is the platform payment configuration shown to members.
// At most one record is active at a time.
type BankingDetails struct {
	ID            string    `json:"id"`
	BankName      string    `json:"bankName" validate:"required,max=255"`
	AccountName   string    `json:"accountName" validate:"required,max=255"`
	AccountNumber string    `json:"accountNumber" validate:"required,max=50"`
	BranchCode    string    `json:"branchCode,omitempty" validate:"max=50"`
	SwiftCode     string    `json:"swiftCode,omitempty" validate:"max=50"`
	Instructions  string    `json:"instructions,omitempty" validate:"max=2000"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (b *BankingDetails) RecordID() string       { return b.ID }
func (b *BankingDetails) Active() bool           { return b.IsActive }
func (b *BankingDetails) LastUpdated() time.Time { return b.UpdatedAt }
