package validate

import (
	"strings"
	"testing"
)

func TestCreateUser_InvalidEmail(t *testing.T) {
	if err := CreateUser("alice", "bad email", "", ""); err == nil {
		t.Fatalf("expected error for invalid email")
	}
}

func TestUsername(t *testing.T) {
	tests := []struct {
		name        string
		username    string
		expectError bool
		errorMsg    string
	}{
		{name: "valid", username: "alice_01"},
		{name: "with dot", username: "a.b.c"},
		{name: "empty", username: "", expectError: true, errorMsg: "username is required"},
		{name: "too short", username: "al", expectError: true, errorMsg: "username must match"},
		{name: "uppercase", username: "Alice", expectError: true, errorMsg: "username must match"},
		{name: "too long", username: strings.Repeat("a", 31), expectError: true, errorMsg: "username must match"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Username(tt.username)
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error for %q", tt.username)
				}
				if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Fatalf("expected %q in %q", tt.errorMsg, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestMessageBody(t *testing.T) {
	if err := MessageBody("hi", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := MessageBody("   \n\t", 10); err == nil {
		t.Fatalf("expected error for blank body")
	}
	if err := MessageBody(strings.Repeat("x", 11), 10); err == nil {
		t.Fatalf("expected error for oversized body")
	}
	if err := MessageBody("\xff\xfe", 10); err == nil {
		t.Fatalf("expected error for invalid UTF-8")
	}
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	type req struct {
		BankName string `json:"bankName" validate:"required"`
		Note     string `json:"note" validate:"max=3"`
	}
	err := Struct(req{Note: "ok"})
	if err == nil || err.Error() != "bankName is required" {
		t.Fatalf("got %v", err)
	}
	err = Struct(req{BankName: "b", Note: "toolong"})
	if err == nil || err.Error() != "note exceeds 3 characters" {
		t.Fatalf("got %v", err)
	}
	if err := Struct(req{BankName: "b"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
