package models

import (
	"strings"
	"time"
)

// AccountRecord links a NEAR account to the keys its wallet presented.
//
// Invariants:
//   - AccountID is the primary key; at most one record exists per AccountID
//   - AllKeys is opaque and only ever compared for exact equality
type AccountRecord struct {
	AccountID string    `json:"account_id"`
	PublicKey string    `json:"public_key"`
	AllKeys   string    `json:"all_keys"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RegisterRequest is what the wallet collaborator submits after sign-in.
type RegisterRequest struct {
	AccountID string `json:"account_id" validate:"required,max=64"`
	PublicKey string `json:"public_key" validate:"max=256"`
	AllKeys   string `json:"all_keys" validate:"max=4096"`
}

// Normalize trims whitespace the form layer tends to leave behind.
func (r *RegisterRequest) Normalize() {
	r.AccountID = strings.TrimSpace(r.AccountID)
	r.PublicKey = strings.TrimSpace(r.PublicKey)
	r.AllKeys = strings.TrimSpace(r.AllKeys)
}

// NormalizeAccountID converts the path-safe display form ("alice-near") into
// the canonical account ID ("alice.near"). Every '-' is rewritten, so accounts
// whose names contain a hyphen (my-wallet.testnet) cannot be addressed by path.
func NormalizeAccountID(display string) string {
	return strings.ReplaceAll(display, "-", ".")
}

// DisplayAccountID is the inverse of NormalizeAccountID, used to build links.
func DisplayAccountID(accountID string) string {
	return strings.ReplaceAll(accountID, ".", "-")
}

// AccountResponse is the HTTP response DTO for one account.
type AccountResponse struct {
	AccountID string    `json:"account_id"`
	PublicKey string    `json:"public_key"`
	Profile   string    `json:"profile_path"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AccountsListResponse wraps the administrative listing.
type AccountsListResponse struct {
	Users []*AccountResponse `json:"users"`
	Total int                `json:"total"`
}

// ToResponse hides AllKeys; it is a credential, not profile data.
func ToResponse(r *AccountRecord) *AccountResponse {
	return &AccountResponse{
		AccountID: r.AccountID,
		PublicKey: r.PublicKey,
		Profile:   "/users/" + DisplayAccountID(r.AccountID),
		UpdatedAt: r.UpdatedAt,
	}
}
