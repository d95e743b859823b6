package minting

import "encoding/json"

// Request is what a donor submits: a token suffix and the amount pledged per
// category name. Amounts are kept as strings because they arrive from forms.
type Request struct {
	SuffixTokenID string            `json:"suffix_token_id" validate:"required,max=64"`
	Pledges       map[string]string `json:"pledges"`
}

// mintArgs is the minting_interface argument payload.
type mintArgs struct {
	SuffixTokenID string             `json:"suffix_token_id"`
	HashOfAmounts map[uint16]float64 `json:"hash_of_amounts"`
	IssuedAt      uint64             `json:"issued_at"`
}

// Receipt describes a submitted mint.
type Receipt struct {
	SuffixTokenID   string             `json:"suffix_token_id"`
	HashOfAmounts   map[uint16]float64 `json:"hash_of_amounts"`
	IssuedAt        uint64             `json:"issued_at"`
	Deposit         string             `json:"deposit"`
	TransactionHash string             `json:"transaction_hash"`
	SuccessValue    json.RawMessage    `json:"success_value,omitempty"`
}
