package ledger

import (
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/mr-tron/base58"
	"github.com/near/borsh-go"
)

// PublicKey is the borsh layout of a NEAR public key.
type PublicKey struct {
	KeyType uint8
	Data    [32]byte
}

// Signature is the borsh layout of a NEAR signature.
type Signature struct {
	KeyType uint8
	Data    [64]byte
}

// CreateAccount carries no payload; it only keeps the action discriminants aligned.
type CreateAccount struct{}

// DeployContract uploads contract code. Never built here; see CreateAccount.
type DeployContract struct {
	Code []byte
}

// FunctionCall invokes a contract method with attached gas and deposit.
type FunctionCall struct {
	MethodName string
	Args       []byte
	Gas        uint64
	Deposit    [16]byte // u128, little-endian
}

// Action is the borsh enum of transaction actions. Variant order matches the
// protocol: CreateAccount=0, DeployContract=1, FunctionCall=2.
type Action struct {
	Enum           borsh.Enum `borsh_enum:"true"`
	CreateAccount  CreateAccount
	DeployContract DeployContract
	FunctionCall   FunctionCall
}

const actionFunctionCall borsh.Enum = 2

// Transaction is the unsigned body submitted to the ledger.
type Transaction struct {
	SignerID   string
	PublicKey  PublicKey
	Nonce      uint64
	ReceiverID string
	BlockHash  [32]byte
	Actions    []Action
}

// SignedTransaction is what broadcast_tx_commit accepts, base64 encoded.
type SignedTransaction struct {
	Transaction Transaction
	Signature   Signature
}

// NewFunctionCallAction builds a FunctionCall action with a yoctoNEAR deposit.
func NewFunctionCallAction(method string, args []byte, gas uint64, deposit *big.Int) (Action, error) {
	amount, err := u128(deposit)
	if err != nil {
		return Action{}, fmt.Errorf("encode deposit: %w", err)
	}
	return Action{
		Enum: actionFunctionCall,
		FunctionCall: FunctionCall{
			MethodName: method,
			Args:       args,
			Gas:        gas,
			Deposit:    amount,
		},
	}, nil
}

// SignTransaction serializes tx, signs its sha256 digest and returns the
// serialized signed transaction plus the base58 transaction hash.
func SignTransaction(tx Transaction, key *KeyPair) ([]byte, string, error) {
	body, err := borsh.Serialize(tx)
	if err != nil {
		return nil, "", fmt.Errorf("serialize transaction: %w", err)
	}
	digest := sha256.Sum256(body)

	signed, err := borsh.Serialize(SignedTransaction{
		Transaction: tx,
		Signature:   key.Sign(digest[:]),
	})
	if err != nil {
		return nil, "", fmt.Errorf("serialize signed transaction: %w", err)
	}
	return signed, base58.Encode(digest[:]), nil
}

func decodeBlockHash(s string) ([32]byte, error) {
	var hash [32]byte
	raw, err := base58.Decode(s)
	if err != nil {
		return hash, fmt.Errorf("decode block hash: %w", err)
	}
	if len(raw) != len(hash) {
		return hash, fmt.Errorf("block hash has %d bytes, want %d", len(raw), len(hash))
	}
	copy(hash[:], raw)
	return hash, nil
}
