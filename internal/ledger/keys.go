package ledger

import (
	"crypto/ed25519"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

const ed25519Prefix = "ed25519:"

// keyTypeED25519 is the borsh discriminant for ed25519 keys and signatures.
const keyTypeED25519 uint8 = 0

// KeyPair is an ed25519 signing key in NEAR's string encoding.
type KeyPair struct {
	private ed25519.PrivateKey
}

// ParseKeyPair accepts "ed25519:<base58>" where the payload is either a
// 64 byte secret key (seed + public key) or a 32 byte seed.
func ParseKeyPair(s string) (*KeyPair, error) {
	encoded, ok := strings.CutPrefix(s, ed25519Prefix)
	if !ok {
		return nil, fmt.Errorf("unsupported key type in %q", truncateKey(s))
	}
	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode secret key: %w", err)
	}
	switch len(raw) {
	case ed25519.PrivateKeySize:
		return &KeyPair{private: ed25519.PrivateKey(raw)}, nil
	case ed25519.SeedSize:
		return &KeyPair{private: ed25519.NewKeyFromSeed(raw)}, nil
	default:
		return nil, fmt.Errorf("secret key has %d bytes, want %d or %d", len(raw), ed25519.PrivateKeySize, ed25519.SeedSize)
	}
}

// NewKeyPairFromSeed builds a key pair from a 32 byte seed.
func NewKeyPairFromSeed(seed []byte) *KeyPair {
	return &KeyPair{private: ed25519.NewKeyFromSeed(seed)}
}

// PublicKey returns the borsh representation of the public half.
func (k *KeyPair) PublicKey() PublicKey {
	var pk PublicKey
	pk.KeyType = keyTypeED25519
	copy(pk.Data[:], k.private.Public().(ed25519.PublicKey))
	return pk
}

// Sign signs msg and returns the borsh signature.
func (k *KeyPair) Sign(msg []byte) Signature {
	var sig Signature
	sig.KeyType = keyTypeED25519
	copy(sig.Data[:], ed25519.Sign(k.private, msg))
	return sig
}

// String renders the public key as "ed25519:<base58>".
func (p PublicKey) String() string {
	return ed25519Prefix + base58.Encode(p.Data[:])
}

func truncateKey(s string) string {
	if len(s) > 12 {
		return s[:12] + "..."
	}
	return s
}
