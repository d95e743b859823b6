package ledger

import (
	"fmt"
	"math/big"
	"strings"
)

const (
	// NEARNominationExp is the number of decimals between NEAR and yoctoNEAR.
	NEARNominationExp = 24

	// TGas is one teragas.
	TGas uint64 = 1_000_000_000_000
)

var yoctoPerNEAR = new(big.Int).Exp(big.NewInt(10), big.NewInt(NEARNominationExp), nil)

// ParseNEARAmount converts a decimal NEAR string ("3.3") into yoctoNEAR. It
// accepts the same shape as near-api-js: optional commas, at most 24
// fractional digits, no sign and no exponent.
func ParseNEARAmount(amount string) (*big.Int, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(amount, ",", ""))
	if cleaned == "" {
		return nil, fmt.Errorf("empty NEAR amount")
	}
	whole, frac, _ := strings.Cut(cleaned, ".")
	if strings.Contains(frac, ".") {
		return nil, fmt.Errorf("invalid NEAR amount %q", amount)
	}
	if len(frac) > NEARNominationExp {
		return nil, fmt.Errorf("NEAR amount %q has more than %d fractional digits", amount, NEARNominationExp)
	}
	if whole == "" {
		whole = "0"
	}
	digits := whole + frac + strings.Repeat("0", NEARNominationExp-len(frac))
	for _, r := range digits {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("invalid NEAR amount %q", amount)
		}
	}
	yocto, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("invalid NEAR amount %q", amount)
	}
	return yocto, nil
}

// FormatNEARAmount renders yoctoNEAR as a decimal NEAR string without trailing zeros.
func FormatNEARAmount(yocto *big.Int) string {
	whole, frac := new(big.Int).QuoRem(yocto, yoctoPerNEAR, new(big.Int))
	if frac.Sign() == 0 {
		return whole.String()
	}
	fracStr := frac.String()
	fracStr = strings.Repeat("0", NEARNominationExp-len(fracStr)) + fracStr
	return whole.String() + "." + strings.TrimRight(fracStr, "0")
}

// u128 encodes v as a little-endian 16 byte array, the borsh layout of u128.
func u128(v *big.Int) ([16]byte, error) {
	var out [16]byte
	if v.Sign() < 0 {
		return out, fmt.Errorf("negative u128 %s", v)
	}
	be := v.Bytes()
	if len(be) > len(out) {
		return out, fmt.Errorf("value %s overflows u128", v)
	}
	for i, b := range be {
		out[len(be)-1-i] = b
	}
	return out, nil
}
