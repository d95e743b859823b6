package minting

import (
	"math"
	"strconv"
	"strings"
)

const (
	// baseDeposit covers storage for the mint itself.
	baseDeposit = 0.1
	// perPledgeFee is added on top of every pledged amount.
	perPledgeFee = 0.1
)

// composeAmounts reads the pledge for every category the contract knows and
// returns the per-category amounts with the attached deposit. Pledges that do
// not parse as finite, non-negative numbers are skipped.
func composeAmounts(categories map[string]uint16, pledges map[string]string) (map[uint16]float64, float64) {
	amounts := make(map[uint16]float64)
	deposit := baseDeposit
	for name, id := range categories {
		raw, ok := pledges[name]
		if !ok {
			continue
		}
		amount, ok := parsePledge(raw)
		if !ok {
			continue
		}
		amounts[id] = amount
		deposit += amount + perPledgeFee
	}
	return amounts, deposit
}

func parsePledge(raw string) (float64, bool) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return 0, false
	}
	return amount, true
}

// formatDeposit rounds to two significant digits and renders a plain decimal
// string: 3.3, 0.1, 120.
func formatDeposit(deposit float64) string {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(deposit, 'g', 2, 64), 64)
	if err != nil {
		rounded = deposit
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
