package core

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// commissionRate is the share of a winning bid paid to the commission
// recipient.
var commissionRate = decimal.New(1, -1)

// SplitWinningBid divides a winning bid into the commission and the owner's
// proceeds. The commission is truncated to a whole unit, so the two parts
// always sum to bid.
func SplitWinningBid(bid Amount) (commission, ownerAmount Amount) {
	// Use decimal arithmetic so amounts above MaxInt64 stay exact
	bidDecimal := decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(bid)), 0)
	commissionDecimal := bidDecimal.Mul(commissionRate).Truncate(0)

	commission = Amount(commissionDecimal.BigInt().Uint64())
	return commission, bid - commission
}
