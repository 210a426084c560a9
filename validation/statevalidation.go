package validation

import (
	"fmt"

	"github.com/go-faster/errors"

	"github.com/cloudx-io/openescrow/core"
)

// ValidateStateBytes decodes CBOR encoded state and validates it.
//
// Returns:
//   - StateValidationResult with detailed results (call result.IsValid() to check overall status)
//   - error if the state cannot be decoded
func ValidateStateBytes(data []byte) (*StateValidationResult, error) {
	state, err := core.DecodeState(data)
	if err != nil {
		return nil, errors.Wrap(err, "validate state")
	}
	return ValidateState(state), nil
}

// ValidateState checks the invariants every committed escrow state holds:
// - A commission recipient is set
// - Each auction has an owner and a deadline
// - A highest bidder is recorded iff the highest bid is non-zero
// - A standing bid exceeds the initial price and was not placed by the owner
// - Sold auctions name the highest bidder as winner
// - Returned auctions never received a bid
func ValidateState(state core.State) *StateValidationResult {
	result := &StateValidationResult{AuctionsValid: true}

	if state.CommissionRecipient == "" {
		result.ValidationDetails = append(result.ValidationDetails, "Commission recipient missing")
	} else {
		result.RecipientValid = true
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Commission recipient: %s", state.CommissionRecipient))
	}

	for i, auction := range state.Auctions {
		problems := validateAuction(auction)
		if len(problems) == 0 {
			continue
		}
		result.AuctionsValid = false
		result.InvalidAuctions = append(result.InvalidAuctions, uint32(i))
		for _, problem := range problems {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Auction %d: %s", i, problem))
		}
	}

	if result.AuctionsValid {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("All %d auctions consistent", len(state.Auctions)))
	}
	return result
}

func validateAuction(a core.Auction) []string {
	var problems []string

	if a.Owner == "" {
		problems = append(problems, "owner missing")
	}
	if a.End.IsZero() {
		problems = append(problems, "end time missing")
	}

	hasBidder := a.HighestBidder != nil
	switch {
	case hasBidder && a.HighestBid == 0:
		problems = append(problems, fmt.Sprintf("highest bidder %s recorded without a bid", *a.HighestBidder))
	case !hasBidder && a.HighestBid != 0:
		problems = append(problems, fmt.Sprintf("highest bid %d recorded without a bidder", a.HighestBid))
	}
	if hasBidder {
		if a.HighestBid <= a.InitialPrice {
			problems = append(problems, fmt.Sprintf("highest bid %d does not exceed initial price %d", a.HighestBid, a.InitialPrice))
		}
		if *a.HighestBidder == a.Owner {
			problems = append(problems, "owner is the highest bidder")
		}
	}

	switch a.State.Status {
	case core.StatusNotSoldYet:
		if a.State.Winner != "" {
			problems = append(problems, "open auction has a winner")
		}
	case core.StatusSold:
		if !hasBidder || *a.HighestBidder != a.State.Winner {
			problems = append(problems, fmt.Sprintf("winner %s is not the highest bidder", a.State.Winner))
		}
	case core.StatusReturned:
		if hasBidder {
			problems = append(problems, "returned auction has a bidder")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown status %q", a.State.Status))
	}

	return problems
}
