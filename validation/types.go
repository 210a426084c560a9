package validation

// StateValidationResult contains the results of validating persisted escrow state
type StateValidationResult struct {
	RecipientValid    bool
	AuctionsValid     bool
	InvalidAuctions   []uint32
	ValidationDetails []string
}

// IsValid returns true if all state validation checks passed
func (r *StateValidationResult) IsValid() bool {
	return r.RecipientValid && r.AuctionsValid
}
