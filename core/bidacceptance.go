package core

// BidThreshold returns the amount a new bid has to strictly exceed: the
// initial price before the first bid, the highest bid afterwards.
func BidThreshold(a Auction) Amount {
	if a.HighestBid == 0 {
		return a.InitialPrice
	}
	return a.HighestBid
}

// BidBeatsStanding reports whether amount would become the new highest bid.
func BidBeatsStanding(a Auction, amount Amount) bool {
	return amount > BidThreshold(a)
}
