package core

import (
	"testing"

	"github.com/peterldowns/testy/check"
)

func TestBidBeatsStanding(t *testing.T) {
	bidder := AccountAddress("bidder")

	tests := []struct {
		name     string
		auction  Auction
		amount   Amount
		expected bool
	}{
		{"first bid above initial price", Auction{InitialPrice: 100}, 101, true},
		{"first bid at initial price", Auction{InitialPrice: 100}, 100, false},
		{"first bid below initial price", Auction{InitialPrice: 100}, 50, false},
		{"first bid with zero initial price", Auction{}, 1, true},
		{"zero bid with zero initial price", Auction{}, 0, false},
		{"above highest bid", Auction{InitialPrice: 100, HighestBid: 150, HighestBidder: &bidder}, 151, true},
		{"equal to highest bid", Auction{InitialPrice: 100, HighestBid: 150, HighestBidder: &bidder}, 150, false},
		{"between initial price and highest bid", Auction{InitialPrice: 100, HighestBid: 150, HighestBidder: &bidder}, 120, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check.Equal(t, tt.expected, BidBeatsStanding(tt.auction, tt.amount))
		})
	}
}

func TestBidThreshold(t *testing.T) {
	bidder := AccountAddress("bidder")

	check.Equal(t, Amount(100), BidThreshold(Auction{InitialPrice: 100}))
	check.Equal(t, Amount(150), BidThreshold(Auction{InitialPrice: 100, HighestBid: 150, HighestBidder: &bidder}))
}
