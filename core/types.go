package core

import (
	"fmt"
	"time"
)

// AccountAddress identifies an externally owned account on the host chain.
type AccountAddress string

// ContractAddress identifies a contract instance on the host chain.
type ContractAddress struct {
	Index    uint64 `json:"index" cbor:"index"`
	Subindex uint64 `json:"subindex" cbor:"subindex"`
}

func (c ContractAddress) String() string {
	return fmt.Sprintf("<%d,%d>", c.Index, c.Subindex)
}

// AddressKind distinguishes account callers from contract callers.
type AddressKind string

const (
	AddressKindAccount  AddressKind = "account"
	AddressKindContract AddressKind = "contract"
)

// Address is the identity of a caller: either an account or a contract.
type Address struct {
	Kind     AddressKind     `json:"kind" cbor:"kind"`
	Account  AccountAddress  `json:"account,omitempty" cbor:"account,omitempty"`
	Contract ContractAddress `json:"contract,omitzero" cbor:"contract,omitempty"`
}

// AccountSender returns the Address of an account caller.
func AccountSender(a AccountAddress) Address {
	return Address{Kind: AddressKindAccount, Account: a}
}

// ContractSender returns the Address of a contract caller.
func ContractSender(c ContractAddress) Address {
	return Address{Kind: AddressKindContract, Contract: c}
}

// AsAccount returns the account behind the address, if it is one. An account
// address without an account is not an account.
func (a Address) AsAccount() (AccountAddress, bool) {
	if a.Kind != AddressKindAccount || a.Account == "" {
		return "", false
	}
	return a.Account, true
}

// AsContract returns the contract behind the address, if it is one.
func (a Address) AsContract() (ContractAddress, bool) {
	if a.Kind != AddressKindContract {
		return ContractAddress{}, false
	}
	return a.Contract, true
}

func (a Address) String() string {
	if a.Kind == AddressKindContract {
		return a.Contract.String()
	}
	return string(a.Account)
}

// Amount is a native currency amount in its smallest unit.
type Amount uint64

// TokenID is a CIS-2 token id (single byte ids).
type TokenID uint8

// TokenAmount is a CIS-2 token amount.
type TokenAmount uint64

// AuctionID is the zero-based position of an auction in the registry.
type AuctionID uint32

// AuctionStatus is the lifecycle position of an auction.
type AuctionStatus string

const (
	StatusNotSoldYet AuctionStatus = "not_sold_yet"
	StatusSold       AuctionStatus = "sold"
	// StatusReturned marks an auction that ended without bids and whose
	// token went back to the owner.
	StatusReturned AuctionStatus = "returned"
)

// AuctionState is the state of an auction. Winner is set only for StatusSold.
type AuctionState struct {
	Status AuctionStatus  `json:"status" cbor:"status"`
	Winner AccountAddress `json:"winner,omitempty" cbor:"winner,omitempty"`
}

// NotSoldYet is the state of every auction until it is finalized.
func NotSoldYet() AuctionState {
	return AuctionState{Status: StatusNotSoldYet}
}

// Sold is the terminal state of an auction with a winning bidder.
func Sold(winner AccountAddress) AuctionState {
	return AuctionState{Status: StatusSold, Winner: winner}
}

// Returned is the terminal state of an auction that ended without bids.
func Returned() AuctionState {
	return AuctionState{Status: StatusReturned}
}

// Auction is a single registered item with its escrowed token.
type Auction struct {
	State         AuctionState    `json:"auction_state" cbor:"auction_state"`
	HighestBidder *AccountAddress `json:"highest_bidder" cbor:"highest_bidder"`
	InitialPrice  Amount          `json:"initial_price" cbor:"initial_price"`
	HighestBid    Amount          `json:"highest_bid" cbor:"highest_bid"`
	Item          string          `json:"item" cbor:"item"`
	End           time.Time       `json:"end" cbor:"end"`
	Owner         AccountAddress  `json:"owner" cbor:"owner"`
	TokenContract ContractAddress `json:"token_contract" cbor:"token_contract"`
	TokenID       TokenID         `json:"token_id" cbor:"token_id"`
	TokenAmount   TokenAmount     `json:"token_amount" cbor:"token_amount"`
}

// clone returns a copy that shares no memory with a.
func (a Auction) clone() Auction {
	if a.HighestBidder != nil {
		bidder := *a.HighestBidder
		a.HighestBidder = &bidder
	}
	return a
}

// IsOpen reports whether the auction still accepts bids at slotTime.
func (a Auction) IsOpen(slotTime time.Time) bool {
	return a.State.Status == StatusNotSoldYet && !slotTime.After(a.End)
}

// NewAuctionParameter is the decoded payload of create_auction.
type NewAuctionParameter struct {
	Item          string          `json:"item" cbor:"item"`
	End           time.Time       `json:"end" cbor:"end"`
	InitialPrice  Amount          `json:"initial_price" cbor:"initial_price"`
	TokenContract ContractAddress `json:"token_contract" cbor:"token_contract"`
	TokenID       TokenID         `json:"token_id" cbor:"token_id"`
	TokenAmount   TokenAmount     `json:"token_amount" cbor:"token_amount"`
}

// BidParameter selects the auction for bid, finalize and get_auction.
type BidParameter struct {
	AuctionID AuctionID `json:"auction_id" cbor:"auction_id"`
}

// TokenReceipt is the notification a token contract sends to the
// onReceivingCIS2 entry point after moving tokens to this contract.
type TokenReceipt struct {
	TokenID TokenID     `json:"token_id" cbor:"token_id"`
	Amount  TokenAmount `json:"amount" cbor:"amount"`
	From    Address     `json:"from" cbor:"from"`
	Data    []byte      `json:"data,omitempty" cbor:"data,omitempty"`
}

// Invocation carries what the host supplies for every call.
type Invocation struct {
	Sender   Address
	SlotTime time.Time
}
