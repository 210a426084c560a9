package core

// Registry owns every auction of a contract instance together with the
// commission recipient fixed at init. Auctions are append-only; the id of an
// auction is its position in the sequence.
//
// Registry is not safe for concurrent use. The host serializes calls.
type Registry struct {
	auctions            []Auction
	commissionRecipient AccountAddress
}

// NewRegistry returns an empty registry. recipient receives the commission of
// every settled auction for the lifetime of the registry.
func NewRegistry(recipient AccountAddress) *Registry {
	return &Registry{
		auctions:            make([]Auction, 0),
		commissionRecipient: recipient,
	}
}

// CommissionRecipient returns the account set at init.
func (r *Registry) CommissionRecipient() AccountAddress {
	return r.commissionRecipient
}

// Len returns the number of auctions ever registered.
func (r *Registry) Len() int {
	return len(r.auctions)
}

// Append adds auction at the end and returns its id.
func (r *Registry) Append(auction Auction) AuctionID {
	r.auctions = append(r.auctions, auction.clone())
	return AuctionID(len(r.auctions) - 1)
}

// Get returns a copy of the auction with the given id.
func (r *Registry) Get(id AuctionID) (Auction, error) {
	if int(id) >= len(r.auctions) {
		return Auction{}, ErrAuctionNotFound
	}
	return r.auctions[id].clone(), nil
}

// GetMut returns the stored auction for in-place updates. The pointer is only
// valid until the next Append.
func (r *Registry) GetMut(id AuctionID) (*Auction, error) {
	if int(id) >= len(r.auctions) {
		return nil, ErrAuctionNotFound
	}
	return &r.auctions[id], nil
}

// Snapshot returns a copy of every auction in id order.
func (r *Registry) Snapshot() []Auction {
	out := make([]Auction, len(r.auctions))
	for i, a := range r.auctions {
		out[i] = a.clone()
	}
	return out
}

// checkpoint captures the registry so that a failed call can be undone.
type checkpoint struct {
	auctions []Auction
}

func (r *Registry) checkpoint() checkpoint {
	return checkpoint{auctions: r.Snapshot()}
}

func (r *Registry) restore(cp checkpoint) {
	r.auctions = cp.auctions
}
