package core

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// Host executes native currency transfers on behalf of the contract.
type Host interface {
	InvokeTransfer(ctx context.Context, to AccountAddress, amount Amount) error
}

// Engine runs the auction lifecycle against a Registry.
//
// Every entry point behaves like a host transaction: if it returns an error,
// registry writes made during the call are discarded and its events are not
// published. Transfers already executed on external parties are not undone
// by the engine; the host is expected to revert them with the call.
//
// Engine is not safe for concurrent use. Callers must serialize invocations.
type Engine struct {
	registry *Registry
	host     Host
	escrow   *EscrowClient
	events   EventLogger
	logger   *zap.Logger

	// pending is the escrow of the create_auction call in progress, if any.
	pending *pendingEscrow
}

// pendingEscrow is what onReceivingCIS2 must observe while create_auction
// moves the item's token into custody.
type pendingEscrow struct {
	tokenContract ContractAddress
	tokenID       TokenID
	amount        TokenAmount
	from          AccountAddress
	received      bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for operational messages.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine wires an Engine to its registry and collaborators.
func NewEngine(registry *Registry, host Host, escrow *EscrowClient, events EventLogger, opts ...Option) *Engine {
	e := &Engine{
		registry: registry,
		host:     host,
		escrow:   escrow,
		events:   events,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// transact runs fn as one call: on error the registry is restored, on success
// buffered events are published in order.
func (e *Engine) transact(ctx context.Context, fn func(buf *eventBuffer) error) error {
	cp := e.registry.checkpoint()

	var buf eventBuffer
	if err := fn(&buf); err != nil {
		e.registry.restore(cp)
		return err
	}

	for _, event := range buf.events {
		if err := e.events.Log(ctx, event); err != nil {
			e.registry.restore(cp)
			return errors.Wrapf(ErrAborted, "log %s event: %s", event.Type, err)
		}
	}
	return nil
}

// CreateAuction escrows the item's token from the caller and registers a new
// auction. The token is taken into custody before the auction is recorded; if
// escrow fails nothing is registered.
func (e *Engine) CreateAuction(ctx context.Context, inv Invocation, p NewAuctionParameter) (AuctionID, error) {
	var id AuctionID
	err := e.transact(ctx, func(buf *eventBuffer) error {
		owner, ok := inv.Sender.AsAccount()
		if !ok {
			return ErrOnlyAccount
		}
		if p.End.IsZero() {
			return errors.Wrap(ErrParameterParsing, "end time missing")
		}

		pending := &pendingEscrow{
			tokenContract: p.TokenContract,
			tokenID:       p.TokenID,
			amount:        p.TokenAmount,
			from:          owner,
		}
		e.pending = pending
		defer func() { e.pending = nil }()

		changed, err := e.escrow.TransferIn(ctx, p.TokenContract, p.TokenID, p.TokenAmount, owner)
		if err != nil {
			e.logger.Warn("escrow transfer failed",
				zap.String("owner", string(owner)),
				zap.Stringer("token_contract", p.TokenContract),
				zap.Error(err))
			return errors.Wrapf(ErrTransferFailed, "%s", err)
		}
		if !pending.received {
			return errors.Wrapf(ErrTransferFailed, "token contract %s did not notify receipt", p.TokenContract)
		}

		id = e.registry.Append(Auction{
			State:         NotSoldYet(),
			InitialPrice:  p.InitialPrice,
			Item:          p.Item,
			End:           p.End,
			Owner:         owner,
			TokenContract: p.TokenContract,
			TokenID:       p.TokenID,
			TokenAmount:   p.TokenAmount,
		})
		buf.add(RegisterEvent(id))

		e.logger.Info("auction registered",
			zap.Uint32("auction_id", uint32(id)),
			zap.String("owner", string(owner)),
			zap.String("item", p.Item),
			zap.Bool("token_state_changed", changed))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// OnReceivingTokens handles the token receipt notification. Notifications from
// accounts are ignored. A contract notification must describe exactly the
// escrow of the create_auction call in progress.
func (e *Engine) OnReceivingTokens(_ context.Context, inv Invocation, receipt TokenReceipt) error {
	tokenContract, ok := inv.Sender.AsContract()
	if !ok {
		e.logger.Debug("ignoring token receipt from non-contract sender", zap.Stringer("sender", inv.Sender))
		return nil
	}

	p := e.pending
	if p == nil || p.received ||
		tokenContract != p.tokenContract ||
		receipt.TokenID != p.tokenID ||
		receipt.Amount != p.amount ||
		receipt.From != AccountSender(p.from) {
		e.logger.Warn("unexpected token receipt",
			zap.Stringer("token_contract", tokenContract),
			zap.Uint8("token_id", uint8(receipt.TokenID)),
			zap.Uint64("amount", uint64(receipt.Amount)))
		return ErrTokenReceiptMismatch
	}

	p.received = true
	return nil
}

// Bid places amount on an open auction. The previous highest bidder, if any,
// is refunded in full once the new bid is recorded. A failed refund aborts the
// call.
func (e *Engine) Bid(ctx context.Context, inv Invocation, p BidParameter, amount Amount) error {
	return e.transact(ctx, func(_ *eventBuffer) error {
		auction, err := e.registry.GetMut(p.AuctionID)
		if err != nil {
			return err
		}
		if auction.State.Status != StatusNotSoldYet {
			return ErrAuctionAlreadyFinalized
		}
		if !auction.IsOpen(inv.SlotTime) {
			return ErrBidTooLate
		}

		bidder, ok := inv.Sender.AsAccount()
		if !ok {
			return ErrOnlyAccount
		}
		if bidder == auction.Owner {
			return ErrOnlyNotOwner
		}
		if !BidBeatsStanding(*auction, amount) {
			return ErrBidBelowCurrentBid
		}

		previousBid := auction.HighestBid
		previousBidder := auction.HighestBidder

		auction.HighestBid = amount
		auction.HighestBidder = &bidder

		if previousBidder != nil {
			if err := e.host.InvokeTransfer(ctx, *previousBidder, previousBid); err != nil {
				e.logger.Error("refund failed, aborting bid",
					zap.Uint32("auction_id", uint32(p.AuctionID)),
					zap.String("bidder", string(*previousBidder)),
					zap.Error(err))
				return errors.Wrapf(ErrAborted, "refund %d to %s: %s", previousBid, *previousBidder, err)
			}
		}

		e.logger.Info("bid accepted",
			zap.Uint32("auction_id", uint32(p.AuctionID)),
			zap.String("bidder", string(bidder)),
			zap.Uint64("amount", uint64(amount)))
		return nil
	})
}

// Finalize settles an auction after its end. With a winner the token goes to
// the winner and the bid is split between the commission recipient and the
// owner; without one the token goes back to the owner.
func (e *Engine) Finalize(ctx context.Context, inv Invocation, p BidParameter) error {
	return e.transact(ctx, func(buf *eventBuffer) error {
		recipient := e.registry.CommissionRecipient()
		auction, err := e.registry.Get(p.AuctionID)
		if err != nil {
			return err
		}
		if auction.State.Status != StatusNotSoldYet {
			return ErrAuctionAlreadyFinalized
		}
		if !inv.SlotTime.After(auction.End) {
			return ErrAuctionStillActive
		}

		stored, err := e.registry.GetMut(p.AuctionID)
		if err != nil {
			return err
		}

		if auction.HighestBidder == nil {
			stored.State = Returned()
			if err := e.releaseToken(ctx, buf, p.AuctionID, auction, auction.Owner); err != nil {
				return err
			}
			e.logger.Info("auction ended without bids, token returned",
				zap.Uint32("auction_id", uint32(p.AuctionID)),
				zap.String("owner", string(auction.Owner)))
			return nil
		}

		winner := *auction.HighestBidder
		commission, ownerAmount := SplitWinningBid(auction.HighestBid)
		stored.State = Sold(winner)

		if err := e.releaseToken(ctx, buf, p.AuctionID, auction, winner); err != nil {
			return err
		}
		if err := e.host.InvokeTransfer(ctx, recipient, commission); err != nil {
			e.logger.Warn("commission payout failed", zap.Uint32("auction_id", uint32(p.AuctionID)), zap.Error(err))
			return errors.Wrapf(ErrTransferFailed, "pay commission %d to %s: %s", commission, recipient, err)
		}
		if err := e.host.InvokeTransfer(ctx, auction.Owner, ownerAmount); err != nil {
			e.logger.Warn("owner payout failed", zap.Uint32("auction_id", uint32(p.AuctionID)), zap.Error(err))
			return errors.Wrapf(ErrTransferFailed, "pay %d to owner %s: %s", ownerAmount, auction.Owner, err)
		}

		e.logger.Info("auction sold",
			zap.Uint32("auction_id", uint32(p.AuctionID)),
			zap.String("winner", string(winner)),
			zap.Uint64("highest_bid", uint64(auction.HighestBid)),
			zap.Uint64("commission", uint64(commission)),
			zap.Uint64("owner_amount", uint64(ownerAmount)))
		return nil
	})
}

// releaseToken moves the escrowed token of auction to an account and records
// the transfer result.
func (e *Engine) releaseToken(ctx context.Context, buf *eventBuffer, id AuctionID, auction Auction, to AccountAddress) error {
	changed, err := e.escrow.TransferOut(ctx, auction.TokenContract, auction.TokenID, auction.TokenAmount, to)
	if err != nil {
		e.logger.Warn("token release failed",
			zap.Uint32("auction_id", uint32(id)),
			zap.String("to", string(to)),
			zap.Error(err))
		return errors.Wrapf(ErrTransferFailed, "%s", err)
	}
	buf.add(Event{
		Type:         EventTokenTransfer,
		AuctionID:    id,
		To:           to,
		TokenID:      auction.TokenID,
		TokenAmount:  auction.TokenAmount,
		StateChanged: changed,
	})
	return nil
}

// ViewAuctions returns a copy of every auction.
func (e *Engine) ViewAuctions() []Auction {
	return e.registry.Snapshot()
}

// GetAuction returns a copy of one auction.
func (e *Engine) GetAuction(id AuctionID) (Auction, error) {
	return e.registry.Get(id)
}
