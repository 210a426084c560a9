// Package sandbox is an in-memory host for the escrow auction contract. It
// keeps native currency balances, CIS-2 token balances and a clock, and
// reverts every balance change of a call that returns an error.
package sandbox

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"

	"github.com/cloudx-io/openescrow/core"
)

var (
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrUnknownToken       = errors.New("unknown token contract")
	ErrTransferRejected   = errors.New("transfer rejected")
	ErrNoReceiveEntry     = errors.New("receiver contract has no entry point")
	ErrNotInCall          = errors.New("not inside a call")
	ErrCallAlreadyRunning = errors.New("call already running")
)

// ReceiveHook is the token receipt entry point of a contract.
type ReceiveHook func(ctx context.Context, inv core.Invocation, receipt core.TokenReceipt) error

type tokenKey struct {
	contract core.ContractAddress
	id       core.TokenID
	holder   core.Address
}

// Chain simulates the host of one contract instance.
//
// Mutating methods are safe for concurrent use, but contract calls must be
// serialized through Call.
type Chain struct {
	mu sync.Mutex

	self     core.ContractAddress
	now      time.Time
	balances map[core.AccountAddress]core.Amount
	// contractBalance is the native currency held by self.
	contractBalance core.Amount

	tokenContracts map[core.ContractAddress]bool
	tokens         map[tokenKey]core.TokenAmount
	receivers      map[core.ContractAddress]ReceiveHook

	events []core.Event

	failAccounts map[core.AccountAddress]error

	// journal holds undo steps of the running call; nil outside a call.
	journal []func()
	inCall  bool
}

// NewChain returns an empty chain hosting the contract at self.
func NewChain(self core.ContractAddress, now time.Time) *Chain {
	return &Chain{
		self:           self,
		now:            now,
		balances:       make(map[core.AccountAddress]core.Amount),
		tokenContracts: make(map[core.ContractAddress]bool),
		tokens:         make(map[tokenKey]core.TokenAmount),
		receivers:      make(map[core.ContractAddress]ReceiveHook),
		failAccounts:   make(map[core.AccountAddress]error),
	}
}

// Self returns the address of the hosted contract.
func (c *Chain) Self() core.ContractAddress {
	return c.self
}

// Now returns the current slot time.
func (c *Chain) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// SetTime moves the clock to t.
func (c *Chain) SetTime(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d.
func (c *Chain) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Invocation returns the call context for sender at the current slot time.
func (c *Chain) Invocation(sender core.Address) core.Invocation {
	return core.Invocation{Sender: sender, SlotTime: c.Now()}
}

// Fund credits amount to an account.
func (c *Chain) Fund(account core.AccountAddress, amount core.Amount) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[account] += amount
}

// Balance returns the native currency balance of an account.
func (c *Chain) Balance(account core.AccountAddress) core.Amount {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balances[account]
}

// ContractBalance returns the native currency held by the hosted contract.
func (c *Chain) ContractBalance() core.Amount {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.contractBalance
}

// FailTransfersTo makes every currency transfer to account fail with err.
// A nil err clears the failure.
func (c *Chain) FailTransfersTo(account core.AccountAddress, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.failAccounts, account)
		return
	}
	c.failAccounts[account] = err
}

// Call runs fn as one transaction of the hosted contract. amount is moved
// from the sender to the contract before fn runs. If fn returns an error,
// every balance change made during the call is reverted.
func (c *Chain) Call(ctx context.Context, sender core.Address, amount core.Amount, fn func(ctx context.Context, inv core.Invocation) error) error {
	c.mu.Lock()
	if c.inCall {
		c.mu.Unlock()
		return ErrCallAlreadyRunning
	}
	c.inCall = true
	c.journal = c.journal[:0]
	inv := core.Invocation{Sender: sender, SlotTime: c.now}

	if amount > 0 {
		account, ok := sender.AsAccount()
		if !ok || c.balances[account] < amount {
			c.inCall = false
			c.mu.Unlock()
			return errors.Wrapf(ErrInsufficientFunds, "attach %d from %s", amount, sender)
		}
		c.moveCurrencyLocked(account, amount, false)
	}
	c.mu.Unlock()

	err := fn(ctx, inv)

	c.mu.Lock()
	defer c.mu.Unlock()
	journal := c.journal
	c.journal = nil
	c.inCall = false
	if err != nil {
		for i := len(journal) - 1; i >= 0; i-- {
			journal[i]()
		}
	}
	return err
}

// moveCurrencyLocked moves amount between an account and the contract. With
// toAccount set the contract pays the account, otherwise the account pays the
// contract.
func (c *Chain) moveCurrencyLocked(account core.AccountAddress, amount core.Amount, toAccount bool) {
	if toAccount {
		c.contractBalance -= amount
		c.balances[account] += amount
	} else {
		c.balances[account] -= amount
		c.contractBalance += amount
	}
	c.record(func() {
		c.moveCurrencyLocked(account, amount, !toAccount)
	})
}

// record appends an undo step for the running call.
func (c *Chain) record(undo func()) {
	if c.inCall {
		c.journal = append(c.journal, undo)
	}
}

// InvokeTransfer pays amount from the contract to an account.
func (c *Chain) InvokeTransfer(_ context.Context, to core.AccountAddress, amount core.Amount) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.inCall {
		return ErrNotInCall
	}
	if err, ok := c.failAccounts[to]; ok {
		return errors.Wrapf(err, "transfer to %s", to)
	}
	if c.contractBalance < amount {
		return errors.Wrapf(ErrInsufficientFunds, "contract holds %d, transfer needs %d", c.contractBalance, amount)
	}
	c.moveCurrencyLocked(to, amount, true)
	return nil
}

// Log records a contract event.
func (c *Chain) Log(_ context.Context, event core.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	n := len(c.events)
	c.record(func() {
		c.events = c.events[:n-1]
	})
	return nil
}

// Events returns every event logged by committed calls.
func (c *Chain) Events() []core.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]core.Event, len(c.events))
	copy(out, c.events)
	return out
}
