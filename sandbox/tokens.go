package sandbox

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/cloudx-io/openescrow/core"
)

// Mint creates amount of a token and credits it to holder. The token contract
// is registered on first use.
func (c *Chain) Mint(tokenContract core.ContractAddress, id core.TokenID, holder core.Address, amount core.TokenAmount) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokenContracts[tokenContract] = true
	c.tokens[tokenKey{contract: tokenContract, id: id, holder: holder}] += amount
}

// TokenBalance returns the balance of holder for one token.
func (c *Chain) TokenBalance(tokenContract core.ContractAddress, id core.TokenID, holder core.Address) core.TokenAmount {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens[tokenKey{contract: tokenContract, id: id, holder: holder}]
}

// RegisterReceiver installs the token receipt entry point of a contract.
func (c *Chain) RegisterReceiver(contract core.ContractAddress, hook ReceiveHook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.receivers[contract] = hook
}

// RejectTokenTransfers makes every transfer on tokenContract fail.
func (c *Chain) RejectTokenTransfers(tokenContract core.ContractAddress, reject bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokenContracts[tokenContract] = !reject
}

// Transfer executes a CIS-2 transfer on tokenContract. Contract receivers are
// notified through their receive hook; a hook error undoes the transfer.
func (c *Chain) Transfer(ctx context.Context, tokenContract core.ContractAddress, t core.TokenTransfer) (bool, error) {
	c.mu.Lock()
	enabled, known := c.tokenContracts[tokenContract]
	if !known {
		c.mu.Unlock()
		return false, errors.Wrapf(ErrUnknownToken, "%s", tokenContract)
	}
	if !enabled {
		c.mu.Unlock()
		return false, errors.Wrapf(ErrTransferRejected, "token contract %s", tokenContract)
	}

	from := tokenKey{contract: tokenContract, id: t.TokenID, holder: t.From}
	to := tokenKey{contract: tokenContract, id: t.TokenID, holder: t.To.Address()}
	if c.tokens[from] < t.Amount {
		c.mu.Unlock()
		return false, errors.Wrapf(ErrInsufficientFunds, "token %d held by %s", t.TokenID, t.From)
	}

	var hook ReceiveHook
	if t.To.IsContract() {
		hook = c.receivers[t.To.Contract]
		if hook == nil {
			c.mu.Unlock()
			return false, errors.Wrapf(ErrNoReceiveEntry, "%s.%s", t.To.Contract, t.To.Entrypoint)
		}
	}

	c.moveTokensLocked(from, to, t.Amount)
	now := c.now
	c.mu.Unlock()

	if hook != nil {
		inv := core.Invocation{Sender: core.ContractSender(tokenContract), SlotTime: now}
		err := hook(ctx, inv, core.TokenReceipt{
			TokenID: t.TokenID,
			Amount:  t.Amount,
			From:    t.From,
			Data:    t.Data,
		})
		if err != nil {
			c.mu.Lock()
			c.moveTokensLocked(to, from, t.Amount)
			c.mu.Unlock()
			return false, errors.Wrapf(err, "receiver %s", t.To.Contract)
		}
	}

	return t.Amount > 0, nil
}

func (c *Chain) moveTokensLocked(from, to tokenKey, amount core.TokenAmount) {
	c.tokens[from] -= amount
	c.tokens[to] += amount
	c.record(func() {
		c.tokens[to] -= amount
		c.tokens[from] += amount
	})
}
