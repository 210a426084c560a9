package core

import (
	"context"

	"github.com/go-faster/errors"
)

// ReceiveEntrypoint is the entry point token contracts call on this contract
// after crediting it.
const ReceiveEntrypoint = "onReceivingCIS2"

// Receiver is the destination of a token transfer. A contract receiver names
// the entry point the token contract must notify.
type Receiver struct {
	Account    AccountAddress  `json:"account,omitempty" cbor:"account,omitempty"`
	Contract   ContractAddress `json:"contract,omitzero" cbor:"contract,omitempty"`
	Entrypoint string          `json:"entrypoint,omitempty" cbor:"entrypoint,omitempty"`
}

// AccountReceiver sends tokens to an account.
func AccountReceiver(a AccountAddress) Receiver {
	return Receiver{Account: a}
}

// ContractReceiver sends tokens to a contract and asks the token contract to
// call entrypoint on it.
func ContractReceiver(c ContractAddress, entrypoint string) Receiver {
	return Receiver{Contract: c, Entrypoint: entrypoint}
}

// IsContract reports whether the receiver is a contract.
func (r Receiver) IsContract() bool {
	return r.Entrypoint != ""
}

// Address returns the receiver as a caller address.
func (r Receiver) Address() Address {
	if r.IsContract() {
		return ContractSender(r.Contract)
	}
	return AccountSender(r.Account)
}

// TokenTransfer is a single CIS-2 transfer instruction.
type TokenTransfer struct {
	TokenID TokenID     `json:"token_id" cbor:"token_id"`
	Amount  TokenAmount `json:"amount" cbor:"amount"`
	From    Address     `json:"from" cbor:"from"`
	To      Receiver    `json:"to" cbor:"to"`
	Data    []byte      `json:"data,omitempty" cbor:"data,omitempty"`
}

// TokenClient invokes the transfer entry point of a token contract. The bool
// reports whether the token contract changed its state.
type TokenClient interface {
	Transfer(ctx context.Context, tokenContract ContractAddress, transfer TokenTransfer) (bool, error)
}

// EscrowClient moves escrowed tokens between accounts and this contract.
type EscrowClient struct {
	tokens TokenClient
	self   ContractAddress
}

// NewEscrowClient returns an EscrowClient acting on behalf of self.
func NewEscrowClient(tokens TokenClient, self ContractAddress) *EscrowClient {
	return &EscrowClient{tokens: tokens, self: self}
}

// TransferIn moves amount of tokenID from an account into custody.
func (c *EscrowClient) TransferIn(ctx context.Context, tokenContract ContractAddress, tokenID TokenID, amount TokenAmount, from AccountAddress) (bool, error) {
	changed, err := c.tokens.Transfer(ctx, tokenContract, TokenTransfer{
		TokenID: tokenID,
		Amount:  amount,
		From:    AccountSender(from),
		To:      ContractReceiver(c.self, ReceiveEntrypoint),
	})
	if err != nil {
		return false, errors.Wrapf(err, "escrow %d of token %d from %s", amount, tokenID, from)
	}
	return changed, nil
}

// TransferOut moves amount of tokenID out of custody to an account.
func (c *EscrowClient) TransferOut(ctx context.Context, tokenContract ContractAddress, tokenID TokenID, amount TokenAmount, to AccountAddress) (bool, error) {
	changed, err := c.tokens.Transfer(ctx, tokenContract, TokenTransfer{
		TokenID: tokenID,
		Amount:  amount,
		From:    ContractSender(c.self),
		To:      AccountReceiver(to),
	})
	if err != nil {
		return false, errors.Wrapf(err, "release %d of token %d to %s", amount, tokenID, to)
	}
	return changed, nil
}
