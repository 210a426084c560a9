package core

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/go-faster/errors"
)

// stateEncMode keeps sub-second precision of auction deadlines.
var stateEncMode = func() cbor.EncMode {
	em, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// State is the durable layout of a registry: the whole persisted contract
// state.
type State struct {
	Auctions            []Auction      `cbor:"auctions" json:"auctions"`
	CommissionRecipient AccountAddress `cbor:"commission_recipient" json:"commission_recipient"`
}

// Init builds the initial state of a new contract instance. The deployer
// becomes the commission recipient.
func Init(deployer AccountAddress) *Registry {
	return NewRegistry(deployer)
}

// State returns a copy of the registry in its durable layout.
func (r *Registry) State() State {
	return State{
		Auctions:            r.Snapshot(),
		CommissionRecipient: r.commissionRecipient,
	}
}

// NewRegistryFromState rebuilds a registry from persisted state.
func NewRegistryFromState(s State) (*Registry, error) {
	if s.CommissionRecipient == "" {
		return nil, errors.New("state has no commission recipient")
	}
	r := NewRegistry(s.CommissionRecipient)
	for _, a := range s.Auctions {
		r.Append(a)
	}
	return r, nil
}

// MarshalState encodes the registry as CBOR.
func (r *Registry) MarshalState() ([]byte, error) {
	data, err := stateEncMode.Marshal(r.State())
	if err != nil {
		return nil, errors.Wrap(err, "encode state")
	}
	return data, nil
}

// DecodeState decodes CBOR encoded state without building a registry.
func DecodeState(data []byte) (State, error) {
	var s State
	if err := cbor.Unmarshal(data, &s); err != nil {
		return State{}, errors.Wrap(err, "decode state")
	}
	return s, nil
}

// UnmarshalState decodes a CBOR encoded registry.
func UnmarshalState(data []byte) (*Registry, error) {
	s, err := DecodeState(data)
	if err != nil {
		return nil, err
	}
	return NewRegistryFromState(s)
}
