package contractapi

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/go-faster/errors"

	"github.com/cloudx-io/openescrow/core"
)

// Parameter is a CBOR encoded entry point parameter. It travels as base64 in
// JSON envelopes.
type Parameter []byte

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// EncodeParameter encodes v as an entry point parameter.
func EncodeParameter(v any) (Parameter, error) {
	data, err := encMode.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encode parameter")
	}
	return data, nil
}

// MustEncodeParameter is EncodeParameter for values known to encode.
func MustEncodeParameter(v any) Parameter {
	p, err := EncodeParameter(v)
	if err != nil {
		panic(err)
	}
	return p
}

// DecodeParameter decodes p strictly: empty input, trailing bytes, unknown
// fields and type mismatches all fail with core.ErrParameterParsing.
func DecodeParameter[T any](p Parameter) (T, error) {
	var v T
	if len(p) == 0 {
		return v, errors.Wrap(core.ErrParameterParsing, "empty parameter")
	}
	if err := decMode.Unmarshal(p, &v); err != nil {
		return v, errors.Wrapf(core.ErrParameterParsing, "%T: %s", v, err)
	}
	return v, nil
}

// DecodeNewAuction decodes the create_auction parameter. The end time is
// required.
func DecodeNewAuction(p Parameter) (core.NewAuctionParameter, error) {
	v, err := DecodeParameter[core.NewAuctionParameter](p)
	if err != nil {
		return v, err
	}
	if v.End.IsZero() {
		return v, errors.Wrap(core.ErrParameterParsing, "end time missing")
	}
	return v, nil
}

// DecodeBid decodes the parameter shared by bid, finalize and get_auction.
func DecodeBid(p Parameter) (core.BidParameter, error) {
	return DecodeParameter[core.BidParameter](p)
}

// DecodeTokenReceipt decodes the onReceivingCIS2 parameter.
func DecodeTokenReceipt(p Parameter) (core.TokenReceipt, error) {
	return DecodeParameter[core.TokenReceipt](p)
}
