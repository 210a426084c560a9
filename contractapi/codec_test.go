package contractapi

import (
	"errors"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/cloudx-io/openescrow/core"
)

func TestDecodeNewAuction(t *testing.T) {
	want := core.NewAuctionParameter{
		Item:          "vintage watch",
		End:           time.Date(2025, 4, 1, 10, 30, 0, 123456789, time.UTC),
		InitialPrice:  100,
		TokenContract: core.ContractAddress{Index: 12, Subindex: 0},
		TokenID:       3,
		TokenAmount:   1,
	}

	p, err := EncodeParameter(want)
	assert.NoError(t, err)

	got, err := DecodeNewAuction(p)
	assert.NoError(t, err)
	check.Equal(t, want.Item, got.Item)
	check.True(t, want.End.Equal(got.End))
	check.Equal(t, want.InitialPrice, got.InitialPrice)
	check.Equal(t, want.TokenContract, got.TokenContract)
	check.Equal(t, want.TokenID, got.TokenID)
	check.Equal(t, want.TokenAmount, got.TokenAmount)
}

func TestDecodeNewAuction_MissingEnd(t *testing.T) {
	tests := []struct {
		name  string
		param Parameter
	}{
		{
			name: "end omitted",
			param: MustEncodeParameter(map[string]any{
				"item":           "vintage watch",
				"initial_price":  100,
				"token_contract": map[string]any{"index": 12, "subindex": 0},
				"token_id":       3,
				"token_amount":   1,
			}),
		},
		{
			name:  "zero end",
			param: MustEncodeParameter(core.NewAuctionParameter{Item: "vintage watch", InitialPrice: 100, TokenAmount: 1}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeNewAuction(tt.param)
			check.True(t, errors.Is(err, core.ErrParameterParsing))
		})
	}
}

func TestDecodeBid(t *testing.T) {
	got, err := DecodeBid(MustEncodeParameter(core.BidParameter{AuctionID: 9}))
	assert.NoError(t, err)
	check.Equal(t, core.AuctionID(9), got.AuctionID)
}

func TestDecodeParameter_Malformed(t *testing.T) {
	unknownField, _ := cbor.Marshal(map[string]any{"auction_id": 1, "amount": 5})
	wrongType, _ := cbor.Marshal(map[string]any{"auction_id": "one"})
	negative, _ := cbor.Marshal(map[string]any{"auction_id": -1})
	valid := MustEncodeParameter(core.BidParameter{AuctionID: 1})
	trailing := append(append(Parameter{}, valid...), 0x01)

	tests := []struct {
		name  string
		input Parameter
	}{
		{"empty", nil},
		{"garbage", Parameter{0xff, 0xfe, 0x00}},
		{"truncated", valid[:len(valid)-1]},
		{"trailing bytes", trailing},
		{"unknown field", unknownField},
		{"wrong field type", wrongType},
		{"negative id", negative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBid(tt.input)
			check.True(t, errors.Is(err, core.ErrParameterParsing))
			check.Equal(t, core.ErrParameterParsing.RejectCode(), core.RejectCodeOf(err))
		})
	}
}

func TestDecodeTokenReceipt(t *testing.T) {
	want := core.TokenReceipt{
		TokenID: 1,
		Amount:  10,
		From:    core.AccountSender("alice"),
	}

	got, err := DecodeTokenReceipt(MustEncodeParameter(want))
	assert.NoError(t, err)
	check.Equal(t, want.From, got.From)
	check.Equal(t, want.Amount, got.Amount)
}

func TestErrorResponse(t *testing.T) {
	resp := ErrorResponse(TypeBid, core.ErrBidTooLate)
	check.Equal(t, "bid_response", resp.Type)
	check.False(t, resp.Success)
	check.Equal(t, "BidTooLate", resp.Error)
	check.Equal(t, int32(-4), resp.RejectCode)

	resp = ErrorResponse(TypeBid, core.ErrAborted)
	check.Equal(t, "", resp.Error)
	check.Equal(t, core.AbortCode, resp.RejectCode)
}
