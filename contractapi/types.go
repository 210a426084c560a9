package contractapi

import (
	"time"

	"github.com/cloudx-io/openescrow/core"
)

// Request types accepted by escrowd. The contract entry points mirror the
// on-chain names; the rest drive the simulated chain.
const (
	TypeCreateAuction   = "create_auction"
	TypeBid             = "bid"
	TypeFinalize        = "finalize"
	TypeViewAuctions    = "view_auctions"
	TypeGetAuction      = "get_auction"
	TypeOnReceivingCIS2 = "onReceivingCIS2"

	TypePing    = "ping"
	TypeFund    = "fund"
	TypeMint    = "mint"
	TypeSetTime = "set_time"
)

// Request is a single call sent to escrowd.
type Request struct {
	Type string `json:"type"`

	// Sender is the caller identity of a contract entry point.
	Sender core.Address `json:"sender"`

	// Amount is the native currency attached to bid, or credited by fund.
	Amount core.Amount `json:"amount,omitempty"`

	// Parameter is the CBOR encoded entry point parameter.
	Parameter Parameter `json:"parameter,omitempty"`

	// Fields below are used by the simulated chain requests.
	Account       core.AccountAddress  `json:"account,omitempty"`
	Holder        core.Address         `json:"holder,omitzero"`
	TokenContract core.ContractAddress `json:"token_contract,omitzero"`
	TokenID       core.TokenID         `json:"token_id,omitempty"`
	TokenAmount   core.TokenAmount     `json:"token_amount,omitempty"`
	Time          *time.Time           `json:"time,omitempty"`
}

// Response is returned for every request.
type Response struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id"`
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`

	// Error is the error kind name; RejectCode its host rejection code.
	Error      string `json:"error,omitempty"`
	RejectCode int32  `json:"reject_code,omitempty"`

	AuctionID *core.AuctionID `json:"auction_id,omitempty"`
	Auction   *core.Auction   `json:"auction,omitempty"`
	Auctions  []core.Auction  `json:"auctions,omitempty"`
	Events    []core.Event    `json:"events,omitempty"`

	ProcessingTime int64 `json:"processing_time_ms"`
}

// ResponseType is the type of the response to a request of type requestType.
func ResponseType(requestType string) string {
	return requestType + "_response"
}

// ErrorResponse builds a failed response for err.
func ErrorResponse(requestType string, err error) Response {
	resp := Response{
		Type:       ResponseType(requestType),
		Success:    false,
		Message:    err.Error(),
		RejectCode: core.RejectCodeOf(err),
	}
	if kind, ok := core.KindOf(err); ok {
		resp.Error = kind.Error()
	}
	return resp
}
