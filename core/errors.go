package core

import (
	"github.com/go-faster/errors"
)

// ErrorKind is the flat error taxonomy returned by every entry point.
// Each kind maps to a stable host rejection code.
type ErrorKind int32

const (
	ErrOnlyAccount             ErrorKind = -1
	ErrBidBelowCurrentBid      ErrorKind = -2
	ErrBidTooLate              ErrorKind = -4
	ErrAuctionAlreadyFinalized ErrorKind = -5
	ErrAuctionNotFound         ErrorKind = -6
	ErrParameterParsing        ErrorKind = -7
	ErrAuctionStillActive      ErrorKind = -8
	ErrTransferFailed          ErrorKind = -9
	ErrOnlyNotOwner            ErrorKind = -10
	ErrTokenReceiptMismatch    ErrorKind = -11
)

var errorKindNames = map[ErrorKind]string{
	ErrOnlyAccount:             "OnlyAccount",
	ErrBidBelowCurrentBid:      "BidBelowCurrentBid",
	ErrBidTooLate:              "BidTooLate",
	ErrAuctionAlreadyFinalized: "AuctionAlreadyFinalized",
	ErrAuctionNotFound:         "AuctionNotFound",
	ErrParameterParsing:        "ParameterParsingError",
	ErrAuctionStillActive:      "AuctionStillActive",
	ErrTransferFailed:          "TransferFailed",
	ErrOnlyNotOwner:            "OnlyNotOwner",
	ErrTokenReceiptMismatch:    "TokenReceiptMismatch",
}

func (k ErrorKind) Error() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// RejectCode is the code the host reports to the caller.
func (k ErrorKind) RejectCode() int32 {
	return int32(k)
}

// AbortCode is reported when a call traps instead of returning an error kind.
const AbortCode int32 = -1000

// ErrAborted marks an unrecoverable failure. The call is abandoned and none of
// its writes are kept.
var ErrAborted = errors.New("call aborted")

// RejectCodeOf maps any error returned by the engine to a host rejection code.
// It returns 0 for a nil error.
func RejectCodeOf(err error) int32 {
	if err == nil {
		return 0
	}
	var kind ErrorKind
	if errors.As(err, &kind) {
		return kind.RejectCode()
	}
	return AbortCode
}

// KindOf returns the taxonomy kind carried by err, if any.
func KindOf(err error) (ErrorKind, bool) {
	var kind ErrorKind
	if errors.As(err, &kind) {
		return kind, true
	}
	return 0, false
}
