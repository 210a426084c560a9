package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
	"go.uber.org/zap"

	"github.com/cloudx-io/openescrow/contractapi"
	"github.com/cloudx-io/openescrow/core"
)

var (
	testSelf  = core.ContractAddress{Index: 100}
	testToken = core.ContractAddress{Index: 7}
	testStart = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	testEnd   = testStart.Add(24 * time.Hour)
)

func newTestService(t *testing.T, stateFile string) *Service {
	t.Helper()
	svc, err := NewService(ServiceOptions{
		Self:      testSelf,
		Deployer:  "deployer",
		StateFile: stateFile,
		Now:       testStart,
	}, zap.NewNop())
	assert.NoError(t, err)
	return svc
}

func call(svc *Service, req contractapi.Request) contractapi.Response {
	return svc.Handle(context.Background(), req)
}

func account(a core.AccountAddress) core.Address {
	return core.AccountSender(a)
}

func seed(t *testing.T, svc *Service) {
	t.Helper()
	resp := call(svc, contractapi.Request{
		Type:          contractapi.TypeMint,
		TokenContract: testToken,
		TokenID:       1,
		Holder:        account("alice"),
		TokenAmount:   1,
	})
	assert.True(t, resp.Success)
	for _, a := range []core.AccountAddress{"bob", "carol"} {
		resp = call(svc, contractapi.Request{Type: contractapi.TypeFund, Account: a, Amount: 1000})
		assert.True(t, resp.Success)
	}
}

func createRequest() contractapi.Request {
	return contractapi.Request{
		Type:   contractapi.TypeCreateAuction,
		Sender: account("alice"),
		Parameter: contractapi.MustEncodeParameter(core.NewAuctionParameter{
			Item:          "first edition",
			End:           testEnd,
			InitialPrice:  100,
			TokenContract: testToken,
			TokenID:       1,
			TokenAmount:   1,
		}),
	}
}

func bidRequest(bidder core.AccountAddress, id core.AuctionID, amount core.Amount) contractapi.Request {
	return contractapi.Request{
		Type:      contractapi.TypeBid,
		Sender:    account(bidder),
		Amount:    amount,
		Parameter: contractapi.MustEncodeParameter(core.BidParameter{AuctionID: id}),
	}
}

func TestService_AuctionLifecycle(t *testing.T) {
	svc := newTestService(t, "")
	seed(t, svc)

	resp := call(svc, createRequest())
	assert.True(t, resp.Success)
	check.Equal(t, "create_auction_response", resp.Type)
	assert.NotNil(t, resp.AuctionID)
	id := *resp.AuctionID
	check.Equal(t, core.AuctionID(0), id)
	assert.Equal(t, 1, len(resp.Events))
	check.Equal(t, core.RegisterEvent(id), resp.Events[0])

	resp = call(svc, bidRequest("bob", id, 150))
	check.True(t, resp.Success)

	resp = call(svc, bidRequest("carol", id, 120))
	check.False(t, resp.Success)
	check.Equal(t, "BidBelowCurrentBid", resp.Error)
	check.Equal(t, core.ErrBidBelowCurrentBid.RejectCode(), resp.RejectCode)

	resp = call(svc, bidRequest("carol", id, 200))
	check.True(t, resp.Success)
	check.Equal(t, core.Amount(1000), svc.chain.Balance("bob"))

	finalize := contractapi.Request{
		Type:      contractapi.TypeFinalize,
		Sender:    account("bob"),
		Parameter: contractapi.MustEncodeParameter(core.BidParameter{AuctionID: id}),
	}
	resp = call(svc, finalize)
	check.Equal(t, "AuctionStillActive", resp.Error)

	timeAfterEnd := testEnd.Add(time.Second)
	resp = call(svc, contractapi.Request{Type: contractapi.TypeSetTime, Time: &timeAfterEnd})
	assert.True(t, resp.Success)

	resp = call(svc, finalize)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, len(resp.Events))
	check.Equal(t, core.EventTokenTransfer, resp.Events[0].Type)
	check.Equal(t, core.AccountAddress("carol"), resp.Events[0].To)

	check.Equal(t, core.Amount(20), svc.chain.Balance("deployer"))
	check.Equal(t, core.Amount(180), svc.chain.Balance("alice"))

	resp = call(svc, finalize)
	check.Equal(t, "AuctionAlreadyFinalized", resp.Error)

	resp = call(svc, contractapi.Request{
		Type:      contractapi.TypeGetAuction,
		Parameter: contractapi.MustEncodeParameter(core.BidParameter{AuctionID: id}),
	})
	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Auction)
	check.Equal(t, core.Sold("carol"), resp.Auction.State)
}

func TestService_ParameterParsingError(t *testing.T) {
	svc := newTestService(t, "")

	for _, requestType := range []string{
		contractapi.TypeCreateAuction,
		contractapi.TypeBid,
		contractapi.TypeFinalize,
		contractapi.TypeGetAuction,
		contractapi.TypeOnReceivingCIS2,
	} {
		t.Run(requestType, func(t *testing.T) {
			resp := call(svc, contractapi.Request{
				Type:      requestType,
				Sender:    account("alice"),
				Parameter: contractapi.Parameter{0xa1, 0x01},
			})
			check.False(t, resp.Success)
			check.Equal(t, "ParameterParsingError", resp.Error)
			check.Equal(t, int32(-7), resp.RejectCode)
		})
	}
}

func TestService_GetAuctionNotFound(t *testing.T) {
	svc := newTestService(t, "")

	resp := call(svc, contractapi.Request{
		Type:      contractapi.TypeGetAuction,
		Parameter: contractapi.MustEncodeParameter(core.BidParameter{AuctionID: 3}),
	})
	check.False(t, resp.Success)
	check.Equal(t, "AuctionNotFound", resp.Error)

	resp = call(svc, contractapi.Request{Type: contractapi.TypeViewAuctions})
	check.True(t, resp.Success)
	check.Equal(t, 0, len(resp.Auctions))
}

func TestService_TokenReceiptFromAccountIgnored(t *testing.T) {
	svc := newTestService(t, "")

	receipt := contractapi.MustEncodeParameter(core.TokenReceipt{TokenID: 1, Amount: 1, From: account("alice")})

	resp := call(svc, contractapi.Request{Type: contractapi.TypeOnReceivingCIS2, Sender: account("alice"), Parameter: receipt})
	check.True(t, resp.Success)

	resp = call(svc, contractapi.Request{Type: contractapi.TypeOnReceivingCIS2, Sender: core.ContractSender(testToken), Parameter: receipt})
	check.Equal(t, "TokenReceiptMismatch", resp.Error)
}

func TestService_UnknownRequest(t *testing.T) {
	svc := newTestService(t, "")

	resp := call(svc, contractapi.Request{Type: "withdraw"})
	check.False(t, resp.Success)
	check.Equal(t, "withdraw_response", resp.Type)
	check.Equal(t, core.AbortCode, resp.RejectCode)
}

func TestService_WallClockRejectsSetTime(t *testing.T) {
	svc, err := NewService(ServiceOptions{Self: testSelf, Deployer: "deployer", WallClock: true}, zap.NewNop())
	assert.NoError(t, err)

	resp := call(svc, contractapi.Request{Type: contractapi.TypeSetTime, Time: &testStart})
	check.False(t, resp.Success)
}

func TestService_StateSurvivesRestart(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "escrow.state")

	svc := newTestService(t, stateFile)
	seed(t, svc)
	resp := call(svc, createRequest())
	assert.True(t, resp.Success)
	resp = call(svc, bidRequest("bob", 0, 150))
	assert.True(t, resp.Success)

	restarted := newTestService(t, stateFile)
	resp = call(restarted, contractapi.Request{Type: contractapi.TypeViewAuctions})
	assert.True(t, resp.Success)
	assert.Equal(t, 1, len(resp.Auctions))

	auction := resp.Auctions[0]
	check.Equal(t, "first edition", auction.Item)
	check.Equal(t, core.Amount(150), auction.HighestBid)
	assert.NotNil(t, auction.HighestBidder)
	check.Equal(t, core.AccountAddress("bob"), *auction.HighestBidder)
	check.True(t, auction.End.Equal(testEnd))
	check.Equal(t, core.AccountAddress("deployer"), restarted.registry.CommissionRecipient())
}

func TestService_RejectedCreateKeepsStateLoadable(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "escrow.state")

	svc := newTestService(t, stateFile)
	seed(t, svc)

	withoutEnd := createRequest()
	withoutEnd.Parameter = contractapi.MustEncodeParameter(map[string]any{
		"item":           "first edition",
		"initial_price":  100,
		"token_contract": map[string]any{"index": testToken.Index, "subindex": testToken.Subindex},
		"token_id":       1,
		"token_amount":   1,
	})
	resp := call(svc, withoutEnd)
	check.False(t, resp.Success)
	check.Equal(t, "ParameterParsingError", resp.Error)

	anonymous := createRequest()
	anonymous.Sender = core.Address{Kind: core.AddressKindAccount}
	resp = call(svc, anonymous)
	check.False(t, resp.Success)
	check.Equal(t, "OnlyAccount", resp.Error)

	resp = call(svc, createRequest())
	assert.True(t, resp.Success)

	restarted := newTestService(t, stateFile)
	resp = call(restarted, contractapi.Request{Type: contractapi.TypeViewAuctions})
	assert.True(t, resp.Success)
	assert.Equal(t, 1, len(resp.Auctions))
	check.Equal(t, core.AccountAddress("alice"), resp.Auctions[0].Owner)
}
