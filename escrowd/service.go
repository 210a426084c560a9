package main

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/cloudx-io/openescrow/contractapi"
	"github.com/cloudx-io/openescrow/core"
	"github.com/cloudx-io/openescrow/sandbox"
)

var (
	errUnknownRequest = errors.New("unknown request type")
	errClockFollowed  = errors.New("clock follows wall time")
)

// ServiceOptions configures a Service.
type ServiceOptions struct {
	Self      core.ContractAddress
	Deployer  core.AccountAddress
	StateFile string
	// WallClock syncs the chain clock to the wall clock before every request.
	WallClock bool
	// Now is the initial chain time. Zero means time.Now.
	Now time.Time
}

// Service hosts one contract instance on a simulated chain and serializes
// every request against it.
type Service struct {
	mu sync.Mutex

	chain     *sandbox.Chain
	registry  *core.Registry
	engine    *core.Engine
	store     *StateStore
	wallClock bool
	logger    *zap.Logger
}

// NewService deploys the contract, restoring persisted state when a state
// file exists.
func NewService(opts ServiceOptions, logger *zap.Logger) (*Service, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	chain := sandbox.NewChain(opts.Self, now)

	var store *StateStore
	var registry *core.Registry
	if opts.StateFile != "" {
		store = NewStateStore(opts.StateFile)
		loaded, ok, err := store.Load()
		if err != nil {
			return nil, err
		}
		if ok {
			registry = loaded
			logger.Info("contract state restored",
				zap.String("state_file", opts.StateFile),
				zap.Int("auctions", registry.Len()))
			if registry.CommissionRecipient() != opts.Deployer {
				logger.Warn("configured deployer differs from persisted commission recipient, keeping persisted",
					zap.String("deployer", string(opts.Deployer)),
					zap.String("commission_recipient", string(registry.CommissionRecipient())))
			}
		}
	}
	if registry == nil {
		registry = core.Init(opts.Deployer)
		logger.Info("contract initialized", zap.String("commission_recipient", string(opts.Deployer)))
	}

	engine := core.NewEngine(registry, chain, core.NewEscrowClient(chain, opts.Self), chain,
		core.WithLogger(logger.Named("engine")))
	chain.RegisterReceiver(opts.Self, engine.OnReceivingTokens)
	auctionsRegistered.Set(float64(registry.Len()))

	return &Service{
		chain:     chain,
		registry:  registry,
		engine:    engine,
		store:     store,
		wallClock: opts.WallClock,
		logger:    logger,
	}, nil
}

// Handle executes one request and builds its response.
func (s *Service) Handle(ctx context.Context, req contractapi.Request) contractapi.Response {
	s.mu.Lock()
	defer s.mu.Unlock()

	startTime := time.Now()
	if s.wallClock {
		s.chain.SetTime(startTime.UTC())
	}

	eventsBefore := len(s.chain.Events())
	resp, err := s.dispatch(ctx, req)
	observeCall(req.Type, err)

	if err != nil {
		resp = contractapi.ErrorResponse(req.Type, err)
		s.logger.Info("request rejected",
			zap.String("type", req.Type),
			zap.Stringer("sender", req.Sender),
			zap.Int32("reject_code", resp.RejectCode),
			zap.Error(err))
	} else {
		resp.Type = contractapi.ResponseType(req.Type)
		resp.Success = true
		if events := s.chain.Events(); len(events) > eventsBefore {
			resp.Events = events[eventsBefore:]
		}
	}
	resp.ProcessingTime = time.Since(startTime).Milliseconds()
	return resp
}

func (s *Service) dispatch(ctx context.Context, req contractapi.Request) (contractapi.Response, error) {
	var resp contractapi.Response

	switch req.Type {
	case contractapi.TypeCreateAuction:
		p, err := contractapi.DecodeNewAuction(req.Parameter)
		if err != nil {
			return resp, err
		}
		var id core.AuctionID
		err = s.chain.Call(ctx, req.Sender, 0, func(ctx context.Context, inv core.Invocation) error {
			var err error
			id, err = s.engine.CreateAuction(ctx, inv, p)
			return err
		})
		if err != nil {
			return resp, err
		}
		s.persist()
		resp.AuctionID = &id

	case contractapi.TypeBid:
		p, err := contractapi.DecodeBid(req.Parameter)
		if err != nil {
			return resp, err
		}
		err = s.chain.Call(ctx, req.Sender, req.Amount, func(ctx context.Context, inv core.Invocation) error {
			return s.engine.Bid(ctx, inv, p, req.Amount)
		})
		if err != nil {
			return resp, err
		}
		s.persist()

	case contractapi.TypeFinalize:
		p, err := contractapi.DecodeBid(req.Parameter)
		if err != nil {
			return resp, err
		}
		err = s.chain.Call(ctx, req.Sender, 0, func(ctx context.Context, inv core.Invocation) error {
			return s.engine.Finalize(ctx, inv, p)
		})
		if err != nil {
			return resp, err
		}
		s.persist()

	case contractapi.TypeOnReceivingCIS2:
		receipt, err := contractapi.DecodeTokenReceipt(req.Parameter)
		if err != nil {
			return resp, err
		}
		err = s.chain.Call(ctx, req.Sender, 0, func(ctx context.Context, inv core.Invocation) error {
			return s.engine.OnReceivingTokens(ctx, inv, receipt)
		})
		if err != nil {
			return resp, err
		}

	case contractapi.TypeViewAuctions:
		resp.Auctions = s.engine.ViewAuctions()

	case contractapi.TypeGetAuction:
		p, err := contractapi.DecodeBid(req.Parameter)
		if err != nil {
			return resp, err
		}
		auction, err := s.engine.GetAuction(p.AuctionID)
		if err != nil {
			return resp, err
		}
		resp.Auction = &auction

	case contractapi.TypePing:
		resp.Message = "escrow contract is healthy"

	case contractapi.TypeFund:
		s.chain.Fund(req.Account, req.Amount)
		resp.Message = "account funded"

	case contractapi.TypeMint:
		s.chain.Mint(req.TokenContract, req.TokenID, req.Holder, req.TokenAmount)
		resp.Message = "tokens minted"

	case contractapi.TypeSetTime:
		if s.wallClock {
			return resp, errClockFollowed
		}
		if req.Time == nil {
			return resp, errors.New("set_time needs a time")
		}
		s.chain.SetTime(*req.Time)
		resp.Message = "chain time set"

	default:
		return resp, errors.Wrapf(errUnknownRequest, "%q", req.Type)
	}

	return resp, nil
}

// persist writes the committed state. A failed write is logged; the call has
// already committed on chain.
func (s *Service) persist() {
	auctionsRegistered.Set(float64(s.registry.Len()))
	if s.store == nil {
		return
	}
	if err := s.store.Save(s.registry); err != nil {
		s.logger.Error("failed to persist contract state", zap.Error(err))
	}
}
