package app

import (
	"context"
	"encoding/json"

	"github.com/starshop/gov-node/config"
	"github.com/starshop/gov-node/state"
	"github.com/starshop/gov-node/tx"
	"github.com/starshop/gov-node/tx/handler"
	"github.com/starshop/gov-node/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cometbft/cometbft/store"
	"github.com/ethereum/go-ethereum/common"
)

type finalizeBlock struct {
	Height uint64
	Hash   common.Hash
}

func (b *finalizeBlock) Set(blk *abcitypes.RequestFinalizeBlock) {
	b.Height = uint64(blk.Height)
	b.Hash = common.BytesToHash(blk.Hash)
}

var _ abcitypes.Application = &GovApp{}

// GovApp is the governance engine behind the consensus node: one
// handler per tx type, a merkleized state db and a small query surface.
type GovApp struct {
	cfg    *config.GovAppConfig
	logger cmtlog.Logger

	db       *state.StateDB
	lastBlk  finalizeBlock
	txHdlrs  map[tx.GovTxType]handler.TxHandler
	queriers map[string]Querier
	targets  state.Targets

	st *state.State
}

func NewGovApp(cfg *config.GovAppConfig, logger cmtlog.Logger) (app *GovApp, err error) {
	logger = logger.With("module", "app")

	dir := cfg.Home + "/data"
	db, err := state.NewStateDB(dir, logger)
	if err != nil {
		return nil, err
	}
	return newGovApp(cfg, logger, db, state.DefaultTargets())
}

// NewGovAppWithDB wires the app over a prebuilt state db and action
// targets. Used by tests to inject failing targets and a memory store.
func NewGovAppWithDB(cfg *config.GovAppConfig, logger cmtlog.Logger, db *state.StateDB, targets state.Targets) (app *GovApp, err error) {
	return newGovApp(cfg, logger.With("module", "app"), db, targets)
}

func newGovApp(cfg *config.GovAppConfig, logger cmtlog.Logger, db *state.StateDB, targets state.Targets) (app *GovApp, err error) {
	app = &GovApp{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		txHdlrs:  make(map[tx.GovTxType]handler.TxHandler),
		queriers: make(map[string]Querier),
		targets:  targets,
	}
	app.registerTxHandler()
	app.registerQuerier()
	return
}

func (app *GovApp) Start(bs *store.BlockStore) {
	height := app.db.Header().Height
	if height > 0 {
		blk := bs.LoadBlock(int64(height))
		if blk == nil {
			panic("unexpected BlockStore")
		}
		app.lastBlk.Height = height
		app.lastBlk.Hash = common.BytesToHash(blk.Hash())
	}
}

func (app *GovApp) Stop() {
	err := app.db.Close()
	if err != nil {
		app.logger.Error("close db fail", "err", err)
	}
	app.logger.Info("gov app stopped")
}

func (app *GovApp) StateDB() *state.StateDB {
	return app.db
}

func (app *GovApp) registerTxHandler() {
	app.txHdlrs = map[tx.GovTxType]handler.TxHandler{
		tx.GovTxTypeCreateProposal: handler.NewCreateProposalTxHandler(app.logger),
		tx.GovTxTypeActivate:       handler.NewActivateTxHandler(app.logger),
		tx.GovTxTypeVote:           handler.NewVoteTxHandler(app.logger),
		tx.GovTxTypeDelegate:       handler.NewDelegateTxHandler(app.logger),
		tx.GovTxTypeUndelegate:     handler.NewUndelegateTxHandler(app.logger),
		tx.GovTxTypeCancel:         handler.NewCancelTxHandler(app.logger),
		tx.GovTxTypeVeto:           handler.NewVetoTxHandler(app.logger),
		tx.GovTxTypeClose:          handler.NewCloseTxHandler(app.logger),
		tx.GovTxTypeExecute:        handler.NewExecuteTxHandler(app.logger, app.targets),
		tx.GovTxTypeVerifyAccount:  handler.NewVerifyAccountTxHandler(app.logger),
	}
}

func (app *GovApp) registerQuerier() {
	app.queriers["/accounts/"] = NewAccountQuerier(app.db, app.logger)
	app.queriers["/proposals/"] = NewProposalQuerier(app.db, app.logger)
	app.queriers["/delegations/"] = NewDelegationQuerier(app.db, app.logger)
	app.queriers["/governance/"] = NewGovernanceQuerier(app.db, app.logger)
	app.queriers["/validators/"] = NewValidatorQuerier(app.db, app.logger)
}

func (app *GovApp) InitChain(_ context.Context, chain *abcitypes.RequestInitChain) (res *abcitypes.ResponseInitChain, err error) {
	st := app.db.NewState()
	st.SetChainId(chain.ChainId)
	st.SetBlockTime(uint64(chain.Time.Unix()))

	var gs types.GovGenesisState
	if len(chain.AppStateBytes) > 0 {
		if err = json.Unmarshal(chain.AppStateBytes, &gs); err != nil {
			app.logger.Error("InitChain parse app state fail", "err", err)
			return nil, err
		}
	}

	base := st.Header().AccountIdx
	for _, ga := range gs.Accounts {
		var acnt state.Account
		acnt.SetPubKey(ga.PubKey)
		acnt.Balance = ga.Balance
		acnt.Verified = ga.Verified
		acnt.Level = ga.Level
		if err = st.AddAccount(&acnt); err != nil {
			app.logger.Error("InitChain add account fail", "err", err)
			return nil, err
		}
	}
	for _, v := range chain.Validators {
		addr := ed25519.PubKey(v.PubKey.GetEd25519()).Address()
		a, ferr := st.FindAccount(addr)
		if ferr != nil {
			return nil, ferr
		}
		if a != nil {
			continue
		}
		var acnt state.Account
		acnt.SetPubKey(v.PubKey.GetEd25519())
		acnt.Balance = uint64(v.Power) * config.GWeiPerPower(0)
		if err = st.AddAccount(&acnt); err != nil {
			app.logger.Error("InitChain add validator account fail", "err", err)
			return nil, err
		}
	}

	// genesis role indexes are offsets into the account list
	if len(gs.Accounts) > 0 {
		st.SetAdmin(base + gs.AdminIndex)
		if len(gs.Moderators) > 0 {
			mods := make([]uint64, 0, len(gs.Moderators))
			for _, m := range gs.Moderators {
				mods = append(mods, base+m)
			}
			st.SetModerators(mods)
		}
	}
	if gs.Requirements != (types.Requirements{}) {
		st.SetRequirements(gs.Requirements)
	}

	var h common.Hash
	_, err = st.Update()
	if err != nil {
		app.logger.Error("InitChain update state fail", "err", err)
		return nil, err
	}
	h, err = app.db.SetState(st)
	if err != nil {
		app.logger.Error("InitChain apply state fail", "err", err)
		return nil, err
	}
	return &abcitypes.ResponseInitChain{
		AppHash: h.Bytes(),
	}, nil
}

func (app *GovApp) Info(ctx context.Context, info *abcitypes.RequestInfo) (*abcitypes.ResponseInfo, error) {
	header := app.db.Header()
	return &abcitypes.ResponseInfo{
		LastBlockHeight:  int64(header.Height),
		LastBlockAppHash: header.Hash,
	}, nil
}

func (app *GovApp) ExtendVote(_ context.Context, extend *abcitypes.RequestExtendVote) (*abcitypes.ResponseExtendVote, error) {
	return &abcitypes.ResponseExtendVote{}, nil
}

func (app *GovApp) VerifyVoteExtension(_ context.Context, verify *abcitypes.RequestVerifyVoteExtension) (*abcitypes.ResponseVerifyVoteExtension, error) {
	return &abcitypes.ResponseVerifyVoteExtension{}, nil
}

func (app *GovApp) ApplySnapshotChunk(context.Context, *abcitypes.RequestApplySnapshotChunk) (*abcitypes.ResponseApplySnapshotChunk, error) {
	return nil, nil
}

func (app *GovApp) ListSnapshots(context.Context, *abcitypes.RequestListSnapshots) (*abcitypes.ResponseListSnapshots, error) {
	return nil, nil
}

func (app *GovApp) LoadSnapshotChunk(context.Context, *abcitypes.RequestLoadSnapshotChunk) (*abcitypes.ResponseLoadSnapshotChunk, error) {
	return nil, nil
}

func (app *GovApp) OfferSnapshot(context.Context, *abcitypes.RequestOfferSnapshot) (*abcitypes.ResponseOfferSnapshot, error) {
	return nil, nil
}
