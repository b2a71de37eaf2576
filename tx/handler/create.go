package handler

import (
	"context"

	"github.com/starshop/gov-node/state"
	"github.com/starshop/gov-node/tx"
	"github.com/starshop/gov-node/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type CreateProposalTxHandler struct {
	logger cmtlog.Logger

	proposerSet map[uint64]bool
}

func NewCreateProposalTxHandler(logger cmtlog.Logger) (h *CreateProposalTxHandler) {
	logger = logger.With("module", "createProposalTx")
	h = &CreateProposalTxHandler{
		logger:      logger,
		proposerSet: make(map[uint64]bool),
	}
	return
}

func (h *CreateProposalTxHandler) Check(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	stx := btx.Tx.(*tx.CreateProposalTx)
	_, err1 := st.CreateProposal(stx, btx.Account, true)
	if err1 != nil {
		h.logger.Info("CheckTx CreateProposalTx fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *CreateProposalTxHandler) NewContext(ctx context.Context) {
	h.proposerSet = make(map[uint64]bool)
}

func (h *CreateProposalTxHandler) handle(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	// one creation per proposer per block, the cooldown guard only
	// bites across blocks
	if _, ok := h.proposerSet[btx.Account]; ok {
		return nil, state.ErrCooldownActive
	}
	wtx := btx.Tx.(*tx.CreateProposalTx)
	event, err := st.CreateProposal(wtx, btx.Account, false)
	if err != nil {
		return nil, err
	}
	h.proposerSet[btx.Account] = true
	res = &abcitypes.ExecTxResult{}
	if event != nil {
		res.Events = []abcitypes.Event{types.EncodeEventProposalCreated(event)}
	}
	return
}

func (h *CreateProposalTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *CreateProposalTxHandler) Process(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}
