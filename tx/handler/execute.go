package handler

import (
	"context"

	"github.com/starshop/gov-node/state"
	"github.com/starshop/gov-node/tx"
	"github.com/starshop/gov-node/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

// ExecuteTxHandler applies passed proposals through the configured
// action targets. A failing target check is reported as an
// execution_failed event, not a tx failure, so the proposal stays
// retryable.
type ExecuteTxHandler struct {
	logger  cmtlog.Logger
	targets state.Targets
}

func NewExecuteTxHandler(logger cmtlog.Logger, targets state.Targets) (h *ExecuteTxHandler) {
	h = &ExecuteTxHandler{
		logger:  logger.With("module", "executeTx"),
		targets: targets,
	}
	return
}

func (h *ExecuteTxHandler) Check(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	stx := btx.Tx.(*tx.ExecuteProposalTx)
	_, _, err1 := st.ExecuteProposal(stx, btx.Account, true, h.targets)
	if err1 != nil {
		h.logger.Info("CheckTx ExecuteProposalTx fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *ExecuteTxHandler) NewContext(ctx context.Context) {}

func (h *ExecuteTxHandler) handle(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	wtx := btx.Tx.(*tx.ExecuteProposalTx)
	event, failEvent, err := st.ExecuteProposal(wtx, btx.Account, false, h.targets)
	if err != nil {
		return nil, err
	}
	res = &abcitypes.ExecTxResult{}
	if event != nil {
		res.Events = []abcitypes.Event{types.EncodeEventProposalExecuted(event)}
	}
	if failEvent != nil {
		res.Events = []abcitypes.Event{types.EncodeEventExecutionFailed(failEvent)}
	}
	return
}

func (h *ExecuteTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *ExecuteTxHandler) Process(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}
