package handler

import (
	"context"

	"github.com/starshop/gov-node/state"
	"github.com/starshop/gov-node/tx"
	"github.com/starshop/gov-node/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type ActivateTxHandler struct {
	logger cmtlog.Logger
}

func NewActivateTxHandler(logger cmtlog.Logger) (h *ActivateTxHandler) {
	h = &ActivateTxHandler{logger: logger.With("module", "activateTx")}
	return
}

func (h *ActivateTxHandler) Check(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	stx := btx.Tx.(*tx.ActivateProposalTx)
	_, err1 := st.ActivateProposal(stx, btx.Account, true)
	if err1 != nil {
		h.logger.Info("CheckTx ActivateProposalTx fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *ActivateTxHandler) NewContext(ctx context.Context) {}

func (h *ActivateTxHandler) handle(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	wtx := btx.Tx.(*tx.ActivateProposalTx)
	event, err := st.ActivateProposal(wtx, btx.Account, false)
	if err != nil {
		return nil, err
	}
	res = &abcitypes.ExecTxResult{}
	if event != nil {
		res.Events = []abcitypes.Event{types.EncodeEventProposalActivated(event)}
	}
	return
}

func (h *ActivateTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *ActivateTxHandler) Process(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

type CancelTxHandler struct {
	logger cmtlog.Logger
}

func NewCancelTxHandler(logger cmtlog.Logger) (h *CancelTxHandler) {
	h = &CancelTxHandler{logger: logger.With("module", "cancelTx")}
	return
}

func (h *CancelTxHandler) Check(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	stx := btx.Tx.(*tx.CancelProposalTx)
	_, err1 := st.CancelProposal(stx, btx.Account, true)
	if err1 != nil {
		h.logger.Info("CheckTx CancelProposalTx fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *CancelTxHandler) NewContext(ctx context.Context) {}

func (h *CancelTxHandler) handle(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	wtx := btx.Tx.(*tx.CancelProposalTx)
	event, err := st.CancelProposal(wtx, btx.Account, false)
	if err != nil {
		return nil, err
	}
	res = &abcitypes.ExecTxResult{}
	if event != nil {
		res.Events = []abcitypes.Event{types.EncodeEventProposalCanceled(event)}
	}
	return
}

func (h *CancelTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *CancelTxHandler) Process(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

type VetoTxHandler struct {
	logger cmtlog.Logger
}

func NewVetoTxHandler(logger cmtlog.Logger) (h *VetoTxHandler) {
	h = &VetoTxHandler{logger: logger.With("module", "vetoTx")}
	return
}

func (h *VetoTxHandler) Check(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	stx := btx.Tx.(*tx.VetoProposalTx)
	_, err1 := st.VetoProposal(stx, btx.Account, true)
	if err1 != nil {
		h.logger.Info("CheckTx VetoProposalTx fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *VetoTxHandler) NewContext(ctx context.Context) {}

func (h *VetoTxHandler) handle(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	wtx := btx.Tx.(*tx.VetoProposalTx)
	event, err := st.VetoProposal(wtx, btx.Account, false)
	if err != nil {
		return nil, err
	}
	res = &abcitypes.ExecTxResult{}
	if event != nil {
		res.Events = []abcitypes.Event{types.EncodeEventProposalVetoed(event)}
	}
	return
}

func (h *VetoTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *VetoTxHandler) Process(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

type CloseTxHandler struct {
	logger cmtlog.Logger
}

func NewCloseTxHandler(logger cmtlog.Logger) (h *CloseTxHandler) {
	h = &CloseTxHandler{logger: logger.With("module", "closeTx")}
	return
}

func (h *CloseTxHandler) Check(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	stx := btx.Tx.(*tx.CloseProposalTx)
	_, err1 := st.CloseProposal(stx, btx.Account, true)
	if err1 != nil {
		h.logger.Info("CheckTx CloseProposalTx fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *CloseTxHandler) NewContext(ctx context.Context) {}

func (h *CloseTxHandler) handle(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	wtx := btx.Tx.(*tx.CloseProposalTx)
	event, err := st.CloseProposal(wtx, btx.Account, false)
	if err != nil {
		return nil, err
	}
	res = &abcitypes.ExecTxResult{}
	if event != nil {
		res.Events = []abcitypes.Event{types.EncodeEventProposalClosed(event)}
	}
	return
}

func (h *CloseTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *CloseTxHandler) Process(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}
