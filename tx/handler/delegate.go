package handler

import (
	"context"

	"github.com/starshop/gov-node/state"
	"github.com/starshop/gov-node/tx"
	"github.com/starshop/gov-node/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type DelegateTxHandler struct {
	logger cmtlog.Logger
}

func NewDelegateTxHandler(logger cmtlog.Logger) (h *DelegateTxHandler) {
	h = &DelegateTxHandler{logger: logger.With("module", "delegateTx")}
	return
}

func (h *DelegateTxHandler) Check(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	stx := btx.Tx.(*tx.DelegateTx)
	_, err1 := st.Delegate(stx, btx.Account, true)
	if err1 != nil {
		h.logger.Info("CheckTx DelegateTx fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *DelegateTxHandler) NewContext(ctx context.Context) {}

func (h *DelegateTxHandler) handle(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	wtx := btx.Tx.(*tx.DelegateTx)
	event, err := st.Delegate(wtx, btx.Account, false)
	if err != nil {
		return nil, err
	}
	res = &abcitypes.ExecTxResult{}
	if event != nil {
		res.Events = []abcitypes.Event{types.EncodeEventDelegated(event)}
	}
	return
}

func (h *DelegateTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *DelegateTxHandler) Process(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

type UndelegateTxHandler struct {
	logger cmtlog.Logger
}

func NewUndelegateTxHandler(logger cmtlog.Logger) (h *UndelegateTxHandler) {
	h = &UndelegateTxHandler{logger: logger.With("module", "undelegateTx")}
	return
}

func (h *UndelegateTxHandler) Check(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	stx := btx.Tx.(*tx.UndelegateTx)
	_, err1 := st.Undelegate(stx, btx.Account, true)
	if err1 != nil {
		h.logger.Info("CheckTx UndelegateTx fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *UndelegateTxHandler) NewContext(ctx context.Context) {}

func (h *UndelegateTxHandler) handle(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	wtx := btx.Tx.(*tx.UndelegateTx)
	event, err := st.Undelegate(wtx, btx.Account, false)
	if err != nil {
		return nil, err
	}
	res = &abcitypes.ExecTxResult{}
	if event != nil {
		res.Events = []abcitypes.Event{types.EncodeEventUndelegated(event)}
	}
	return
}

func (h *UndelegateTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *UndelegateTxHandler) Process(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}
