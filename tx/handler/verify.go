package handler

import (
	"context"

	"github.com/starshop/gov-node/state"
	"github.com/starshop/gov-node/tx"
	"github.com/starshop/gov-node/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type VerifyAccountTxHandler struct {
	logger cmtlog.Logger
}

func NewVerifyAccountTxHandler(logger cmtlog.Logger) (h *VerifyAccountTxHandler) {
	h = &VerifyAccountTxHandler{logger: logger.With("module", "verifyAccountTx")}
	return
}

func (h *VerifyAccountTxHandler) Check(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	stx := btx.Tx.(*tx.VerifyAccountTx)
	_, err1 := st.VerifyAccount(stx, btx.Account, true)
	if err1 != nil {
		h.logger.Info("CheckTx VerifyAccountTx fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *VerifyAccountTxHandler) NewContext(ctx context.Context) {}

func (h *VerifyAccountTxHandler) handle(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	wtx := btx.Tx.(*tx.VerifyAccountTx)
	event, err := st.VerifyAccount(wtx, btx.Account, false)
	if err != nil {
		return nil, err
	}
	res = &abcitypes.ExecTxResult{}
	if event != nil {
		res.Events = []abcitypes.Event{types.EncodeEventAccountVerified(event)}
	}
	return
}

func (h *VerifyAccountTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *VerifyAccountTxHandler) Process(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}
