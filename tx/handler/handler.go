package handler

import (
	"context"

	"github.com/starshop/gov-node/state"
	"github.com/starshop/gov-node/tx"
	abcitypes "github.com/cometbft/cometbft/abci/types"
)

// TxHandler validates and applies one governance tx type. NewContext
// resets any per-block bookkeeping before a block is prepared or
// processed.
type TxHandler interface {
	Check(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ResponseCheckTx, err error)
	NewContext(ctx context.Context)
	Prepare(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error)
	Process(ctx context.Context, st *state.State, btx *tx.GovTx) (res *abcitypes.ExecTxResult, err error)
}
