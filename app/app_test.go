package app

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/starshop/gov-node/config"
	"github.com/starshop/gov-node/state"
	"github.com/starshop/gov-node/tx"
	"github.com/starshop/gov-node/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/stretchr/testify/assert"
)

const testChainId = "gov-test-chain"

var testGenesisTime = time.Unix(1700000000, 0)

func newTestApp(t *testing.T) *GovApp {
	db, err := state.NewMemStateDB(cmtlog.NewNopLogger())
	assert.Nil(t, err)
	cfg := config.NewGovAppConfig(t.TempDir())
	app, err := NewGovAppWithDB(cfg, cmtlog.NewNopLogger(), db, state.DefaultTargets())
	assert.Nil(t, err)
	return app
}

func initTestChain(t *testing.T, app *GovApp, accounts []types.GenesisAccount) {
	gs := types.GovGenesisState{
		Accounts:     accounts,
		AdminIndex:   0,
		Requirements: types.DefaultRequirements(),
	}
	dat, err := json.Marshal(gs)
	assert.Nil(t, err)
	res, err := app.InitChain(context.Background(), &abcitypes.RequestInitChain{
		ChainId:       testChainId,
		Time:          testGenesisTime,
		AppStateBytes: dat,
	})
	assert.Nil(t, err)
	assert.NotEmpty(t, res.AppHash)
}

func signedTx(t *testing.T, priv ed25519.PrivKey, account, nonce uint64, tp tx.GovTxType, payload any) []byte {
	btx := &tx.GovTx{
		Version: tx.GovTxVersion1,
		Type:    tp,
		Nonce:   nonce,
		Account: account,
		Tx:      payload,
	}
	dat, err := btx.SigData([]byte(testChainId))
	assert.Nil(t, err)
	sig, err := priv.Sign(dat)
	assert.Nil(t, err)
	btx.Sig = [][]byte{sig}
	raw, err := tx.MarshalGovTx(btx)
	assert.Nil(t, err)
	return raw
}

func finalizeAndCommit(t *testing.T, app *GovApp, height int64, at time.Time, txs [][]byte) *abcitypes.ResponseFinalizeBlock {
	ctx := context.Background()
	res, err := app.FinalizeBlock(ctx, &abcitypes.RequestFinalizeBlock{
		Height: height,
		Time:   at,
		Txs:    txs,
	})
	assert.Nil(t, err)
	for i, r := range res.TxResults {
		assert.Equal(t, uint32(0), r.Code, "tx %d: %s", i, r.Log)
	}
	_, err = app.Commit(ctx, &abcitypes.RequestCommit{})
	assert.Nil(t, err)
	return res
}

func TestProposalLifecycleOverABCI(t *testing.T) {
	app := newTestApp(t)

	adminKey := ed25519.GenPrivKey()
	aliceKey := ed25519.GenPrivKey()
	initTestChain(t, app, []types.GenesisAccount{
		{PubKey: adminKey.PubKey().Bytes(), Verified: true},
		{PubKey: aliceKey.PubKey().Bytes(), Balance: 1000, Verified: true},
	})
	admin := uint64(state.StartAccountIdx)
	alice := uint64(state.StartAccountIdx + 1)

	create := signedTx(t, aliceKey, alice, 0, tx.GovTxTypeCreateProposal, &tx.CreateProposalTx{
		Title:        "raise reward rate",
		ProposalType: types.ProposalTypeGovernance,
		Actions: []types.Action{
			{Kind: types.ActionUpdateRewardRate, RewardRate: &types.RewardRatePayload{RateBp: 750}},
		},
		VotingConfig: types.VotingConfig{Duration: 3600, QuorumBp: 2000, ThresholdBp: 5000},
	})
	finalizeAndCommit(t, app, 1, testGenesisTime.Add(5*time.Second), [][]byte{create})

	p, _, err := app.StateDB().GetProposal(1)
	assert.Nil(t, err)
	assert.Equal(t, types.ProposalStatusDraft, p.Status)
	assert.Equal(t, alice, p.Proposer)

	activate := signedTx(t, adminKey, admin, 0, tx.GovTxTypeActivate, &tx.ActivateProposalTx{Proposal: 1})
	vote := signedTx(t, aliceKey, alice, 1, tx.GovTxTypeVote, &tx.VoteTx{Proposal: 1, Support: true})
	openedAt := testGenesisTime.Add(10 * time.Second)
	finalizeAndCommit(t, app, 2, openedAt, [][]byte{activate, vote})

	p, _, err = app.StateDB().GetProposal(1)
	assert.Nil(t, err)
	assert.Equal(t, types.ProposalStatusActive, p.Status)
	assert.Equal(t, uint64(1000), p.WeightFor)

	// an empty block past the deadline settles the window; the closed
	// event rides on the block, not on any tx
	res := finalizeAndCommit(t, app, 3, openedAt.Add(3600*time.Second), nil)
	var closed *types.EventProposalClosed
	for _, ev := range res.Events {
		if ev.Type == types.EventProposalClosedType {
			closed = types.DecodeEventProposalClosed(ev)
		}
	}
	assert.NotNil(t, closed)
	assert.True(t, closed.Passed)

	p, _, err = app.StateDB().GetProposal(1)
	assert.Nil(t, err)
	assert.Equal(t, types.ProposalStatusPassed, p.Status)

	execute := signedTx(t, adminKey, admin, 1, tx.GovTxTypeExecute, &tx.ExecuteProposalTx{Proposal: 1})
	finalizeAndCommit(t, app, 4, openedAt.Add(3700*time.Second), [][]byte{execute})

	p, _, err = app.StateDB().GetProposal(1)
	assert.Nil(t, err)
	assert.Equal(t, types.ProposalStatusExecuted, p.Status)

	params, err := app.StateDB().GetParams()
	assert.Nil(t, err)
	assert.Equal(t, uint64(750), params.RewardRateBp)

	// the proposer's bond comes back after execution
	a, _, err := app.StateDB().GetAccountByIndex(alice)
	assert.Nil(t, err)
	assert.Equal(t, uint64(1000), a.Balance)
	assert.Equal(t, uint64(0), a.Stake)
}

func TestCheckTxRejectsBadSignature(t *testing.T) {
	app := newTestApp(t)
	aliceKey := ed25519.GenPrivKey()
	initTestChain(t, app, []types.GenesisAccount{
		{PubKey: aliceKey.PubKey().Bytes(), Balance: 1000, Verified: true},
	})
	alice := uint64(state.StartAccountIdx)

	btx := &tx.GovTx{
		Version: tx.GovTxVersion1,
		Type:    tx.GovTxTypeVote,
		Nonce:   0,
		Account: alice,
		Tx:      &tx.VoteTx{Proposal: 1, Support: true},
		Sig:     [][]byte{[]byte("not a signature")},
	}
	raw, err := tx.MarshalGovTx(btx)
	assert.Nil(t, err)

	res, err := app.CheckTx(context.Background(), &abcitypes.RequestCheckTx{Tx: raw})
	assert.Nil(t, err)
	assert.NotEqual(t, uint32(0), res.Code)
}

func TestQuerySurface(t *testing.T) {
	app := newTestApp(t)
	adminKey := ed25519.GenPrivKey()
	initTestChain(t, app, []types.GenesisAccount{
		{PubKey: adminKey.PubKey().Bytes(), Balance: 500, Verified: true},
	})
	admin := uint64(state.StartAccountIdx)
	ctx := context.Background()

	res, err := app.Query(ctx, &abcitypes.RequestQuery{Path: "/accounts", Data: []byte{1, 0, 0}})
	assert.Nil(t, err)
	assert.Equal(t, uint32(0), res.Code)
	var a state.Account
	assert.Nil(t, json.Unmarshal(res.Value, &a))
	assert.Equal(t, admin, a.Index)
	assert.Equal(t, uint64(500), a.Balance)

	res, err = app.Query(ctx, &abcitypes.RequestQuery{Path: "/governance/"})
	assert.Nil(t, err)
	assert.Equal(t, uint32(0), res.Code)
	var gov struct {
		Admin        uint64             `json:"admin"`
		Requirements types.Requirements `json:"requirements"`
	}
	assert.Nil(t, json.Unmarshal(res.Value, &gov))
	assert.Equal(t, admin, gov.Admin)
	assert.Equal(t, types.DefaultRequirements(), gov.Requirements)

	res, err = app.Query(ctx, &abcitypes.RequestQuery{Path: "/nope/"})
	assert.Nil(t, err)
	assert.Equal(t, uint32(404), res.Code)
}
