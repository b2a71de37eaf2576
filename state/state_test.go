package state

import (
	"testing"

	"github.com/starshop/gov-node/tx"
	"github.com/starshop/gov-node/types"
	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

const testBaseTime = uint64(1700000000)

func newTestState(t *testing.T) (*StateDB, *State) {
	db, err := NewMemStateDB(cmtlog.NewNopLogger())
	assert.Nil(t, err)
	st := db.NewState()
	st.SetChainId("test-chain")
	st.SetBlockTime(testBaseTime)
	return db, st
}

func addTestAccount(t *testing.T, st *State, balance uint64, verified bool) uint64 {
	pk := ed25519.GenPrivKey().PubKey()
	var a Account
	a.SetPubKey(pk.Bytes())
	a.Balance = balance
	a.Verified = verified
	err := st.AddAccount(&a)
	assert.Nil(t, err)
	return a.Index
}

func testVotingConfig() types.VotingConfig {
	return types.VotingConfig{
		Duration:    3600,
		QuorumBp:    2000,
		ThresholdBp: 5000,
	}
}

func createDraft(t *testing.T, st *State, proposer uint64, cfg types.VotingConfig, actions []types.Action) uint64 {
	ptx := &tx.CreateProposalTx{
		Title:        "test proposal",
		ProposalType: types.ProposalTypeGovernance,
		VotingConfig: cfg,
		Actions:      actions,
	}
	ev, err := st.CreateProposal(ptx, proposer, false)
	assert.Nil(t, err)
	assert.NotNil(t, ev)
	return ev.Proposal
}

func activate(t *testing.T, st *State, caller, proposal uint64) {
	ev, err := st.ActivateProposal(&tx.ActivateProposalTx{Proposal: proposal}, caller, false)
	assert.Nil(t, err)
	assert.NotNil(t, ev)
}

func TestAddAccountSupplyTracking(t *testing.T) {
	_, st := newTestState(t)
	a := addTestAccount(t, st, 1000, false)
	b := addTestAccount(t, st, 500, false)
	addTestAccount(t, st, 0, false)

	assert.Equal(t, uint64(StartAccountIdx), a)
	assert.Equal(t, uint64(StartAccountIdx+1), b)
	assert.Equal(t, uint64(1500), st.Header().TotalSupply)
	// zero holdings accounts are not eligible voters
	assert.Equal(t, uint64(2), st.Header().EligibleVoters)
}

func TestAddAccountDuplicatePubkey(t *testing.T) {
	_, st := newTestState(t)
	pk := ed25519.GenPrivKey().PubKey()
	var a Account
	a.SetPubKey(pk.Bytes())
	a.Balance = 100
	assert.Nil(t, st.AddAccount(&a))

	var dup Account
	dup.SetPubKey(pk.Bytes())
	err := st.AddAccount(&dup)
	assert.ErrorIs(t, err, ErrAccountAlreadyExists)
}

func TestGetAccountNoexists(t *testing.T) {
	_, st := newTestState(t)
	_, err := st.GetAccount(StartAccountIdx + 42)
	assert.ErrorIs(t, err, ErrAccountNoexists)
}

func TestStatePersistence(t *testing.T) {
	db, st := newTestState(t)
	admin := addTestAccount(t, st, 1000, true)
	st.SetAdmin(admin)
	proposal := createDraft(t, st, admin, testVotingConfig(), nil)

	_, err := st.Update()
	assert.Nil(t, err)
	h, err := db.SetState(st)
	assert.Nil(t, err)
	assert.NotEqual(t, common.Hash{}, h)

	// a fresh state reads everything back from the tree
	next := db.NewState()
	p, err := next.GetProposal(proposal)
	assert.Nil(t, err)
	assert.Equal(t, types.ProposalStatusDraft, p.Status)
	assert.Equal(t, "test proposal", p.Title)

	a, err := next.GetAccount(admin)
	assert.Nil(t, err)
	assert.Equal(t, uint64(900), a.Balance)
	assert.Equal(t, uint64(100), a.Stake)
	assert.Equal(t, uint64(1), a.ActiveProposals)
}

func TestVerifyTxSignature(t *testing.T) {
	_, st := newTestState(t)
	priv := ed25519.GenPrivKey()
	var a Account
	a.SetPubKey(priv.PubKey().Bytes())
	a.Balance = 100
	assert.Nil(t, st.AddAccount(&a))

	btx := &tx.GovTx{
		Version: tx.GovTxVersion1,
		Type:    tx.GovTxTypeVote,
		Nonce:   0,
		Account: a.Index,
		Tx:      &tx.VoteTx{Proposal: 1, Support: true},
	}
	dat, err := btx.SigData([]byte("test-chain"))
	assert.Nil(t, err)
	sig, err := priv.Sign(dat)
	assert.Nil(t, err)
	btx.Sig = [][]byte{sig}

	succ, err := st.Verify(btx, false)
	assert.Nil(t, err)
	assert.True(t, succ)

	// a signature over another chain id must not verify
	st.SetChainId("other-chain")
	_, err = st.Verify(btx, false)
	assert.ErrorIs(t, err, ErrTxSigInvalid)
}

func TestVerifyTxNonce(t *testing.T) {
	_, st := newTestState(t)
	priv := ed25519.GenPrivKey()
	var a Account
	a.SetPubKey(priv.PubKey().Bytes())
	a.Balance = 100
	a.Nonce = 5
	assert.Nil(t, st.AddAccount(&a))

	btx := &tx.GovTx{
		Version: tx.GovTxVersion1,
		Type:    tx.GovTxTypeUndelegate,
		Nonce:   3,
		Account: a.Index,
		Tx:      &tx.UndelegateTx{},
	}
	_, err := st.Verify(btx, true)
	assert.ErrorIs(t, err, ErrTxNonceInvalid)

	btx.Nonce = 7
	dat, _ := btx.SigData([]byte("test-chain"))
	sig, _ := priv.Sign(dat)
	btx.Sig = [][]byte{sig}
	succ, err := st.Verify(btx, true)
	assert.Nil(t, err)
	assert.True(t, succ)

	// gapped nonce rejected when gaps are not allowed
	_, err = st.Verify(btx, false)
	assert.ErrorIs(t, err, ErrTxNonceInvalid)
}
