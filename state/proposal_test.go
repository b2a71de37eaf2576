package state

import (
	"testing"

	"github.com/starshop/gov-node/tx"
	"github.com/starshop/gov-node/types"
	"github.com/stretchr/testify/assert"
)

func TestCreateProposalValidation(t *testing.T) {
	_, st := newTestState(t)
	proposer := addTestAccount(t, st, 1000, false)

	cases := []struct {
		name string
		ptx  tx.CreateProposalTx
		want error
	}{
		{
			name: "empty title",
			ptx:  tx.CreateProposalTx{ProposalType: types.ProposalTypeGovernance, VotingConfig: testVotingConfig()},
			want: ErrTitleEmpty,
		},
		{
			name: "bad type",
			ptx:  tx.CreateProposalTx{Title: "x", ProposalType: 9, VotingConfig: testVotingConfig()},
			want: ErrBadProposalType,
		},
		{
			name: "zero duration",
			ptx: tx.CreateProposalTx{Title: "x", ProposalType: types.ProposalTypeGovernance,
				VotingConfig: types.VotingConfig{QuorumBp: 2000, ThresholdBp: 5000}},
			want: ErrZeroDuration,
		},
		{
			name: "zero quorum",
			ptx: tx.CreateProposalTx{Title: "x", ProposalType: types.ProposalTypeGovernance,
				VotingConfig: types.VotingConfig{Duration: 3600, ThresholdBp: 5000}},
			want: ErrBadBasisPoints,
		},
		{
			name: "quorum above denom",
			ptx: tx.CreateProposalTx{Title: "x", ProposalType: types.ProposalTypeGovernance,
				VotingConfig: types.VotingConfig{Duration: 3600, QuorumBp: 10001, ThresholdBp: 5000}},
			want: ErrBadBasisPoints,
		},
		{
			name: "threshold above denom",
			ptx: tx.CreateProposalTx{Title: "x", ProposalType: types.ProposalTypeGovernance,
				VotingConfig: types.VotingConfig{Duration: 3600, QuorumBp: 2000, ThresholdBp: 10001}},
			want: ErrBadBasisPoints,
		},
		{
			name: "malformed action",
			ptx: tx.CreateProposalTx{Title: "x", ProposalType: types.ProposalTypeGovernance,
				VotingConfig: testVotingConfig(),
				Actions:      []types.Action{{Kind: types.ActionAppointModerator}}},
			want: ErrBadAction,
		},
	}
	for _, c := range cases {
		_, err := st.CreateProposal(&c.ptx, proposer, true)
		assert.ErrorIs(t, err, c.want, c.name)
	}
}

func TestCreateProposalEconomicNeedsVerified(t *testing.T) {
	_, st := newTestState(t)
	unverified := addTestAccount(t, st, 1000, false)
	verified := addTestAccount(t, st, 1000, true)

	ptx := &tx.CreateProposalTx{
		Title:        "economic change",
		ProposalType: types.ProposalTypeEconomic,
		VotingConfig: testVotingConfig(),
	}
	_, err := st.CreateProposal(ptx, unverified, true)
	assert.ErrorIs(t, err, ErrNotVerified)

	_, err = st.CreateProposal(ptx, verified, true)
	assert.Nil(t, err)
}

func TestCreateProposalStakeGuard(t *testing.T) {
	_, st := newTestState(t)
	poor := addTestAccount(t, st, 50, false)
	_, err := st.CreateProposal(&tx.CreateProposalTx{
		Title:        "x",
		ProposalType: types.ProposalTypeGovernance,
		VotingConfig: testVotingConfig(),
	}, poor, true)
	assert.ErrorIs(t, err, ErrInsufficientStake)
}

func TestCreateProposalLocksStake(t *testing.T) {
	_, st := newTestState(t)
	proposer := addTestAccount(t, st, 1000, false)
	createDraft(t, st, proposer, testVotingConfig(), nil)

	a, err := st.GetAccount(proposer)
	assert.Nil(t, err)
	assert.Equal(t, uint64(900), a.Balance)
	assert.Equal(t, uint64(100), a.Stake)
	assert.Equal(t, uint64(1), a.ActiveProposals)
	assert.Equal(t, testBaseTime, a.LastProposalTime)
	// locking stake does not change the voting position
	assert.Equal(t, uint64(1000), a.Holdings())
}

func TestCreateProposalCooldown(t *testing.T) {
	_, st := newTestState(t)
	proposer := addTestAccount(t, st, 1000, false)
	createDraft(t, st, proposer, testVotingConfig(), nil)

	ptx := &tx.CreateProposalTx{
		Title:        "again",
		ProposalType: types.ProposalTypeGovernance,
		VotingConfig: testVotingConfig(),
	}
	_, err := st.CreateProposal(ptx, proposer, true)
	assert.ErrorIs(t, err, ErrCooldownActive)

	st.SetBlockTime(testBaseTime + 86399)
	_, err = st.CreateProposal(ptx, proposer, true)
	assert.ErrorIs(t, err, ErrCooldownActive)

	st.SetBlockTime(testBaseTime + 86400)
	_, err = st.CreateProposal(ptx, proposer, true)
	assert.Nil(t, err)
}

func TestCreateProposalLimit(t *testing.T) {
	_, st := newTestState(t)
	proposer := addTestAccount(t, st, 10000, false)
	st.SetRequirements(types.Requirements{CooldownPeriod: 0, RequiredStake: 100, ProposalLimit: 2})

	createDraft(t, st, proposer, testVotingConfig(), nil)
	createDraft(t, st, proposer, testVotingConfig(), nil)

	ptx := &tx.CreateProposalTx{
		Title:        "one too many",
		ProposalType: types.ProposalTypeGovernance,
		VotingConfig: testVotingConfig(),
	}
	_, err := st.CreateProposal(ptx, proposer, true)
	assert.ErrorIs(t, err, ErrProposalLimit)
}

func TestActivateRequiresPrivilege(t *testing.T) {
	_, st := newTestState(t)
	admin := addTestAccount(t, st, 1000, false)
	proposer := addTestAccount(t, st, 1000, false)
	st.SetAdmin(admin)

	proposal := createDraft(t, st, proposer, testVotingConfig(), nil)

	_, err := st.ActivateProposal(&tx.ActivateProposalTx{Proposal: proposal}, proposer, false)
	assert.ErrorIs(t, err, ErrUnauthorized)

	ev, err := st.ActivateProposal(&tx.ActivateProposalTx{Proposal: proposal}, admin, false)
	assert.Nil(t, err)
	assert.Equal(t, testBaseTime+3600, ev.Deadline)

	p, err := st.GetProposal(proposal)
	assert.Nil(t, err)
	assert.Equal(t, types.ProposalStatusActive, p.Status)

	// already active
	_, err = st.ActivateProposal(&tx.ActivateProposalTx{Proposal: proposal}, admin, false)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCancelDraftRefunds(t *testing.T) {
	_, st := newTestState(t)
	proposer := addTestAccount(t, st, 1000, false)
	proposal := createDraft(t, st, proposer, testVotingConfig(), nil)

	ev, err := st.CancelProposal(&tx.CancelProposalTx{Proposal: proposal}, proposer, false)
	assert.Nil(t, err)
	assert.Equal(t, uint64(100), ev.ReleasedStake)

	a, _ := st.GetAccount(proposer)
	assert.Equal(t, uint64(1000), a.Balance)
	assert.Equal(t, uint64(0), a.Stake)
	assert.Equal(t, uint64(0), a.ActiveProposals)

	p, _ := st.GetProposal(proposal)
	assert.Equal(t, types.ProposalStatusCanceled, p.Status)
}

func TestCancelActiveByModerator(t *testing.T) {
	_, st := newTestState(t)
	admin := addTestAccount(t, st, 1000, false)
	mod := addTestAccount(t, st, 1000, false)
	proposer := addTestAccount(t, st, 1000, false)
	stranger := addTestAccount(t, st, 1000, false)
	st.SetAdmin(admin)
	st.SetModerators([]uint64{mod})

	proposal := createDraft(t, st, proposer, testVotingConfig(), nil)
	activate(t, st, admin, proposal)

	_, err := st.CancelProposal(&tx.CancelProposalTx{Proposal: proposal}, stranger, false)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = st.CancelProposal(&tx.CancelProposalTx{Proposal: proposal}, mod, false)
	assert.Nil(t, err)

	p, _ := st.GetProposal(proposal)
	assert.Equal(t, types.ProposalStatusCanceled, p.Status)

	// the active set forgets canceled proposals
	events, err := st.SettleDueProposals()
	assert.Nil(t, err)
	assert.Len(t, events, 0)
}

func TestCancelTerminalRejected(t *testing.T) {
	_, st := newTestState(t)
	proposer := addTestAccount(t, st, 1000, false)
	proposal := createDraft(t, st, proposer, testVotingConfig(), nil)

	_, err := st.CancelProposal(&tx.CancelProposalTx{Proposal: proposal}, proposer, false)
	assert.Nil(t, err)
	_, err = st.CancelProposal(&tx.CancelProposalTx{Proposal: proposal}, proposer, false)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestVetoOnlyPassed(t *testing.T) {
	_, st := newTestState(t)
	admin := addTestAccount(t, st, 1000, false)
	proposer := addTestAccount(t, st, 1000, false)
	st.SetAdmin(admin)

	proposal := createDraft(t, st, proposer, testVotingConfig(), nil)
	_, err := st.VetoProposal(&tx.VetoProposalTx{Proposal: proposal}, admin, false)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	activate(t, st, admin, proposal)
	_, err = st.VetoProposal(&tx.VetoProposalTx{Proposal: proposal}, admin, false)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	// pass it
	_, err = st.CastVote(&tx.VoteTx{Proposal: proposal, Support: true}, proposer, false)
	assert.Nil(t, err)
	st.SetBlockTime(testBaseTime + 3600)
	events, err := st.SettleDueProposals()
	assert.Nil(t, err)
	assert.Len(t, events, 1)
	assert.True(t, events[0].Passed)

	_, err = st.VetoProposal(&tx.VetoProposalTx{Proposal: proposal}, proposer, false)
	assert.ErrorIs(t, err, ErrUnauthorized)

	ev, err := st.VetoProposal(&tx.VetoProposalTx{Proposal: proposal}, admin, false)
	assert.Nil(t, err)
	assert.Equal(t, admin, ev.Moderator)

	// veto refunds the stake that settle left locked
	a, _ := st.GetAccount(proposer)
	assert.Equal(t, uint64(1000), a.Balance)
	assert.Equal(t, uint64(0), a.Stake)
	assert.Equal(t, uint64(0), a.ActiveProposals)
}

func TestCloseProposal(t *testing.T) {
	_, st := newTestState(t)
	admin := addTestAccount(t, st, 1000, false)
	proposer := addTestAccount(t, st, 1000, false)
	st.SetAdmin(admin)

	proposal := createDraft(t, st, proposer, testVotingConfig(), nil)

	// drafts have no window to close
	_, err := st.CloseProposal(&tx.CloseProposalTx{Proposal: proposal}, proposer, false)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	activate(t, st, admin, proposal)
	_, err = st.CloseProposal(&tx.CloseProposalTx{Proposal: proposal}, proposer, false)
	assert.ErrorIs(t, err, ErrVotingOpen)

	st.SetBlockTime(testBaseTime + 3600)
	ev, err := st.CloseProposal(&tx.CloseProposalTx{Proposal: proposal}, proposer, false)
	assert.Nil(t, err)
	assert.NotNil(t, ev)
	assert.False(t, ev.Passed)

	// no votes: rejected with the stake back
	p, _ := st.GetProposal(proposal)
	assert.Equal(t, types.ProposalStatusRejected, p.Status)
	a, _ := st.GetAccount(proposer)
	assert.Equal(t, uint64(1000), a.Balance)
	assert.Equal(t, uint64(0), a.ActiveProposals)

	// closing a settled proposal is a harmless no-op
	ev, err = st.CloseProposal(&tx.CloseProposalTx{Proposal: proposal}, proposer, false)
	assert.Nil(t, err)
	assert.Nil(t, ev)
}

func TestSettleDueProposalsSweep(t *testing.T) {
	_, st := newTestState(t)
	admin := addTestAccount(t, st, 1000, false)
	p1 := addTestAccount(t, st, 1000, false)
	p2 := addTestAccount(t, st, 1000, false)
	st.SetAdmin(admin)

	short := createDraft(t, st, p1, types.VotingConfig{Duration: 100, QuorumBp: 2000, ThresholdBp: 5000}, nil)
	long := createDraft(t, st, p2, testVotingConfig(), nil)
	activate(t, st, admin, short)
	activate(t, st, admin, long)

	st.SetBlockTime(testBaseTime + 100)
	events, err := st.SettleDueProposals()
	assert.Nil(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, short, events[0].Proposal)

	pl, _ := st.GetProposal(long)
	assert.Equal(t, types.ProposalStatusActive, pl.Status)

	st.SetBlockTime(testBaseTime + 3600)
	events, err = st.SettleDueProposals()
	assert.Nil(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, long, events[0].Proposal)
}

func TestProposalNoexists(t *testing.T) {
	_, st := newTestState(t)
	caller := addTestAccount(t, st, 1000, false)
	_, err := st.CastVote(&tx.VoteTx{Proposal: 7, Support: true}, caller, true)
	assert.ErrorIs(t, err, ErrProposalNoexists)
}
