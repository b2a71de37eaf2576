package state

import (
	"testing"

	"github.com/starshop/gov-node/tx"
	"github.com/starshop/gov-node/types"
	"github.com/stretchr/testify/assert"
)

func TestCastVoteTokenWeighted(t *testing.T) {
	_, st := newTestState(t)
	admin := addTestAccount(t, st, 0, false)
	alice := addTestAccount(t, st, 4000, false)
	bob := addTestAccount(t, st, 3000, false)
	carol := addTestAccount(t, st, 3000, false)
	st.SetAdmin(admin)

	proposal := createDraft(t, st, alice, testVotingConfig(), nil)
	activate(t, st, admin, proposal)

	ev, err := st.CastVote(&tx.VoteTx{Proposal: proposal, Support: true}, alice, false)
	assert.Nil(t, err)
	assert.Equal(t, uint64(4000), ev.Weight)

	_, err = st.CastVote(&tx.VoteTx{Proposal: proposal, Support: true}, bob, false)
	assert.Nil(t, err)
	_, err = st.CastVote(&tx.VoteTx{Proposal: proposal, Support: false}, carol, false)
	assert.Nil(t, err)

	p, err := st.GetProposal(proposal)
	assert.Nil(t, err)
	assert.Equal(t, uint64(7000), p.WeightFor)
	assert.Equal(t, uint64(3000), p.WeightAgainst)
	assert.Equal(t, uint64(3), p.VoterCount)

	st.SetBlockTime(testBaseTime + 3600)
	events, err := st.SettleDueProposals()
	assert.Nil(t, err)
	assert.Len(t, events, 1)
	assert.True(t, events[0].Passed)
}

func TestThresholdRejects(t *testing.T) {
	_, st := newTestState(t)
	admin := addTestAccount(t, st, 0, false)
	alice := addTestAccount(t, st, 4000, false)
	bob := addTestAccount(t, st, 6000, false)
	st.SetAdmin(admin)

	proposal := createDraft(t, st, alice, testVotingConfig(), nil)
	activate(t, st, admin, proposal)

	_, err := st.CastVote(&tx.VoteTx{Proposal: proposal, Support: true}, alice, false)
	assert.Nil(t, err)
	_, err = st.CastVote(&tx.VoteTx{Proposal: proposal, Support: false}, bob, false)
	assert.Nil(t, err)

	// 4000 of 10000 participating weight is below the 50% threshold
	st.SetBlockTime(testBaseTime + 3600)
	events, err := st.SettleDueProposals()
	assert.Nil(t, err)
	assert.Len(t, events, 1)
	assert.False(t, events[0].Passed)

	p, _ := st.GetProposal(proposal)
	assert.Equal(t, types.ProposalStatusRejected, p.Status)
}

func TestQuorumBoundaryInclusive(t *testing.T) {
	run := func(smallBalance, largeBalance uint64) bool {
		_, st := newTestState(t)
		admin := addTestAccount(t, st, 0, false)
		small := addTestAccount(t, st, smallBalance, false)
		large := addTestAccount(t, st, largeBalance, false)
		st.SetAdmin(admin)

		cfg := types.VotingConfig{Duration: 3600, QuorumBp: 300, ThresholdBp: 5000}
		proposal := createDraft(t, st, large, cfg, nil)
		activate(t, st, admin, proposal)

		_, err := st.CastVote(&tx.VoteTx{Proposal: proposal, Support: true}, small, false)
		assert.Nil(t, err)

		st.SetBlockTime(testBaseTime + 3600)
		events, err := st.SettleDueProposals()
		assert.Nil(t, err)
		assert.Len(t, events, 1)
		return events[0].Passed
	}

	// supply 10000, quorum 3%: exactly 300 participating passes, 299 fails
	assert.True(t, run(300, 9700))
	assert.False(t, run(299, 9701))
}

func TestZeroParticipationRejects(t *testing.T) {
	_, st := newTestState(t)
	admin := addTestAccount(t, st, 0, false)
	proposer := addTestAccount(t, st, 1000, false)
	st.SetAdmin(admin)

	// a quorum this low still cannot pass an untouched proposal
	cfg := types.VotingConfig{Duration: 3600, QuorumBp: 1, ThresholdBp: 1}
	proposal := createDraft(t, st, proposer, cfg, nil)
	activate(t, st, admin, proposal)

	st.SetBlockTime(testBaseTime + 3600)
	events, err := st.SettleDueProposals()
	assert.Nil(t, err)
	assert.Len(t, events, 1)
	assert.False(t, events[0].Passed)
}

func TestOneAddressOneVote(t *testing.T) {
	_, st := newTestState(t)
	admin := addTestAccount(t, st, 0, false)
	whale := addTestAccount(t, st, 1000000, false)
	minnow1 := addTestAccount(t, st, 10, false)
	minnow2 := addTestAccount(t, st, 10, false)
	pauper := addTestAccount(t, st, 0, false)
	st.SetAdmin(admin)

	cfg := types.VotingConfig{Duration: 3600, QuorumBp: 5000, ThresholdBp: 6000, OneAddressOneVote: true}
	proposal := createDraft(t, st, whale, cfg, nil)
	activate(t, st, admin, proposal)

	ev, err := st.CastVote(&tx.VoteTx{Proposal: proposal, Support: false}, whale, false)
	assert.Nil(t, err)
	assert.Equal(t, uint64(1), ev.Weight)

	_, err = st.CastVote(&tx.VoteTx{Proposal: proposal, Support: true}, minnow1, false)
	assert.Nil(t, err)
	_, err = st.CastVote(&tx.VoteTx{Proposal: proposal, Support: true}, minnow2, false)
	assert.Nil(t, err)

	// zero holdings means no voice even in headcount mode
	_, err = st.CastVote(&tx.VoteTx{Proposal: proposal, Support: true}, pauper, false)
	assert.ErrorIs(t, err, ErrNoVotingPower)

	// 3 of 3 eligible voters participated, 2 of 3 in favor
	st.SetBlockTime(testBaseTime + 3600)
	events, err := st.SettleDueProposals()
	assert.Nil(t, err)
	assert.Len(t, events, 1)
	assert.True(t, events[0].Passed)
	assert.Equal(t, uint64(2), events[0].WeightFor)
	assert.Equal(t, uint64(1), events[0].WeightAgainst)
}

func TestDuplicateVote(t *testing.T) {
	_, st := newTestState(t)
	admin := addTestAccount(t, st, 0, false)
	alice := addTestAccount(t, st, 1000, false)
	st.SetAdmin(admin)

	proposal := createDraft(t, st, alice, testVotingConfig(), nil)
	activate(t, st, admin, proposal)

	_, err := st.CastVote(&tx.VoteTx{Proposal: proposal, Support: true}, alice, false)
	assert.Nil(t, err)
	_, err = st.CastVote(&tx.VoteTx{Proposal: proposal, Support: false}, alice, false)
	assert.ErrorIs(t, err, ErrAlreadyVoted)
}

func TestVoteOutsideWindow(t *testing.T) {
	_, st := newTestState(t)
	admin := addTestAccount(t, st, 0, false)
	alice := addTestAccount(t, st, 1000, false)
	st.SetAdmin(admin)

	proposal := createDraft(t, st, alice, testVotingConfig(), nil)

	// drafts are not votable
	_, err := st.CastVote(&tx.VoteTx{Proposal: proposal, Support: true}, alice, false)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	activate(t, st, admin, proposal)
	st.SetBlockTime(testBaseTime + 3600)
	_, err = st.CastVote(&tx.VoteTx{Proposal: proposal, Support: true}, alice, false)
	assert.ErrorIs(t, err, ErrVotingClosed)
}

func TestEconomicVoteNeedsVerified(t *testing.T) {
	_, st := newTestState(t)
	admin := addTestAccount(t, st, 0, false)
	proposer := addTestAccount(t, st, 1000, true)
	unverified := addTestAccount(t, st, 1000, false)
	st.SetAdmin(admin)

	ptx := &tx.CreateProposalTx{
		Title:        "economic",
		ProposalType: types.ProposalTypeEconomic,
		VotingConfig: testVotingConfig(),
	}
	ev, err := st.CreateProposal(ptx, proposer, false)
	assert.Nil(t, err)
	activate(t, st, admin, ev.Proposal)

	_, err = st.CastVote(&tx.VoteTx{Proposal: ev.Proposal, Support: true}, unverified, false)
	assert.ErrorIs(t, err, ErrNotVerified)

	_, err = st.CastVote(&tx.VoteTx{Proposal: ev.Proposal, Support: true}, proposer, false)
	assert.Nil(t, err)
}

func TestDelegatedVoterCannotVote(t *testing.T) {
	_, st := newTestState(t)
	admin := addTestAccount(t, st, 0, false)
	alice := addTestAccount(t, st, 1000, false)
	bob := addTestAccount(t, st, 1000, false)
	st.SetAdmin(admin)

	proposal := createDraft(t, st, bob, testVotingConfig(), nil)
	activate(t, st, admin, proposal)

	_, err := st.Delegate(&tx.DelegateTx{Delegatee: bob}, alice, false)
	assert.Nil(t, err)

	_, err = st.CastVote(&tx.VoteTx{Proposal: proposal, Support: true}, alice, false)
	assert.ErrorIs(t, err, ErrVoterDelegated)

	// the delegatee carries both holdings
	ev, err := st.CastVote(&tx.VoteTx{Proposal: proposal, Support: true}, bob, false)
	assert.Nil(t, err)
	assert.Equal(t, uint64(2000), ev.Weight)
}

func TestVoteWeightSnapshot(t *testing.T) {
	_, st := newTestState(t)
	admin := addTestAccount(t, st, 0, false)
	alice := addTestAccount(t, st, 1000, false)
	bob := addTestAccount(t, st, 500, false)
	st.SetAdmin(admin)

	proposal := createDraft(t, st, alice, testVotingConfig(), nil)
	activate(t, st, admin, proposal)

	ev, err := st.CastVote(&tx.VoteTx{Proposal: proposal, Support: true}, alice, false)
	assert.Nil(t, err)
	assert.Equal(t, uint64(1000), ev.Weight)

	// delegating after the vote never rewrites the recorded tally
	_, err = st.Delegate(&tx.DelegateTx{Delegatee: bob}, alice, false)
	assert.Nil(t, err)

	p, _ := st.GetProposal(proposal)
	assert.Equal(t, uint64(1000), p.WeightFor)
	v, err := st.GetVote(proposal, alice)
	assert.Nil(t, err)
	assert.Equal(t, uint64(1000), v.Weight)
}
