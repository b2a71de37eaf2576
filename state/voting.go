package state

import (
	"math/big"

	"github.com/starshop/gov-node/tx"
	"github.com/starshop/gov-node/types"
)

var bpDenom = big.NewInt(10000)

// CastVote records a vote with the voter's weight snapshotted at cast
// time. Later balance or delegation changes never rewrite a tally.
func (s *State) CastVote(vtx *tx.VoteTx, voter uint64, checkOnly bool) (event *types.EventVoteCast, err error) {
	s.logger.Debug("apply vote", "voter", voter, "proposal", vtx.Proposal, "height", s.header.Height)
	a, err := s.GetAccount(voter)
	if err != nil {
		return nil, err
	}
	if a == nil {
		err = ErrAccountNoexists
		return
	}
	proposal, err := s.GetProposal(vtx.Proposal)
	if err != nil {
		return nil, err
	}
	if proposal.Status != types.ProposalStatusActive {
		err = ErrInvalidStatus
		return
	}
	if s.header.Time >= proposal.Deadline() {
		err = ErrVotingClosed
		return
	}
	if proposal.Type == types.ProposalTypeEconomic && !a.Verified {
		err = ErrNotVerified
		return
	}
	out, err := s.DelegationOf(voter)
	if err != nil {
		return nil, err
	}
	if out != 0 {
		err = ErrVoterDelegated
		return
	}
	prev, err := s.GetVote(vtx.Proposal, voter)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		err = ErrAlreadyVoted
		return
	}
	var weight uint64
	if proposal.VotingConfig.OneAddressOneVote {
		if a.Holdings() == 0 {
			err = ErrNoVotingPower
			return
		}
		weight = 1
	} else {
		weight, err = s.EffectiveWeight(voter, proposal.VotingConfig.MaxVotingPower)
		if err != nil {
			return nil, err
		}
		if weight == 0 {
			err = ErrNoVotingPower
			return
		}
	}
	if !checkOnly {
		vote := &types.Vote{
			Proposal: vtx.Proposal,
			Voter:    voter,
			Address:  a.Address(),
			Support:  vtx.Support,
			Weight:   weight,
			CastAt:   s.header.Time,
		}
		s.newVotes = append(s.newVotes, vote)

		if vtx.Support {
			proposal.WeightFor += weight
		} else {
			proposal.WeightAgainst += weight
		}
		proposal.VoterCount += 1
		s.markProposal(proposal)

		a.Nonce += 1
		s.touchAccount(a)

		event = &types.EventVoteCast{
			Proposal:     vtx.Proposal,
			Voter:        voter,
			VoterAddress: a.Address(),
			Support:      vtx.Support,
			Weight:       weight,
		}
	}
	return
}

// tallyPasses applies the quorum and approval rules at window close.
// Both comparisons are inclusive and done in big integers so basis
// point products cannot overflow.
func (s *State) tallyPasses(proposal *types.Proposal) bool {
	total := new(big.Int).Add(
		new(big.Int).SetUint64(proposal.WeightFor),
		new(big.Int).SetUint64(proposal.WeightAgainst),
	)
	if total.Sign() == 0 {
		return false
	}

	var denom *big.Int
	if proposal.VotingConfig.OneAddressOneVote {
		denom = new(big.Int).SetUint64(s.header.EligibleVoters)
	} else {
		denom = new(big.Int).SetUint64(s.header.TotalSupply)
	}

	// participation * 10000 >= denom * quorumBp
	lhs := new(big.Int).Mul(total, bpDenom)
	rhs := new(big.Int).Mul(denom, new(big.Int).SetUint64(proposal.VotingConfig.QuorumBp))
	if lhs.Cmp(rhs) < 0 {
		return false
	}

	// weightFor * 10000 >= total * thresholdBp
	lhs = new(big.Int).Mul(new(big.Int).SetUint64(proposal.WeightFor), bpDenom)
	rhs = new(big.Int).Mul(total, new(big.Int).SetUint64(proposal.VotingConfig.ThresholdBp))
	return lhs.Cmp(rhs) >= 0
}
