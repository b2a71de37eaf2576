package state

import (
	"encoding/json"
	"fmt"

	"github.com/starshop/gov-node/tx"
	"github.com/starshop/gov-node/types"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/syndtr/goleveldb/leveldb"
)

// Requirements returns the current proposal creation guards, falling
// back to defaults when governance never changed them.
func (s *State) Requirements() (types.Requirements, error) {
	if s.requirements != nil {
		return *s.requirements, nil
	}
	val, err := s.db.Get([]byte(KeyRequirements))
	if err != nil {
		if err != leveldb.ErrNotFound {
			return types.Requirements{}, err
		}
	}
	r := types.DefaultRequirements()
	if val != nil {
		if err := json.Unmarshal(val, &r); err != nil {
			return types.Requirements{}, err
		}
	}
	s.requirements = &r
	return r, nil
}

func (s *State) setRequirements(r types.Requirements) {
	s.requirements = &r
	s.modRequirements = true
}

// SetRequirements overrides the creation guards. Genesis only.
func (s *State) SetRequirements(r types.Requirements) {
	s.setRequirements(r)
}

func (s *State) loadActiveSet() ([]uint64, error) {
	if s.loadedActive {
		return s.activeSet, nil
	}
	val, err := s.db.Get([]byte(KeyActiveSet))
	if err != nil {
		if err != leveldb.ErrNotFound {
			return nil, err
		}
	}
	if val != nil {
		var set []uint64
		if err := rlp.DecodeBytes(val, &set); err != nil {
			return nil, err
		}
		s.activeSet = set
	}
	s.loadedActive = true
	return s.activeSet, nil
}

func (s *State) addActive(idx uint64) error {
	set, err := s.loadActiveSet()
	if err != nil {
		return err
	}
	s.activeSet = append(set, idx)
	s.modActive = true
	return nil
}

func (s *State) removeActive(idx uint64) error {
	set, err := s.loadActiveSet()
	if err != nil {
		return err
	}
	for i, p := range set {
		if p == idx {
			s.activeSet = append(set[:i], set[i+1:]...)
			s.modActive = true
			return nil
		}
	}
	return nil
}

func validateVotingConfig(cfg *types.VotingConfig) error {
	if cfg.Duration == 0 {
		return ErrZeroDuration
	}
	if cfg.QuorumBp == 0 || cfg.QuorumBp > 10000 {
		return ErrBadBasisPoints
	}
	if cfg.ThresholdBp > 10000 {
		return ErrBadBasisPoints
	}
	return nil
}

// CreateProposal runs the economic guards, locks the proposer stake and
// records a Draft proposal.
func (s *State) CreateProposal(ptx *tx.CreateProposalTx, proposer uint64, checkOnly bool) (event *types.EventProposalCreated, err error) {
	s.logger.Debug("apply create proposal", "proposer", proposer, "height", s.header.Height)
	a, err := s.GetAccount(proposer)
	if err != nil {
		return nil, err
	}
	if a == nil {
		err = ErrAccountNoexists
		return
	}
	if ptx.Title == "" {
		err = ErrTitleEmpty
		return
	}
	if !ptx.ProposalType.Valid() {
		err = ErrBadProposalType
		return
	}
	if err = validateVotingConfig(&ptx.VotingConfig); err != nil {
		return
	}
	for i := range ptx.Actions {
		if aerr := ptx.Actions[i].Validate(); aerr != nil {
			err = fmt.Errorf("%w: %v", ErrBadAction, aerr)
			return
		}
	}
	if ptx.ProposalType == types.ProposalTypeEconomic && !a.Verified {
		err = ErrNotVerified
		return
	}
	req, err := s.Requirements()
	if err != nil {
		return nil, err
	}
	if a.Balance < req.RequiredStake {
		err = ErrInsufficientStake
		return
	}
	if a.ActiveProposals >= req.ProposalLimit {
		err = ErrProposalLimit
		return
	}
	if a.LastProposalTime != 0 && s.header.Time < a.LastProposalTime+req.CooldownPeriod {
		err = ErrCooldownActive
		return
	}
	if !checkOnly {
		s.header.ProposalIdx += 1
		proposal := types.Proposal{
			Index:           s.header.ProposalIdx,
			Proposer:        a.Index,
			ProposerAddress: a.Address(),
			Title:           ptx.Title,
			Description:     ptx.Description,
			MetadataRef:     ptx.MetadataRef,
			Type:            ptx.ProposalType,
			Status:          types.ProposalStatusDraft,
			CreatedAt:       s.header.Time,
			VotingConfig:    ptx.VotingConfig,
			Actions:         ptx.Actions,
			LockedStake:     req.RequiredStake,
		}
		s.markProposal(&proposal)

		a.Balance -= req.RequiredStake
		a.Stake += req.RequiredStake
		a.ActiveProposals += 1
		a.LastProposalTime = s.header.Time
		a.Nonce += 1
		s.touchAccount(a)

		event = &types.EventProposalCreated{
			Proposal:        proposal.Index,
			Proposer:        a.Index,
			ProposerAddress: a.Address(),
			Title:           proposal.Title,
			Type:            proposal.Type,
			LockedStake:     proposal.LockedStake,
		}
	}
	return
}

// ActivateProposal opens the voting window on a Draft proposal. Admin
// and moderators only.
func (s *State) ActivateProposal(atx *tx.ActivateProposalTx, caller uint64, checkOnly bool) (event *types.EventProposalActivated, err error) {
	s.logger.Debug("apply activate proposal", "caller", caller, "proposal", atx.Proposal, "height", s.header.Height)
	a, err := s.GetAccount(caller)
	if err != nil {
		return nil, err
	}
	if a == nil {
		err = ErrAccountNoexists
		return
	}
	priv, err := s.isPrivileged(caller)
	if err != nil {
		return nil, err
	}
	if !priv {
		err = ErrUnauthorized
		return
	}
	proposal, err := s.GetProposal(atx.Proposal)
	if err != nil {
		return nil, err
	}
	if proposal.Status != types.ProposalStatusDraft {
		err = ErrInvalidStatus
		return
	}
	if !checkOnly {
		proposal.Status = types.ProposalStatusActive
		proposal.ActivatedAt = s.header.Time
		s.markProposal(proposal)
		if err := s.addActive(proposal.Index); err != nil {
			return nil, err
		}

		a.Nonce += 1
		s.touchAccount(a)

		event = &types.EventProposalActivated{
			Proposal:    proposal.Index,
			Moderator:   caller,
			ActivatedAt: proposal.ActivatedAt,
			Deadline:    proposal.Deadline(),
		}
	}
	return
}

// refundStake hands a proposal's locked stake back to its proposer.
func (s *State) refundStake(proposal *types.Proposal) error {
	p, err := s.GetAccount(proposal.Proposer)
	if err != nil {
		return err
	}
	p.Balance += proposal.LockedStake
	if p.Stake >= proposal.LockedStake {
		p.Stake -= proposal.LockedStake
	} else {
		p.Stake = 0
	}
	s.touchAccount(p)
	proposal.LockedStake = 0
	return nil
}

// freeSlot releases one unit of the proposer's proposal limit. Called
// exactly once per proposal, when it leaves the Draft/Active pair.
func (s *State) freeSlot(proposer uint64) error {
	p, err := s.GetAccount(proposer)
	if err != nil {
		return err
	}
	if p.ActiveProposals > 0 {
		p.ActiveProposals -= 1
	}
	s.touchAccount(p)
	return nil
}

// CancelProposal withdraws a Draft or Active proposal and refunds the
// stake. Allowed for the proposer, the admin and moderators.
func (s *State) CancelProposal(ctx *tx.CancelProposalTx, caller uint64, checkOnly bool) (event *types.EventProposalCanceled, err error) {
	s.logger.Debug("apply cancel proposal", "caller", caller, "proposal", ctx.Proposal, "height", s.header.Height)
	a, err := s.GetAccount(caller)
	if err != nil {
		return nil, err
	}
	if a == nil {
		err = ErrAccountNoexists
		return
	}
	proposal, err := s.GetProposal(ctx.Proposal)
	if err != nil {
		return nil, err
	}
	if caller != proposal.Proposer {
		priv, err := s.isPrivileged(caller)
		if err != nil {
			return nil, err
		}
		if !priv {
			return nil, ErrUnauthorized
		}
	}
	if proposal.Status != types.ProposalStatusDraft && proposal.Status != types.ProposalStatusActive {
		err = ErrInvalidStatus
		return
	}
	if !checkOnly {
		released := proposal.LockedStake
		if err := s.refundStake(proposal); err != nil {
			return nil, err
		}
		if err := s.freeSlot(proposal.Proposer); err != nil {
			return nil, err
		}
		if proposal.Status == types.ProposalStatusActive {
			if err := s.removeActive(proposal.Index); err != nil {
				return nil, err
			}
		}
		proposal.Status = types.ProposalStatusCanceled
		s.markProposal(proposal)

		a.Nonce += 1
		s.touchAccount(a)

		event = &types.EventProposalCanceled{
			Proposal:      proposal.Index,
			Caller:        caller,
			ReleasedStake: released,
		}
	}
	return
}

// VetoProposal blocks a Passed proposal before execution. Admin and
// moderators only; the stake is still refunded.
func (s *State) VetoProposal(vtx *tx.VetoProposalTx, caller uint64, checkOnly bool) (event *types.EventProposalVetoed, err error) {
	s.logger.Debug("apply veto proposal", "caller", caller, "proposal", vtx.Proposal, "height", s.header.Height)
	a, err := s.GetAccount(caller)
	if err != nil {
		return nil, err
	}
	if a == nil {
		err = ErrAccountNoexists
		return
	}
	priv, err := s.isPrivileged(caller)
	if err != nil {
		return nil, err
	}
	if !priv {
		err = ErrUnauthorized
		return
	}
	proposal, err := s.GetProposal(vtx.Proposal)
	if err != nil {
		return nil, err
	}
	if proposal.Status != types.ProposalStatusPassed {
		err = ErrInvalidStatus
		return
	}
	if !checkOnly {
		if err := s.refundStake(proposal); err != nil {
			return nil, err
		}
		proposal.Status = types.ProposalStatusVetoed
		s.markProposal(proposal)

		a.Nonce += 1
		s.touchAccount(a)

		event = &types.EventProposalVetoed{
			Proposal:  proposal.Index,
			Moderator: caller,
		}
	}
	return
}

// settle tallies an Active proposal whose window has ended and moves it
// to Passed or Rejected. Rejection refunds the stake immediately; a
// Passed proposal keeps it locked until execution or veto.
func (s *State) settle(proposal *types.Proposal) (event *types.EventProposalClosed, err error) {
	passed := s.tallyPasses(proposal)
	if passed {
		proposal.Status = types.ProposalStatusPassed
		proposal.PassedAt = s.header.Time
	} else {
		proposal.Status = types.ProposalStatusRejected
		if err := s.refundStake(proposal); err != nil {
			return nil, err
		}
	}
	if err := s.freeSlot(proposal.Proposer); err != nil {
		return nil, err
	}
	s.markProposal(proposal)
	if err := s.removeActive(proposal.Index); err != nil {
		return nil, err
	}
	event = &types.EventProposalClosed{
		Proposal:      proposal.Index,
		Passed:        passed,
		WeightFor:     proposal.WeightFor,
		WeightAgainst: proposal.WeightAgainst,
		VoterCount:    proposal.VoterCount,
	}
	return
}

// CloseProposal settles an expired voting window on demand. Closing a
// proposal that already left Active is a no-op.
func (s *State) CloseProposal(ctx *tx.CloseProposalTx, caller uint64, checkOnly bool) (event *types.EventProposalClosed, err error) {
	s.logger.Debug("apply close proposal", "caller", caller, "proposal", ctx.Proposal, "height", s.header.Height)
	a, err := s.GetAccount(caller)
	if err != nil {
		return nil, err
	}
	if a == nil {
		err = ErrAccountNoexists
		return
	}
	proposal, err := s.GetProposal(ctx.Proposal)
	if err != nil {
		return nil, err
	}
	if proposal.Status == types.ProposalStatusDraft {
		err = ErrInvalidStatus
		return
	}
	if proposal.Status == types.ProposalStatusActive && s.header.Time < proposal.Deadline() {
		err = ErrVotingOpen
		return
	}
	if !checkOnly {
		if proposal.Status == types.ProposalStatusActive {
			event, err = s.settle(proposal)
			if err != nil {
				return nil, err
			}
		}
		a.Nonce += 1
		s.touchAccount(a)
	}
	return
}

// SettleDueProposals closes every Active proposal whose voting window
// has ended, in index order. Runs at the start of each block.
func (s *State) SettleDueProposals() (events []*types.EventProposalClosed, err error) {
	set, err := s.loadActiveSet()
	if err != nil {
		return nil, err
	}
	due := make([]uint64, 0, len(set))
	for _, idx := range set {
		p, err := s.GetProposal(idx)
		if err != nil {
			return nil, err
		}
		if s.header.Time >= p.Deadline() {
			due = append(due, idx)
		}
	}
	for _, idx := range due {
		p, err := s.GetProposal(idx)
		if err != nil {
			return nil, err
		}
		ev, err := s.settle(p)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return
}
