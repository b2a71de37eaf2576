package state

import (
	"encoding/json"
	"fmt"

	"github.com/starshop/gov-node/tx"
	"github.com/starshop/gov-node/types"
	"github.com/syndtr/goleveldb/leveldb"
)

// Params returns the governed platform parameters.
func (s *State) Params() (types.GovParams, error) {
	if s.params != nil {
		return *s.params, nil
	}
	val, err := s.db.Get([]byte(KeyParams))
	if err != nil {
		if err != leveldb.ErrNotFound {
			return types.GovParams{}, err
		}
	}
	p := types.DefaultGovParams()
	if val != nil {
		if err := json.Unmarshal(val, &p); err != nil {
			return types.GovParams{}, err
		}
	}
	s.params = &p
	return p, nil
}

func (s *State) setParams(p types.GovParams) {
	s.params = &p
	s.modParams = true
}

// SetParams overrides the governed parameters. Genesis only.
func (s *State) SetParams(p types.GovParams) {
	s.setParams(p)
}

// AuctionTarget receives auction parameter actions. Check may reject
// the payload; Apply runs only after every action of the proposal
// passed its check and must not fail.
type AuctionTarget interface {
	CheckConditions(s *State, p *types.AuctionConditionsPayload) error
	ApplyConditions(s *State, p *types.AuctionConditionsPayload)
}

// ReferralTarget receives reward rate and level requirement actions.
type ReferralTarget interface {
	CheckRewardRate(s *State, p *types.RewardRatePayload) error
	ApplyRewardRate(s *State, p *types.RewardRatePayload)
	CheckLevelRequirements(s *State, p *types.LevelRequirementsPayload) error
	ApplyLevelRequirements(s *State, p *types.LevelRequirementsPayload)
}

// Targets binds the external action receivers. The defaults write into
// the governed parameter record in state.
type Targets struct {
	Auction  AuctionTarget
	Referral ReferralTarget
}

func DefaultTargets() Targets {
	return Targets{
		Auction:  paramAuctionTarget{},
		Referral: paramReferralTarget{},
	}
}

type paramAuctionTarget struct{}

func (paramAuctionTarget) CheckConditions(s *State, p *types.AuctionConditionsPayload) error {
	if p.MinBidIncrementBp > 10000 {
		return fmt.Errorf("%w: min bid increment %v bp", ErrActionRejected, p.MinBidIncrementBp)
	}
	if p.MaxDuration == 0 {
		return fmt.Errorf("%w: zero max auction duration", ErrActionRejected)
	}
	return nil
}

func (paramAuctionTarget) ApplyConditions(s *State, p *types.AuctionConditionsPayload) {
	params, _ := s.Params()
	params.Auction = *p
	s.setParams(params)
}

type paramReferralTarget struct{}

func (paramReferralTarget) CheckRewardRate(s *State, p *types.RewardRatePayload) error {
	if p.RateBp > 10000 {
		return fmt.Errorf("%w: reward rate %v bp", ErrActionRejected, p.RateBp)
	}
	return nil
}

func (paramReferralTarget) ApplyRewardRate(s *State, p *types.RewardRatePayload) {
	params, _ := s.Params()
	params.RewardRateBp = p.RateBp
	s.setParams(params)
}

func (paramReferralTarget) CheckLevelRequirements(s *State, p *types.LevelRequirementsPayload) error {
	if p.SilverMinReferrals == 0 || p.GoldMinReferrals < p.SilverMinReferrals {
		return fmt.Errorf("%w: level thresholds %v/%v", ErrActionRejected, p.SilverMinReferrals, p.GoldMinReferrals)
	}
	return nil
}

func (paramReferralTarget) ApplyLevelRequirements(s *State, p *types.LevelRequirementsPayload) {
	params, _ := s.Params()
	params.Levels = *p
	s.setParams(params)
}

func (s *State) checkAction(action *types.Action, targets Targets) error {
	switch action.Kind {
	case types.ActionUpdateProposalRequirements:
		if action.Requirements.ProposalLimit == 0 {
			return fmt.Errorf("%w: zero proposal limit", ErrActionRejected)
		}
		return nil
	case types.ActionAppointModerator:
		a, err := s.GetAccount(action.Moderator.Account)
		if err != nil || a == nil {
			return fmt.Errorf("%w: moderator account %v noexists", ErrActionRejected, action.Moderator.Account)
		}
		return nil
	case types.ActionRemoveModerator:
		is, err := s.IsModerator(action.Moderator.Account)
		if err != nil {
			return err
		}
		if !is {
			return fmt.Errorf("%w: account %v is not a moderator", ErrActionRejected, action.Moderator.Account)
		}
		return nil
	case types.ActionUpdateRewardRate:
		return targets.Referral.CheckRewardRate(s, action.RewardRate)
	case types.ActionUpdateLevelRequirements:
		return targets.Referral.CheckLevelRequirements(s, action.Levels)
	case types.ActionUpdateAuctionConditions:
		return targets.Auction.CheckConditions(s, action.Auction)
	}
	return fmt.Errorf("%w: unknown kind %v", ErrActionRejected, action.Kind)
}

func (s *State) applyAction(action *types.Action, targets Targets) error {
	switch action.Kind {
	case types.ActionUpdateProposalRequirements:
		s.setRequirements(*action.Requirements)
		return nil
	case types.ActionAppointModerator:
		return s.appointModerator(action.Moderator.Account)
	case types.ActionRemoveModerator:
		// idempotent so a duplicate remove in one action list cannot
		// fail the apply phase after checks passed
		if err := s.removeModerator(action.Moderator.Account); err != nil && err != ErrNotFound {
			return err
		}
		return nil
	case types.ActionUpdateRewardRate:
		targets.Referral.ApplyRewardRate(s, action.RewardRate)
		return nil
	case types.ActionUpdateLevelRequirements:
		targets.Referral.ApplyLevelRequirements(s, action.Levels)
		return nil
	case types.ActionUpdateAuctionConditions:
		targets.Auction.ApplyConditions(s, action.Auction)
		return nil
	}
	return fmt.Errorf("%w: unknown kind %v", ErrActionRejected, action.Kind)
}

// ExecuteProposal applies the action list of a Passed proposal after
// the execution delay. Every action is checked before any is applied;
// a failing check leaves the proposal Passed so execution can be
// retried, and the failure is reported through failEvent rather than a
// tx error.
func (s *State) ExecuteProposal(etx *tx.ExecuteProposalTx, caller uint64, checkOnly bool, targets Targets) (event *types.EventProposalExecuted, failEvent *types.EventExecutionFailed, err error) {
	s.logger.Debug("apply execute proposal", "caller", caller, "proposal", etx.Proposal, "height", s.header.Height)
	a, err := s.GetAccount(caller)
	if err != nil {
		return nil, nil, err
	}
	if a == nil {
		err = ErrAccountNoexists
		return
	}
	priv, err := s.isPrivileged(caller)
	if err != nil {
		return nil, nil, err
	}
	if !priv {
		err = ErrUnauthorized
		return
	}
	proposal, err := s.GetProposal(etx.Proposal)
	if err != nil {
		return nil, nil, err
	}
	if proposal.Status != types.ProposalStatusPassed {
		err = ErrInvalidStatus
		return
	}
	if s.header.Time < proposal.ExecutableAt() {
		err = ErrDelayNotElapsed
		return
	}
	if checkOnly {
		return
	}

	a.Nonce += 1
	s.touchAccount(a)

	for i := range proposal.Actions {
		if cerr := s.checkAction(&proposal.Actions[i], targets); cerr != nil {
			s.logger.Info("proposal execution failed", "proposal", proposal.Index, "action", i, "err", cerr)
			failEvent = &types.EventExecutionFailed{
				Proposal:    proposal.Index,
				Executor:    caller,
				ActionIndex: uint64(i),
				Reason:      cerr.Error(),
			}
			return
		}
	}
	for i := range proposal.Actions {
		if aerr := s.applyAction(&proposal.Actions[i], targets); aerr != nil {
			err = aerr
			return
		}
	}

	if err = s.refundStake(proposal); err != nil {
		return nil, nil, err
	}
	proposal.Status = types.ProposalStatusExecuted
	s.markProposal(proposal)

	event = &types.EventProposalExecuted{
		Proposal: proposal.Index,
		Executor: caller,
		Actions:  uint64(len(proposal.Actions)),
	}
	return
}
