package types

import "fmt"

// ActionKind tags the closed set of effects a passed proposal may apply.
type ActionKind uint64

const (
	ActionUpdateProposalRequirements ActionKind = 1
	ActionAppointModerator           ActionKind = 2
	ActionRemoveModerator            ActionKind = 3
	ActionUpdateRewardRate           ActionKind = 4
	ActionUpdateLevelRequirements    ActionKind = 5
	ActionUpdateAuctionConditions    ActionKind = 6
)

func (k ActionKind) String() string {
	switch k {
	case ActionUpdateProposalRequirements:
		return "update_proposal_requirements"
	case ActionAppointModerator:
		return "appoint_moderator"
	case ActionRemoveModerator:
		return "remove_moderator"
	case ActionUpdateRewardRate:
		return "update_reward_rate"
	case ActionUpdateLevelRequirements:
		return "update_level_requirements"
	case ActionUpdateAuctionConditions:
		return "update_auction_conditions"
	}
	return "unknown"
}

// Action is a tagged variant: Kind selects exactly one payload field, the
// rest stay nil. Dispatch is a switch over Kind, one handler per variant.
type Action struct {
	Kind ActionKind `json:"kind"`

	Requirements *Requirements             `json:"requirements,omitempty"`
	Moderator    *ModeratorPayload         `json:"moderator,omitempty"`
	RewardRate   *RewardRatePayload        `json:"rewardRate,omitempty"`
	Levels       *LevelRequirementsPayload `json:"levels,omitempty"`
	Auction      *AuctionConditionsPayload `json:"auction,omitempty"`
}

type ModeratorPayload struct {
	Account uint64 `json:"account"`
}

// RewardRatePayload updates the referral reward rate, in basis points.
type RewardRatePayload struct {
	RateBp uint64 `json:"rateBp"`
}

// LevelRequirementsPayload sets the verification-level thresholds the
// referral service applies when promoting users.
type LevelRequirementsPayload struct {
	SilverMinReferrals uint64 `json:"silverMinReferrals"`
	GoldMinReferrals   uint64 `json:"goldMinReferrals"`
}

type AuctionConditionsPayload struct {
	MinBidIncrementBp uint64 `json:"minBidIncrementBp"`
	ExtensionWindow   uint64 `json:"extensionWindow"`
	MaxDuration       uint64 `json:"maxDuration"`
}

// Validate checks the tag/payload pairing without touching any target.
func (a *Action) Validate() error {
	switch a.Kind {
	case ActionUpdateProposalRequirements:
		if a.Requirements == nil {
			return fmt.Errorf("action %v: missing requirements payload", a.Kind)
		}
	case ActionAppointModerator, ActionRemoveModerator:
		if a.Moderator == nil {
			return fmt.Errorf("action %v: missing moderator payload", a.Kind)
		}
	case ActionUpdateRewardRate:
		if a.RewardRate == nil {
			return fmt.Errorf("action %v: missing reward rate payload", a.Kind)
		}
	case ActionUpdateLevelRequirements:
		if a.Levels == nil {
			return fmt.Errorf("action %v: missing level requirements payload", a.Kind)
		}
	case ActionUpdateAuctionConditions:
		if a.Auction == nil {
			return fmt.Errorf("action %v: missing auction payload", a.Kind)
		}
	default:
		return fmt.Errorf("unknown action kind %d", a.Kind)
	}
	return nil
}
