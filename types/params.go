package types

// GovParams are the platform parameters owned by governance. They only
// change through executed proposal actions.
type GovParams struct {
	RewardRateBp uint64                   `json:"rewardRateBp"`
	Levels       LevelRequirementsPayload `json:"levels"`
	Auction      AuctionConditionsPayload `json:"auction"`
}

func DefaultGovParams() GovParams {
	return GovParams{
		RewardRateBp: 500,
		Levels: LevelRequirementsPayload{
			SilverMinReferrals: 5,
			GoldMinReferrals:   20,
		},
		Auction: AuctionConditionsPayload{
			MinBidIncrementBp: 100,
			ExtensionWindow:   300,
			MaxDuration:       604800,
		},
	}
}
