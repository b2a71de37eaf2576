package types

// ProposalStatus is the lifecycle state of a governance proposal.
// Allowed transitions: Draft -> Active -> {Passed, Rejected},
// Passed -> {Executed, Vetoed}, and {Draft, Active} -> Canceled.
type ProposalStatus uint64

const (
	ProposalStatusDraft    ProposalStatus = 1
	ProposalStatusActive   ProposalStatus = 2
	ProposalStatusPassed   ProposalStatus = 3
	ProposalStatusRejected ProposalStatus = 4
	ProposalStatusExecuted ProposalStatus = 5
	ProposalStatusVetoed   ProposalStatus = 6
	ProposalStatusCanceled ProposalStatus = 7
)

func (s ProposalStatus) Terminal() bool {
	switch s {
	case ProposalStatusExecuted, ProposalStatusRejected, ProposalStatusVetoed, ProposalStatusCanceled:
		return true
	}
	return false
}

func (s ProposalStatus) String() string {
	switch s {
	case ProposalStatusDraft:
		return "draft"
	case ProposalStatusActive:
		return "active"
	case ProposalStatusPassed:
		return "passed"
	case ProposalStatusRejected:
		return "rejected"
	case ProposalStatusExecuted:
		return "executed"
	case ProposalStatusVetoed:
		return "vetoed"
	case ProposalStatusCanceled:
		return "canceled"
	}
	return "unknown"
}

type ProposalType uint64

const (
	ProposalTypeGovernance ProposalType = 1
	ProposalTypeTechnical  ProposalType = 2
	ProposalTypeEconomic   ProposalType = 3
)

func (t ProposalType) Valid() bool {
	return t >= ProposalTypeGovernance && t <= ProposalTypeEconomic
}

// VotingConfig is frozen into a proposal at creation time. Once the
// proposal leaves Draft the copy held by the proposal is never changed,
// so rule changes cannot retroactively affect a running vote.
type VotingConfig struct {
	Duration          uint64 `json:"duration"`
	QuorumBp          uint64 `json:"quorumBp"`
	ThresholdBp       uint64 `json:"thresholdBp"`
	ExecutionDelay    uint64 `json:"executionDelay"`
	OneAddressOneVote bool   `json:"oneAddressOneVote"`
	MaxVotingPower    uint64 `json:"maxVotingPower"`
}

type Proposal struct {
	Index           uint64         `json:"index"`
	Proposer        uint64         `json:"proposer"`
	ProposerAddress string         `json:"proposerAddress"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	MetadataRef     string         `json:"metadataRef"`
	Type            ProposalType   `json:"type"`
	Status          ProposalStatus `json:"status"`
	CreatedAt       uint64         `json:"createdAt"`
	ActivatedAt     uint64         `json:"activatedAt"`
	PassedAt        uint64         `json:"passedAt"`
	VotingConfig    VotingConfig   `json:"votingConfig"`
	Actions         []Action       `json:"actions"`
	WeightFor       uint64         `json:"weightFor"`
	WeightAgainst   uint64         `json:"weightAgainst"`
	VoterCount      uint64         `json:"voterCount"`
	LockedStake     uint64         `json:"lockedStake"`
}

// Deadline is the end of the voting window; zero until activation.
func (p *Proposal) Deadline() uint64 {
	if p.ActivatedAt == 0 {
		return 0
	}
	return p.ActivatedAt + p.VotingConfig.Duration
}

// ExecutableAt is the earliest time execution is allowed once Passed.
func (p *Proposal) ExecutableAt() uint64 {
	return p.PassedAt + p.VotingConfig.ExecutionDelay
}

type Vote struct {
	Proposal uint64 `json:"proposal"`
	Voter    uint64 `json:"voter"`
	Address  string `json:"address"`
	Support  bool   `json:"support"`
	Weight   uint64 `json:"weight"`
	CastAt   uint64 `json:"castAt"`
}

// Requirements are the economic anti-spam guards applied on proposal
// creation. Mutable only through an executed UpdateProposalRequirements
// action.
type Requirements struct {
	CooldownPeriod uint64 `json:"cooldownPeriod"`
	RequiredStake  uint64 `json:"requiredStake"`
	ProposalLimit  uint64 `json:"proposalLimit"`
}

func DefaultRequirements() Requirements {
	return Requirements{
		CooldownPeriod: 86400,
		RequiredStake:  100,
		ProposalLimit:  5,
	}
}
