package indexer

// sqlite models

type Height struct {
	Id     uint64 `gorm:"primaryKey" json:"id"`
	Height uint64 `json:"height"`
}

type Proposal struct {
	Id              uint64 `gorm:"primaryKey" json:"id"`
	ProposerIndex   uint64 `json:"proposer_index"`
	ProposerAddress string `json:"proposer_address"`
	Title           string `json:"title"`
	Type            uint64 `json:"type"`
	Status          uint64 `json:"status"`
	LockedStake     uint64 `json:"locked_stake"`
	CreateHeight    uint64 `json:"create_height"`
	ActivateHeight  uint64 `json:"activate_height"`
	CloseHeight     uint64 `json:"close_height"`
	ExecuteHeight   uint64 `json:"execute_height"`
	Deadline        uint64 `json:"deadline"`
	WeightFor       uint64 `json:"weight_for"`
	WeightAgainst   uint64 `json:"weight_against"`
	VoterCount      uint64 `json:"voter_count"`
}

type Vote struct {
	Id           uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Proposal     uint64 `json:"proposal"`
	VoterIndex   uint64 `json:"voter_index"`
	VoterAddress string `json:"voter_address"`
	Support      bool   `json:"support"`
	Weight       uint64 `json:"weight"`
	Height       uint64 `json:"height"`
}

type Delegation struct {
	Id               uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	DelegatorIndex   uint64 `json:"delegator_index"`
	DelegatorAddress string `json:"delegator_address"`
	DelegateeIndex   uint64 `json:"delegatee_index"`
	DelegateeAddress string `json:"delegatee_address"`
	Height           uint64 `json:"height"`
	Active           bool   `json:"active"`
}

type Execution struct {
	Id          uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Proposal    uint64 `json:"proposal"`
	Executor    uint64 `json:"executor"`
	Height      uint64 `json:"height"`
	Success     bool   `json:"success"`
	ActionIndex uint64 `json:"action_index"`
	Reason      string `json:"reason"`
}

type Account struct {
	Id       uint64 `gorm:"primaryKey" json:"id"`
	Verified bool   `json:"verified"`
	Level    uint64 `json:"level"`
}
