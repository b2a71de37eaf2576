package types

import (
	"fmt"
	"strconv"

	abci "github.com/cometbft/cometbft/abci/types"
)

const (
	EventProposalCreatedType   = "proposal_created"
	EventProposalActivatedType = "proposal_activated"
	EventVoteCastType          = "vote_cast"
	EventDelegatedType         = "delegated"
	EventUndelegatedType       = "undelegated"
	EventProposalClosedType    = "proposal_closed"
	EventProposalVetoedType    = "proposal_vetoed"
	EventProposalCanceledType  = "proposal_canceled"
	EventProposalExecutedType  = "proposal_executed"
	EventExecutionFailedType   = "execution_failed"
	EventAccountVerifiedType   = "account_verified"
)

type EventProposalCreated struct {
	Proposal        uint64       `json:"proposal"`
	Proposer        uint64       `json:"proposerIndex"`
	ProposerAddress string       `json:"proposerAddress"`
	Title           string       `json:"title"`
	Type            ProposalType `json:"type"`
	LockedStake     uint64       `json:"lockedStake"`
}

func EncodeEventProposalCreated(event *EventProposalCreated) abci.Event {
	return abci.Event{
		Type: EventProposalCreatedType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.Proposal), Index: true},
			{Key: "proposer", Value: fmt.Sprintf("%v", event.Proposer), Index: true},
			{Key: "proposerAddress", Value: event.ProposerAddress, Index: false},
			{Key: "title", Value: event.Title, Index: false},
			{Key: "type", Value: fmt.Sprintf("%v", uint64(event.Type)), Index: false},
			{Key: "lockedStake", Value: fmt.Sprintf("%v", event.LockedStake), Index: false},
		},
	}
}

func DecodeEventProposalCreated(originEvent abci.Event) *EventProposalCreated {
	event := &EventProposalCreated{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "proposal":
			proposal, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Proposal = proposal
		case "proposer":
			proposer, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Proposer = proposer
		case "proposerAddress":
			event.ProposerAddress = v.Value
		case "title":
			event.Title = v.Value
		case "type":
			tp, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Type = ProposalType(tp)
		case "lockedStake":
			stake, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.LockedStake = stake
		}
	}
	return event
}

type EventProposalActivated struct {
	Proposal    uint64 `json:"proposal"`
	Moderator   uint64 `json:"moderatorIndex"`
	ActivatedAt uint64 `json:"activatedAt"`
	Deadline    uint64 `json:"deadline"`
}

func EncodeEventProposalActivated(event *EventProposalActivated) abci.Event {
	return abci.Event{
		Type: EventProposalActivatedType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.Proposal), Index: true},
			{Key: "moderator", Value: fmt.Sprintf("%v", event.Moderator), Index: false},
			{Key: "activatedAt", Value: fmt.Sprintf("%v", event.ActivatedAt), Index: false},
			{Key: "deadline", Value: fmt.Sprintf("%v", event.Deadline), Index: false},
		},
	}
}

func DecodeEventProposalActivated(originEvent abci.Event) *EventProposalActivated {
	event := &EventProposalActivated{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "proposal":
			proposal, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Proposal = proposal
		case "moderator":
			moderator, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Moderator = moderator
		case "activatedAt":
			at, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.ActivatedAt = at
		case "deadline":
			deadline, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Deadline = deadline
		}
	}
	return event
}

type EventVoteCast struct {
	Proposal     uint64 `json:"proposal"`
	Voter        uint64 `json:"voterIndex"`
	VoterAddress string `json:"voterAddress"`
	Support      bool   `json:"support"`
	Weight       uint64 `json:"weight"`
}

func EncodeEventVoteCast(event *EventVoteCast) abci.Event {
	return abci.Event{
		Type: EventVoteCastType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.Proposal), Index: true},
			{Key: "voter", Value: fmt.Sprintf("%v", event.Voter), Index: true},
			{Key: "voterAddress", Value: event.VoterAddress, Index: false},
			{Key: "support", Value: fmt.Sprintf("%v", event.Support), Index: false},
			{Key: "weight", Value: fmt.Sprintf("%v", event.Weight), Index: false},
		},
	}
}

func DecodeEventVoteCast(originEvent abci.Event) *EventVoteCast {
	event := &EventVoteCast{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "proposal":
			proposal, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Proposal = proposal
		case "voter":
			voter, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Voter = voter
		case "voterAddress":
			event.VoterAddress = v.Value
		case "support":
			support, err := strconv.ParseBool(v.Value)
			if err != nil {
				return nil
			}
			event.Support = support
		case "weight":
			weight, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Weight = weight
		}
	}
	return event
}

type EventDelegated struct {
	Delegator        uint64 `json:"delegatorIndex"`
	DelegatorAddress string `json:"delegatorAddress"`
	Delegatee        uint64 `json:"delegateeIndex"`
	DelegateeAddress string `json:"delegateeAddress"`
}

func EncodeEventDelegated(event *EventDelegated) abci.Event {
	return abci.Event{
		Type: EventDelegatedType,
		Attributes: []abci.EventAttribute{
			{Key: "delegator", Value: fmt.Sprintf("%v", event.Delegator), Index: true},
			{Key: "delegatorAddress", Value: event.DelegatorAddress, Index: false},
			{Key: "delegatee", Value: fmt.Sprintf("%v", event.Delegatee), Index: true},
			{Key: "delegateeAddress", Value: event.DelegateeAddress, Index: false},
		},
	}
}

func DecodeEventDelegated(originEvent abci.Event) *EventDelegated {
	event := &EventDelegated{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "delegator":
			delegator, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Delegator = delegator
		case "delegatorAddress":
			event.DelegatorAddress = v.Value
		case "delegatee":
			delegatee, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Delegatee = delegatee
		case "delegateeAddress":
			event.DelegateeAddress = v.Value
		}
	}
	return event
}

type EventUndelegated struct {
	Delegator        uint64 `json:"delegatorIndex"`
	DelegatorAddress string `json:"delegatorAddress"`
	Delegatee        uint64 `json:"delegateeIndex"`
}

func EncodeEventUndelegated(event *EventUndelegated) abci.Event {
	return abci.Event{
		Type: EventUndelegatedType,
		Attributes: []abci.EventAttribute{
			{Key: "delegator", Value: fmt.Sprintf("%v", event.Delegator), Index: true},
			{Key: "delegatorAddress", Value: event.DelegatorAddress, Index: false},
			{Key: "delegatee", Value: fmt.Sprintf("%v", event.Delegatee), Index: false},
		},
	}
}

func DecodeEventUndelegated(originEvent abci.Event) *EventUndelegated {
	event := &EventUndelegated{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "delegator":
			delegator, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Delegator = delegator
		case "delegatorAddress":
			event.DelegatorAddress = v.Value
		case "delegatee":
			delegatee, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Delegatee = delegatee
		}
	}
	return event
}

// EventProposalClosed reports the voting outcome at the end of the
// window, carrying the final tallies for auditability.
type EventProposalClosed struct {
	Proposal      uint64 `json:"proposal"`
	Passed        bool   `json:"passed"`
	WeightFor     uint64 `json:"weightFor"`
	WeightAgainst uint64 `json:"weightAgainst"`
	VoterCount    uint64 `json:"voterCount"`
}

func EncodeEventProposalClosed(event *EventProposalClosed) abci.Event {
	return abci.Event{
		Type: EventProposalClosedType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.Proposal), Index: true},
			{Key: "passed", Value: fmt.Sprintf("%v", event.Passed), Index: false},
			{Key: "weightFor", Value: fmt.Sprintf("%v", event.WeightFor), Index: false},
			{Key: "weightAgainst", Value: fmt.Sprintf("%v", event.WeightAgainst), Index: false},
			{Key: "voterCount", Value: fmt.Sprintf("%v", event.VoterCount), Index: false},
		},
	}
}

func DecodeEventProposalClosed(originEvent abci.Event) *EventProposalClosed {
	event := &EventProposalClosed{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "proposal":
			proposal, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Proposal = proposal
		case "passed":
			passed, err := strconv.ParseBool(v.Value)
			if err != nil {
				return nil
			}
			event.Passed = passed
		case "weightFor":
			w, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.WeightFor = w
		case "weightAgainst":
			w, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.WeightAgainst = w
		case "voterCount":
			c, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.VoterCount = c
		}
	}
	return event
}

type EventProposalVetoed struct {
	Proposal  uint64 `json:"proposal"`
	Moderator uint64 `json:"moderatorIndex"`
}

func EncodeEventProposalVetoed(event *EventProposalVetoed) abci.Event {
	return abci.Event{
		Type: EventProposalVetoedType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.Proposal), Index: true},
			{Key: "moderator", Value: fmt.Sprintf("%v", event.Moderator), Index: false},
		},
	}
}

func DecodeEventProposalVetoed(originEvent abci.Event) *EventProposalVetoed {
	event := &EventProposalVetoed{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "proposal":
			proposal, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Proposal = proposal
		case "moderator":
			moderator, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Moderator = moderator
		}
	}
	return event
}

type EventProposalCanceled struct {
	Proposal      uint64 `json:"proposal"`
	Caller        uint64 `json:"callerIndex"`
	ReleasedStake uint64 `json:"releasedStake"`
}

func EncodeEventProposalCanceled(event *EventProposalCanceled) abci.Event {
	return abci.Event{
		Type: EventProposalCanceledType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.Proposal), Index: true},
			{Key: "caller", Value: fmt.Sprintf("%v", event.Caller), Index: false},
			{Key: "releasedStake", Value: fmt.Sprintf("%v", event.ReleasedStake), Index: false},
		},
	}
}

func DecodeEventProposalCanceled(originEvent abci.Event) *EventProposalCanceled {
	event := &EventProposalCanceled{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "proposal":
			proposal, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Proposal = proposal
		case "caller":
			caller, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Caller = caller
		case "releasedStake":
			stake, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.ReleasedStake = stake
		}
	}
	return event
}

type EventProposalExecuted struct {
	Proposal uint64 `json:"proposal"`
	Executor uint64 `json:"executorIndex"`
	Actions  uint64 `json:"actions"`
}

func EncodeEventProposalExecuted(event *EventProposalExecuted) abci.Event {
	return abci.Event{
		Type: EventProposalExecutedType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.Proposal), Index: true},
			{Key: "executor", Value: fmt.Sprintf("%v", event.Executor), Index: false},
			{Key: "actions", Value: fmt.Sprintf("%v", event.Actions), Index: false},
		},
	}
}

func DecodeEventProposalExecuted(originEvent abci.Event) *EventProposalExecuted {
	event := &EventProposalExecuted{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "proposal":
			proposal, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Proposal = proposal
		case "executor":
			executor, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Executor = executor
		case "actions":
			actions, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Actions = actions
		}
	}
	return event
}

// EventExecutionFailed is emitted when an execution attempt aborts. The
// proposal stays Passed and may be retried by any authorized caller.
type EventExecutionFailed struct {
	Proposal    uint64 `json:"proposal"`
	Executor    uint64 `json:"executorIndex"`
	ActionIndex uint64 `json:"actionIndex"`
	Reason      string `json:"reason"`
}

func EncodeEventExecutionFailed(event *EventExecutionFailed) abci.Event {
	return abci.Event{
		Type: EventExecutionFailedType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.Proposal), Index: true},
			{Key: "executor", Value: fmt.Sprintf("%v", event.Executor), Index: false},
			{Key: "actionIndex", Value: fmt.Sprintf("%v", event.ActionIndex), Index: false},
			{Key: "reason", Value: event.Reason, Index: false},
		},
	}
}

func DecodeEventExecutionFailed(originEvent abci.Event) *EventExecutionFailed {
	event := &EventExecutionFailed{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "proposal":
			proposal, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Proposal = proposal
		case "executor":
			executor, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Executor = executor
		case "actionIndex":
			idx, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.ActionIndex = idx
		case "reason":
			event.Reason = v.Value
		}
	}
	return event
}

type EventAccountVerified struct {
	Account uint64 `json:"account"`
	Level   uint64 `json:"level"`
	Caller  uint64 `json:"callerIndex"`
}

func EncodeEventAccountVerified(event *EventAccountVerified) abci.Event {
	return abci.Event{
		Type: EventAccountVerifiedType,
		Attributes: []abci.EventAttribute{
			{Key: "account", Value: fmt.Sprintf("%v", event.Account), Index: true},
			{Key: "level", Value: fmt.Sprintf("%v", event.Level), Index: false},
			{Key: "caller", Value: fmt.Sprintf("%v", event.Caller), Index: false},
		},
	}
}

func DecodeEventAccountVerified(originEvent abci.Event) *EventAccountVerified {
	event := &EventAccountVerified{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "account":
			account, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Account = account
		case "level":
			level, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Level = level
		case "caller":
			caller, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Caller = caller
		}
	}
	return event
}
