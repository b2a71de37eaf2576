package state

import "errors"

// ErrorKind buckets every operation failure so callers always see a
// specific class, never a generic fault.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindAuthorization
	KindState
	KindEconomic
	KindDelegation
	KindExecution
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindState:
		return "state"
	case KindEconomic:
		return "economic"
	case KindDelegation:
		return "delegation"
	case KindExecution:
		return "execution"
	}
	return "unknown"
}

var (
	ErrNotFound = errors.New("not found")

	// validation
	ErrTitleEmpty      = errors.New("proposal title is empty")
	ErrZeroDuration    = errors.New("voting duration is zero")
	ErrBadBasisPoints  = errors.New("basis points out of range")
	ErrBadProposalType = errors.New("invalid proposal type")
	ErrNoVotingPower   = errors.New("no voting power")
	ErrNotVerified     = errors.New("account not verified")
	ErrBadAction       = errors.New("invalid action")

	// authorization
	ErrUnauthorized = errors.New("caller unauthorized")

	// state machine
	ErrInvalidStatus  = errors.New("operation illegal for proposal status")
	ErrAlreadyVoted   = errors.New("duplicate vote")
	ErrVoterDelegated = errors.New("voter has active delegation, undelegate first")
	ErrVotingClosed   = errors.New("voting window closed")
	ErrVotingOpen     = errors.New("voting window still open")

	// economic guards
	ErrInsufficientStake = errors.New("insufficient stake")
	ErrCooldownActive    = errors.New("proposal cooldown active")
	ErrProposalLimit     = errors.New("proposal limit reached")

	// delegation
	ErrSelfDelegation  = errors.New("self delegation not allowed")
	ErrDelegationCycle = errors.New("delegation cycle detected")

	// execution
	ErrDelayNotElapsed = errors.New("execution delay not elapsed")
	ErrActionRejected  = errors.New("action rejected by target")

	// accounts / envelope
	ErrAccountNoexists      = errors.New("account noexists")
	ErrAccountAlreadyExists = errors.New("account already exists")
	ErrProposalNoexists     = errors.New("proposal noexists")
	ErrTxNonceInvalid       = errors.New("nonce invalid")
	ErrTxSigInvalid         = errors.New("signature invalid")
)

var kindTable = map[ErrorKind][]error{
	KindValidation:    {ErrTitleEmpty, ErrZeroDuration, ErrBadBasisPoints, ErrBadProposalType, ErrNoVotingPower, ErrNotVerified, ErrBadAction},
	KindAuthorization: {ErrUnauthorized},
	KindState:         {ErrInvalidStatus, ErrAlreadyVoted, ErrVoterDelegated, ErrVotingClosed, ErrVotingOpen},
	KindEconomic:      {ErrInsufficientStake, ErrCooldownActive, ErrProposalLimit},
	KindDelegation:    {ErrSelfDelegation, ErrDelegationCycle},
	KindExecution:     {ErrDelayNotElapsed, ErrActionRejected},
}

// Kind classifies err into the governance error taxonomy.
func Kind(err error) ErrorKind {
	for kind, errs := range kindTable {
		for _, e := range errs {
			if errors.Is(err, e) {
				return kind
			}
		}
	}
	return KindUnknown
}
