package state

import (
	"fmt"

	"github.com/starshop/gov-node/tx"
	"github.com/starshop/gov-node/types"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/syndtr/goleveldb/leveldb"
)

// DelegationOf returns the current delegatee of idx, zero when none.
func (s *State) DelegationOf(idx uint64) (uint64, error) {
	if d, ok := s.delegations[idx]; ok {
		return d, nil
	}
	key := fmt.Sprintf(KeyDelegation, idx)
	val, err := s.db.Get([]byte(key))
	if err != nil {
		if err != leveldb.ErrNotFound {
			return 0, err
		}
	}
	var d uint64
	if val != nil {
		if err := rlp.DecodeBytes(val, &d); err != nil {
			return 0, err
		}
	}
	s.delegations[idx] = d
	return d, nil
}

// DelegatorsOf returns the accounts currently delegating to idx.
func (s *State) DelegatorsOf(idx uint64) ([]uint64, error) {
	if l, ok := s.delegators[idx]; ok {
		return l, nil
	}
	key := fmt.Sprintf(KeyDelegators, idx)
	val, err := s.db.Get([]byte(key))
	if err != nil {
		if err != leveldb.ErrNotFound {
			return nil, err
		}
	}
	var l []uint64
	if val != nil {
		if err := rlp.DecodeBytes(val, &l); err != nil {
			return nil, err
		}
	}
	s.delegators[idx] = l
	return l, nil
}

func (s *State) setDelegation(delegator, delegatee uint64) {
	s.delegations[delegator] = delegatee
	s.modDelegations[delegator] = true
}

func (s *State) addDelegator(delegatee, delegator uint64) error {
	l, err := s.DelegatorsOf(delegatee)
	if err != nil {
		return err
	}
	for _, d := range l {
		if d == delegator {
			return nil
		}
	}
	s.delegators[delegatee] = append(l, delegator)
	s.modDelegators[delegatee] = true
	return nil
}

func (s *State) removeDelegator(delegatee, delegator uint64) error {
	l, err := s.DelegatorsOf(delegatee)
	if err != nil {
		return err
	}
	for i, d := range l {
		if d == delegator {
			s.delegators[delegatee] = append(l[:i], l[i+1:]...)
			s.modDelegators[delegatee] = true
			return nil
		}
	}
	return nil
}

// wouldCycle walks the delegation chain from delegatee looking for
// delegator. The walk is bounded by the account count, so a corrupted
// chain can never loop forever.
func (s *State) wouldCycle(delegator, delegatee uint64) (bool, error) {
	cur := delegatee
	for steps := uint64(0); steps < s.header.AccountIdx; steps++ {
		if cur == delegator {
			return true, nil
		}
		next, err := s.DelegationOf(cur)
		if err != nil {
			return false, err
		}
		if next == 0 {
			return false, nil
		}
		cur = next
	}
	return true, nil
}

// Delegate points the caller's voting weight at another account. An
// existing delegation is replaced in place.
func (s *State) Delegate(dtx *tx.DelegateTx, delegator uint64, checkOnly bool) (event *types.EventDelegated, err error) {
	s.logger.Debug("apply delegate", "delegator", delegator, "delegatee", dtx.Delegatee, "height", s.header.Height)
	a, err := s.GetAccount(delegator)
	if err != nil {
		return nil, err
	}
	if a == nil {
		err = ErrAccountNoexists
		return
	}
	d, err := s.GetAccount(dtx.Delegatee)
	if err != nil {
		return nil, err
	}
	if d == nil {
		err = ErrAccountNoexists
		return
	}
	if delegator == dtx.Delegatee {
		err = ErrSelfDelegation
		return
	}
	cyc, err := s.wouldCycle(delegator, dtx.Delegatee)
	if err != nil {
		return nil, err
	}
	if cyc {
		err = ErrDelegationCycle
		return
	}
	if !checkOnly {
		old, err := s.DelegationOf(delegator)
		if err != nil {
			return nil, err
		}
		if old != 0 {
			if err := s.removeDelegator(old, delegator); err != nil {
				return nil, err
			}
		}
		s.setDelegation(delegator, dtx.Delegatee)
		if err := s.addDelegator(dtx.Delegatee, delegator); err != nil {
			return nil, err
		}

		a.Nonce += 1
		s.touchAccount(a)

		event = &types.EventDelegated{
			Delegator:        delegator,
			DelegatorAddress: a.Address(),
			Delegatee:        dtx.Delegatee,
			DelegateeAddress: d.Address(),
		}
	}
	return
}

// Undelegate clears the caller's delegation. A no-op when none exists.
func (s *State) Undelegate(utx *tx.UndelegateTx, delegator uint64, checkOnly bool) (event *types.EventUndelegated, err error) {
	s.logger.Debug("apply undelegate", "delegator", delegator, "height", s.header.Height)
	a, err := s.GetAccount(delegator)
	if err != nil {
		return nil, err
	}
	if a == nil {
		err = ErrAccountNoexists
		return
	}
	if !checkOnly {
		old, err := s.DelegationOf(delegator)
		if err != nil {
			return nil, err
		}
		a.Nonce += 1
		s.touchAccount(a)
		if old == 0 {
			return nil, nil
		}
		s.setDelegation(delegator, 0)
		if err := s.removeDelegator(old, delegator); err != nil {
			return nil, err
		}

		event = &types.EventUndelegated{
			Delegator:        delegator,
			DelegatorAddress: a.Address(),
			Delegatee:        old,
		}
	}
	return
}

// EffectiveWeight is the voting weight of idx: own holdings plus the
// holdings of every direct delegator, zero while idx itself delegates
// away. maxPower of zero means uncapped.
func (s *State) EffectiveWeight(idx uint64, maxPower uint64) (weight uint64, err error) {
	out, err := s.DelegationOf(idx)
	if err != nil {
		return 0, err
	}
	if out != 0 {
		return 0, nil
	}
	a, err := s.GetAccount(idx)
	if err != nil {
		return 0, err
	}
	weight = a.Holdings()
	dels, err := s.DelegatorsOf(idx)
	if err != nil {
		return 0, err
	}
	for _, d := range dels {
		da, err := s.GetAccount(d)
		if err != nil {
			return 0, err
		}
		weight += da.Holdings()
	}
	if maxPower > 0 && weight > maxPower {
		weight = maxPower
	}
	return weight, nil
}
