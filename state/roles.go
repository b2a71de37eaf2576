package state

import (
	"github.com/starshop/gov-node/tx"
	"github.com/starshop/gov-node/types"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/syndtr/goleveldb/leveldb"
)

func (s *State) loadModerators() ([]uint64, error) {
	if s.loadedMods {
		return s.moderators, nil
	}
	val, err := s.db.Get([]byte(KeyModerators))
	if err != nil {
		if err != leveldb.ErrNotFound {
			return nil, err
		}
	}
	if val != nil {
		var mods []uint64
		if err := rlp.DecodeBytes(val, &mods); err != nil {
			return nil, err
		}
		s.moderators = mods
	}
	s.loadedMods = true
	return s.moderators, nil
}

func (s *State) IsAdmin(idx uint64) bool {
	return s.header.AdminIdx != 0 && s.header.AdminIdx == idx
}

func (s *State) IsModerator(idx uint64) (bool, error) {
	mods, err := s.loadModerators()
	if err != nil {
		return false, err
	}
	for _, m := range mods {
		if m == idx {
			return true, nil
		}
	}
	return false, nil
}

// isPrivileged is the veto/activate/execute authority set: the admin or
// any moderator.
func (s *State) isPrivileged(idx uint64) (bool, error) {
	if s.IsAdmin(idx) {
		return true, nil
	}
	return s.IsModerator(idx)
}

func (s *State) appointModerator(idx uint64) error {
	mods, err := s.loadModerators()
	if err != nil {
		return err
	}
	for _, m := range mods {
		if m == idx {
			return nil
		}
	}
	s.moderators = append(mods, idx)
	s.modModerators = true
	return nil
}

func (s *State) removeModerator(idx uint64) error {
	mods, err := s.loadModerators()
	if err != nil {
		return err
	}
	for i, m := range mods {
		if m == idx {
			s.moderators = append(mods[:i], mods[i+1:]...)
			s.modModerators = true
			return nil
		}
	}
	return ErrNotFound
}

func (s *State) Moderators() ([]uint64, error) {
	mods, err := s.loadModerators()
	if err != nil {
		return nil, err
	}
	out := make([]uint64, len(mods))
	copy(out, mods)
	return out, nil
}

// SetAdmin assigns the singular admin role. Genesis only; afterwards
// roles move through moderator actions.
func (s *State) SetAdmin(idx uint64) {
	s.header.AdminIdx = idx
}

func (s *State) SetModerators(mods []uint64) {
	s.moderators = append([]uint64{}, mods...)
	s.loadedMods = true
	s.modModerators = true
}

// VerifyAccount marks the target as verified at a level, standing in
// for the external verification flow. Admin and moderators only.
func (s *State) VerifyAccount(vtx *tx.VerifyAccountTx, caller uint64, checkOnly bool) (event *types.EventAccountVerified, err error) {
	s.logger.Debug("apply verify account", "caller", caller, "target", vtx.Target, "height", s.header.Height)
	c, err := s.GetAccount(caller)
	if err != nil {
		return nil, err
	}
	if c == nil {
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
	target, err := s.GetAccount(vtx.Target)
	if err != nil {
		return nil, err
	}
	if target == nil {
		err = ErrAccountNoexists
		return
	}
	if !checkOnly {
		target.Verified = true
		target.Level = vtx.Level
		s.touchAccount(target)

		c.Nonce += 1
		s.touchAccount(c)

		event = &types.EventAccountVerified{
			Account: target.Index,
			Level:   vtx.Level,
			Caller:  caller,
		}
	}
	return
}
