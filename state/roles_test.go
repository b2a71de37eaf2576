package state

import (
	"testing"

	"github.com/starshop/gov-node/tx"
	"github.com/stretchr/testify/assert"
)

func TestVerifyAccount(t *testing.T) {
	_, st := newTestState(t)
	admin := addTestAccount(t, st, 0, false)
	mod := addTestAccount(t, st, 0, false)
	user := addTestAccount(t, st, 100, false)
	stranger := addTestAccount(t, st, 100, false)
	st.SetAdmin(admin)
	st.SetModerators([]uint64{mod})

	_, err := st.VerifyAccount(&tx.VerifyAccountTx{Target: user, Level: 1}, stranger, false)
	assert.ErrorIs(t, err, ErrUnauthorized)

	ev, err := st.VerifyAccount(&tx.VerifyAccountTx{Target: user, Level: 2}, mod, false)
	assert.Nil(t, err)
	assert.Equal(t, user, ev.Account)
	assert.Equal(t, uint64(2), ev.Level)

	a, err := st.GetAccount(user)
	assert.Nil(t, err)
	assert.True(t, a.Verified)
	assert.Equal(t, uint64(2), a.Level)
}

func TestModeratorSet(t *testing.T) {
	_, st := newTestState(t)
	admin := addTestAccount(t, st, 0, false)
	mod := addTestAccount(t, st, 0, false)
	st.SetAdmin(admin)

	assert.True(t, st.IsAdmin(admin))
	assert.False(t, st.IsAdmin(mod))

	assert.Nil(t, st.appointModerator(mod))
	// appointing twice is idempotent
	assert.Nil(t, st.appointModerator(mod))
	mods, err := st.Moderators()
	assert.Nil(t, err)
	assert.Equal(t, []uint64{mod}, mods)

	assert.Nil(t, st.removeModerator(mod))
	assert.ErrorIs(t, st.removeModerator(mod), ErrNotFound)
}

func TestErrorKinds(t *testing.T) {
	cases := map[error]ErrorKind{
		ErrTitleEmpty:        KindValidation,
		ErrBadBasisPoints:    KindValidation,
		ErrNotVerified:       KindValidation,
		ErrUnauthorized:      KindAuthorization,
		ErrInvalidStatus:     KindState,
		ErrVotingClosed:      KindState,
		ErrInsufficientStake: KindEconomic,
		ErrCooldownActive:    KindEconomic,
		ErrSelfDelegation:    KindDelegation,
		ErrDelegationCycle:   KindDelegation,
		ErrDelayNotElapsed:   KindExecution,
		ErrActionRejected:    KindExecution,
		ErrNotFound:          KindUnknown,
	}
	for err, want := range cases {
		assert.Equal(t, want, Kind(err), err.Error())
	}
}
