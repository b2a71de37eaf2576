package state

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/starshop/gov-node/tx"
	"github.com/stretchr/testify/assert"
)

func TestEffectiveWeightOwnHoldings(t *testing.T) {
	_, st := newTestState(t)
	alice := addTestAccount(t, st, 1500, false)

	w, err := st.EffectiveWeight(alice, 0)
	assert.Nil(t, err)
	assert.Equal(t, uint64(1500), w)
}

func TestDelegationMovesWeight(t *testing.T) {
	_, st := newTestState(t)
	alice := addTestAccount(t, st, 1000, false)
	bob := addTestAccount(t, st, 500, false)

	ev, err := st.Delegate(&tx.DelegateTx{Delegatee: bob}, alice, false)
	assert.Nil(t, err)
	assert.Equal(t, alice, ev.Delegator)
	assert.Equal(t, bob, ev.Delegatee)

	// the delegator goes to zero, the delegatee absorbs the holdings
	w, err := st.EffectiveWeight(alice, 0)
	assert.Nil(t, err)
	assert.Equal(t, uint64(0), w)

	w, err = st.EffectiveWeight(bob, 0)
	assert.Nil(t, err)
	assert.Equal(t, uint64(1500), w)
}

func TestDelegationNotTransitive(t *testing.T) {
	_, st := newTestState(t)
	alice := addTestAccount(t, st, 1000, false)
	bob := addTestAccount(t, st, 500, false)
	carol := addTestAccount(t, st, 200, false)

	_, err := st.Delegate(&tx.DelegateTx{Delegatee: bob}, alice, false)
	assert.Nil(t, err)
	_, err = st.Delegate(&tx.DelegateTx{Delegatee: carol}, bob, false)
	assert.Nil(t, err)

	// bob delegates away, so his effective weight is zero even with an
	// inbound delegation
	w, err := st.EffectiveWeight(bob, 0)
	assert.Nil(t, err)
	assert.Equal(t, uint64(0), w)

	// carol gets bob's own holdings only; alice's do not flow through
	w, err = st.EffectiveWeight(carol, 0)
	assert.Nil(t, err)
	assert.Equal(t, uint64(700), w)
}

func TestSelfDelegationRejected(t *testing.T) {
	_, st := newTestState(t)
	alice := addTestAccount(t, st, 1000, false)

	_, err := st.Delegate(&tx.DelegateTx{Delegatee: alice}, alice, false)
	assert.ErrorIs(t, err, ErrSelfDelegation)
}

func TestDelegationCycleRejected(t *testing.T) {
	_, st := newTestState(t)
	alice := addTestAccount(t, st, 1000, false)
	bob := addTestAccount(t, st, 500, false)
	carol := addTestAccount(t, st, 200, false)

	_, err := st.Delegate(&tx.DelegateTx{Delegatee: bob}, alice, false)
	assert.Nil(t, err)
	_, err = st.Delegate(&tx.DelegateTx{Delegatee: carol}, bob, false)
	assert.Nil(t, err)

	// closing the chain carol -> alice -> bob -> carol must fail
	_, err = st.Delegate(&tx.DelegateTx{Delegatee: alice}, carol, false)
	assert.ErrorIs(t, err, ErrDelegationCycle)

	// the direct two party cycle as well
	_, err = st.Delegate(&tx.DelegateTx{Delegatee: alice}, bob, false)
	assert.ErrorIs(t, err, ErrDelegationCycle)
}

func TestDelegateToUnknownAccount(t *testing.T) {
	_, st := newTestState(t)
	alice := addTestAccount(t, st, 1000, false)

	_, err := st.Delegate(&tx.DelegateTx{Delegatee: StartAccountIdx + 99}, alice, false)
	assert.ErrorIs(t, err, ErrAccountNoexists)
}

func TestRedelegateReplacesEdge(t *testing.T) {
	_, st := newTestState(t)
	alice := addTestAccount(t, st, 1000, false)
	bob := addTestAccount(t, st, 500, false)
	carol := addTestAccount(t, st, 200, false)

	_, err := st.Delegate(&tx.DelegateTx{Delegatee: bob}, alice, false)
	assert.Nil(t, err)
	_, err = st.Delegate(&tx.DelegateTx{Delegatee: carol}, alice, false)
	assert.Nil(t, err)

	w, _ := st.EffectiveWeight(bob, 0)
	assert.Equal(t, uint64(500), w)
	w, _ = st.EffectiveWeight(carol, 0)
	assert.Equal(t, uint64(1200), w)

	dels, err := st.DelegatorsOf(bob)
	assert.Nil(t, err)
	assert.Len(t, dels, 0)
}

func TestUndelegateRestoresWeight(t *testing.T) {
	_, st := newTestState(t)
	alice := addTestAccount(t, st, 1000, false)
	bob := addTestAccount(t, st, 500, false)

	_, err := st.Delegate(&tx.DelegateTx{Delegatee: bob}, alice, false)
	assert.Nil(t, err)

	ev, err := st.Undelegate(&tx.UndelegateTx{}, alice, false)
	assert.Nil(t, err)
	assert.Equal(t, bob, ev.Delegatee)

	w, _ := st.EffectiveWeight(alice, 0)
	assert.Equal(t, uint64(1000), w)
	w, _ = st.EffectiveWeight(bob, 0)
	assert.Equal(t, uint64(500), w)
}

func TestUndelegateWithoutDelegation(t *testing.T) {
	_, st := newTestState(t)
	alice := addTestAccount(t, st, 1000, false)

	ev, err := st.Undelegate(&tx.UndelegateTx{}, alice, false)
	assert.Nil(t, err)
	assert.Nil(t, ev)
}

func TestEffectiveWeightCap(t *testing.T) {
	_, st := newTestState(t)
	alice := addTestAccount(t, st, 1000, false)
	bob := addTestAccount(t, st, 9000, false)

	_, err := st.Delegate(&tx.DelegateTx{Delegatee: bob}, alice, false)
	assert.Nil(t, err)

	w, err := st.EffectiveWeight(bob, 0)
	assert.Nil(t, err)
	assert.Equal(t, uint64(10000), w)

	w, err = st.EffectiveWeight(bob, 2500)
	assert.Nil(t, err)
	assert.Equal(t, uint64(2500), w)

	// a cap above the natural weight changes nothing
	w, err = st.EffectiveWeight(bob, 50000)
	assert.Nil(t, err)
	assert.Equal(t, uint64(10000), w)
}

func TestDelegationGraphRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	_, st := newTestState(t)

	const n = 16
	accounts := make([]uint64, n)
	balances := make([]uint64, n)
	for i := range accounts {
		balances[i] = uint64(rng.Intn(1000) + 1)
		accounts[i] = addTestAccount(t, st, balances[i], false)
	}

	for step := 0; step < 500; step++ {
		from := accounts[rng.Intn(n)]
		if rng.Intn(4) == 0 {
			_, err := st.Undelegate(&tx.UndelegateTx{}, from, false)
			assert.Nil(t, err)
			continue
		}
		to := accounts[rng.Intn(n)]
		_, err := st.Delegate(&tx.DelegateTx{Delegatee: to}, from, false)
		if err != nil {
			assert.True(t, errors.Is(err, ErrSelfDelegation) || errors.Is(err, ErrDelegationCycle))
		}
	}

	// after any valid sequence every chain terminates and every weight
	// matches the direct-delegator model
	for i, a := range accounts {
		d, err := st.DelegationOf(a)
		assert.Nil(t, err)

		seen := map[uint64]bool{a: true}
		for cur := d; cur != 0; {
			assert.False(t, seen[cur], "delegation cycle via %d", cur)
			seen[cur] = true
			cur, err = st.DelegationOf(cur)
			assert.Nil(t, err)
		}

		want := uint64(0)
		if d == 0 {
			want = balances[i]
			dels, err := st.DelegatorsOf(a)
			assert.Nil(t, err)
			for _, dd := range dels {
				want += balances[dd-StartAccountIdx]
			}
		}
		w, err := st.EffectiveWeight(a, 0)
		assert.Nil(t, err)
		assert.Equal(t, want, w)

		capped, err := st.EffectiveWeight(a, 100)
		assert.Nil(t, err)
		assert.LessOrEqual(t, capped, uint64(100))
	}
}

func TestDelegationPersistence(t *testing.T) {
	db, st := newTestState(t)
	alice := addTestAccount(t, st, 1000, false)
	bob := addTestAccount(t, st, 500, false)

	_, err := st.Delegate(&tx.DelegateTx{Delegatee: bob}, alice, false)
	assert.Nil(t, err)

	_, err = st.Update()
	assert.Nil(t, err)
	_, err = db.SetState(st)
	assert.Nil(t, err)

	next := db.NewState()
	d, err := next.DelegationOf(alice)
	assert.Nil(t, err)
	assert.Equal(t, bob, d)
	dels, err := next.DelegatorsOf(bob)
	assert.Nil(t, err)
	assert.Equal(t, []uint64{alice}, dels)
}
