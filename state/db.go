package state

import (
	"sync"

	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cosmos/iavl"
	dbm "github.com/cosmos/iavl/db"
	"github.com/ethereum/go-ethereum/common"

	"github.com/starshop/gov-node/types"
)

type StateDB struct {
	mtx sync.RWMutex

	dir    string
	logger cmtlog.Logger
	db     *iavl.MutableTree

	state *State
}

func NewStateDB(dir string, logger cmtlog.Logger) (db *StateDB, err error) {
	logger = logger.With("module", "govdb")
	ldb, err := dbm.NewDB("gov", "goleveldb", dir)
	if err != nil {
		return nil, err
	}
	tdb := iavl.NewMutableTree(ldb, 128, true, Cometbft2CosmosLogger(logger))
	version, err := tdb.Load()
	if err != nil {
		return nil, err
	}
	logger.Info("load db success", "version", version)
	st := newState(tdb, logger)
	err = st.load()
	if err != nil {
		logger.Error("from govdb load fail", "err", err)
		return nil, err
	}
	db = &StateDB{
		dir:    dir,
		logger: logger,
		db:     tdb,
		state:  st,
	}
	return
}

// NewMemStateDB backs the state with an in-memory store. Test helper.
func NewMemStateDB(logger cmtlog.Logger) (db *StateDB, err error) {
	logger = logger.With("module", "govdb")
	mdb, err := dbm.NewDB("gov", "memdb", "")
	if err != nil {
		return nil, err
	}
	tdb := iavl.NewMutableTree(mdb, 128, true, Cometbft2CosmosLogger(logger))
	if _, err = tdb.Load(); err != nil {
		return nil, err
	}
	st := newState(tdb, logger)
	if err = st.load(); err != nil {
		return nil, err
	}
	db = &StateDB{
		logger: logger,
		db:     tdb,
		state:  st,
	}
	return
}

func (db *StateDB) Close() (err error) {
	err = db.db.Close()
	return
}

func (db *StateDB) Header() (header *StateHeader) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	header = db.state.Header()
	return
}

func (db *StateDB) State() *State {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	return db.state
}

func (db *StateDB) NewState() (st *State) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	st = db.state.nextState()
	return
}

func (db *StateDB) SetState(st *State) (hash common.Hash, err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	hash, err = st.save()
	if err != nil {
		return
	}
	db.state = st
	return
}

func (db *StateDB) GetAccountByIndex(idx uint64) (acnt *Account, height uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	acnt, err = db.state.GetAccount(idx)
	if err != nil {
		return
	}
	if acnt != nil {
		acnt = acnt.Clone()
	}
	height = db.state.header.Height

	return
}

func (db *StateDB) GetAccountByAddress(addr []byte) (acnt *Account, height uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	acnt, err = db.state.FindAccount(addr)
	if err != nil {
		return
	}
	if acnt != nil {
		acnt = acnt.Clone()
	}
	height = db.state.header.Height

	return
}

func (db *StateDB) GetProposal(idx uint64) (proposal *types.Proposal, height uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	proposal, err = db.state.GetProposal(idx)
	height = db.state.header.Height
	return
}

func (db *StateDB) GetVote(proposal, voter uint64) (vote *types.Vote, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	return db.state.GetVote(proposal, voter)
}

func (db *StateDB) GetDelegation(idx uint64) (delegatee uint64, delegators []uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	delegatee, err = db.state.DelegationOf(idx)
	if err != nil {
		return
	}
	l, err := db.state.DelegatorsOf(idx)
	if err != nil {
		return
	}
	delegators = make([]uint64, len(l))
	copy(delegators, l)
	return
}

func (db *StateDB) GetRequirements() (req types.Requirements, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	return db.state.Requirements()
}

func (db *StateDB) GetParams() (params types.GovParams, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	return db.state.Params()
}

func (db *StateDB) GetModerators() (mods []uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	return db.state.Moderators()
}
