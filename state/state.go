package state

import (
	"bytes"
	"container/heap"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/starshop/gov-node/config"
	"github.com/starshop/gov-node/tx"
	"github.com/starshop/gov-node/types"
	abci_types "github.com/cometbft/cometbft/abci/types"
	cmtcrypto "github.com/cometbft/cometbft/crypto"
	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cosmos/iavl"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/syndtr/goleveldb/leveldb"
)

const (
	StartAccountIdx = 65536

	ModifiedFlagNew = 1 << 0
	ModifiedFlagMod = 1 << 1
	ModifiedFlagPK  = 1 << 2

	MaxValidators = 100
)

var (
	KeyState        = "s"
	KeyAccountIndex = "i%s"
	KeyAccountBody  = "a%v"
	KeyProposalBody = "p%v"
	KeyVoteBody     = "v%v:%v"
	KeyDelegation   = "d%v"
	KeyDelegators   = "D%v"
	KeyActiveSet    = "act"
	KeyModerators   = "mods"
	KeyRequirements = "reqs"
	KeyParams       = "gp"
)

// State is the governance state machine over a merkleized key value
// store. All mutations funnel through the operation methods; each one
// validates first and touches state only when checkOnly is false, so a
// failed operation leaves nothing behind.
type State struct {
	logger cmtlog.Logger
	db     *iavl.MutableTree
	dbVer  int64

	header     *StateHeader
	validators []abci_types.ValidatorUpdate
	idxs       map[string]uint64
	acnts      map[uint64]*Account

	modifiedAcnts map[uint64]uint32

	proposals map[uint64]*types.Proposal
	newVotes  []*types.Vote

	activeSet    []uint64
	loadedActive bool
	modActive    bool

	delegations    map[uint64]uint64
	modDelegations map[uint64]bool
	delegators     map[uint64][]uint64
	modDelegators  map[uint64]bool

	moderators    []uint64
	loadedMods    bool
	modModerators bool

	requirements    *types.Requirements
	modRequirements bool

	params    *types.GovParams
	modParams bool
}

func newState(db *iavl.MutableTree, logger cmtlog.Logger) *State {
	s := &State{
		logger:         logger,
		db:             db,
		dbVer:          0,
		header:         new(StateHeader),
		validators:     []abci_types.ValidatorUpdate{},
		idxs:           make(map[string]uint64),
		acnts:          make(map[uint64]*Account),
		modifiedAcnts:  make(map[uint64]uint32),
		proposals:      make(map[uint64]*types.Proposal),
		newVotes:       []*types.Vote{},
		delegations:    make(map[uint64]uint64),
		modDelegations: make(map[uint64]bool),
		delegators:     make(map[uint64][]uint64),
		modDelegators:  make(map[uint64]bool),
	}
	s.header.AccountIdx = StartAccountIdx
	return s
}

func (s *State) nextState() *State {
	n := &State{
		logger:         s.logger,
		db:             s.db,
		dbVer:          s.dbVer,
		idxs:           make(map[string]uint64),
		acnts:          make(map[uint64]*Account),
		modifiedAcnts:  make(map[uint64]uint32),
		proposals:      make(map[uint64]*types.Proposal),
		newVotes:       []*types.Vote{},
		delegations:    make(map[uint64]uint64),
		modDelegations: make(map[uint64]bool),
		delegators:     make(map[uint64][]uint64),
		modDelegators:  make(map[uint64]bool),
	}
	n.header = s.header.Clone()
	if s.header.Hash != nil {
		n.header.Height = s.header.Height + 1
	}
	return n
}

func deepCopyMap[K comparable, V any](source map[K]V) map[K]V {
	res := make(map[K]V)
	for k, v := range source {
		switch x := any(v).(type) {
		case *Account:
			res[k] = any(x.Clone()).(V)
		case *types.Proposal:
			p := *x
			res[k] = any(&p).(V)
		case []uint64:
			l := make([]uint64, len(x))
			copy(l, x)
			res[k] = any(l).(V)
		default:
			res[k] = v
		}
	}
	return res
}

func deepCopySlice[E any](source []E) []E {
	res := make([]E, len(source))
	if len(source) == 0 {
		return res
	}
	for idx, ele := range source {
		switch e := any(ele).(type) {
		case abci_types.ValidatorUpdate:
			b, _ := e.Marshal()
			eleClone := abci_types.ValidatorUpdate{}
			eleClone.Unmarshal(b)
			res[idx] = any(eleClone).(E)
		default:
			copy(res, source)
			return res
		}
	}
	return res
}

func (s *State) Clone() *State {
	n := &State{
		logger:          s.logger,
		db:              s.db,
		dbVer:           s.dbVer,
		validators:      deepCopySlice(s.validators),
		idxs:            deepCopyMap(s.idxs),
		acnts:           deepCopyMap(s.acnts),
		modifiedAcnts:   deepCopyMap(s.modifiedAcnts),
		proposals:       deepCopyMap(s.proposals),
		newVotes:        deepCopySlice(s.newVotes),
		delegations:     deepCopyMap(s.delegations),
		modDelegations:  deepCopyMap(s.modDelegations),
		delegators:      deepCopyMap(s.delegators),
		modDelegators:   deepCopyMap(s.modDelegators),
		activeSet:       append([]uint64{}, s.activeSet...),
		loadedActive:    s.loadedActive,
		modActive:       s.modActive,
		moderators:      append([]uint64{}, s.moderators...),
		loadedMods:      s.loadedMods,
		modModerators:   s.modModerators,
		requirements:    s.requirements,
		modRequirements: s.modRequirements,
		params:          s.params,
		modParams:       s.modParams,
	}
	n.header = s.header.Clone()
	if s.header.Hash != nil {
		n.header.Height = s.header.Height + 1
	}
	return n
}

func (s *State) load() (err error) {
	val, err := s.db.Get([]byte(KeyState))
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil
		}
		return err
	}
	if val != nil {
		err = json.Unmarshal(val, s.header)
		if err != nil {
			return
		}
		h := s.db.Hash()
		if h != nil {
			s.calcHash(h, true)
		}
	}
	return
}

func (s *State) calcHash(rootHash []byte, update bool) (h common.Hash) {
	h = crypto.Keccak256Hash(rootHash)
	if update {
		if s.header.RootHash == nil {
			s.header.RootHash = make([]byte, len(rootHash))
		}
		copy(s.header.RootHash, rootHash)
		if s.header.Hash == nil {
			s.header.Hash = make([]byte, len(h))
		}
		copy(s.header.Hash, h[:])
	}
	return
}

func (s *State) Update() (h common.Hash, err error) {
	var hash []byte
	defer func() {
		if hash == nil {
			s.db.Rollback()
		}
	}()
	var val []byte
	val, err = json.Marshal(s.header)
	if err != nil {
		return
	}
	_, err = s.db.Set([]byte(KeyState), val)
	if err != nil {
		return
	}

	for _, p := range s.proposals {
		key := fmt.Sprintf(KeyProposalBody, p.Index)
		proposalBz, _ := json.Marshal(p)
		_, err = s.db.Set([]byte(key), proposalBz)
		if err != nil {
			return
		}
	}

	for _, v := range s.newVotes {
		key := fmt.Sprintf(KeyVoteBody, v.Proposal, v.Voter)
		voteBz, _ := json.Marshal(v)
		_, err = s.db.Set([]byte(key), voteBz)
		if err != nil {
			return
		}
	}

	if s.modActive {
		if len(s.activeSet) == 0 {
			_, _, err = s.db.Remove([]byte(KeyActiveSet))
			if err != nil {
				return
			}
		} else {
			val, err = rlp.EncodeToBytes(s.activeSet)
			if err != nil {
				return
			}
			_, err = s.db.Set([]byte(KeyActiveSet), val)
			if err != nil {
				return
			}
		}
	}

	for idx := range s.modDelegations {
		key := fmt.Sprintf(KeyDelegation, idx)
		if s.delegations[idx] == 0 {
			_, _, err = s.db.Remove([]byte(key))
			if err != nil {
				return
			}
			continue
		}
		val, err = rlp.EncodeToBytes(s.delegations[idx])
		if err != nil {
			return
		}
		_, err = s.db.Set([]byte(key), val)
		if err != nil {
			return
		}
	}

	for idx := range s.modDelegators {
		key := fmt.Sprintf(KeyDelegators, idx)
		if len(s.delegators[idx]) == 0 {
			_, _, err = s.db.Remove([]byte(key))
			if err != nil {
				return
			}
			continue
		}
		val, err = rlp.EncodeToBytes(s.delegators[idx])
		if err != nil {
			return
		}
		_, err = s.db.Set([]byte(key), val)
		if err != nil {
			return
		}
	}

	if s.modModerators {
		val, err = rlp.EncodeToBytes(s.moderators)
		if err != nil {
			return
		}
		_, err = s.db.Set([]byte(KeyModerators), val)
		if err != nil {
			return
		}
	}

	if s.modRequirements {
		val, _ = json.Marshal(s.requirements)
		_, err = s.db.Set([]byte(KeyRequirements), val)
		if err != nil {
			return
		}
	}

	if s.modParams {
		val, _ = json.Marshal(s.params)
		_, err = s.db.Set([]byte(KeyParams), val)
		if err != nil {
			return
		}
	}

	n := len(s.modifiedAcnts)
	if n > 0 {
		idxs := make([]uint64, n)
		i := 0
		for idx := range s.modifiedAcnts {
			idxs[i] = idx
			i += 1
		}
		sort.Slice(idxs, func(i, j int) bool {
			return idxs[i] < idxs[j]
		})
		for _, idx := range idxs {
			flag := s.modifiedAcnts[idx]
			acnt := s.acnts[idx]
			key := fmt.Sprintf(KeyAccountBody, acnt.Index)
			val, err = json.Marshal(acnt)
			if err != nil {
				return
			}
			_, err = s.db.Set([]byte(key), val)
			if err != nil {
				return
			}
			if (flag&ModifiedFlagNew == ModifiedFlagNew) || (flag&ModifiedFlagPK == ModifiedFlagPK) {
				key = fmt.Sprintf(KeyAccountIndex, acnt.Address())
				val, err = rlp.EncodeToBytes(acnt.Index)
				if err != nil {
					return
				}
				_, err = s.db.Set([]byte(key), val)
				if err != nil {
					return
				}
			}
		}
	}
	hash = s.db.WorkingHash()
	h = s.calcHash(hash, false)
	s.modifiedAcnts = make(map[uint64]uint32)
	s.proposals = make(map[uint64]*types.Proposal)
	s.newVotes = []*types.Vote{}
	s.modDelegations = make(map[uint64]bool)
	s.modDelegators = make(map[uint64]bool)
	s.modActive = false
	s.modModerators = false
	s.modRequirements = false
	s.modParams = false
	return
}

func (s *State) save() (h common.Hash, err error) {
	hash, ver, err := s.db.SaveVersion()
	if err != nil {
		return h, err
	}

	s.dbVer = ver
	h = s.calcHash(hash, true)

	return
}

func (s *State) ProposalMax() uint64 {
	return s.header.ProposalIdx
}

func (s *State) GetProposal(idx uint64) (proposal *types.Proposal, err error) {
	if idx == 0 || idx > s.header.ProposalIdx {
		err = ErrProposalNoexists
		return
	}
	if p, ok := s.proposals[idx]; ok {
		return p, nil
	}
	key := fmt.Sprintf(KeyProposalBody, idx)
	val, err := s.db.Get([]byte(key))
	if err != nil {
		return nil, err
	}
	if val == nil {
		err = ErrNotFound
		return
	}
	proposal = new(types.Proposal)
	err = json.Unmarshal(val, proposal)
	return
}

func (s *State) markProposal(p *types.Proposal) {
	s.proposals[p.Index] = p
}

func (s *State) GetVote(proposal, voter uint64) (vote *types.Vote, err error) {
	for _, v := range s.newVotes {
		if v.Proposal == proposal && v.Voter == voter {
			return v, nil
		}
	}
	key := fmt.Sprintf(KeyVoteBody, proposal, voter)
	val, err := s.db.Get([]byte(key))
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	if val == nil {
		return nil, nil
	}
	vote = new(types.Vote)
	err = json.Unmarshal(val, vote)
	return
}

func (s *State) GetAccount(idx uint64) (acnt *Account, err error) {
	if idx >= s.header.AccountIdx {
		err = ErrAccountNoexists
		return
	}
	acnt = s.acnts[idx]
	if acnt != nil {
		return
	}
	key := fmt.Sprintf(KeyAccountBody, idx)
	val, err := s.db.Get([]byte(key))
	if err != nil {
		return nil, err
	}
	if val == nil {
		err = ErrNotFound
		return
	}
	acnt = new(Account)
	err = json.Unmarshal(val, acnt)
	if err != nil {
		acnt = nil
	}
	s.acnts[idx] = acnt
	return
}

func (s *State) existPubkey(pubkey []byte) (bool, error) {
	addr := ed25519.PubKey(pubkey).Address()[:]
	saddr := cmtcrypto.Address(addr).String()
	// exist in cache
	if _, ok := s.idxs[saddr]; ok {
		return true, nil
	}
	// exist in db
	key := fmt.Sprintf(KeyAccountIndex, saddr)
	val, err := s.db.Get([]byte(key))
	if err != nil {
		if err != leveldb.ErrNotFound {
			return false, err
		}
	}
	if val != nil {
		return true, nil
	}
	// exist in modify
	for _, acc := range s.acnts {
		if bytes.Equal(acc.AddrBytes(), addr) {
			return true, nil
		}
	}
	return false, nil
}

func (s *State) FindAccount(addr []byte) (acnt *Account, err error) {
	saddr := cmtcrypto.Address(addr).String()
	idx, ok := s.idxs[saddr]
	if !ok {
		key := fmt.Sprintf(KeyAccountIndex, saddr)
		val, err := s.db.Get([]byte(key))
		if err != nil {
			if err == leveldb.ErrNotFound {
				return nil, nil
			}
			return nil, err
		}
		if val == nil {
			return nil, nil
		}
		err = rlp.DecodeBytes(val, &idx)
		if err != nil {
			return nil, err
		}
		s.idxs[saddr] = idx
	}
	acnt, err = s.GetAccount(idx)

	return
}

func (s *State) Header() *StateHeader {
	return s.header
}

func (s *State) Hash() (h common.Hash) {
	if s.header.Hash != nil {
		copy(h[:], s.header.Hash)
	}
	return
}

func (s *State) SetChainId(chainId string) {
	s.header.ChainId = chainId
}

// SetBlockTime pins the header clock; every deadline, cooldown and
// delay check in the same block reads this value.
func (s *State) SetBlockTime(t uint64) {
	s.header.Time = t
}

func (s *State) Now() uint64 {
	return s.header.Time
}

func (s *State) AddAccount(acnt *Account) (err error) {
	a, err := s.FindAccount(acnt.AddrBytes())
	if err != nil {
		return err
	}
	if a != nil {
		err = ErrAccountAlreadyExists
		return
	}
	acnt.Index = s.header.AccountIdx
	s.header.AccountIdx += 1
	s.header.TotalSupply += acnt.Holdings()
	if acnt.Holdings() > 0 {
		s.header.EligibleVoters += 1
	}
	s.acnts[acnt.Index] = acnt.Clone()
	s.modifiedAcnts[acnt.Index] = ModifiedFlagNew
	return
}

// touchAccount re-caches a mutated account and flags it for the next
// Update pass.
func (s *State) touchAccount(a *Account) {
	v := s.modifiedAcnts[a.Index]
	v |= ModifiedFlagMod
	s.modifiedAcnts[a.Index] = v
	s.acnts[a.Index] = a.Clone()
}

func (s *State) Verify(gtx *tx.GovTx, allowNonceGap bool) (succ bool, err error) {
	a, err := s.GetAccount(gtx.Account)
	if err != nil {
		return succ, err
	}
	if a == nil {
		err = ErrAccountNoexists
		return
	}
	if !(a.Nonce == gtx.Nonce || (allowNonceGap && a.Nonce < gtx.Nonce)) {
		err = ErrTxNonceInvalid
		return
	}
	dat, err := gtx.SigData([]byte(s.header.ChainId))
	if err != nil {
		return succ, err
	}
	succ = a.Verify(dat, gtx.Sig)
	if !succ {
		err = ErrTxSigInvalid
	}
	return
}

func (s *State) Validators() (updateVals map[string]abci_types.ValidatorUpdate, err error) {
	updateVals = make(map[string]abci_types.ValidatorUpdate, 0)
	start := []byte(fmt.Sprintf(KeyAccountBody, ""))
	end := PrefixEndBytes(start)
	aIterator, err := s.db.Iterator(start, end, false)
	if err != nil {
		return nil, err
	}

	valsQueue := &PowerQueue{}
	heap.Init(valsQueue)
	for ; aIterator.Valid(); aIterator.Next() {
		var act Account
		valBytes := aIterator.Value()
		err = json.Unmarshal(valBytes, &act)
		if err != nil {
			return nil, err
		}
		power := config.PowerPerStake(act.Holdings(), s.header.Height)
		if power > 0 {
			heap.Push(valsQueue, validatorWithPower{
				Index:  act.Index,
				Pubkey: act.PubKey,
				Power:  power,
			})
		}
	}

	vals := make([]abci_types.ValidatorUpdate, 0)
	for valsQueue.Len() > 0 && len(vals) < MaxValidators {
		val := heap.Pop(valsQueue).(validatorWithPower)
		vals = append(vals, abci_types.Ed25519ValidatorUpdate(val.Pubkey, val.Power))
	}
	s.validators = vals

	for _, val := range vals {
		updateVals[val.PubKey.String()] = val
	}

	return updateVals, nil
}

func (s *State) ValidatorsUpdate(curVals map[string]abci_types.ValidatorUpdate) (updateVals []abci_types.ValidatorUpdate, err error) {
	nextVals, err := s.Validators()
	if err != nil {
		return nil, err
	}

	for key, val := range nextVals {
		if v, ok := curVals[key]; ok {
			if v.Power != val.Power {
				updateVals = append(updateVals, val)
			}
		} else {
			updateVals = append(updateVals, val)
		}
	}

	for key, curVal := range curVals {
		if _, ok := nextVals[key]; !ok {
			curVal.Power = 0
			updateVals = append(updateVals, curVal)
		}
	}
	return
}

func (s *State) ValidatorAccounts() (acounts []*Account, height uint64, err error) {
	vals := s.validators
	for _, val := range vals {
		pk := ed25519.PubKey(val.PubKey.GetEd25519()[:])
		addr := pk.Address()[:]
		act, _ := s.FindAccount(addr)
		if act != nil {
			acounts = append(acounts, act)
		}
	}
	height = s.header.Height
	return
}

type validatorWithPower struct {
	Index  uint64
	Pubkey []byte
	Power  int64
}

type PowerQueue []validatorWithPower

func (pq PowerQueue) Len() int { return len(pq) }

func (pq PowerQueue) Less(i, j int) bool {
	if pq[i].Power == pq[j].Power {
		return pq[i].Index < pq[j].Index
	}
	return pq[i].Power > pq[j].Power
}

func (pq PowerQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *PowerQueue) Push(x any) {
	item := x.(validatorWithPower)
	*pq = append(*pq, item)
}

func (pq *PowerQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}

func PrefixEndBytes(prefix []byte) []byte {
	if len(prefix) == 0 {
		return nil
	}

	end := make([]byte, len(prefix))
	copy(end, prefix)

	for {
		if end[len(end)-1] != byte(255) {
			end[len(end)-1]++
			break
		}

		end = end[:len(end)-1]

		if len(end) == 0 {
			end = nil
			break
		}
	}

	return end
}
