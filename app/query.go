package app

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/starshop/gov-node/state"
	"github.com/starshop/gov-node/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

func (app *GovApp) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	path := req.Path
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	q, ok := app.queriers[path]
	if !ok {
		res = &abcitypes.ResponseQuery{}
		res.Code = 404
		return
	}
	res, err = q.Query(ctx, req)
	return
}

type Querier interface {
	Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error)
}

func beUint64(dat []byte) (idx uint64) {
	for _, v := range dat {
		idx <<= 8
		idx |= uint64(v)
	}
	return
}

type AccountQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

func NewAccountQuerier(db *state.StateDB, logger cmtlog.Logger) (q *AccountQuerier) {
	q = &AccountQuerier{
		db:     db,
		logger: logger,
	}
	return
}

func (q *AccountQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	var a *state.Account
	var height uint64
	if len(req.Data) == 20 {
		a, height, _ = q.db.GetAccountByAddress(req.Data)
	} else if len(req.Data) <= 8 {
		a, height, _ = q.db.GetAccountByIndex(beUint64(req.Data))
	}
	if a != nil {
		res.Value, _ = json.Marshal(a)
		res.Height = int64(height)
	} else {
		res.Code = 1
	}
	return
}

type ProposalQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

func NewProposalQuerier(db *state.StateDB, logger cmtlog.Logger) (q *ProposalQuerier) {
	q = &ProposalQuerier{
		db:     db,
		logger: logger,
	}
	return
}

func (q *ProposalQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	p, height, err := q.db.GetProposal(beUint64(req.Data))
	if err != nil || p == nil {
		res.Code = 1
		err = nil
		return
	}
	res.Value, _ = json.Marshal(p)
	res.Height = int64(height)
	return
}

type DelegationQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

func NewDelegationQuerier(db *state.StateDB, logger cmtlog.Logger) (q *DelegationQuerier) {
	q = &DelegationQuerier{
		db:     db,
		logger: logger,
	}
	return
}

// delegationView is the query shape for one account's delegation edge
// and inbound delegators.
type delegationView struct {
	Account    uint64   `json:"account"`
	Delegatee  uint64   `json:"delegatee"`
	Delegators []uint64 `json:"delegators"`
}

func (q *DelegationQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	idx := beUint64(req.Data)
	delegatee, delegators, err := q.db.GetDelegation(idx)
	if err != nil {
		res.Code = 1
		err = nil
		return
	}
	res.Value, _ = json.Marshal(delegationView{
		Account:    idx,
		Delegatee:  delegatee,
		Delegators: delegators,
	})
	return
}

type GovernanceQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

func NewGovernanceQuerier(db *state.StateDB, logger cmtlog.Logger) (q *GovernanceQuerier) {
	q = &GovernanceQuerier{
		db:     db,
		logger: logger,
	}
	return
}

// governanceView bundles the chain wide governance settings: roles,
// creation guards and governed parameters.
type governanceView struct {
	Admin        uint64             `json:"admin"`
	Moderators   []uint64           `json:"moderators"`
	Requirements types.Requirements `json:"requirements"`
	Params       types.GovParams    `json:"params"`
	Proposals    uint64             `json:"proposals"`
}

func (q *GovernanceQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	mods, err := q.db.GetModerators()
	if err != nil {
		res.Code = 1
		err = nil
		return
	}
	reqs, err := q.db.GetRequirements()
	if err != nil {
		res.Code = 1
		err = nil
		return
	}
	params, err := q.db.GetParams()
	if err != nil {
		res.Code = 1
		err = nil
		return
	}
	header := q.db.Header()
	res.Value, _ = json.Marshal(governanceView{
		Admin:        header.AdminIdx,
		Moderators:   mods,
		Requirements: reqs,
		Params:       params,
		Proposals:    header.ProposalIdx,
	})
	res.Height = int64(header.Height)
	return
}

type ValidatorQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

func NewValidatorQuerier(db *state.StateDB, logger cmtlog.Logger) (q *ValidatorQuerier) {
	q = &ValidatorQuerier{
		db:     db,
		logger: logger,
	}
	return
}

func (q *ValidatorQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	validators, height, err := q.db.State().ValidatorAccounts()
	if err != nil {
		res.Code = 1
		return
	}
	res.Height = int64(height)
	res.Value, _ = json.Marshal(validators)
	return
}
