package indexer

import (
	"context"
	"errors"
	"time"

	"github.com/starshop/gov-node/types"
	abci "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	comethttp "github.com/cometbft/cometbft/rpc/client/http"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

// ChainIndexer tails block results over rpc and materializes the
// governance events into a sqlite db for the query service.
type ChainIndexer struct {
	logger        cmtlog.Logger
	Url           string
	Height        int64
	db            *gorm.DB
	cli           *comethttp.HTTP
	eventHandlers map[string]eventHandler
}

func NewChainIndexer(logger cmtlog.Logger, dbPath string, chainUrl string) (*ChainIndexer, error) {
	logger.Info("NewChainIndexer", "dbPath", dbPath, "url", chainUrl)
	cli, err := comethttp.New(chainUrl, "/websocket")
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Height{}, &Proposal{}, &Vote{}, &Delegation{}, &Execution{}, &Account{}).Error; err != nil {
		return nil, err
	}
	h := Height{Id: 1}
	if err = db.First(&h).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	c := ChainIndexer{
		logger:        logger.With("module", "indexer"),
		Url:           chainUrl,
		Height:        int64(h.Height + 1),
		db:            db,
		cli:           cli,
		eventHandlers: map[string]eventHandler{},
	}

	c.eventHandlers = map[string]eventHandler{
		types.EventProposalCreatedType:   c.handleEventProposalCreated,
		types.EventProposalActivatedType: c.handleEventProposalActivated,
		types.EventVoteCastType:          c.handleEventVoteCast,
		types.EventDelegatedType:         c.handleEventDelegated,
		types.EventUndelegatedType:       c.handleEventUndelegated,
		types.EventProposalClosedType:    c.handleEventProposalClosed,
		types.EventProposalVetoedType:    c.handleEventProposalVetoed,
		types.EventProposalCanceledType:  c.handleEventProposalCanceled,
		types.EventProposalExecutedType:  c.handleEventProposalExecuted,
		types.EventExecutionFailedType:   c.handleEventExecutionFailed,
		types.EventAccountVerifiedType:   c.handleEventAccountVerified,
	}
	return &c, nil
}

type eventHandler func(ctx context.Context, event abci.Event, height int64)

func (c *ChainIndexer) handleEvent(ctx context.Context, event abci.Event, height int64) {
	if h, ok := c.eventHandlers[event.Type]; ok {
		h(ctx, event, height)
	}
}

func (c *ChainIndexer) handleEventProposalCreated(ctx context.Context, event abci.Event, height int64) {
	ev := types.DecodeEventProposalCreated(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	proposal := Proposal{
		Id:              ev.Proposal,
		ProposerIndex:   ev.Proposer,
		ProposerAddress: ev.ProposerAddress,
		Title:           ev.Title,
		Type:            uint64(ev.Type),
		Status:          uint64(types.ProposalStatusDraft),
		LockedStake:     ev.LockedStake,
		CreateHeight:    uint64(height),
	}
	if err := c.db.Save(&proposal).Error; err != nil {
		c.logger.Error("save proposal fail", "err", err)
	}
}

func (c *ChainIndexer) handleEventProposalActivated(ctx context.Context, event abci.Event, height int64) {
	ev := types.DecodeEventProposalActivated(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	var proposal Proposal
	if err := c.db.First(&proposal, ev.Proposal).Error; err != nil {
		c.logger.Error("get proposal fail", "err", err)
		return
	}
	proposal.Status = uint64(types.ProposalStatusActive)
	proposal.ActivateHeight = uint64(height)
	proposal.Deadline = ev.Deadline
	if err := c.db.Save(&proposal).Error; err != nil {
		c.logger.Error("save proposal fail", "err", err)
	}
}

func (c *ChainIndexer) handleEventVoteCast(ctx context.Context, event abci.Event, height int64) {
	ev := types.DecodeEventVoteCast(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	vote := Vote{
		Proposal:     ev.Proposal,
		VoterIndex:   ev.Voter,
		VoterAddress: ev.VoterAddress,
		Support:      ev.Support,
		Weight:       ev.Weight,
		Height:       uint64(height),
	}
	if err := c.db.Create(&vote).Error; err != nil {
		c.logger.Error("save vote fail", "err", err)
	}
}

func (c *ChainIndexer) handleEventDelegated(ctx context.Context, event abci.Event, height int64) {
	ev := types.DecodeEventDelegated(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	// a new edge supersedes any previous one from the same delegator
	if err := c.db.Model(&Delegation{}).Where("delegator_index = ? AND active = ?", ev.Delegator, true).
		Update("active", false).Error; err != nil {
		c.logger.Error("retire delegation fail", "err", err)
	}
	delegation := Delegation{
		DelegatorIndex:   ev.Delegator,
		DelegatorAddress: ev.DelegatorAddress,
		DelegateeIndex:   ev.Delegatee,
		DelegateeAddress: ev.DelegateeAddress,
		Height:           uint64(height),
		Active:           true,
	}
	if err := c.db.Create(&delegation).Error; err != nil {
		c.logger.Error("save delegation fail", "err", err)
	}
}

func (c *ChainIndexer) handleEventUndelegated(ctx context.Context, event abci.Event, height int64) {
	ev := types.DecodeEventUndelegated(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	if err := c.db.Model(&Delegation{}).Where("delegator_index = ? AND active = ?", ev.Delegator, true).
		Update("active", false).Error; err != nil {
		c.logger.Error("retire delegation fail", "err", err)
	}
}

func (c *ChainIndexer) handleEventProposalClosed(ctx context.Context, event abci.Event, height int64) {
	ev := types.DecodeEventProposalClosed(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	var proposal Proposal
	if err := c.db.First(&proposal, ev.Proposal).Error; err != nil {
		c.logger.Error("get proposal fail", "err", err)
		return
	}
	if ev.Passed {
		proposal.Status = uint64(types.ProposalStatusPassed)
	} else {
		proposal.Status = uint64(types.ProposalStatusRejected)
	}
	proposal.CloseHeight = uint64(height)
	proposal.WeightFor = ev.WeightFor
	proposal.WeightAgainst = ev.WeightAgainst
	proposal.VoterCount = ev.VoterCount
	if err := c.db.Save(&proposal).Error; err != nil {
		c.logger.Error("save proposal fail", "err", err)
	}
}

func (c *ChainIndexer) handleEventProposalVetoed(ctx context.Context, event abci.Event, height int64) {
	ev := types.DecodeEventProposalVetoed(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	var proposal Proposal
	if err := c.db.First(&proposal, ev.Proposal).Error; err != nil {
		c.logger.Error("get proposal fail", "err", err)
		return
	}
	proposal.Status = uint64(types.ProposalStatusVetoed)
	if err := c.db.Save(&proposal).Error; err != nil {
		c.logger.Error("save proposal fail", "err", err)
	}
}

func (c *ChainIndexer) handleEventProposalCanceled(ctx context.Context, event abci.Event, height int64) {
	ev := types.DecodeEventProposalCanceled(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	var proposal Proposal
	if err := c.db.First(&proposal, ev.Proposal).Error; err != nil {
		c.logger.Error("get proposal fail", "err", err)
		return
	}
	proposal.Status = uint64(types.ProposalStatusCanceled)
	proposal.CloseHeight = uint64(height)
	if err := c.db.Save(&proposal).Error; err != nil {
		c.logger.Error("save proposal fail", "err", err)
	}
}

func (c *ChainIndexer) handleEventProposalExecuted(ctx context.Context, event abci.Event, height int64) {
	ev := types.DecodeEventProposalExecuted(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	var proposal Proposal
	if err := c.db.First(&proposal, ev.Proposal).Error; err != nil {
		c.logger.Error("get proposal fail", "err", err)
		return
	}
	proposal.Status = uint64(types.ProposalStatusExecuted)
	proposal.ExecuteHeight = uint64(height)
	if err := c.db.Save(&proposal).Error; err != nil {
		c.logger.Error("save proposal fail", "err", err)
	}
	execution := Execution{
		Proposal: ev.Proposal,
		Executor: ev.Executor,
		Height:   uint64(height),
		Success:  true,
	}
	if err := c.db.Create(&execution).Error; err != nil {
		c.logger.Error("save execution fail", "err", err)
	}
}

func (c *ChainIndexer) handleEventExecutionFailed(ctx context.Context, event abci.Event, height int64) {
	ev := types.DecodeEventExecutionFailed(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	execution := Execution{
		Proposal:    ev.Proposal,
		Executor:    ev.Executor,
		Height:      uint64(height),
		Success:     false,
		ActionIndex: ev.ActionIndex,
		Reason:      ev.Reason,
	}
	if err := c.db.Create(&execution).Error; err != nil {
		c.logger.Error("save execution fail", "err", err)
	}
}

func (c *ChainIndexer) handleEventAccountVerified(ctx context.Context, event abci.Event, height int64) {
	ev := types.DecodeEventAccountVerified(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	account := Account{
		Id:       ev.Account,
		Verified: true,
		Level:    ev.Level,
	}
	if err := c.db.Save(&account).Error; err != nil {
		c.logger.Error("save account fail", "err", err)
	}
}

func (c *ChainIndexer) Start(ctx context.Context) {
	var err error
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.cli == nil {
				c.cli, err = comethttp.New(c.Url, "/websocket")
				if err != nil {
					c.logger.Error("connect fail", "err", err)
					continue
				}
			}
			b, err := c.cli.Status(context.TODO())
			if err != nil {
				c.logger.Error("get status fail", "err", err)
				if !c.cli.IsRunning() {
					c.cli.Stop()
					c.cli, err = comethttp.New(c.Url, "/websocket")
					if err != nil {
						c.logger.Error("reconnect fail", "err", err)
						continue
					}
				}
				continue
			}
			for b.SyncInfo.LatestBlockHeight > c.Height {
				c.logger.Info("indexer syncing", "height", c.Height)
				events, err := c.cli.BlockResults(ctx, &c.Height)
				if err != nil {
					c.logger.Error("get block results fail", "err", err)
					if !c.cli.IsRunning() {
						c.cli.Stop()
						c.cli, err = comethttp.New(c.Url, "/websocket")
						if err != nil {
							c.logger.Error("reconnect fail", "err", err)
							break
						}
					}
					continue
				}
				for _, res := range events.TxsResults {
					for _, event := range res.Events {
						c.handleEvent(ctx, event, c.Height)
					}
				}
				// voting windows settle at block boundaries, those
				// events ride on the block not on any tx
				for _, event := range events.FinalizeBlockEvents {
					c.handleEvent(ctx, event, c.Height)
				}
				if err := c.db.Save(Height{
					Id:     1,
					Height: uint64(c.Height),
				}).Error; err != nil {
					c.logger.Error("save height fail", "err", err)
					continue
				}
				c.Height++
			}
		}
	}
}

func (c *ChainIndexer) getProposals(page int, pageSize int) ([]Proposal, uint64, error) {
	var proposals []Proposal
	err := c.db.Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&proposals).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Proposal{}).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}

func (c *ChainIndexer) getProposalsByStatus(status uint64, page int, pageSize int) ([]Proposal, uint64, error) {
	var proposals []Proposal
	err := c.db.Where("status = ?", status).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&proposals).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Proposal{}).Where("status = ?", status).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}

// getExecutableProposals lists proposals that passed their vote and
// await execution.
func (c *ChainIndexer) getExecutableProposals(page int, pageSize int) ([]Proposal, uint64, error) {
	return c.getProposalsByStatus(uint64(types.ProposalStatusPassed), page, pageSize)
}

func (c *ChainIndexer) getProposalById(proposalId uint64) (Proposal, error) {
	var proposal Proposal
	err := c.db.Where("id = ?", proposalId).First(&proposal).Error
	if err != nil {
		return Proposal{}, err
	}
	return proposal, nil
}

func (c *ChainIndexer) getProposalsByProposerAddr(proposerAddr string, page int, pageSize int) ([]Proposal, uint64, error) {
	var proposals []Proposal
	err := c.db.Where("proposer_address = ?", proposerAddr).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&proposals).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Proposal{}).Where("proposer_address = ?", proposerAddr).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}

func (c *ChainIndexer) getVotesByProposal(proposal uint64, page int, pageSize int) ([]Vote, uint64, error) {
	var votes []Vote
	err := c.db.Where("proposal = ?", proposal).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&votes).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Vote{}).Where("proposal = ?", proposal).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return votes, total, nil
}

func (c *ChainIndexer) getVotesByVoter(voter string, page int, pageSize int) ([]Vote, uint64, error) {
	var votes []Vote
	err := c.db.Where("voter_address = ?", voter).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&votes).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Vote{}).Where("voter_address = ?", voter).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return votes, total, nil
}

func (c *ChainIndexer) getDelegationsByDelegatee(delegatee uint64, page int, pageSize int) ([]Delegation, uint64, error) {
	var delegations []Delegation
	err := c.db.Where("delegatee_index = ? AND active = ?", delegatee, true).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&delegations).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Delegation{}).Where("delegatee_index = ? AND active = ?", delegatee, true).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return delegations, total, nil
}

func (c *ChainIndexer) getDelegationByDelegator(delegator uint64) (*Delegation, error) {
	var delegation Delegation
	err := c.db.Where("delegator_index = ? AND active = ?", delegator, true).First(&delegation).Error
	if err != nil {
		return nil, err
	}
	return &delegation, nil
}

func (c *ChainIndexer) getExecutionsByProposal(proposal uint64, page int, pageSize int) ([]Execution, uint64, error) {
	var executions []Execution
	err := c.db.Where("proposal = ?", proposal).Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&executions).Error
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	err = c.db.Model(&Execution{}).Where("proposal = ?", proposal).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}
	return executions, total, nil
}

func (c *ChainIndexer) getAccountById(id uint64) (Account, error) {
	var account Account
	err := c.db.Where("id = ?", id).First(&account).Error
	if err != nil {
		return Account{}, err
	}
	return account, nil
}
