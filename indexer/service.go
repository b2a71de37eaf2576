package indexer

import (
	"net/http"

	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/gin-gonic/gin"
)

// Service exposes the indexed governance history over http.
type Service struct {
	logger  cmtlog.Logger
	indexer *ChainIndexer
	router  *gin.Engine
}

func NewService(logger cmtlog.Logger, indexer *ChainIndexer) *Service {
	s := &Service{
		logger:  logger.With("module", "service"),
		indexer: indexer,
		router:  gin.Default(),
	}
	s.router.POST("/getProposals", s.getProposals)
	s.router.POST("/getProposalById", s.getProposalById)
	s.router.POST("/getProposalsByStatus", s.getProposalsByStatus)
	s.router.POST("/getExecutableProposals", s.getExecutableProposals)
	s.router.POST("/getProposalsByProposer", s.getProposalsByProposer)
	s.router.POST("/getVotesByProposal", s.getVotesByProposal)
	s.router.POST("/getVotesByVoter", s.getVotesByVoter)
	s.router.POST("/getDelegation", s.getDelegation)
	s.router.POST("/getDelegationsByDelegatee", s.getDelegationsByDelegatee)
	s.router.POST("/getExecutionsByProposal", s.getExecutionsByProposal)
	s.router.POST("/getAccount", s.getAccount)
	return s
}

func (s *Service) Start(listen string) error {
	s.logger.Info("service start", "listen", listen)
	return s.router.Run(listen)
}

type pageRequest struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

func (r *pageRequest) normalize() {
	if r.PageSize <= 0 || r.PageSize > 100 {
		r.PageSize = 20
	}
	if r.Page < 0 {
		r.Page = 0
	}
}

func (s *Service) getProposals(c *gin.Context) {
	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.normalize()
	proposals, total, err := s.indexer.getProposals(req.Page, req.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"proposals": proposals, "total": total})
}

type proposalByIdRequest struct {
	Proposal uint64 `json:"proposal"`
}

func (s *Service) getProposalById(c *gin.Context) {
	var req proposalByIdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	proposal, err := s.indexer.getProposalById(req.Proposal)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"proposal": proposal})
}

type proposalsByStatusRequest struct {
	Status uint64 `json:"status"`
	pageRequest
}

func (s *Service) getProposalsByStatus(c *gin.Context) {
	var req proposalsByStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.normalize()
	proposals, total, err := s.indexer.getProposalsByStatus(req.Status, req.Page, req.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"proposals": proposals, "total": total})
}

func (s *Service) getExecutableProposals(c *gin.Context) {
	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.normalize()
	proposals, total, err := s.indexer.getExecutableProposals(req.Page, req.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"proposals": proposals, "total": total})
}

type proposalsByProposerRequest struct {
	ProposerAddress string `json:"proposerAddress"`
	pageRequest
}

func (s *Service) getProposalsByProposer(c *gin.Context) {
	var req proposalsByProposerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.normalize()
	proposals, total, err := s.indexer.getProposalsByProposerAddr(req.ProposerAddress, req.Page, req.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"proposals": proposals, "total": total})
}

type votesByProposalRequest struct {
	Proposal uint64 `json:"proposal"`
	pageRequest
}

func (s *Service) getVotesByProposal(c *gin.Context) {
	var req votesByProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.normalize()
	votes, total, err := s.indexer.getVotesByProposal(req.Proposal, req.Page, req.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"votes": votes, "total": total})
}

type votesByVoterRequest struct {
	VoterAddress string `json:"voterAddress"`
	pageRequest
}

func (s *Service) getVotesByVoter(c *gin.Context) {
	var req votesByVoterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.normalize()
	votes, total, err := s.indexer.getVotesByVoter(req.VoterAddress, req.Page, req.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"votes": votes, "total": total})
}

type delegationRequest struct {
	Delegator uint64 `json:"delegator"`
}

func (s *Service) getDelegation(c *gin.Context) {
	var req delegationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	delegation, err := s.indexer.getDelegationByDelegator(req.Delegator)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"delegation": delegation})
}

type delegationsByDelegateeRequest struct {
	Delegatee uint64 `json:"delegatee"`
	pageRequest
}

func (s *Service) getDelegationsByDelegatee(c *gin.Context) {
	var req delegationsByDelegateeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.normalize()
	delegations, total, err := s.indexer.getDelegationsByDelegatee(req.Delegatee, req.Page, req.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"delegations": delegations, "total": total})
}

type executionsByProposalRequest struct {
	Proposal uint64 `json:"proposal"`
	pageRequest
}

func (s *Service) getExecutionsByProposal(c *gin.Context) {
	var req executionsByProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.normalize()
	executions, total, err := s.indexer.getExecutionsByProposal(req.Proposal, req.Page, req.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"executions": executions, "total": total})
}

type accountRequest struct {
	Account uint64 `json:"account"`
}

func (s *Service) getAccount(c *gin.Context) {
	var req accountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	account, err := s.indexer.getAccountById(req.Account)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": account})
}
