package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/starshop/gov-node/tx"
	"github.com/starshop/gov-node/types"
	"github.com/cometbft/cometbft/rpc/client/http"
	"github.com/spf13/cobra"
)

type proposalArguments struct {
	Url      string
	Proposal uint64
}

var proposalArgs proposalArguments

var proposalCmd = &cobra.Command{
	Use:   "proposal",
	Short: "Query a proposal by id",
	Long:  ``,
	Run:   proposalRun,
}

func init() {
	urlFlag(proposalCmd, &proposalArgs.Url)
	proposalCmd.Flags().Uint64VarP(&proposalArgs.Proposal, "proposal", "p", 0, "proposal id")
}

func proposalRun(cmd *cobra.Command, args []string) {
	cli, err := http.New(proposalArgs.Url, "/websocket")
	if err != nil {
		fmt.Printf("new client err:%v\n", err)
		return
	}
	dat := beBytes(proposalArgs.Proposal)
	res, err := cli.ABCIQuery(context.Background(), "/proposals/", dat)
	if err != nil {
		fmt.Printf("request err:%v\n", err)
		return
	}
	if res.Response.Code != 0 {
		fmt.Printf("proposal not found\n")
		return
	}
	fmt.Println(string(res.Response.Value))
}

func beBytes(v uint64) []byte {
	dat := make([]byte, 0, 8)
	for i := 7; i >= 0; i-- {
		b := byte(v >> (8 * i))
		if len(dat) == 0 && b == 0 && i > 0 {
			continue
		}
		dat = append(dat, b)
	}
	return dat
}

type governanceArguments struct {
	Url string
}

var governanceArgs governanceArguments

var governanceCmd = &cobra.Command{
	Use:   "governance",
	Short: "Query governance roles, requirements and parameters",
	Long:  ``,
	Run:   governanceRun,
}

func init() {
	urlFlag(governanceCmd, &governanceArgs.Url)
}

func governanceRun(cmd *cobra.Command, args []string) {
	cli, err := http.New(governanceArgs.Url, "/websocket")
	if err != nil {
		fmt.Printf("new client err:%v\n", err)
		return
	}
	res, err := cli.ABCIQuery(context.Background(), "/governance/", nil)
	if err != nil {
		fmt.Printf("request err:%v\n", err)
		return
	}
	if res.Response.Code != 0 {
		fmt.Printf("%#v\n", res)
		return
	}
	fmt.Println(string(res.Response.Value))
}

type newProposalArguments struct {
	Url          string
	Index        uint64
	Nonce        uint64
	Skey         string
	Title        string
	Description  string
	MetadataRef  string
	ProposalType uint64
	Duration     uint64
	QuorumBp     uint64
	ThresholdBp  uint64
	Delay        uint64
	OneVote      bool
	MaxPower     uint64
	Actions      string
}

var newProposalArgs newProposalArguments

var newProposalCmd = &cobra.Command{
	Use:   "newproposal",
	Short: "Submit a proposal draft",
	Long:  ``,
	Run:   newProposalRun,
}

func init() {
	urlFlag(newProposalCmd, &newProposalArgs.Url)
	signerFlags(newProposalCmd, &newProposalArgs.Index, &newProposalArgs.Nonce, &newProposalArgs.Skey)
	newProposalCmd.Flags().StringVarP(&newProposalArgs.Title, "title", "t", "", "proposal title")
	newProposalCmd.Flags().StringVarP(&newProposalArgs.Description, "desc", "", "", "proposal description")
	newProposalCmd.Flags().StringVarP(&newProposalArgs.MetadataRef, "meta", "", "", "off-chain metadata reference")
	newProposalCmd.Flags().Uint64VarP(&newProposalArgs.ProposalType, "type", "", uint64(types.ProposalTypeGovernance), "proposal type 1=governance 2=technical 3=economic")
	newProposalCmd.Flags().Uint64VarP(&newProposalArgs.Duration, "duration", "", 86400, "voting window seconds")
	newProposalCmd.Flags().Uint64VarP(&newProposalArgs.QuorumBp, "quorum", "", 2000, "quorum in basis points")
	newProposalCmd.Flags().Uint64VarP(&newProposalArgs.ThresholdBp, "threshold", "", 5000, "approval threshold in basis points")
	newProposalCmd.Flags().Uint64VarP(&newProposalArgs.Delay, "delay", "", 0, "execution delay seconds")
	newProposalCmd.Flags().BoolVarP(&newProposalArgs.OneVote, "onevote", "", false, "one address one vote")
	newProposalCmd.Flags().Uint64VarP(&newProposalArgs.MaxPower, "maxpower", "", 0, "voting power cap, 0 for uncapped")
	newProposalCmd.Flags().StringVarP(&newProposalArgs.Actions, "actions", "a", "", "actions json array")
}

func newProposalRun(cmd *cobra.Command, args []string) {
	var actions []types.Action
	if newProposalArgs.Actions != "" {
		if err := json.Unmarshal([]byte(newProposalArgs.Actions), &actions); err != nil {
			fmt.Printf("parse actions err:%v\n", err)
			return
		}
	}
	stx := &tx.CreateProposalTx{
		Title:        newProposalArgs.Title,
		Description:  newProposalArgs.Description,
		MetadataRef:  newProposalArgs.MetadataRef,
		ProposalType: types.ProposalType(newProposalArgs.ProposalType),
		Actions:      actions,
		VotingConfig: types.VotingConfig{
			Duration:          newProposalArgs.Duration,
			QuorumBp:          newProposalArgs.QuorumBp,
			ThresholdBp:       newProposalArgs.ThresholdBp,
			ExecutionDelay:    newProposalArgs.Delay,
			OneAddressOneVote: newProposalArgs.OneVote,
			MaxVotingPower:    newProposalArgs.MaxPower,
		},
	}
	sendGovTx(newProposalArgs.Url, newProposalArgs.Index, newProposalArgs.Nonce, newProposalArgs.Skey,
		tx.GovTxTypeCreateProposal, stx)
}
