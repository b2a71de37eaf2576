package main

import (
	"github.com/starshop/gov-node/tx"
	"github.com/spf13/cobra"
)

type voteArguments struct {
	Url      string
	Index    uint64
	Nonce    uint64
	Skey     string
	Proposal uint64
	Against  bool
}

var voteArgs voteArguments

var voteCmd = &cobra.Command{
	Use:   "vote",
	Short: "Cast a vote on an active proposal",
	Long:  ``,
	Run:   voteRun,
}

func init() {
	urlFlag(voteCmd, &voteArgs.Url)
	signerFlags(voteCmd, &voteArgs.Index, &voteArgs.Nonce, &voteArgs.Skey)
	voteCmd.Flags().Uint64VarP(&voteArgs.Proposal, "proposal", "p", 0, "proposal id")
	voteCmd.Flags().BoolVarP(&voteArgs.Against, "against", "", false, "vote against instead of for")
}

func voteRun(cmd *cobra.Command, args []string) {
	stx := &tx.VoteTx{
		Proposal: voteArgs.Proposal,
		Support:  !voteArgs.Against,
	}
	sendGovTx(voteArgs.Url, voteArgs.Index, voteArgs.Nonce, voteArgs.Skey, tx.GovTxTypeVote, stx)
}
