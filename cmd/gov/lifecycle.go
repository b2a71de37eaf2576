package main

import (
	"github.com/starshop/gov-node/tx"
	"github.com/spf13/cobra"
)

type lifecycleArguments struct {
	Url      string
	Index    uint64
	Nonce    uint64
	Skey     string
	Proposal uint64
}

func lifecycleFlags(cmd *cobra.Command, args *lifecycleArguments) {
	urlFlag(cmd, &args.Url)
	signerFlags(cmd, &args.Index, &args.Nonce, &args.Skey)
	cmd.Flags().Uint64VarP(&args.Proposal, "proposal", "p", 0, "proposal id")
}

var activateArgs lifecycleArguments

var activateCmd = &cobra.Command{
	Use:   "activate",
	Short: "Open voting on a draft proposal",
	Long:  ``,
	Run: func(cmd *cobra.Command, args []string) {
		sendGovTx(activateArgs.Url, activateArgs.Index, activateArgs.Nonce, activateArgs.Skey,
			tx.GovTxTypeActivate, &tx.ActivateProposalTx{Proposal: activateArgs.Proposal})
	},
}

var cancelArgs lifecycleArguments

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel a draft or active proposal",
	Long:  ``,
	Run: func(cmd *cobra.Command, args []string) {
		sendGovTx(cancelArgs.Url, cancelArgs.Index, cancelArgs.Nonce, cancelArgs.Skey,
			tx.GovTxTypeCancel, &tx.CancelProposalTx{Proposal: cancelArgs.Proposal})
	},
}

var vetoArgs lifecycleArguments

var vetoCmd = &cobra.Command{
	Use:   "veto",
	Short: "Veto a passed proposal",
	Long:  ``,
	Run: func(cmd *cobra.Command, args []string) {
		sendGovTx(vetoArgs.Url, vetoArgs.Index, vetoArgs.Nonce, vetoArgs.Skey,
			tx.GovTxTypeVeto, &tx.VetoProposalTx{Proposal: vetoArgs.Proposal})
	},
}

var closeArgs lifecycleArguments

var closeCmd = &cobra.Command{
	Use:   "close",
	Short: "Settle an expired voting window",
	Long:  ``,
	Run: func(cmd *cobra.Command, args []string) {
		sendGovTx(closeArgs.Url, closeArgs.Index, closeArgs.Nonce, closeArgs.Skey,
			tx.GovTxTypeClose, &tx.CloseProposalTx{Proposal: closeArgs.Proposal})
	},
}

var executeArgs lifecycleArguments

var executeCmd = &cobra.Command{
	Use:   "execute",
	Short: "Execute a passed proposal's actions",
	Long:  ``,
	Run: func(cmd *cobra.Command, args []string) {
		sendGovTx(executeArgs.Url, executeArgs.Index, executeArgs.Nonce, executeArgs.Skey,
			tx.GovTxTypeExecute, &tx.ExecuteProposalTx{Proposal: executeArgs.Proposal})
	},
}

func init() {
	lifecycleFlags(activateCmd, &activateArgs)
	lifecycleFlags(cancelCmd, &cancelArgs)
	lifecycleFlags(vetoCmd, &vetoArgs)
	lifecycleFlags(closeCmd, &closeArgs)
	lifecycleFlags(executeCmd, &executeArgs)
}
