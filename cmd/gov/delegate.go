package main

import (
	"github.com/starshop/gov-node/tx"
	"github.com/spf13/cobra"
)

type delegateArguments struct {
	Url       string
	Index     uint64
	Nonce     uint64
	Skey      string
	Delegatee uint64
}

var delegateArgs delegateArguments

var delegateCmd = &cobra.Command{
	Use:   "delegate",
	Short: "Delegate voting power to another account",
	Long:  ``,
	Run:   delegateRun,
}

func init() {
	urlFlag(delegateCmd, &delegateArgs.Url)
	signerFlags(delegateCmd, &delegateArgs.Index, &delegateArgs.Nonce, &delegateArgs.Skey)
	delegateCmd.Flags().Uint64VarP(&delegateArgs.Delegatee, "delegatee", "t", 0, "delegatee account index")
}

func delegateRun(cmd *cobra.Command, args []string) {
	stx := &tx.DelegateTx{Delegatee: delegateArgs.Delegatee}
	sendGovTx(delegateArgs.Url, delegateArgs.Index, delegateArgs.Nonce, delegateArgs.Skey, tx.GovTxTypeDelegate, stx)
}

type undelegateArguments struct {
	Url   string
	Index uint64
	Nonce uint64
	Skey  string
}

var undelegateArgs undelegateArguments

var undelegateCmd = &cobra.Command{
	Use:   "undelegate",
	Short: "Revoke the current delegation",
	Long:  ``,
	Run:   undelegateRun,
}

func init() {
	urlFlag(undelegateCmd, &undelegateArgs.Url)
	signerFlags(undelegateCmd, &undelegateArgs.Index, &undelegateArgs.Nonce, &undelegateArgs.Skey)
}

func undelegateRun(cmd *cobra.Command, args []string) {
	sendGovTx(undelegateArgs.Url, undelegateArgs.Index, undelegateArgs.Nonce, undelegateArgs.Skey,
		tx.GovTxTypeUndelegate, &tx.UndelegateTx{})
}
