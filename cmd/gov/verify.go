package main

import (
	"github.com/starshop/gov-node/tx"
	"github.com/spf13/cobra"
)

type verifyArguments struct {
	Url    string
	Index  uint64
	Nonce  uint64
	Skey   string
	Target uint64
	Level  uint64
}

var verifyArgs verifyArguments

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Mark an account as verified at a level",
	Long:  ``,
	Run:   verifyRun,
}

func init() {
	urlFlag(verifyCmd, &verifyArgs.Url)
	signerFlags(verifyCmd, &verifyArgs.Index, &verifyArgs.Nonce, &verifyArgs.Skey)
	verifyCmd.Flags().Uint64VarP(&verifyArgs.Target, "target", "t", 0, "target account index")
	verifyCmd.Flags().Uint64VarP(&verifyArgs.Level, "level", "l", 0, "verification level")
}

func verifyRun(cmd *cobra.Command, args []string) {
	stx := &tx.VerifyAccountTx{
		Target: verifyArgs.Target,
		Level:  verifyArgs.Level,
	}
	sendGovTx(verifyArgs.Url, verifyArgs.Index, verifyArgs.Nonce, verifyArgs.Skey, tx.GovTxTypeVerifyAccount, stx)
}
