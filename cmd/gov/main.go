package main

import (
	"fmt"
	"os"
)

func main() {
	clCmd.AddCommand(initCmd)
	clCmd.AddCommand(versionCmd)
	clCmd.AddCommand(accountCmd)
	clCmd.AddCommand(proposalCmd)
	clCmd.AddCommand(governanceCmd)
	clCmd.AddCommand(newProposalCmd)
	clCmd.AddCommand(activateCmd)
	clCmd.AddCommand(voteCmd)
	clCmd.AddCommand(delegateCmd)
	clCmd.AddCommand(undelegateCmd)
	clCmd.AddCommand(cancelCmd)
	clCmd.AddCommand(vetoCmd)
	clCmd.AddCommand(closeCmd)
	clCmd.AddCommand(executeCmd)
	clCmd.AddCommand(verifyCmd)
	if err := clCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
