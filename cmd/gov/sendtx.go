package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/starshop/gov-node/crypto"
	"github.com/starshop/gov-node/tx"
	"github.com/cometbft/cometbft/rpc/client/http"
)

// sendGovTx signs a governance tx with the local validator key and
// broadcasts it. A zero nonce is resolved against the live account.
func sendGovTx(url string, index uint64, nonce uint64, skeyPath string, txType tx.GovTxType, payload any) {
	cli, err := http.New(url, "/websocket")
	if err != nil {
		fmt.Printf("new client err:%v\n", err)
		return
	}
	ctx := context.Background()
	gres, err := cli.Genesis(ctx)
	if err != nil {
		fmt.Printf("get chain genesis err:%v\n", err)
		return
	}
	chainId := gres.Genesis.ChainID
	if nonce == 0 {
		act, err := queryAccount(url, index, "")
		if err != nil {
			return
		}
		nonce = act.Nonce
	}
	btx := tx.GovTx{
		Version: tx.GovTxVersion1,
		Type:    txType,
		Nonce:   nonce,
		Account: index,
		Tx:      payload,
	}
	dat, err := btx.SigData([]byte(chainId))
	if err != nil {
		fmt.Printf("tx sign data err:%v\n", err)
		return
	}
	pv := crypto.LoadFilePV(skeyPath)
	sig, err := pv.Sign(dat)
	if err != nil {
		fmt.Printf("sign tx err:%v\n", err)
		return
	}
	btx.Sig = [][]byte{sig}
	dat, err = tx.MarshalGovTx(&btx)
	if err != nil {
		fmt.Printf("encode tx err:%v\n", err)
		return
	}
	fmt.Printf("tx:%v\n", hex.EncodeToString(dat))
	res, err := cli.BroadcastTxSync(ctx, dat)
	if err != nil {
		fmt.Printf("broadcast tx err:%v\n", err)
		return
	}
	dat, _ = json.Marshal(res)
	fmt.Printf("%v\n", string(dat))
}
