package tx

import (
	"testing"

	"github.com/starshop/gov-node/types"
	"github.com/stretchr/testify/assert"
)

func TestGovTxRoundTrip(t *testing.T) {
	btx := &GovTx{
		Version: GovTxVersion1,
		Type:    GovTxTypeCreateProposal,
		Nonce:   3,
		Account: 65537,
		Tx: &CreateProposalTx{
			Title:        "raise reward rate",
			Description:  "bump referral rewards to 7.5%",
			ProposalType: types.ProposalTypeEconomic,
			Actions: []types.Action{
				{Kind: types.ActionUpdateRewardRate, RewardRate: &types.RewardRatePayload{RateBp: 750}},
			},
			VotingConfig: types.VotingConfig{Duration: 86400, QuorumBp: 2000, ThresholdBp: 5000},
		},
		Sig: [][]byte{[]byte("sig")},
	}

	dat, err := MarshalGovTx(btx)
	assert.Nil(t, err)

	out, err := UnmarshalGovTx(dat)
	assert.Nil(t, err)
	assert.Equal(t, btx.Version, out.Version)
	assert.Equal(t, btx.Type, out.Type)
	assert.Equal(t, btx.Nonce, out.Nonce)
	assert.Equal(t, btx.Account, out.Account)
	assert.Equal(t, btx.Sig, out.Sig)

	ptx, ok := out.Tx.(*CreateProposalTx)
	assert.True(t, ok)
	assert.Equal(t, "raise reward rate", ptx.Title)
	assert.Equal(t, types.ProposalTypeEconomic, ptx.ProposalType)
	assert.Len(t, ptx.Actions, 1)
	assert.Equal(t, uint64(750), ptx.Actions[0].RewardRate.RateBp)
	assert.Equal(t, uint64(86400), ptx.VotingConfig.Duration)
}

func TestGovTxTypeDispatch(t *testing.T) {
	cases := []struct {
		tp GovTxType
		in any
	}{
		{GovTxTypeActivate, &ActivateProposalTx{Proposal: 7}},
		{GovTxTypeVote, &VoteTx{Proposal: 7, Support: true}},
		{GovTxTypeDelegate, &DelegateTx{Delegatee: 65538}},
		{GovTxTypeUndelegate, &UndelegateTx{}},
		{GovTxTypeCancel, &CancelProposalTx{Proposal: 7}},
		{GovTxTypeVeto, &VetoProposalTx{Proposal: 7}},
		{GovTxTypeClose, &CloseProposalTx{Proposal: 7}},
		{GovTxTypeExecute, &ExecuteProposalTx{Proposal: 7}},
		{GovTxTypeVerifyAccount, &VerifyAccountTx{Target: 65538, Level: 2}},
	}
	for _, c := range cases {
		dat, err := MarshalGovTx(&GovTx{Version: GovTxVersion1, Type: c.tp, Tx: c.in})
		assert.Nil(t, err)
		out, err := UnmarshalGovTx(dat)
		assert.Nil(t, err)
		assert.Equal(t, c.tp, out.Type)
		assert.IsType(t, c.in, out.Tx)
		assert.Equal(t, c.in, out.Tx)
	}
}

func TestUnmarshalUnknownType(t *testing.T) {
	dat, err := MarshalGovTx(&GovTx{Version: GovTxVersion1, Type: GovTxType(99)})
	assert.Nil(t, err)
	_, err = UnmarshalGovTx(dat)
	assert.ErrorIs(t, err, ErrUnsupportedTxType)

	_, err = UnmarshalGovTx([]byte("not json"))
	assert.ErrorIs(t, err, ErrUnsupportedTxType)
}

func TestSigDataChainBinding(t *testing.T) {
	btx := &GovTx{
		Version: GovTxVersion1,
		Type:    GovTxTypeVote,
		Nonce:   1,
		Account: 65537,
		Tx:      &VoteTx{Proposal: 7, Support: true},
		Sig:     [][]byte{[]byte("existing signature")},
	}

	a, err := btx.SigData([]byte("chain-a"))
	assert.Nil(t, err)
	b, err := btx.SigData([]byte("chain-b"))
	assert.Nil(t, err)
	assert.NotEqual(t, a, b)

	// computing the preimage must not disturb the envelope itself
	assert.Equal(t, [][]byte{[]byte("existing signature")}, btx.Sig)

	// and it is stable for the same chain id
	a2, err := btx.SigData([]byte("chain-a"))
	assert.Nil(t, err)
	assert.Equal(t, a, a2)
}
