package tx

import (
	"encoding/json"

	"github.com/starshop/gov-node/types"
)

// GovTx is the signed envelope around every governance operation. The
// Account field names the sender by state index; Sig covers SigData
// bound to the chain id so transactions cannot replay across chains.
type GovTx struct {
	Version uint8     `json:"version"`
	Type    GovTxType `json:"type"`
	Nonce   uint64    `json:"nonce"`
	Account uint64    `json:"account"`
	Tx      any       `json:"tx"`
	Sig     [][]byte  `json:"sig"`
}

type CreateProposalTx struct {
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	MetadataRef  string             `json:"metadataRef"`
	ProposalType types.ProposalType `json:"proposalType"`
	Actions      []types.Action     `json:"actions"`
	VotingConfig types.VotingConfig `json:"votingConfig"`
}

type ActivateProposalTx struct {
	Proposal uint64 `json:"proposal"`
}

type VoteTx struct {
	Proposal uint64 `json:"proposal"`
	Support  bool   `json:"support"`
}

type DelegateTx struct {
	Delegatee uint64 `json:"delegatee"`
}

type UndelegateTx struct{}

type CancelProposalTx struct {
	Proposal uint64 `json:"proposal"`
}

type VetoProposalTx struct {
	Proposal uint64 `json:"proposal"`
}

// CloseProposalTx settles an expired voting window explicitly. Closing
// also happens lazily whenever an expired proposal is touched.
type CloseProposalTx struct {
	Proposal uint64 `json:"proposal"`
}

type ExecuteProposalTx struct {
	Proposal uint64 `json:"proposal"`
}

// VerifyAccountTx marks an account as verified at a level; the stand-in
// for the referral service's verification flow.
type VerifyAccountTx struct {
	Target uint64 `json:"target"`
	Level  uint64 `json:"level"`
}

type govTxTmpl[Tx any] struct {
	Version uint8     `json:"version"`
	Type    GovTxType `json:"type"`
	Nonce   uint64    `json:"nonce"`
	Account uint64    `json:"account"`
	Tx      Tx        `json:"tx"`
	Sig     [][]byte  `json:"sig"`
}

// SigData is the byte string covered by the envelope signature: the tx
// with its signature slot replaced by the chain id.
func (tx *GovTx) SigData(ext []byte) (dat []byte, err error) {
	ntx := *tx
	ntx.Sig = [][]byte{ext}
	dat, err = json.Marshal(ntx)
	return
}

func parseGovTxType(dat []byte) GovTxType {
	var tx struct {
		Type GovTxType `json:"type"`
	}
	err := json.Unmarshal(dat, &tx)
	if err != nil {
		return GovTxTypeUnknown
	}
	return tx.Type
}

func unmarshalGovTx[Tx any](dat []byte) (btx *GovTx, err error) {
	var txt govTxTmpl[Tx]
	err = json.Unmarshal(dat, &txt)
	if err != nil {
		return
	}
	btx = new(GovTx)
	btx.Version = txt.Version
	btx.Type = txt.Type
	btx.Nonce = txt.Nonce
	btx.Account = txt.Account
	btx.Tx = &txt.Tx
	btx.Sig = txt.Sig
	return
}

func UnmarshalGovTx(dat []byte) (btx *GovTx, err error) {
	tp := parseGovTxType(dat)
	switch tp {
	case GovTxTypeCreateProposal:
		return unmarshalGovTx[CreateProposalTx](dat)
	case GovTxTypeActivate:
		return unmarshalGovTx[ActivateProposalTx](dat)
	case GovTxTypeVote:
		return unmarshalGovTx[VoteTx](dat)
	case GovTxTypeDelegate:
		return unmarshalGovTx[DelegateTx](dat)
	case GovTxTypeUndelegate:
		return unmarshalGovTx[UndelegateTx](dat)
	case GovTxTypeCancel:
		return unmarshalGovTx[CancelProposalTx](dat)
	case GovTxTypeVeto:
		return unmarshalGovTx[VetoProposalTx](dat)
	case GovTxTypeClose:
		return unmarshalGovTx[CloseProposalTx](dat)
	case GovTxTypeExecute:
		return unmarshalGovTx[ExecuteProposalTx](dat)
	case GovTxTypeVerifyAccount:
		return unmarshalGovTx[VerifyAccountTx](dat)
	default:
		err = ErrUnsupportedTxType
	}
	return
}

func MarshalGovTx(btx *GovTx) (dat []byte, err error) {
	return json.Marshal(btx)
}
