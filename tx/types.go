package tx

import "errors"

type GovTxType uint8

const (
	GovTxTypeUnknown        GovTxType = 0
	GovTxTypeCreateProposal GovTxType = 1
	GovTxTypeActivate       GovTxType = 2
	GovTxTypeVote           GovTxType = 3
	GovTxTypeDelegate       GovTxType = 4
	GovTxTypeUndelegate     GovTxType = 5
	GovTxTypeCancel         GovTxType = 6
	GovTxTypeVeto           GovTxType = 7
	GovTxTypeClose          GovTxType = 8
	GovTxTypeExecute        GovTxType = 9
	GovTxTypeVerifyAccount  GovTxType = 10
)

const (
	GovTxVersion0 uint8 = 0
	GovTxVersion1 uint8 = 1
)

var (
	ErrInvalidTx         = errors.New("invalid tx")
	ErrUnsupportedTxType = errors.New("unsupported tx type")
	ErrUnmatchedTxType   = errors.New("unmatched tx type")

	ErrUnsupportedTxVersion = errors.New("unsupported tx version")
	ErrUnsupportedTxData    = errors.New("unsupported tx data")
)

type GovTxHeader struct {
	Version uint8
	Type    GovTxType
}
