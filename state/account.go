package state

import (
	"github.com/cometbft/cometbft/crypto/ed25519"
)

// Account is a governance participant. Balance is the spendable token
// holding used for voting weight; Stake is the portion locked behind
// open proposals. Verified and Level come from the verification
// registry and gate economic-type proposals.
type Account struct {
	Index            uint64         `json:"index"`
	PubKey           ed25519.PubKey `json:"pubKey"`
	Balance          uint64         `json:"balance"`
	Stake            uint64         `json:"stake"`
	Nonce            uint64         `json:"nonce"`
	Verified         bool           `json:"verified"`
	Level            uint64         `json:"level"`
	LastProposalTime uint64         `json:"lastProposalTime"`
	ActiveProposals  uint64         `json:"activeProposals"`
}

func (a *Account) Clone() *Account {
	n := *a
	if a.PubKey != nil {
		n.PubKey = make([]byte, len(a.PubKey))
		copy(n.PubKey, a.PubKey)
	}
	return &n
}

func (a *Account) SetPubKey(pkey []byte) {
	if a.PubKey == nil {
		a.PubKey = make([]byte, len(pkey))
	}
	copy(a.PubKey, pkey)
}

func (a *Account) AddrBytes() []byte {
	pk := ed25519.PubKey(a.PubKey[:])
	return pk.Address()[:]
}

func (a *Account) Address() string {
	pk := ed25519.PubKey(a.PubKey[:])
	return pk.Address().String()
}

// Holdings is the full token position, spendable plus locked.
func (a *Account) Holdings() uint64 {
	return a.Balance + a.Stake
}

func (a *Account) Verify(msg []byte, sigs [][]byte) (succ bool) {
	if len(sigs) != 1 {
		return false
	}
	pk := ed25519.PubKey(a.PubKey[:])
	return pk.VerifySignature(msg, sigs[0])
}
