package state

// StateHeader is the committed summary of the governance state: chain
// identity, block cursor, index allocators and the two tally
// denominators (token supply and eligible voter count).
type StateHeader struct {
	Height         uint64 `json:"height"`
	Time           uint64 `json:"time"`
	ChainId        string `json:"chainId"`
	Hash           []byte `json:"hash"`
	RootHash       []byte `json:"rootHash"`
	AccountIdx     uint64 `json:"accountIdx"`
	ProposalIdx    uint64 `json:"proposalIdx"`
	AdminIdx       uint64 `json:"adminIdx"`
	TotalSupply    uint64 `json:"totalSupply"`
	EligibleVoters uint64 `json:"eligibleVoters"`
}

func (h *StateHeader) Clone() *StateHeader {
	n := *h
	if h.Hash != nil {
		n.Hash = make([]byte, len(h.Hash))
		copy(n.Hash, h.Hash)
	}
	if h.RootHash != nil {
		n.RootHash = make([]byte, len(h.RootHash))
		copy(n.RootHash, h.RootHash)
	}
	return &n
}
