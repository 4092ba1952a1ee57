package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SubmitVoteRequest struct {
	TransactionHash string `json:"transaction_hash"`
	ProposalID      uint64 `json:"proposal_id"`
	VoteValue       bool   `json:"vote_value"`
	WalletAddress   string `json:"wallet_address"`
}

type TallyBody struct {
	Yes   uint64 `json:"yes"`
	No    uint64 `json:"no"`
	Total uint64 `json:"total"`
}

type SubmitVoteResponse struct {
	Success     bool      `json:"success"`
	Verified    bool      `json:"verified"`
	BlockNumber uint64    `json:"block_number"`
	Tallies     TallyBody `json:"tallies"`
}

type TallyResponse struct {
	ProposalID uint64    `json:"proposal_id"`
	Tallies    TallyBody `json:"tallies"`
}

type ProposalResultResponse struct {
	ProposalID uint64    `json:"proposal_id"`
	Outcome    string    `json:"outcome"`
	Tallies    TallyBody `json:"tallies"`
}

type VoteItem struct {
	VoteID          string `json:"vote_id"`
	UserID          string `json:"user_id"`
	WalletAddress   string `json:"wallet_address"`
	VoteValue       bool   `json:"vote_value"`
	TransactionHash string `json:"transaction_hash"`
	BlockNumber     uint64 `json:"block_number"`
	CreatedAt       string `json:"created_at"`
}

type ProposalVotesResponse struct {
	ProposalID uint64     `json:"proposal_id"`
	Votes      []VoteItem `json:"votes"`
}

type RebuildResponse struct {
	ProposalsSeeded int `json:"proposals_seeded"`
	VotesRestored   int `json:"votes_restored"`
}
