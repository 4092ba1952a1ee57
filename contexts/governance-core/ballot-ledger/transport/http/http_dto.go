package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateProposalRequest struct {
	Title           string `json:"title"`
	Text            string `json:"text"`
	Creator         string `json:"creator"`
	Authorizer      string `json:"authorizer"`
	DecisionDate    int64  `json:"decision_date"`
	DurationSeconds int64  `json:"duration_seconds"`
}

type CreateProposalResponse struct {
	ProposalID      uint64 `json:"proposal_id"`
	TransactionHash string `json:"transaction_hash"`
	StartAt         int64  `json:"start_at"`
	EndAt           int64  `json:"end_at"`
}

type BallotRequest struct {
	SupportYes bool `json:"support_yes"`
}

type BallotResponse struct {
	TransactionHash string `json:"transaction_hash"`
	BlockNumber     uint64 `json:"block_number"`
	Yes             uint64 `json:"yes"`
	No              uint64 `json:"no"`
}

type CloseProposalResponse struct {
	TransactionHash string `json:"transaction_hash"`
	Closed          bool   `json:"closed"`
}

type ProposalResponse struct {
	ProposalID   uint64 `json:"proposal_id"`
	Title        string `json:"title"`
	Text         string `json:"text"`
	Creator      string `json:"creator"`
	Authorizer   string `json:"authorizer"`
	DecisionDate int64  `json:"decision_date"`
	StartAt      int64  `json:"start_at"`
	EndAt        int64  `json:"end_at"`
	Closed       bool   `json:"closed"`
	Yes          uint64 `json:"yes"`
	No           uint64 `json:"no"`
	YesWins      bool   `json:"yes_wins"`
	WinnerExists bool   `json:"winner_exists"`
}

type RoleChangeRequest struct {
	Role    string `json:"role"`
	Account string `json:"account"`
}
