package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	ballotledger "agora/contexts/governance-core/ballot-ledger"
	ledgerhttp "agora/contexts/governance-core/ballot-ledger/transport/http"
	votegateway "agora/contexts/governance-core/vote-gateway"
	ledgeradapter "agora/contexts/governance-core/vote-gateway/adapters/ledger"
	gatewayhttp "agora/contexts/governance-core/vote-gateway/transport/http"

	"github.com/ethereum/go-ethereum/common"
)

const (
	adminWallet = "0x0000000000000000000000000000000000000a11"
	voterWallet = "0x00000000000000000000000000000000000000aa"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ledger := ballotledger.NewModule(ballotledger.Dependencies{
		ProgramAddress: common.HexToAddress("0x00000000000000000000000000000000a602a000"),
		GenesisAdmin:   common.HexToAddress(adminWallet),
	})
	adapter := ledgeradapter.Adapter{
		Program:   ledger.Program,
		Authority: common.HexToAddress(adminWallet),
	}
	gateway := votegateway.NewInMemoryModule(adapter, adapter, adapter, nil)
	return New(ledger, gateway, nil, ":0")
}

func doJSON(t *testing.T, s *Server, method, path, wallet, userID string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request failed: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if wallet != "" {
		req.Header.Set("X-Wallet-Address", wallet)
	}
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if out != nil && rec.Code < 300 {
		if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
			t.Fatalf("decode response failed: %v", err)
		}
	}
	return rec.Code
}

func createProposal(t *testing.T, s *Server) uint64 {
	t.Helper()
	var resp ledgerhttp.CreateProposalResponse
	code := doJSON(t, s, http.MethodPost, "/v1/proposals", adminWallet, "", ledgerhttp.CreateProposalRequest{
		Title:   "budget",
		Text:    "q3 budget",
		Creator: "clerk",
	}, &resp)
	if code != http.StatusCreated {
		t.Fatalf("create proposal returned %d", code)
	}
	return resp.ProposalID
}

func TestSubmitVoteFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	proposalID := createProposal(t, s)

	// The wallet casts its ballot directly on the ledger surface.
	var ballot ledgerhttp.BallotResponse
	code := doJSON(t, s, http.MethodPost, "/v1/proposals/1/ballot", voterWallet, "",
		ledgerhttp.BallotRequest{SupportYes: true}, &ballot)
	if code != http.StatusOK {
		t.Fatalf("ballot returned %d", code)
	}

	// The platform user then claims that transaction through the gateway.
	var submit gatewayhttp.SubmitVoteResponse
	code = doJSON(t, s, http.MethodPost, "/v1/votes", "", "user-1", gatewayhttp.SubmitVoteRequest{
		TransactionHash: ballot.TransactionHash,
		ProposalID:      proposalID,
		VoteValue:       true,
		WalletAddress:   voterWallet,
	}, &submit)
	if code != http.StatusOK {
		t.Fatalf("submit returned %d", code)
	}
	if !submit.Success || !submit.Verified {
		t.Fatalf("expected a verified success, got %+v", submit)
	}
	if submit.Tallies.Yes != 1 || submit.Tallies.Total != 1 {
		t.Fatalf("unexpected tallies: %+v", submit.Tallies)
	}

	// Second claim of the same transaction conflicts.
	code = doJSON(t, s, http.MethodPost, "/v1/votes", "", "user-1", gatewayhttp.SubmitVoteRequest{
		TransactionHash: ballot.TransactionHash,
		ProposalID:      proposalID,
		VoteValue:       true,
		WalletAddress:   voterWallet,
	}, nil)
	if code != http.StatusConflict {
		t.Fatalf("duplicate claim returned %d, want 409", code)
	}

	var tally gatewayhttp.TallyResponse
	if code := doJSON(t, s, http.MethodGet, "/v1/proposals/1/tally", "", "", nil, &tally); code != http.StatusOK {
		t.Fatalf("tally returned %d", code)
	}
	if tally.Tallies.Yes != 1 || tally.Tallies.Total != 1 {
		t.Fatalf("unexpected tally body: %+v", tally)
	}

	var result gatewayhttp.ProposalResultResponse
	if code := doJSON(t, s, http.MethodGet, "/v1/proposals/1/result", "", "", nil, &result); code != http.StatusOK {
		t.Fatalf("result returned %d", code)
	}
	if result.Outcome != "yes" {
		t.Fatalf("expected outcome yes, got %q", result.Outcome)
	}

	var votes gatewayhttp.ProposalVotesResponse
	if code := doJSON(t, s, http.MethodGet, "/v1/proposals/1/votes", "", "", nil, &votes); code != http.StatusOK {
		t.Fatalf("votes returned %d", code)
	}
	if len(votes.Votes) != 1 {
		t.Fatalf("expected one cached vote row, got %+v", votes.Votes)
	}
	if votes.Votes[0].UserID != "user-1" || votes.Votes[0].TransactionHash != ballot.TransactionHash {
		t.Fatalf("unexpected vote row: %+v", votes.Votes[0])
	}
}

func TestSubmitVoteRejectsForgedClaimOverHTTP(t *testing.T) {
	s := newTestServer(t)
	proposalID := createProposal(t, s)

	var ballot ledgerhttp.BallotResponse
	if code := doJSON(t, s, http.MethodPost, "/v1/proposals/1/ballot", voterWallet, "",
		ledgerhttp.BallotRequest{SupportYes: true}, &ballot); code != http.StatusOK {
		t.Fatalf("ballot returned %d", code)
	}

	// Claiming the transaction under a different wallet is a policy
	// rejection, not a conflict.
	code := doJSON(t, s, http.MethodPost, "/v1/votes", "", "user-2", gatewayhttp.SubmitVoteRequest{
		TransactionHash: ballot.TransactionHash,
		ProposalID:      proposalID,
		VoteValue:       true,
		WalletAddress:   "0x00000000000000000000000000000000000000bb",
	}, nil)
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("forged claim returned %d, want 422", code)
	}

	// An unknown hash is a 404.
	code = doJSON(t, s, http.MethodPost, "/v1/votes", "", "user-2", gatewayhttp.SubmitVoteRequest{
		TransactionHash: "0x1111111111111111111111111111111111111111111111111111111111111111",
		ProposalID:      proposalID,
		VoteValue:       true,
		WalletAddress:   voterWallet,
	}, nil)
	if code != http.StatusNotFound {
		t.Fatalf("unknown hash returned %d, want 404", code)
	}
}

func TestRebuildEndpointRestoresTallies(t *testing.T) {
	s := newTestServer(t)
	createProposal(t, s)

	var ballot ledgerhttp.BallotResponse
	if code := doJSON(t, s, http.MethodPost, "/v1/proposals/1/ballot", voterWallet, "",
		ledgerhttp.BallotRequest{SupportYes: true}, &ballot); code != http.StatusOK {
		t.Fatalf("ballot returned %d", code)
	}

	var rebuild gatewayhttp.RebuildResponse
	if code := doJSON(t, s, http.MethodPost, "/v1/admin/rebuild", "", "", nil, &rebuild); code != http.StatusOK {
		t.Fatalf("rebuild returned %d", code)
	}
	if rebuild.ProposalsSeeded != 1 || rebuild.VotesRestored != 1 {
		t.Fatalf("unexpected rebuild summary: %+v", rebuild)
	}

	var tally gatewayhttp.TallyResponse
	if code := doJSON(t, s, http.MethodGet, "/v1/proposals/1/tally", "", "", nil, &tally); code != http.StatusOK {
		t.Fatalf("tally returned %d", code)
	}
	if tally.Tallies.Yes != 1 || tally.Tallies.Total != 1 {
		t.Fatalf("rebuild lost the vote: %+v", tally)
	}
}

func TestRoleEndpointsGateProposalCreation(t *testing.T) {
	s := newTestServer(t)
	outsider := "0x00000000000000000000000000000000000000cc"

	// An outsider cannot create proposals.
	code := doJSON(t, s, http.MethodPost, "/v1/proposals", outsider, "", ledgerhttp.CreateProposalRequest{
		Title: "sneaky",
	}, nil)
	if code != http.StatusForbidden {
		t.Fatalf("outsider create returned %d, want 403", code)
	}

	// Admin grants council, then the grantee may create.
	code = doJSON(t, s, http.MethodPost, "/v1/admin/roles/grant", adminWallet, "", ledgerhttp.RoleChangeRequest{
		Role:    "council",
		Account: outsider,
	}, nil)
	if code != http.StatusOK {
		t.Fatalf("grant returned %d", code)
	}
	code = doJSON(t, s, http.MethodPost, "/v1/proposals", outsider, "", ledgerhttp.CreateProposalRequest{
		Title: "allowed now",
	}, nil)
	if code != http.StatusCreated {
		t.Fatalf("council create returned %d, want 201", code)
	}

	// Missing identity headers are rejected up front.
	if code := doJSON(t, s, http.MethodPost, "/v1/proposals", "", "", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("headerless create returned %d, want 401", code)
	}
	if code := doJSON(t, s, http.MethodPost, "/v1/votes", "", "", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("headerless submit returned %d, want 401", code)
	}
}

func TestProposalIDPathValidation(t *testing.T) {
	s := newTestServer(t)
	if code := doJSON(t, s, http.MethodGet, "/v1/proposals/abc/tally", "", "", nil, nil); code != http.StatusBadRequest {
		t.Fatalf("non-numeric id returned %d, want 400", code)
	}
	if code := doJSON(t, s, http.MethodGet, "/v1/proposals/0/tally", "", "", nil, nil); code != http.StatusBadRequest {
		t.Fatalf("zero id returned %d, want 400", code)
	}
}
