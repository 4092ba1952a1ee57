package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	ballotledger "agora/contexts/governance-core/ballot-ledger"
	ledgererrors "agora/contexts/governance-core/ballot-ledger/domain/errors"
	ledgerhttp "agora/contexts/governance-core/ballot-ledger/transport/http"
	votegateway "agora/contexts/governance-core/vote-gateway"
	gatewayerrors "agora/contexts/governance-core/vote-gateway/domain/errors"
	gatewayhttp "agora/contexts/governance-core/vote-gateway/transport/http"
)

type Server struct {
	mux     *http.ServeMux
	logger  *slog.Logger
	addr    string
	ledger  ballotledger.Module
	gateway votegateway.Module
}

func New(
	ledger ballotledger.Module,
	gateway votegateway.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		addr:    addr,
		ledger:  ledger,
		gateway: gateway,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /v1/proposals", s.handleCreateProposal)
	s.mux.HandleFunc("GET /v1/proposals/{proposal_id}", s.handleGetProposal)
	s.mux.HandleFunc("POST /v1/proposals/{proposal_id}/ballot", s.handleCastBallot)
	s.mux.HandleFunc("POST /v1/proposals/{proposal_id}/close", s.handleCloseProposal)
	s.mux.HandleFunc("GET /v1/proposals/{proposal_id}/tally", s.handleGetTally)
	s.mux.HandleFunc("GET /v1/proposals/{proposal_id}/result", s.handleProposalResult)
	s.mux.HandleFunc("GET /v1/proposals/{proposal_id}/votes", s.handleProposalVotes)

	s.mux.HandleFunc("POST /v1/votes", s.handleSubmitVote)

	s.mux.HandleFunc("POST /v1/admin/rebuild", s.handleRebuild)
	s.mux.HandleFunc("POST /v1/admin/roles/grant", s.handleGrantRole)
	s.mux.HandleFunc("POST /v1/admin/roles/revoke", s.handleRevokeRole)
}

func (s *Server) handleCreateProposal(w http.ResponseWriter, r *http.Request) {
	caller := r.Header.Get("X-Wallet-Address")
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "missing_wallet", "X-Wallet-Address header is required")
		return
	}
	var req ledgerhttp.CreateProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.CreateProposalHandler(r.Context(), caller, req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	proposalID, ok := parseProposalID(w, r)
	if !ok {
		return
	}
	resp, err := s.ledger.Handler.GetProposalHandler(r.Context(), proposalID)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastBallot(w http.ResponseWriter, r *http.Request) {
	caller := r.Header.Get("X-Wallet-Address")
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "missing_wallet", "X-Wallet-Address header is required")
		return
	}
	proposalID, ok := parseProposalID(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.BallotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ledger.Handler.CastBallotHandler(r.Context(), caller, proposalID, req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCloseProposal(w http.ResponseWriter, r *http.Request) {
	caller := r.Header.Get("X-Wallet-Address")
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "missing_wallet", "X-Wallet-Address header is required")
		return
	}
	proposalID, ok := parseProposalID(w, r)
	if !ok {
		return
	}
	resp, err := s.ledger.Handler.CloseProposalHandler(r.Context(), caller, proposalID)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetTally(w http.ResponseWriter, r *http.Request) {
	proposalID, ok := parseProposalID(w, r)
	if !ok {
		return
	}
	resp, err := s.gateway.Handler.TallyHandler(r.Context(), proposalID)
	if err != nil {
		writeGatewayDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleProposalResult(w http.ResponseWriter, r *http.Request) {
	proposalID, ok := parseProposalID(w, r)
	if !ok {
		return
	}
	resp, err := s.gateway.Handler.ProposalResultHandler(r.Context(), proposalID)
	if err != nil {
		writeGatewayDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleProposalVotes(w http.ResponseWriter, r *http.Request) {
	proposalID, ok := parseProposalID(w, r)
	if !ok {
		return
	}
	resp, err := s.gateway.Handler.ProposalVotesHandler(r.Context(), proposalID)
	if err != nil {
		writeGatewayDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitVote(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	var req gatewayhttp.SubmitVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.gateway.Handler.SubmitVoteHandler(r.Context(), userID, req)
	if err != nil {
		writeGatewayDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	resp, err := s.gateway.Handler.RebuildHandler(r.Context())
	if err != nil {
		writeGatewayDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGrantRole(w http.ResponseWriter, r *http.Request) {
	caller := r.Header.Get("X-Wallet-Address")
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "missing_wallet", "X-Wallet-Address header is required")
		return
	}
	var req ledgerhttp.RoleChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.ledger.Handler.GrantRoleHandler(r.Context(), caller, req); err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"granted": true})
}

func (s *Server) handleRevokeRole(w http.ResponseWriter, r *http.Request) {
	caller := r.Header.Get("X-Wallet-Address")
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "missing_wallet", "X-Wallet-Address header is required")
		return
	}
	var req ledgerhttp.RoleChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.ledger.Handler.RevokeRoleHandler(r.Context(), caller, req); err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"revoked": true})
}

func parseProposalID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := r.PathValue("proposal_id")
	proposalID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || proposalID == 0 {
		writeError(w, http.StatusBadRequest, "invalid_proposal_id", "proposal id must be a positive integer")
		return 0, false
	}
	return proposalID, true
}

func writeLedgerDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledgererrors.ErrProposalNotFound):
		writeError(w, http.StatusNotFound, "proposal_not_found", err.Error())
	case errors.Is(err, ledgererrors.ErrInvalidDuration):
		writeError(w, http.StatusBadRequest, "invalid_duration", err.Error())
	case errors.Is(err, ledgererrors.ErrVotingClosed):
		writeError(w, http.StatusConflict, "voting_closed", err.Error())
	case errors.Is(err, ledgererrors.ErrAlreadyVoted):
		writeError(w, http.StatusConflict, "already_voted", err.Error())
	case errors.Is(err, ledgererrors.ErrNotClosableYet):
		writeError(w, http.StatusConflict, "not_closable_yet", err.Error())
	case errors.Is(err, ledgererrors.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "unauthorized_role", err.Error())
	case errors.Is(err, ledgererrors.ErrUnknownRole):
		writeError(w, http.StatusBadRequest, "unknown_role", err.Error())
	case errors.Is(err, ledgererrors.ErrInvalidAddress):
		writeError(w, http.StatusBadRequest, "invalid_address", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected error")
	}
}

// writeGatewayDomainError maps the gateway taxonomy onto HTTP statuses.
// Policy rejections keep their specific code so a forged claim is
// distinguishable from a plain failure, and only infrastructure faults read
// as retryable.
func writeGatewayDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gatewayerrors.ErrInvalidClaimInput):
		writeError(w, http.StatusBadRequest, "invalid_claim", err.Error())
	case errors.Is(err, gatewayerrors.ErrInvalidHashFormat):
		writeError(w, http.StatusBadRequest, "invalid_hash_format", err.Error())
	case errors.Is(err, gatewayerrors.ErrTransactionNotFound):
		writeError(w, http.StatusNotFound, "transaction_not_found", err.Error())
	case errors.Is(err, gatewayerrors.ErrTransactionFailed):
		writeError(w, http.StatusUnprocessableEntity, "transaction_failed", err.Error())
	case errors.Is(err, gatewayerrors.ErrSenderMismatch):
		writeError(w, http.StatusUnprocessableEntity, "sender_mismatch", err.Error())
	case errors.Is(err, gatewayerrors.ErrWrongContract):
		writeError(w, http.StatusUnprocessableEntity, "wrong_contract", err.Error())
	case errors.Is(err, gatewayerrors.ErrWrongFunction):
		writeError(w, http.StatusUnprocessableEntity, "wrong_function", err.Error())
	case errors.Is(err, gatewayerrors.ErrParameterMismatch):
		writeError(w, http.StatusUnprocessableEntity, "parameter_mismatch", err.Error())
	case errors.Is(err, gatewayerrors.ErrAlreadyVoted):
		writeError(w, http.StatusConflict, "already_voted", err.Error())
	case errors.Is(err, gatewayerrors.ErrProposalNotFound):
		writeError(w, http.StatusNotFound, "proposal_not_found", err.Error())
	case gatewayerrors.KindOf(err) == gatewayerrors.KindInfrastructure:
		writeError(w, http.StatusServiceUnavailable, "ledger_unavailable", "ledger lookup failed, retry later")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected error")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, gatewayhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
