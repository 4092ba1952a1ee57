// Package votegateway implements the vote submission gateway inside the
// governance-core context.
//
// The gateway owns the read-only verification pipeline that confirms a
// claimed ledger vote actually happened as claimed, the derived vote/tally
// cache with its (proposal_id, user_id) uniqueness guarantee, and the
// orchestrator sequencing pre-check, verification, cache commit, and tally
// response per submission. The cache never diverges from the ledger: rows
// are written only for verified transactions and the whole store can be
// rebuilt by replaying the ledger log.
package votegateway
