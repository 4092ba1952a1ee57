// Package ballotledger implements the authoritative ledger program inside
// the governance-core context.
//
// The program owns proposal lifecycle (create/vote/close), the per-proposal
// voted set, aggregate yes/no counters, and the role table gating proposal
// administration. Every state-changing call is appended to a globally
// ordered transaction log with real calldata so downstream verification can
// confirm a claimed vote byte-for-byte.
package ballotledger
