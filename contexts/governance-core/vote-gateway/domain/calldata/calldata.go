// Package calldata decodes ledger vote calldata independently of the ledger
// program, so verification does not trust the component it is checking.
package calldata

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
)

// VoteMethodSignature is the canonical signature of the ledger vote method.
const VoteMethodSignature = "vote(uint256,bool)"

var (
	voteSelector  = crypto.Keccak256([]byte(VoteMethodSignature))[:4]
	voteArguments abi.Arguments
)

func init() {
	uint256Type, err := abi.NewType("uint256", "", nil)
	if err != nil {
		panic(fmt.Sprintf("abi type uint256: %v", err))
	}
	boolType, err := abi.NewType("bool", "", nil)
	if err != nil {
		panic(fmt.Sprintf("abi type bool: %v", err))
	}
	voteArguments = abi.Arguments{
		{Name: "proposalId", Type: uint256Type},
		{Name: "supportYes", Type: boolType},
	}
}

// IsVoteCall reports whether the calldata selector targets the vote method.
func IsVoteCall(input []byte) bool {
	return len(input) >= 4 && bytes.Equal(input[:4], voteSelector)
}

// DecodeVoteParams extracts the proposal id and choice from vote calldata.
func DecodeVoteParams(input []byte) (uint64, bool, error) {
	if !IsVoteCall(input) {
		return 0, false, errors.New("calldata does not target the vote method")
	}
	values, err := voteArguments.Unpack(input[4:])
	if err != nil {
		return 0, false, fmt.Errorf("unpack vote calldata: %w", err)
	}
	proposalID, ok := values[0].(*big.Int)
	if !ok || !proposalID.IsUint64() {
		return 0, false, errors.New("vote calldata: proposal id is not a uint64-range uint256")
	}
	supportYes, ok := values[1].(bool)
	if !ok {
		return 0, false, errors.New("vote calldata: support flag is not bool")
	}
	return proposalID.Uint64(), supportYes, nil
}
