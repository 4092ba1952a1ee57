package program

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Method signatures of the ledger program. The vote signature is the one
// external claims are checked against; the others exist so every log entry
// carries decodable calldata.
const (
	VoteMethodSignature   = "vote(uint256,bool)"
	createMethodSignature = "createProposal(string,string,string,string,uint256,uint256)"
	closeMethodSignature  = "closeProposal(uint256)"
	grantMethodSignature  = "grantRole(string,address)"
	revokeMethodSignature = "revokeRole(string,address)"
)

var (
	uint256Type = mustType("uint256")
	boolType    = mustType("bool")
	stringType  = mustType("string")
	addressType = mustType("address")

	voteArguments = abi.Arguments{
		{Name: "proposalId", Type: uint256Type},
		{Name: "supportYes", Type: boolType},
	}
	createArguments = abi.Arguments{
		{Name: "title", Type: stringType},
		{Name: "text", Type: stringType},
		{Name: "creator", Type: stringType},
		{Name: "authorizer", Type: stringType},
		{Name: "decisionDate", Type: uint256Type},
		{Name: "durationSeconds", Type: uint256Type},
	}
	closeArguments = abi.Arguments{
		{Name: "proposalId", Type: uint256Type},
	}
	roleArguments = abi.Arguments{
		{Name: "role", Type: stringType},
		{Name: "account", Type: addressType},
	}

	voteSelector   = selector(VoteMethodSignature)
	createSelector = selector(createMethodSignature)
	closeSelector  = selector(closeMethodSignature)
	grantSelector  = selector(grantMethodSignature)
	revokeSelector = selector(revokeMethodSignature)
)

func mustType(name string) abi.Type {
	typ, err := abi.NewType(name, "", nil)
	if err != nil {
		panic(fmt.Sprintf("abi type %s: %v", name, err))
	}
	return typ
}

func selector(signature string) []byte {
	return crypto.Keccak256([]byte(signature))[:4]
}

// VoteSelector returns the 4-byte selector of vote(uint256,bool).
func VoteSelector() []byte {
	return append([]byte(nil), voteSelector...)
}

// IsVoteCall reports whether calldata targets the vote method.
func IsVoteCall(input []byte) bool {
	return len(input) >= 4 && bytes.Equal(input[:4], voteSelector)
}

// EncodeVoteCall builds vote calldata for the given proposal and choice.
func EncodeVoteCall(proposalID uint64, supportYes bool) []byte {
	packed, err := voteArguments.Pack(new(big.Int).SetUint64(proposalID), supportYes)
	if err != nil {
		// Packing a uint256 and a bool cannot fail with well-formed argument
		// definitions; treat it as a programming error.
		panic(fmt.Sprintf("pack vote calldata: %v", err))
	}
	return append(append([]byte(nil), voteSelector...), packed...)
}

// DecodeVoteParams decodes the proposal id and choice from vote calldata.
// The caller is expected to have checked the selector with IsVoteCall.
func DecodeVoteParams(input []byte) (uint64, bool, error) {
	if len(input) < 4 {
		return 0, false, errors.New("calldata shorter than a selector")
	}
	values, err := voteArguments.Unpack(input[4:])
	if err != nil {
		return 0, false, fmt.Errorf("unpack vote calldata: %w", err)
	}
	proposalID, ok := values[0].(*big.Int)
	if !ok {
		return 0, false, errors.New("vote calldata: proposal id is not uint256")
	}
	supportYes, ok := values[1].(bool)
	if !ok {
		return 0, false, errors.New("vote calldata: support flag is not bool")
	}
	if !proposalID.IsUint64() {
		return 0, false, errors.New("vote calldata: proposal id out of range")
	}
	return proposalID.Uint64(), supportYes, nil
}

func encodeCreateCall(title, text, creator, authorizer string, decisionDate, durationSeconds int64) []byte {
	packed, err := createArguments.Pack(
		title, text, creator, authorizer,
		big.NewInt(decisionDate), big.NewInt(durationSeconds),
	)
	if err != nil {
		panic(fmt.Sprintf("pack create calldata: %v", err))
	}
	return append(append([]byte(nil), createSelector...), packed...)
}

func encodeCloseCall(proposalID uint64) []byte {
	packed, err := closeArguments.Pack(new(big.Int).SetUint64(proposalID))
	if err != nil {
		panic(fmt.Sprintf("pack close calldata: %v", err))
	}
	return append(append([]byte(nil), closeSelector...), packed...)
}

func encodeRoleCall(sel []byte, role string, account common.Address) []byte {
	packed, err := roleArguments.Pack(role, account)
	if err != nil {
		panic(fmt.Sprintf("pack role calldata: %v", err))
	}
	return append(append([]byte(nil), sel...), packed...)
}

// transactionHash derives the log entry hash from the execution position,
// the caller, and the calldata, so identical calls at different heights
// stay distinguishable.
func transactionHash(blockNumber uint64, from common.Address, input []byte) common.Hash {
	var height [8]byte
	binary.BigEndian.PutUint64(height[:], blockNumber)
	return crypto.Keccak256Hash(height[:], from.Bytes(), input)
}
