package staking

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ProtocolVersion selects the on-chain record layouts and the opcode table.
type ProtocolVersion uint8

const (
	ProtocolV1 ProtocolVersion = 1
	ProtocolV2 ProtocolVersion = 2
)

func (v ProtocolVersion) Valid() bool {
	return v == ProtocolV1 || v == ProtocolV2
}

func (v ProtocolVersion) String() string {
	return fmt.Sprintf("v%d", uint8(v))
}

// Operation is a staking program instruction, independent of its opcode.
type Operation uint8

const (
	OpInitPool Operation = iota
	OpInitMemberAccount
	OpStake
	OpClaimReward
	OpUnstake
	OpInitMemberData
	OpDistributeReward
	OpUpdateFee
	OpTransferRootAdmin
	OpWithdrawFee
	OpTransferPoolAdmin
	OpUpdatePenalty
)

var operationNames = map[Operation]string{
	OpInitPool:          "init_pool",
	OpInitMemberAccount: "init_member_account",
	OpStake:             "stake",
	OpClaimReward:       "claim_reward",
	OpUnstake:           "unstake",
	OpInitMemberData:    "init_member_data",
	OpDistributeReward:  "distribute_reward",
	OpUpdateFee:         "update_fee",
	OpTransferRootAdmin: "transfer_root_admin",
	OpWithdrawFee:       "withdraw_fee",
	OpTransferPoolAdmin: "transfer_pool_admin",
	OpUpdatePenalty:     "update_penalty",
}

func (op Operation) String() string {
	if name, ok := operationNames[op]; ok {
		return name
	}
	return fmt.Sprintf("operation(%d)", uint8(op))
}

// Opcodes are part of the wire contract with the deployed programs and must
// not be renumbered.
var opcodeTables = map[ProtocolVersion]map[Operation]uint8{
	ProtocolV1: {
		OpInitPool:          0,
		OpInitMemberAccount: 1,
		OpStake:             2,
		OpClaimReward:       3,
		OpUnstake:           4,
		OpInitMemberData:    5,
		OpDistributeReward:  6,
		OpTransferPoolAdmin: 100,
	},
	ProtocolV2: {
		OpInitPool:          0,
		OpInitMemberAccount: 1,
		OpStake:             2,
		OpWithdrawFee:       3,
		OpUpdateFee:         4,
		OpInitMemberData:    5,
		OpTransferRootAdmin: 6,
		OpClaimReward:       7,
		OpDistributeReward:  8,
		OpTransferPoolAdmin: 100,
		OpUpdatePenalty:     101,
	},
}

// Opcode returns the first payload byte for op under protocol v.
func (v ProtocolVersion) Opcode(op Operation) (uint8, error) {
	table, ok := opcodeTables[v]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedProtocolVersion, uint8(v))
	}
	opcode, ok := table[op]
	if !ok {
		return 0, fmt.Errorf("%w: %s is not available in protocol %s", ErrUnsupportedOperation, op, v)
	}
	return opcode, nil
}

func (v ProtocolVersion) Supports(op Operation) bool {
	_, err := v.Opcode(op)
	return err == nil
}

// SPL token program instruction indices.
const (
	tokenInstructionApprove      uint8 = 4
	tokenInstructionCloseAccount uint8 = 9
)

// Pool snapshot history.
const (
	MaxSnapshots        = 50
	SnapshotFieldPrefix = "snap_"
)

// Account sizes owned by the SPL token program.
const (
	MintAccountSize  = 82
	TokenAccountSize = 165
)

// NativeMint is the wrapped SOL mint.
var NativeMint = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
