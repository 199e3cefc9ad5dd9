package aggregator

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/std/recursion/plonk"

	"github.com/eon-protocol/pi-aggregator/circuits/layout"
)

// A keccak block compiles to roughly 360k constraints, so 2^22 rows host a
// batch of two chunks.
// TODO: settle the degree once the circuit size for the target chunk count is measured.
const LOG_DEGREE = 22
const DEFAULT_KECCAK_ROWS = layout.DefaultRowsPerRound

// A chain id is a u64 and uses 8 bytes of the public input.
const CHAIN_ID_LEN = 8

// Inside hash preimages the chain id is a big-endian 32-byte word.
const CHAIN_ID_WORD_LEN = 32
const HASH_LEN = 32

// chain_id || prev_state_root || post_state_root || withdraw_root || data_hash
const PI_PREIMAGE_LEN = CHAIN_ID_WORD_LEN + 4*HASH_LEN

const NUM_PUBLIC = 4*HASH_LEN + CHAIN_ID_LEN

const HASH_T = 2
const HASH_RF = 8
const HASH_RP = 56
const HASH_SEED = "PI_AGGREGATOR_POSEIDON2_HASH_SEED"

var FIELD = ecc.BLS12_381.ScalarField()
var OPT_PROVER = plonk.GetNativeProverOptions(FIELD, FIELD)
var OPT_VERIFIER = plonk.GetNativeVerifierOptions(FIELD, FIELD)

var (
	ErrInvalidLength   = errors.New("invalid byte length")
	ErrNoChunks        = errors.New("batch has no chunks")
	ErrChainIDMismatch = errors.New("chunks use different chain ids")
	ErrDiscontinuous   = errors.New("chunks are not continuous")
	ErrHashMismatch    = errors.New("batch hash does not match its chunks")
	ErrInvalidInstance = errors.New("invalid public input instance")
	ErrInvalidConfig   = errors.New("invalid config")
)
