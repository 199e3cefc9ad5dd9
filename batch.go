package aggregator

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// BatchHash aggregates a list of continuous chunks into two hashes:
//
//	batch_data_hash := keccak(chunk_0.data_hash || ... || chunk_k-1.data_hash)
//	batch_pi_hash   := keccak(chain_id || chunk_0.prev_state_root || chunk_k-1.post_state_root ||
//	                          chunk_k-1.withdraw_root || batch_data_hash)
//
// The chain id is used for all public input hashes, never for data hashes.
type BatchHash struct {
	ChainID         uint64
	Chunks          []ChunkHash
	DataHash        common.Hash
	PublicInputHash common.Hash
}

type batchHashJSON struct {
	ChainID         *hexutil.Uint64 `json:"chain_id,omitempty"`
	Chunks          []ChunkHash     `json:"chunks"`
	DataHash        *common.Hash    `json:"data_hash,omitempty"`
	PublicInputHash *common.Hash    `json:"public_input_hash,omitempty"`
}

// NewBatchHash checks that chunks are non-empty, share one chain id and are
// linked by their state roots, then derives the batch hashes.
func NewBatchHash(chunks []ChunkHash) (*BatchHash, error) {
	if err := checkChunks(chunks); err != nil {
		return nil, err
	}
	b := &BatchHash{
		ChainID: chunks[0].ChainID,
		Chunks:  append([]ChunkHash(nil), chunks...),
	}
	b.DataHash = DeriveBatchDataHash(b.Chunks)
	first, last := &b.Chunks[0], &b.Chunks[len(b.Chunks)-1]
	b.PublicInputHash = DeriveBatchPIHash(b.ChainID, first.PrevStateRoot, last.PostStateRoot, last.WithdrawRoot, b.DataHash)
	return b, nil
}

func checkChunks(chunks []ChunkHash) error {
	if len(chunks) == 0 {
		return ErrNoChunks
	}
	for i := 1; i < len(chunks); i++ {
		if chunks[i].ChainID != chunks[0].ChainID {
			return fmt.Errorf("%w: chunk %d has %d, chunk 0 has %d", ErrChainIDMismatch, i, chunks[i].ChainID, chunks[0].ChainID)
		}
		if chunks[i-1].PostStateRoot != chunks[i].PrevStateRoot {
			return fmt.Errorf("%w: chunk %d post state root %s, chunk %d prev state root %s",
				ErrDiscontinuous, i-1, chunks[i-1].PostStateRoot, i, chunks[i].PrevStateRoot)
		}
	}
	return nil
}

// Validate re-checks every invariant of a batch, including its cached hashes.
func (me *BatchHash) Validate() error {
	if err := checkChunks(me.Chunks); err != nil {
		return err
	}
	if me.ChainID != me.Chunks[0].ChainID {
		return fmt.Errorf("%w: batch has %d, chunks have %d", ErrChainIDMismatch, me.ChainID, me.Chunks[0].ChainID)
	}
	want, err := NewBatchHash(me.Chunks)
	if err != nil {
		return err
	}
	if want.DataHash != me.DataHash || want.PublicInputHash != me.PublicInputHash {
		return ErrHashMismatch
	}
	return nil
}

func (me *BatchHash) First() *ChunkHash {
	return &me.Chunks[0]
}

func (me *BatchHash) Last() *ChunkHash {
	return &me.Chunks[len(me.Chunks)-1]
}

// DataPreimage is the concatenation of the chunk data hashes, in order.
func (me *BatchHash) DataPreimage() []byte {
	return BatchDataPreimage(me.Chunks)
}

func (me *BatchHash) PIPreimage() []byte {
	first, last := me.First(), me.Last()
	return PIPreimage(me.ChainID, first.PrevStateRoot, last.PostStateRoot, last.WithdrawRoot, me.DataHash)
}

// Preimages lists every keccak preimage the circuit proves, in absorption
// order: one per chunk, then the batch data hash, then the batch pi hash.
func (me *BatchHash) Preimages() [][]byte {
	out := make([][]byte, 0, len(me.Chunks)+2)
	for i := range me.Chunks {
		out = append(out, ChunkPIPreimage(&me.Chunks[i]))
	}
	return append(out, me.DataPreimage(), me.PIPreimage())
}

// Digests lists the keccak digests of Preimages, in the same order.
func (me *BatchHash) Digests() []common.Hash {
	out := make([]common.Hash, 0, len(me.Chunks)+2)
	for i := range me.Chunks {
		out = append(out, me.Chunks[i].PublicInputHash())
	}
	return append(out, me.DataHash, me.PublicInputHash)
}

func (me BatchHash) MarshalJSON() ([]byte, error) {
	return json.Marshal(batchHashJSON{
		ChainID:         (*hexutil.Uint64)(&me.ChainID),
		Chunks:          me.Chunks,
		DataHash:        &me.DataHash,
		PublicInputHash: &me.PublicInputHash,
	})
}

// UnmarshalJSON decodes the chunk list and derives the batch with
// NewBatchHash. Hashes present in the input must match the derived ones.
func (me *BatchHash) UnmarshalJSON(input []byte) error {
	var dec batchHashJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	b, err := NewBatchHash(dec.Chunks)
	if err != nil {
		return err
	}
	if dec.ChainID != nil && uint64(*dec.ChainID) != b.ChainID {
		return fmt.Errorf("%w: batch has %d, chunks have %d", ErrChainIDMismatch, uint64(*dec.ChainID), b.ChainID)
	}
	if (dec.DataHash != nil && *dec.DataHash != b.DataHash) || (dec.PublicInputHash != nil && *dec.PublicInputHash != b.PublicInputHash) {
		return ErrHashMismatch
	}
	*me = *b
	return nil
}

func BatchDataPreimage(chunks []ChunkHash) []byte {
	preimage := make([]byte, 0, HASH_LEN*len(chunks))
	for i := range chunks {
		preimage = append(preimage, chunks[i].DataHash.Bytes()...)
	}
	return preimage
}

// DeriveBatchDataHash is keccak(chunk_0.data_hash || ... || chunk_k-1.data_hash).
func DeriveBatchDataHash(chunks []ChunkHash) common.Hash {
	return crypto.Keccak256Hash(BatchDataPreimage(chunks))
}

// DeriveBatchPIHash is keccak(chain_id || first_prev_state_root ||
// last_post_state_root || last_withdraw_root || batch_data_hash).
func DeriveBatchPIHash(chainID uint64, firstPrev, lastPost, lastWithdraw, batchDataHash common.Hash) common.Hash {
	return crypto.Keccak256Hash(PIPreimage(chainID, firstPrev, lastPost, lastWithdraw, batchDataHash))
}
