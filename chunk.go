package aggregator

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ChunkHash summarizes a chunk, a list of continuous blocks, by four hashes
// obtained from the caller plus the chain id.
type ChunkHash struct {
	ChainID       uint64
	PrevStateRoot common.Hash
	PostStateRoot common.Hash
	WithdrawRoot  common.Hash
	DataHash      common.Hash
}

type chunkHashJSON struct {
	ChainID       hexutil.Uint64 `json:"chain_id"`
	PrevStateRoot common.Hash    `json:"prev_state_root"`
	PostStateRoot common.Hash    `json:"post_state_root"`
	WithdrawRoot  common.Hash    `json:"withdraw_root"`
	DataHash      common.Hash    `json:"data_hash"`
}

// ChunkHashFromBytes builds a ChunkHash, rejecting fields that are not 32 bytes.
func ChunkHashFromBytes(chainID uint64, prev, post, withdraw, data []byte) (ChunkHash, error) {
	for _, b := range [][]byte{prev, post, withdraw, data} {
		if len(b) != HASH_LEN {
			return ChunkHash{}, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidLength, len(b), HASH_LEN)
		}
	}
	return ChunkHash{
		ChainID:       chainID,
		PrevStateRoot: common.BytesToHash(prev),
		PostStateRoot: common.BytesToHash(post),
		WithdrawRoot:  common.BytesToHash(withdraw),
		DataHash:      common.BytesToHash(data),
	}, nil
}

// PublicInputHash is always derived from the other fields.
func (me *ChunkHash) PublicInputHash() common.Hash {
	return DeriveChunkPIHash(me)
}

func (me ChunkHash) MarshalJSON() ([]byte, error) {
	return json.Marshal(chunkHashJSON{
		ChainID:       hexutil.Uint64(me.ChainID),
		PrevStateRoot: me.PrevStateRoot,
		PostStateRoot: me.PostStateRoot,
		WithdrawRoot:  me.WithdrawRoot,
		DataHash:      me.DataHash,
	})
}

func (me *ChunkHash) UnmarshalJSON(input []byte) error {
	var dec chunkHashJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	*me = ChunkHash{
		ChainID:       uint64(dec.ChainID),
		PrevStateRoot: dec.PrevStateRoot,
		PostStateRoot: dec.PostStateRoot,
		WithdrawRoot:  dec.WithdrawRoot,
		DataHash:      dec.DataHash,
	}
	return nil
}

// ChainIDWord encodes the chain id as it appears in hash preimages.
func ChainIDWord(chainID uint64) [CHAIN_ID_WORD_LEN]byte {
	var word [CHAIN_ID_WORD_LEN]byte
	binary.BigEndian.PutUint64(word[CHAIN_ID_WORD_LEN-CHAIN_ID_LEN:], chainID)
	return word
}

// PIPreimage lays out chain_id || prev_state_root || post_state_root ||
// withdraw_root || data_hash.
func PIPreimage(chainID uint64, prev, post, withdraw, data common.Hash) []byte {
	word := ChainIDWord(chainID)
	preimage := make([]byte, 0, PI_PREIMAGE_LEN)
	preimage = append(preimage, word[:]...)
	preimage = append(preimage, prev.Bytes()...)
	preimage = append(preimage, post.Bytes()...)
	preimage = append(preimage, withdraw.Bytes()...)
	preimage = append(preimage, data.Bytes()...)
	return preimage
}

func ChunkPIPreimage(chunk *ChunkHash) []byte {
	return PIPreimage(chunk.ChainID, chunk.PrevStateRoot, chunk.PostStateRoot, chunk.WithdrawRoot, chunk.DataHash)
}

// DeriveChunkPIHash is keccak(chain_id || prev_state_root || post_state_root ||
// withdraw_root || data_hash).
func DeriveChunkPIHash(chunk *ChunkHash) common.Hash {
	return crypto.Keccak256Hash(ChunkPIPreimage(chunk))
}
