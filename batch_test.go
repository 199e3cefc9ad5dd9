package aggregator

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestNewBatchHash(t *testing.T) {
	chunks := randomChunks(t, 5, 3)
	batch, err := NewBatchHash(chunks)
	require.NoError(t, err)
	require.NoError(t, batch.Validate())

	require.Equal(t, uint64(5), batch.ChainID)
	require.Equal(t, crypto.Keccak256Hash(chunks[0].DataHash[:], chunks[1].DataHash[:], chunks[2].DataHash[:]), batch.DataHash)
	require.Equal(t,
		DeriveBatchPIHash(5, chunks[0].PrevStateRoot, chunks[2].PostStateRoot, chunks[2].WithdrawRoot, batch.DataHash),
		batch.PublicInputHash)

	// the batch owns its chunks
	chunks[0].DataHash[0] ^= 1
	require.NoError(t, batch.Validate())
}

func TestNewBatchHash_Errors(t *testing.T) {
	_, err := NewBatchHash(nil)
	require.ErrorIs(t, err, ErrNoChunks)

	chunks := randomChunks(t, 1, 3)
	chunks[2].ChainID = 2
	_, err = NewBatchHash(chunks)
	require.ErrorIs(t, err, ErrChainIDMismatch)

	chunks = randomChunks(t, 1, 3)
	chunks[2].PrevStateRoot = chunks[0].PostStateRoot
	_, err = NewBatchHash(chunks)
	require.ErrorIs(t, err, ErrDiscontinuous)
}

func TestBatchHash_SingleChunk(t *testing.T) {
	chunk := randomChunk(t, 1, randomHash(t))
	batch, err := NewBatchHash([]ChunkHash{chunk})
	require.NoError(t, err)

	require.Equal(t, crypto.Keccak256Hash(chunk.DataHash[:]), batch.DataHash)
	// a one-chunk batch is not the chunk: the batch pi hash commits to the
	// batch data hash instead of the chunk data hash
	require.NotEqual(t, chunk.PublicInputHash(), batch.PublicInputHash)
}

func TestBatchHash_SplitIdempotence(t *testing.T) {
	chunks := randomChunks(t, 1, 4)
	whole, err := NewBatchHash(chunks)
	require.NoError(t, err)
	again, err := NewBatchHash(whole.Chunks)
	require.NoError(t, err)
	require.Equal(t, whole, again)

	head, err := NewBatchHash(chunks[:2])
	require.NoError(t, err)
	require.Equal(t, whole.First().PrevStateRoot, head.First().PrevStateRoot)
	require.NotEqual(t, whole.PublicInputHash, head.PublicInputHash)
}

func TestBatchHash_PreimagesAndDigests(t *testing.T) {
	batch, err := NewBatchHash(randomChunks(t, 1, 3))
	require.NoError(t, err)

	preimages, digests := batch.Preimages(), batch.Digests()
	require.Len(t, preimages, 5)
	require.Len(t, digests, 5)
	require.Len(t, preimages[3], 3*HASH_LEN)
	for i := range preimages {
		require.Equal(t, crypto.Keccak256Hash(preimages[i]), digests[i], "preimage %d", i)
	}
	require.Equal(t, batch.PIPreimage(), preimages[4])
}

func TestBatchHash_Validate(t *testing.T) {
	batch, err := NewBatchHash(randomChunks(t, 1, 2))
	require.NoError(t, err)

	tampered := *batch
	tampered.DataHash[0] ^= 1
	require.ErrorIs(t, tampered.Validate(), ErrHashMismatch)

	tampered = *batch
	tampered.ChainID = 9
	require.ErrorIs(t, tampered.Validate(), ErrChainIDMismatch)

	require.ErrorIs(t, (&BatchHash{}).Validate(), ErrNoChunks)
}

func TestBatchHash_JSON(t *testing.T) {
	batch, err := NewBatchHash(randomChunks(t, 1, 2))
	require.NoError(t, err)

	raw, err := json.Marshal(batch)
	require.NoError(t, err)
	var decoded BatchHash
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, *batch, decoded)

	// hashes are optional and derived when absent
	var bare struct {
		Chunks []ChunkHash `json:"chunks"`
	}
	bare.Chunks = batch.Chunks
	raw, err = json.Marshal(bare)
	require.NoError(t, err)
	decoded = BatchHash{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, batch.PublicInputHash, decoded.PublicInputHash)

	// hashes that disagree with the chunks are rejected
	wrong := *batch
	wrong.PublicInputHash[0] ^= 1
	raw, err = json.Marshal(wrong)
	require.NoError(t, err)
	require.ErrorIs(t, json.Unmarshal(raw, &decoded), ErrHashMismatch)
}

func TestBatchHash_JSONChainID(t *testing.T) {
	batch, err := NewBatchHash(randomChunks(t, 1, 2))
	require.NoError(t, err)

	// an explicit zero is a chain id, not a missing field
	zero := *batch
	zero.ChainID = 0
	raw, err := json.Marshal(zero)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"chain_id":"0x0"`)
	var decoded BatchHash
	require.ErrorIs(t, json.Unmarshal(raw, &decoded), ErrChainIDMismatch)

	// chunks of chain 0 decode with or without the field
	chunks := randomChunks(t, 0, 1)
	raw, err = json.Marshal(struct {
		ChainID string      `json:"chain_id"`
		Chunks  []ChunkHash `json:"chunks"`
	}{"0x0", chunks})
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, uint64(0), decoded.ChainID)
}
