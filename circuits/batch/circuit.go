// Package batch contains the circuit that aggregates the public inputs of
// many chunks into a single one.
//
// The circuit attests that
//
//  1. all hashes are computed correctly: every preimage and digest cell is
//     copied into the keccak table, which constrains digest = keccak(preimage);
//  2. the relations between hash preimages and digests hold:
//     - batch_data_hash is part of the input to compute batch_pi_hash,
//     - batch_pi_hash uses the same roots as the first and last chunk,
//     - the same data_hash is used for batch_data_hash and each chunk_pi_hash,
//     - chunks are continuous: they are linked via the state roots,
//     - all hashes use the same chain_id;
//  3. the hash data matches the public input of aggregator.NUM_PUBLIC elements.
package batch

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark/frontend"

	aggregator "github.com/eon-protocol/pi-aggregator"
	"github.com/eon-protocol/pi-aggregator/circuits/keccak"
	"github.com/eon-protocol/pi-aggregator/circuits/layout"
)

// Byte offsets inside a 160-byte pi hash preimage.
const (
	offChainID  = aggregator.CHAIN_ID_WORD_LEN - aggregator.CHAIN_ID_LEN
	offPrev     = aggregator.CHAIN_ID_WORD_LEN
	offPost     = offPrev + aggregator.HASH_LEN
	offWithdraw = offPost + aggregator.HASH_LEN
	offData     = offWithdraw + aggregator.HASH_LEN
)

// Byte offsets inside the public input.
const (
	piPrev     = 0
	piPost     = piPrev + aggregator.HASH_LEN
	piWithdraw = piPost + aggregator.HASH_LEN
	piHash     = piWithdraw + aggregator.HASH_LEN
	piChainID  = piHash + aggregator.HASH_LEN
)

var (
	ErrChunkCount = errors.New("batch data preimage does not match the chunk count")
)

// Chunk holds the cells of one chunk pi hash computation.
type Chunk struct {
	Preimage [aggregator.PI_PREIMAGE_LEN]frontend.Variable
	Digest   [aggregator.HASH_LEN]frontend.Variable
}

type Circuit struct {
	PublicInput [aggregator.NUM_PUBLIC]frontend.Variable `gnark:",public"`

	Chunks            []Chunk
	BatchDataPreimage []frontend.Variable
	BatchDataDigest   [aggregator.HASH_LEN]frontend.Variable
	BatchPIPreimage   [aggregator.PI_PREIMAGE_LEN]frontend.Variable
	BatchPIDigest     [aggregator.HASH_LEN]frontend.Variable

	Table keccak.Table

	Layout  layout.Config `gnark:"-"`
	NumRows int           `gnark:"-"`
}

// PreimageLengths lists the preimage sizes of a batch of numChunks chunks, in
// absorption order: the chunk pi hashes, the batch data hash, the batch pi hash.
func PreimageLengths(numChunks int) []int {
	lengths := make([]int, 0, numChunks+2)
	for i := 0; i < numChunks; i++ {
		lengths = append(lengths, aggregator.PI_PREIMAGE_LEN)
	}
	return append(lengths, aggregator.HASH_LEN*numChunks, aggregator.PI_PREIMAGE_LEN)
}

func (c *Circuit) preimages() [][]frontend.Variable {
	out := make([][]frontend.Variable, 0, len(c.Chunks)+2)
	for i := range c.Chunks {
		out = append(out, c.Chunks[i].Preimage[:])
	}
	return append(out, c.BatchDataPreimage, c.BatchPIPreimage[:])
}

func (c *Circuit) digests() [][]frontend.Variable {
	out := make([][]frontend.Variable, 0, len(c.Chunks)+2)
	for i := range c.Chunks {
		out = append(out, c.Chunks[i].Digest[:])
	}
	return append(out, c.BatchDataDigest[:], c.BatchPIDigest[:])
}

func assertEqualBytes(api frontend.API, a, b []frontend.Variable) {
	for i := range a {
		api.AssertIsEqual(a[i], b[i])
	}
}

func (c *Circuit) Define(api frontend.API) error {
	k := len(c.Chunks)
	if k == 0 {
		return aggregator.ErrNoChunks
	}
	if len(c.BatchDataPreimage) != aggregator.HASH_LEN*k {
		return fmt.Errorf("%w: %d bytes for %d chunks", ErrChunkCount, len(c.BatchDataPreimage), k)
	}

	// 1. the preimage list fixes the absorption blocks
	lengths := PreimageLengths(k)
	if err := c.Layout.CheckCapacity(lengths, c.NumRows); err != nil {
		return err
	}

	// 2. one allocation over the whole list
	sets, err := c.Layout.Locate(lengths)
	if err != nil {
		return err
	}

	// 3. hashes are computed correctly
	table, err := c.Table.Bind(sets)
	if err != nil {
		return err
	}
	if err := table.Constrain(api, lengths); err != nil {
		return err
	}
	preimages, digests := c.preimages(), c.digests()
	for i, set := range sets {
		for j := range preimages[i] {
			cell, err := table.At(set.Preimage[j])
			if err != nil {
				return err
			}
			api.AssertIsEqual(preimages[i][j], cell)
		}
		for j := range digests[i] {
			cell, err := table.At(set.Digest[j])
			if err != nil {
				return err
			}
			api.AssertIsEqual(digests[i][j], cell)
		}
	}

	// 4. relations between preimages and digests
	first, last := &c.Chunks[0], &c.Chunks[k-1]
	for i := range c.Chunks {
		assertEqualBytes(api,
			c.BatchDataPreimage[aggregator.HASH_LEN*i:aggregator.HASH_LEN*(i+1)],
			c.Chunks[i].Preimage[offData:offData+aggregator.HASH_LEN])
	}
	assertEqualBytes(api, c.BatchPIPreimage[offData:offData+aggregator.HASH_LEN], c.BatchDataDigest[:])
	assertEqualBytes(api, c.BatchPIPreimage[offPrev:offPrev+aggregator.HASH_LEN], first.Preimage[offPrev:offPrev+aggregator.HASH_LEN])
	assertEqualBytes(api, c.BatchPIPreimage[offPost:offPost+aggregator.HASH_LEN], last.Preimage[offPost:offPost+aggregator.HASH_LEN])
	assertEqualBytes(api, c.BatchPIPreimage[offWithdraw:offWithdraw+aggregator.HASH_LEN], last.Preimage[offWithdraw:offWithdraw+aggregator.HASH_LEN])

	// all hashes use the chain id cells of the batch pi preimage
	chainID := c.BatchPIPreimage[offChainID:aggregator.CHAIN_ID_WORD_LEN]
	for _, b := range c.BatchPIPreimage[:offChainID] {
		api.AssertIsEqual(b, 0)
	}
	for i := range c.Chunks {
		for _, b := range c.Chunks[i].Preimage[:offChainID] {
			api.AssertIsEqual(b, 0)
		}
		assertEqualBytes(api, c.Chunks[i].Preimage[offChainID:aggregator.CHAIN_ID_WORD_LEN], chainID)
	}

	// 5. chunks are continuous
	for i := 0; i+1 < k; i++ {
		assertEqualBytes(api,
			c.Chunks[i].Preimage[offPost:offPost+aggregator.HASH_LEN],
			c.Chunks[i+1].Preimage[offPrev:offPrev+aggregator.HASH_LEN])
	}

	// 6. public input
	assertEqualBytes(api, c.PublicInput[piPrev:piPrev+aggregator.HASH_LEN], first.Preimage[offPrev:offPrev+aggregator.HASH_LEN])
	assertEqualBytes(api, c.PublicInput[piPost:piPost+aggregator.HASH_LEN], last.Preimage[offPost:offPost+aggregator.HASH_LEN])
	assertEqualBytes(api, c.PublicInput[piWithdraw:piWithdraw+aggregator.HASH_LEN], last.Preimage[offWithdraw:offWithdraw+aggregator.HASH_LEN])
	assertEqualBytes(api, c.PublicInput[piHash:piHash+aggregator.HASH_LEN], c.BatchPIDigest[:])
	assertEqualBytes(api, c.PublicInput[piChainID:], chainID)
	return nil
}
