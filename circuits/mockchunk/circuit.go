// Package mockchunk provides a minimal chunk circuit exposing the instance
// contract every provable circuit of the batch family satisfies: the chunk
// data hash followed by the chunk public input hash, one byte per element.
package mockchunk

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/sha3"
	"github.com/consensys/gnark/std/math/uints"

	aggregator "github.com/eon-protocol/pi-aggregator"
)

const NUM_INSTANCE = 2 * aggregator.HASH_LEN

// Circuit recomputes the chunk pi hash from the chunk fields.
type Circuit struct {
	// data_hash || public_input_hash
	Instance [NUM_INSTANCE]frontend.Variable `gnark:",public"`

	ChainIDWord   [aggregator.CHAIN_ID_WORD_LEN]frontend.Variable
	PrevStateRoot [aggregator.HASH_LEN]frontend.Variable
	PostStateRoot [aggregator.HASH_LEN]frontend.Variable
	WithdrawRoot  [aggregator.HASH_LEN]frontend.Variable
}

// NumInstance is the instance column sizes of the chunk circuit.
func NumInstance() []int {
	return []int{NUM_INSTANCE}
}

// Instances returns data hash || public input hash as field elements.
func Instances(chunk *aggregator.ChunkHash) [][]fr.Element {
	pi := chunk.PublicInputHash()
	raw := append(chunk.DataHash.Bytes(), pi.Bytes()...)
	out := make([]fr.Element, len(raw))
	for i, b := range raw {
		out[i].SetUint64(uint64(b))
	}
	return [][]fr.Element{out}
}

// NewAssignment returns the witness of chunk.
func NewAssignment(chunk *aggregator.ChunkHash) *Circuit {
	var c Circuit
	for i, v := range Instances(chunk)[0] {
		c.Instance[i] = v.Uint64()
	}
	word := aggregator.ChainIDWord(chunk.ChainID)
	for i := range word {
		c.ChainIDWord[i] = int(word[i])
	}
	for i := 0; i < aggregator.HASH_LEN; i++ {
		c.PrevStateRoot[i] = int(chunk.PrevStateRoot[i])
		c.PostStateRoot[i] = int(chunk.PostStateRoot[i])
		c.WithdrawRoot[i] = int(chunk.WithdrawRoot[i])
	}
	return &c
}

func (me *Circuit) Define(api frontend.API) error {
	uapi, err := uints.New[uints.U64](api)
	if err != nil {
		return fmt.Errorf("new uints api: %w", err)
	}
	h, err := sha3.NewLegacyKeccak256(api)
	if err != nil {
		return fmt.Errorf("new keccak256: %w", err)
	}

	preimage := make([]uints.U8, 0, aggregator.PI_PREIMAGE_LEN)
	for _, part := range [][]frontend.Variable{me.ChainIDWord[:], me.PrevStateRoot[:], me.PostStateRoot[:], me.WithdrawRoot[:], me.Instance[:aggregator.HASH_LEN]} {
		for _, b := range part {
			preimage = append(preimage, uapi.ByteValueOf(b))
		}
	}
	h.Write(preimage)
	sum := h.Sum()
	for i := range sum {
		uapi.ByteAssertEq(sum[i], uapi.ByteValueOf(me.Instance[aggregator.HASH_LEN+i]))
	}
	return nil
}
