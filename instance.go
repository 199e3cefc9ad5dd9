package aggregator

import (
	"encoding/binary"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark/frontend"
	"github.com/ethereum/go-ethereum/common"
)

// PublicInput is everything the verifier of the batch proof observes.
// It is encoded as NUM_PUBLIC field elements, one byte per element:
//
//	first_chunk_prev_state_root (32) | last_chunk_post_state_root (32) |
//	last_chunk_withdraw_root (32) | batch_public_input_hash (32) | chain_id (8, big-endian)
type PublicInput struct {
	PrevStateRoot   common.Hash
	PostStateRoot   common.Hash
	WithdrawRoot    common.Hash
	PublicInputHash common.Hash
	ChainID         uint64
}

func NewPublicInput(batch *BatchHash) PublicInput {
	return PublicInput{
		PrevStateRoot:   batch.First().PrevStateRoot,
		PostStateRoot:   batch.Last().PostStateRoot,
		WithdrawRoot:    batch.Last().WithdrawRoot,
		PublicInputHash: batch.PublicInputHash,
		ChainID:         batch.ChainID,
	}
}

// NumInstance is the instance column sizes the proving backend expects.
func NumInstance() []int {
	return []int{NUM_PUBLIC}
}

// Bytes is the raw byte sequence behind the instance.
func (me PublicInput) Bytes() []byte {
	out := make([]byte, 0, NUM_PUBLIC)
	out = append(out, me.PrevStateRoot.Bytes()...)
	out = append(out, me.PostStateRoot.Bytes()...)
	out = append(out, me.WithdrawRoot.Bytes()...)
	out = append(out, me.PublicInputHash.Bytes()...)
	return binary.BigEndian.AppendUint64(out, me.ChainID)
}

func (me PublicInput) Instance() []fr.Element {
	raw := me.Bytes()
	out := make([]fr.Element, len(raw))
	for i, b := range raw {
		out[i].SetUint64(uint64(b))
	}
	return out
}

// Assignment returns the public input as circuit witness values.
func (me PublicInput) Assignment() [NUM_PUBLIC]frontend.Variable {
	var out [NUM_PUBLIC]frontend.Variable
	for i, b := range me.Bytes() {
		out[i] = int(b)
	}
	return out
}

// ToInstance encodes the public input of a batch.
func ToInstance(batch *BatchHash) []fr.Element {
	return NewPublicInput(batch).Instance()
}

// ParseInstance decodes NUM_PUBLIC field elements, each holding one byte.
func ParseInstance(instance []fr.Element) (PublicInput, error) {
	if len(instance) != NUM_PUBLIC {
		return PublicInput{}, fmt.Errorf("%w: got %d elements, want %d", ErrInvalidInstance, len(instance), NUM_PUBLIC)
	}
	raw := make([]byte, NUM_PUBLIC)
	for i := range instance {
		if !instance[i].IsUint64() || instance[i].Uint64() > 0xff {
			return PublicInput{}, fmt.Errorf("%w: element %d is not a byte", ErrInvalidInstance, i)
		}
		raw[i] = byte(instance[i].Uint64())
	}
	return PublicInput{
		PrevStateRoot:   common.BytesToHash(raw[0:32]),
		PostStateRoot:   common.BytesToHash(raw[32:64]),
		WithdrawRoot:    common.BytesToHash(raw[64:96]),
		PublicInputHash: common.BytesToHash(raw[96:128]),
		ChainID:         binary.BigEndian.Uint64(raw[128:]),
	}, nil
}
