// native (off-circuit) keccak table functions
package keccak

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"golang.org/x/crypto/sha3"

	"github.com/eon-protocol/pi-aggregator/circuits/layout"
)

// Sum returns keccak256(preimage), the digest the table constrains.
func Sum(preimage []byte) [DIGEST_SIZE]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(preimage)
	var out [DIGEST_SIZE]byte
	h.Sum(out[:0])
	return out
}

// Pad zero-extends preimage to the rows its set reserves.
func Pad(preimage []byte) []byte {
	padded := make([]byte, RATE*layout.NumBlocks(len(preimage)))
	copy(padded, preimage)
	return padded
}

// Assign fills a table for preimages located at sets: the zero-padded
// preimage bytes followed by the digest, preimage by preimage.
func Assign(sets []layout.RowIndexSet, preimages [][]byte) (Table, error) {
	if len(sets) != len(preimages) {
		return Table{}, fmt.Errorf("%w: %d preimages, %d sets", ErrPreimageCount, len(preimages), len(sets))
	}
	cells := make([]frontend.Variable, 0, len(layout.Rows(sets)))
	for i, set := range sets {
		padded := Pad(preimages[i])
		if len(padded) != len(set.Preimage) || len(set.Digest) != DIGEST_SIZE {
			return Table{}, fmt.Errorf("%w: preimage %d", ErrPreimageTooLong, i)
		}
		for _, b := range padded {
			cells = append(cells, int(b))
		}
		digest := Sum(preimages[i])
		for _, b := range digest {
			cells = append(cells, int(b))
		}
	}
	return Table{Cells: cells}, nil
}
