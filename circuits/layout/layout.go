// Package layout maps keccak preimages onto the rows of the keccak
// sub-circuit table.
//
// Preimages are absorbed back to back into one continuous table region. Each
// absorption block of Rate bytes takes BlockHeight rows: RowsPerRound rows for
// each of the NumRounds+1 keccak rounds. The bytes of word j of a block live in
// rows j*RowsPerRound+k (k < WordSize), shifted by one round of header rows.
// The 32 digest bytes of a preimage sit at the end of its last block.
package layout

import (
	"errors"
	"fmt"
)

const DefaultRowsPerRound = 12
const NumRounds = 24
const Rate = 136
const WordSize = 8
const NumWords = Rate / WordSize
const DigestWords = 4
const DigestSize = DigestWords * WordSize

// Rows at the table edges cannot carry witness data.
const unusableBlocks = 2

var (
	ErrInvalidRowsPerRound = errors.New("rows per round must hold a full word")
	ErrLayoutNotAscending  = errors.New("row indices are not strictly ascending")
	ErrCapacityExceeded    = errors.New("preimages do not fit in the keccak table")
	ErrNegativeLength      = errors.New("negative preimage length")
)

// Config holds the tunable geometry of the keccak table.
type Config struct {
	RowsPerRound int
}

// RowIndexSet locates one preimage inside the table.
type RowIndexSet struct {
	// Preimage rows, Rate bytes per absorption block, zero padding included.
	Preimage []int
	// Digest rows, DigestSize bytes on the preimage's last block.
	Digest []int
}

func DefaultConfig() Config {
	return Config{RowsPerRound: DefaultRowsPerRound}
}

func NewConfig(rowsPerRound int) (Config, error) {
	cfg := Config{RowsPerRound: rowsPerRound}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (me Config) Validate() error {
	if me.RowsPerRound < WordSize {
		return fmt.Errorf("%w: got %d, need at least %d", ErrInvalidRowsPerRound, me.RowsPerRound, WordSize)
	}
	return nil
}

// BlockHeight is the number of rows one absorption block occupies.
func (me Config) BlockHeight() int {
	return (NumRounds + 1) * me.RowsPerRound
}

func (me Config) headerOffset() int {
	return me.RowsPerRound
}

func (me Config) digestOffset() int {
	return me.BlockHeight() - DigestWords*me.RowsPerRound
}

// NumBlocks always reserves the block after the last full multiple of Rate,
// so the padding byte has room even when the preimage ends on a boundary.
func NumBlocks(length int) int {
	return 1 + length/Rate
}

// Blocks is the number of absorption blocks all preimages take together.
func Blocks(lengths []int) int {
	n := 0
	for _, l := range lengths {
		n += NumBlocks(l)
	}
	return n
}

// Capacity returns how many absorption blocks a table of numRows rows hosts.
func (me Config) Capacity(numRows int) (int, bool) {
	if numRows <= 0 {
		return 0, false
	}
	return max(numRows/me.BlockHeight()-unusableBlocks, 0), true
}

// CheckCapacity fails when the preimages need more blocks than numRows hosts.
func (me Config) CheckCapacity(lengths []int, numRows int) error {
	need := Blocks(lengths)
	capacity, ok := me.Capacity(numRows)
	if !ok || need > capacity {
		return fmt.Errorf("%w: need %d blocks, table of %d rows hosts %d", ErrCapacityExceeded, need, numRows, capacity)
	}
	return nil
}

// Locate assigns table rows to preimages of the given lengths, in order.
func (me Config) Locate(lengths []int) ([]RowIndexSet, error) {
	if err := me.Validate(); err != nil {
		return nil, err
	}
	height := me.BlockHeight()
	sets := make([]RowIndexSet, 0, len(lengths))
	round := 0
	for _, length := range lengths {
		if length < 0 {
			return nil, ErrNegativeLength
		}
		blocks := NumBlocks(length)
		set := RowIndexSet{
			Preimage: make([]int, 0, blocks*Rate),
			Digest:   make([]int, 0, DigestSize),
		}
		for i := 0; i < blocks; i++ {
			base := round * height
			for j := 0; j < NumWords; j++ {
				for k := 0; k < WordSize; k++ {
					set.Preimage = append(set.Preimage, base+j*me.RowsPerRound+k+me.headerOffset())
				}
			}
			if i == blocks-1 {
				for j := 0; j < DigestWords; j++ {
					for k := 0; k < WordSize; k++ {
						set.Digest = append(set.Digest, base+j*me.RowsPerRound+k+me.digestOffset())
					}
				}
			}
			round++
		}
		sets = append(sets, set)
	}

	preimage, digest := Flatten(sets)
	if !isAscending(preimage) || !isAscending(digest) || !isAscending(Rows(sets)) {
		return nil, ErrLayoutNotAscending
	}
	return sets, nil
}

// LocatePreimages is Locate over the lengths of the given preimages.
func (me Config) LocatePreimages(preimages [][]byte) ([]RowIndexSet, error) {
	lengths := make([]int, len(preimages))
	for i, p := range preimages {
		lengths[i] = len(p)
	}
	return me.Locate(lengths)
}

// Flatten concatenates the preimage and digest rows of all sets.
func Flatten(sets []RowIndexSet) (preimage []int, digest []int) {
	for _, s := range sets {
		preimage = append(preimage, s.Preimage...)
		digest = append(digest, s.Digest...)
	}
	return
}

// Rows lists every row the sets touch, in table order: each preimage's
// absorbed bytes followed by its digest.
func Rows(sets []RowIndexSet) []int {
	n := 0
	for _, s := range sets {
		n += len(s.Preimage) + len(s.Digest)
	}
	rows := make([]int, 0, n)
	for _, s := range sets {
		rows = append(rows, s.Preimage...)
		rows = append(rows, s.Digest...)
	}
	return rows
}

func isAscending(a []int) bool {
	for i := 1; i < len(a); i++ {
		if a[i] <= a[i-1] {
			return false
		}
	}
	return true
}
