// Package keccak provides the keccak table gadget for gnark circuits.
//
// The table is a column of byte cells addressed by physical row, laid out by
// package layout. For every preimage placed in it, the gadget constrains the
// digest rows to keccak256 of the preimage rows. Callers copy their own cells
// into the table through At and inherit the digest guarantee.
package keccak

import (
	"fmt"
	"slices"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/sha3"
	"github.com/consensys/gnark/std/math/uints"

	"github.com/eon-protocol/pi-aggregator/circuits/layout"
)

// Table holds one cell per located row, in table order.
type Table struct {
	Cells []frontend.Variable
}

// View is a table bound to the layout its cells were allocated for.
type View struct {
	table *Table
	sets  []layout.RowIndexSet
	rows  []int
}

// NewTable returns an unassigned table sized for sets.
func NewTable(sets []layout.RowIndexSet) Table {
	return Table{Cells: make([]frontend.Variable, len(layout.Rows(sets)))}
}

// Bind attaches the layout to the table.
func (me *Table) Bind(sets []layout.RowIndexSet) (*View, error) {
	rows := layout.Rows(sets)
	if len(rows) != len(me.Cells) {
		return nil, fmt.Errorf("%w: %d cells for %d rows", ErrTableSize, len(me.Cells), len(rows))
	}
	return &View{table: me, sets: sets, rows: rows}, nil
}

// At returns the cell stored at the given physical row.
func (v *View) At(row int) (frontend.Variable, error) {
	i, ok := slices.BinarySearch(v.rows, row)
	if !ok {
		return nil, fmt.Errorf("%w: row %d", ErrRowNotInTable, row)
	}
	return v.table.Cells[i], nil
}

func (v *View) cells(rows []int) ([]frontend.Variable, error) {
	out := make([]frontend.Variable, len(rows))
	for i, row := range rows {
		c, err := v.At(row)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// Constrain asserts, for preimage i of lengths[i] bytes, that its digest rows
// hold keccak256 of its first lengths[i] preimage rows, that every preimage
// row is a byte, and that the zero padding rows are zero.
func (v *View) Constrain(api frontend.API, lengths []int) error {
	if len(lengths) != len(v.sets) {
		return fmt.Errorf("%w: %d lengths, %d sets", ErrPreimageCount, len(lengths), len(v.sets))
	}
	uapi, err := uints.New[uints.U64](api)
	if err != nil {
		return fmt.Errorf("new uints api: %w", err)
	}
	for i, set := range v.sets {
		if lengths[i] > len(set.Preimage) {
			return fmt.Errorf("%w: preimage %d has %d bytes, %d rows", ErrPreimageTooLong, i, lengths[i], len(set.Preimage))
		}
		preimage, err := v.cells(set.Preimage)
		if err != nil {
			return err
		}
		digest, err := v.cells(set.Digest)
		if err != nil {
			return err
		}

		in := make([]uints.U8, lengths[i])
		for j := range in {
			in[j] = uapi.ByteValueOf(preimage[j])
		}
		for _, c := range preimage[lengths[i]:] {
			api.AssertIsEqual(c, 0)
		}

		h, err := sha3.NewLegacyKeccak256(api)
		if err != nil {
			return fmt.Errorf("new keccak256: %w", err)
		}
		h.Write(in)
		sum := h.Sum()
		if len(sum) != len(digest) {
			return fmt.Errorf("%w: digest of %d bytes, %d rows", ErrTableSize, len(sum), len(digest))
		}
		for j := range digest {
			uapi.ByteAssertEq(sum[j], uapi.ByteValueOf(digest[j]))
		}
	}
	return nil
}
