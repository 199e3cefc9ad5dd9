// Centralizes the keccak table parameters shared by native and circuit code.
package keccak

import (
	"errors"

	"github.com/eon-protocol/pi-aggregator/circuits/layout"
)

const DIGEST_SIZE = layout.DigestSize
const RATE = layout.Rate

var (
	ErrRowNotInTable   = errors.New("row is not held by the keccak table")
	ErrTableSize       = errors.New("table cells do not match the layout")
	ErrPreimageCount   = errors.New("number of preimages does not match the layout")
	ErrPreimageTooLong = errors.New("preimage does not fit its located rows")
)
