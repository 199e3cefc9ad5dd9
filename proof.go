package aggregator

import (
	"errors"
	"io"

	"github.com/consensys/gnark/backend/plonk"
	plonkbls12381 "github.com/consensys/gnark/backend/plonk/bls12-381"
)

var ErrInvalidProof = errors.New("invalid proof")

// Proof is a PLONK proof over BLS12-381.
type Proof struct {
	proof plonkbls12381.Proof
}

func (me *Proof) ToGnarkProof() plonk.Proof {
	return &me.proof
}

func (me *Proof) FromGnarkProof(proof plonk.Proof) error {
	gp, ok := proof.(*plonkbls12381.Proof)
	if !ok {
		return ErrInvalidProof
	}
	if len(gp.BatchedProof.ClaimedValues) != 6+len(gp.Bsb22Commitments) {
		return errors.New("invalid number of claimed values")
	}
	me.proof = *gp
	return nil
}

func (me *Proof) WriteTo(w io.Writer) (int64, error) {
	return me.proof.WriteTo(w)
}

func (me *Proof) ReadFrom(r io.Reader) (int64, error) {
	return me.proof.ReadFrom(r)
}
