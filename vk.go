package aggregator

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"math/bits"
	"sync"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fp"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/poseidon2"
	"github.com/consensys/gnark/backend/plonk"
	plonkbls12381 "github.com/consensys/gnark/backend/plonk/bls12-381"
	"github.com/consensys/gnark/backend/witness"
)

type Vk struct {
	vk plonkbls12381.VerifyingKey
}

func (me *Vk) FromGnarkVerifyingKey(vk plonk.VerifyingKey) error {
	cvk, ok := vk.(*plonkbls12381.VerifyingKey)
	if !ok {
		return errors.New("vk is not over bls12-381")
	}
	if bits.OnesCount64(cvk.Size) != 1 {
		return errors.New("vk.size should be power of 2")
	}
	if len(cvk.Qcp) != len(cvk.CommitmentConstraintIndexes) {
		return errors.New("invalid number of commitments")
	}
	me.vk = *cvk
	return nil
}

// NumPublic is the number of public field elements a proof is checked against.
func (me *Vk) NumPublic() int {
	return int(me.vk.NbPublicVariables)
}

// Verify checks proof against the public values, in circuit declaration order.
func (me *Vk) Verify(proof *Proof, publics []fr.Element) error {
	if len(publics) != me.NumPublic() {
		return fmt.Errorf("%w: got %d public values, vk expects %d", ErrInvalidInstance, len(publics), me.NumPublic())
	}
	w, err := witness.New(FIELD)
	if err != nil {
		return err
	}
	values := make(chan any, len(publics))
	for _, v := range publics {
		values <- v
	}
	close(values)
	if err := w.Fill(len(publics), 0, values); err != nil {
		return fmt.Errorf("failed to fill witness: %w", err)
	}
	return plonk.Verify(proof.ToGnarkProof(), &me.vk, w, OPT_VERIFIER)
}

// CircuitID pins the circuit: a poseidon2 digest of the selector and
// permutation commitments, the commitment indexes, the public input count and
// the domain size.
func (me *Vk) CircuitID() fr.Element {
	points := []bls12381.G1Affine{me.vk.S[0], me.vk.S[1], me.vk.S[2], me.vk.Ql, me.vk.Qr, me.vk.Qm, me.vk.Qo, me.vk.Qk}
	points = append(points, me.vk.Qcp...)
	vals := make([]fr.Element, 0, len(points)+len(me.vk.CommitmentConstraintIndexes))
	for _, p := range points {
		vals = append(vals, hashPoint(p))
	}
	for _, ci := range me.vk.CommitmentConstraintIndexes {
		vals = append(vals, fr.NewElement(ci))
	}
	sz := uint64(bits.TrailingZeros64(me.vk.Size))
	return hashCompress(hashSum(vals...), hashCompress(fr.NewElement(me.vk.NbPublicVariables), fr.NewElement(sz)))
}

var permutation = sync.OnceValue(func() *poseidon2.Permutation {
	return poseidon2.NewPermutationWithSeed(HASH_T, HASH_RF, HASH_RP, HASH_SEED)
})

// hashCompress is the poseidon2 compression of two elements, feed-forward on y.
func hashCompress(x, y fr.Element) fr.Element {
	state := [HASH_T]fr.Element{x, y}
	if err := permutation().Permutation(state[:]); err != nil {
		panic(err)
	}
	state[1].Add(&state[1], &y)
	return state[1]
}

func hashSum(vals ...fr.Element) fr.Element {
	var acc fr.Element
	for _, v := range vals {
		acc = hashCompress(acc, v)
	}
	return acc
}

// hashPoint digests both coordinates of p, each split into quotient and
// remainder modulo the scalar field.
func hashPoint(p bls12381.G1Affine) fr.Element {
	var limbs [4]fr.Element
	for i, c := range []*fp.Element{&p.X, &p.Y} {
		var q, r big.Int
		c.BigInt(&q)
		q.DivMod(&q, fr.Modulus(), &r)
		limbs[2*i].SetBigInt(&q)
		limbs[2*i+1].SetBigInt(&r)
	}
	return hashCompress(hashCompress(limbs[0], limbs[1]), hashCompress(limbs[2], limbs[3]))
}

func (me *Vk) WriteTo(w io.Writer) (int64, error) {
	return me.vk.WriteTo(w)
}

func (me *Vk) ReadFrom(r io.Reader) (int64, error) {
	return me.vk.ReadFrom(r)
}
