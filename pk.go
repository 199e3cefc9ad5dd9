package aggregator

import (
	"errors"
	"io"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark/backend/plonk"
	plonkbls12381 "github.com/consensys/gnark/backend/plonk/bls12-381"
	"github.com/consensys/gnark/constraint"
	csbls12381 "github.com/consensys/gnark/constraint/bls12-381"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/scs"
	"github.com/consensys/gnark/logger"
)

// Pk holds a compiled circuit together with its proving key.
type Pk struct {
	ccs csbls12381.SparseR1CS
	pk  plonkbls12381.ProvingKey
	cfg Config
}

func (me *Pk) Compile(circuit frontend.Circuit, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := logger.Logger().With().Str("component", "pk").Logger()
	start := time.Now()
	ccs, err := frontend.Compile(FIELD, scs.NewBuilder, circuit)
	if err != nil {
		return err
	}
	log.Info().Int("constraints", ccs.GetNbConstraints()).Dur("took", time.Since(start)).Msg("circuit compiled")
	if err := cfg.CheckCircuitSize(ccs); err != nil {
		return err
	}
	srsc, srsl, err := ReadSRS(ccs, cfg)
	if err != nil {
		return err
	}
	ipk, _, err := plonk.Setup(ccs, srsc, srsl)
	if err != nil {
		return err
	}
	me.cfg = cfg
	return me.FromGnarkConstraintSystemAndProvingKey(ccs, ipk)
}

// Configure sets the prover options of a key read back with ReadFrom.
func (me *Pk) Configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	me.cfg = cfg
	return nil
}

func (me *Pk) Vk() Vk {
	return Vk{vk: *me.pk.Vk}
}

func (me *Pk) FromGnarkConstraintSystemAndProvingKey(ccs constraint.ConstraintSystem, pk plonk.ProvingKey) error {
	cs, ok := ccs.(*csbls12381.SparseR1CS)
	if !ok {
		return errors.New("constraint system is not a bls12-381 plonk system")
	}
	cpk, ok := pk.(*plonkbls12381.ProvingKey)
	if !ok {
		return errors.New("proving key is not over bls12-381")
	}
	var vk Vk
	if err := vk.FromGnarkVerifyingKey(cpk.Vk); err != nil {
		return err
	}
	me.ccs = *cs
	me.pk = *cpk
	return nil
}

// Prove returns the public values of assignment and the proof.
func (me *Pk) Prove(assignment frontend.Circuit) ([]fr.Element, *Proof, error) {
	witness, err := frontend.NewWitness(assignment, FIELD)
	if err != nil {
		return nil, nil, err
	}
	gp, err := Prove(&me.ccs, &me.pk, witness, me.cfg)
	if err != nil {
		return nil, nil, err
	}
	var proof Proof
	if err := proof.FromGnarkProof(gp); err != nil {
		return nil, nil, err
	}
	public, err := witness.Public()
	if err != nil {
		return nil, nil, err
	}
	return public.Vector().(fr.Vector), &proof, nil
}

func (me *Pk) WriteTo(w io.Writer) (int64, error) {
	if n, err := me.ccs.WriteTo(w); err != nil {
		return n, err
	} else {
		m, err := me.pk.WriteTo(w)
		return m + n, err
	}
}

func (me *Pk) ReadFrom(r io.Reader) (int64, error) {
	if n, err := me.ccs.ReadFrom(r); err != nil {
		return n, err
	} else {
		m, err := me.pk.ReadFrom(r)
		return m + n, err
	}
}
