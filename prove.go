package aggregator

import (
	"time"

	"github.com/consensys/gnark/backend"
	plonkbls12381 "github.com/consensys/gnark/backend/plonk/bls12-381"
	"github.com/consensys/gnark/backend/witness"
	cs "github.com/consensys/gnark/constraint/bls12-381"
	"github.com/consensys/gnark/logger"
)

// ProverOptions are the recursion friendly prover options, plus the
// accelerator cfg asks for.
func (me Config) ProverOptions() []backend.ProverOption {
	opts := []backend.ProverOption{OPT_PROVER}
	if me.Accelerator == "icicle" {
		opts = append(opts, backend.WithIcicleAcceleration())
	}
	return opts
}

func Prove(spr *cs.SparseR1CS, pk *plonkbls12381.ProvingKey, w witness.Witness, cfg Config) (*plonkbls12381.Proof, error) {
	log := logger.Logger().With().Str("component", "prover").Str("accelerator", cfg.Accelerator).Logger()
	start := time.Now()
	proof, err := plonkbls12381.Prove(spr, pk, w, cfg.ProverOptions()...)
	if err != nil {
		return nil, err
	}
	log.Debug().Dur("took", time.Since(start)).Msg("proof generated")
	return proof, nil
}
