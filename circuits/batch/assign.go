package batch

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/logger"

	aggregator "github.com/eon-protocol/pi-aggregator"
	"github.com/eon-protocol/pi-aggregator/circuits/keccak"
	"github.com/eon-protocol/pi-aggregator/circuits/layout"
)

// NewCircuit returns the placeholder circuit for batches of numChunks chunks.
// It fails before any constraint exists if the preimages do not fit the table.
func NewCircuit(numChunks int, cfg aggregator.Config) (*Circuit, error) {
	sets, err := locate(numChunks, cfg)
	if err != nil {
		return nil, err
	}
	return &Circuit{
		Chunks:            make([]Chunk, numChunks),
		BatchDataPreimage: make([]frontend.Variable, aggregator.HASH_LEN*numChunks),
		Table:             keccak.NewTable(sets),
		Layout:            cfg.Layout(),
		NumRows:           cfg.NumRows(),
	}, nil
}

// NewAssignment returns the witness proving batch. Continuity and chain id
// are enforced by the constraints, not checked here.
func NewAssignment(batch *aggregator.BatchHash, cfg aggregator.Config) (*Circuit, error) {
	k := len(batch.Chunks)
	sets, err := locate(k, cfg)
	if err != nil {
		return nil, err
	}
	preimages := batch.Preimages()
	table, err := keccak.Assign(sets, preimages)
	if err != nil {
		return nil, err
	}

	c := &Circuit{
		PublicInput:       aggregator.NewPublicInput(batch).Assignment(),
		Chunks:            make([]Chunk, k),
		BatchDataPreimage: bytesToVariables(preimages[k]),
		Table:             table,
		Layout:            cfg.Layout(),
		NumRows:           cfg.NumRows(),
	}
	for i := range batch.Chunks {
		copy(c.Chunks[i].Preimage[:], bytesToVariables(preimages[i]))
		copy(c.Chunks[i].Digest[:], digestToVariables(preimages[i]))
	}
	copy(c.BatchDataDigest[:], digestToVariables(preimages[k]))
	copy(c.BatchPIPreimage[:], bytesToVariables(preimages[k+1]))
	copy(c.BatchPIDigest[:], digestToVariables(preimages[k+1]))

	log := logger.Logger().With().Str("circuit", "batch").Logger()
	log.Debug().Int("chunks", k).Int("blocks", layout.Blocks(PreimageLengths(k))).Int("cells", len(table.Cells)).Msg("batch witness assigned")
	return c, nil
}

func locate(numChunks int, cfg aggregator.Config) ([]layout.RowIndexSet, error) {
	if numChunks <= 0 {
		return nil, aggregator.ErrNoChunks
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	lengths := PreimageLengths(numChunks)
	if err := cfg.Layout().CheckCapacity(lengths, cfg.NumRows()); err != nil {
		return nil, err
	}
	return cfg.Layout().Locate(lengths)
}

func bytesToVariables(b []byte) []frontend.Variable {
	out := make([]frontend.Variable, len(b))
	for i := range b {
		out[i] = int(b[i])
	}
	return out
}

func digestToVariables(preimage []byte) []frontend.Variable {
	digest := keccak.Sum(preimage)
	return bytesToVariables(digest[:])
}
