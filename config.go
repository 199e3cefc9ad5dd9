package aggregator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/consensys/gnark/constraint"

	"github.com/eon-protocol/pi-aggregator/circuits/layout"
)

const MAX_LOG_DEGREE = 28

// Config carries the tunables of a circuit build. Overrides are validated
// when the config is used, never read from the environment here.
type Config struct {
	// Rows per keccak round in the keccak table.
	KeccakRows int
	// The circuit hosts 1<<LogDegree rows: keccak table rows and compiled
	// constraints alike.
	LogDegree int
	// Directory holding cached SRS files.
	SRSDir string
	// Optional location of the canonical SRS.
	SRSURL string
	// "icicle" requests GPU proving.
	Accelerator string
}

func DefaultConfig() Config {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return Config{
		KeccakRows: DEFAULT_KECCAK_ROWS,
		LogDegree:  LOG_DEGREE,
		SRSDir:     filepath.Join(dir, "piagg"),
	}
}

func (me Config) Validate() error {
	if _, err := layout.NewConfig(me.KeccakRows); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if me.LogDegree <= 0 || me.LogDegree > MAX_LOG_DEGREE {
		return fmt.Errorf("%w: log degree %d outside (0, %d]", ErrInvalidConfig, me.LogDegree, MAX_LOG_DEGREE)
	}
	switch me.Accelerator {
	case "", "icicle":
	default:
		return fmt.Errorf("%w: unknown accelerator %q", ErrInvalidConfig, me.Accelerator)
	}
	return nil
}

// Layout returns the keccak table geometry.
func (me Config) Layout() layout.Config {
	return layout.Config{RowsPerRound: me.KeccakRows}
}

func (me Config) NumRows() int {
	return 1 << me.LogDegree
}

// Capacity is the number of absorption blocks the circuit can host.
func (me Config) Capacity() (int, bool) {
	return me.Layout().Capacity(me.NumRows())
}

// CheckCircuitSize fails when the compiled circuit needs more rows than the
// configured degree.
func (me Config) CheckCircuitSize(ccs constraint.ConstraintSystem) error {
	need := ccs.GetNbConstraints() + ccs.GetNbPublicVariables()
	if need > me.NumRows() {
		return fmt.Errorf("%w: circuit needs %d rows, log degree %d hosts %d", layout.ErrCapacityExceeded, need, me.LogDegree, me.NumRows())
	}
	return nil
}
