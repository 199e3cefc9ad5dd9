// Command piagg derives batch hashes and public inputs, and sets up, proves
// and verifies the batch aggregation circuit.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	aggregator "github.com/eon-protocol/pi-aggregator"
)

var rootCmd = &cobra.Command{
	Use:           "piagg",
	Short:         "Batch public input aggregation circuit.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		setLogger(viper.GetBool("verbose"))
	},
}

func init() {
	def := aggregator.DefaultConfig()
	flags := rootCmd.PersistentFlags()
	flags.Int("keccak-rows", def.KeccakRows, "Rows per round of the keccak table.")
	flags.Int("log-degree", def.LogDegree, "The circuit hosts 2^log-degree rows.")
	flags.String("srs-dir", def.SRSDir, "Directory caching SRS files.")
	flags.String("srs-url", def.SRSURL, "Location of the canonical SRS; an insecure SRS is generated when empty.")
	flags.String("accelerator", def.Accelerator, `Proving accelerator, "" or "icicle".`)
	flags.BoolP("verbose", "v", false, "Log at debug level.")
	flags.String("batch", "-", "Batch JSON file, - for stdin.")

	viper.SetEnvPrefix("PIAGG")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}
	// KECCAK_ROWS predates the PIAGG_ prefix
	if err := viper.BindEnv("keccak-rows", "PIAGG_KECCAK_ROWS", "KECCAK_ROWS"); err != nil {
		panic(err)
	}
}

func setLogger(verbose bool) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	logger.Set(zerolog.New(out).Level(level).With().Timestamp().Logger())
}

func loadConfig() (aggregator.Config, error) {
	cfg := aggregator.Config{
		KeccakRows:  viper.GetInt("keccak-rows"),
		LogDegree:   viper.GetInt("log-degree"),
		SRSDir:      viper.GetString("srs-dir"),
		SRSURL:      viper.GetString("srs-url"),
		Accelerator: viper.GetString("accelerator"),
	}
	return cfg, cfg.Validate()
}

func readBatch() (*aggregator.BatchHash, error) {
	var r io.Reader = os.Stdin
	if name := viper.GetString("batch"); name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var batch aggregator.BatchHash
	if err := json.NewDecoder(r).Decode(&batch); err != nil {
		return nil, fmt.Errorf("decode batch: %w", err)
	}
	return &batch, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
