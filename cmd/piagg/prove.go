package main

import (
	"fmt"
	"io"
	"os"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/scs"
	"github.com/consensys/gnark/logger"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	aggregator "github.com/eon-protocol/pi-aggregator"
	"github.com/eon-protocol/pi-aggregator/circuits/batch"
)

var (
	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Compiles the circuit for a batch and checks the batch satisfies it.",
		Args:  cobra.NoArgs,
		RunE:  checkMain,
	}
	setupCmd = &cobra.Command{
		Use:   "setup",
		Short: "Compiles the circuit for batches of --chunks chunks and writes its keys.",
		Args:  cobra.NoArgs,
		RunE:  setupMain,
	}
	proveCmd = &cobra.Command{
		Use:   "prove",
		Short: "Proves a batch and writes the proof.",
		Args:  cobra.NoArgs,
		RunE:  proveMain,
	}
	verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Verifies a proof against the public input of a batch.",
		Args:  cobra.NoArgs,
		RunE:  verifyMain,
	}
	circuitIDCmd = &cobra.Command{
		Use:   "circuit-id",
		Short: "Prints the circuit id pinned by a verifying key.",
		Args:  cobra.NoArgs,
		RunE:  circuitIDMain,
	}

	setupChunks int
	pkPath      string
	vkPath      string
	proofPath   string
)

func init() {
	setupCmd.Flags().IntVar(&setupChunks, "chunks", 1, "Number of chunks in a batch.")
	for _, cmd := range []*cobra.Command{setupCmd, proveCmd} {
		cmd.Flags().StringVar(&pkPath, "pk", "batch.pk", "Proving key file.")
	}
	for _, cmd := range []*cobra.Command{setupCmd, verifyCmd, circuitIDCmd} {
		cmd.Flags().StringVar(&vkPath, "vk", "batch.vk", "Verifying key file.")
	}
	for _, cmd := range []*cobra.Command{proveCmd, verifyCmd} {
		cmd.Flags().StringVar(&proofPath, "proof", "batch.proof", "Proof file.")
	}
	rootCmd.AddCommand(checkCmd, setupCmd, proveCmd, verifyCmd, circuitIDCmd)
}

func checkMain(*cobra.Command, []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	b, err := readBatch()
	if err != nil {
		return err
	}
	circuit, err := batch.NewCircuit(len(b.Chunks), cfg)
	if err != nil {
		return err
	}
	assignment, err := batch.NewAssignment(b, cfg)
	if err != nil {
		return err
	}
	ccs, err := frontend.Compile(aggregator.FIELD, scs.NewBuilder, circuit)
	if err != nil {
		return err
	}
	witness, err := frontend.NewWitness(assignment, aggregator.FIELD)
	if err != nil {
		return err
	}
	if err := cfg.CheckCircuitSize(ccs); err != nil {
		return err
	}
	if err := ccs.IsSolved(witness); err != nil {
		return fmt.Errorf("batch does not satisfy the circuit: %w", err)
	}
	log := logger.Logger().With().Str("component", "cli").Logger()
	log.Info().Int("chunks", len(b.Chunks)).Int("constraints", ccs.GetNbConstraints()).Msg("batch satisfies the circuit")
	return nil
}

func setupMain(*cobra.Command, []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	circuit, err := batch.NewCircuit(setupChunks, cfg)
	if err != nil {
		return err
	}
	var pk aggregator.Pk
	if err := pk.Compile(circuit, cfg); err != nil {
		return err
	}
	vk := pk.Vk()
	if err := writeFile(pkPath, &pk); err != nil {
		return err
	}
	return writeFile(vkPath, &vk)
}

func proveMain(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	b, err := readBatch()
	if err != nil {
		return err
	}
	var pk aggregator.Pk
	if err := readFile(pkPath, &pk); err != nil {
		return err
	}
	if err := pk.Configure(cfg); err != nil {
		return err
	}
	assignment, err := batch.NewAssignment(b, cfg)
	if err != nil {
		return err
	}
	publics, proof, err := pk.Prove(assignment)
	if err != nil {
		return err
	}
	pi, err := aggregator.ParseInstance(publics)
	if err != nil {
		return err
	}
	if err := writeFile(proofPath, proof); err != nil {
		return err
	}
	return printJSON(cmd, struct {
		Proof       string        `json:"proof"`
		PublicInput hexutil.Bytes `json:"public_input"`
	}{proofPath, pi.Bytes()})
}

func verifyMain(*cobra.Command, []string) error {
	b, err := readBatch()
	if err != nil {
		return err
	}
	var vk aggregator.Vk
	if err := readFile(vkPath, &vk); err != nil {
		return err
	}
	var proof aggregator.Proof
	if err := readFile(proofPath, &proof); err != nil {
		return err
	}
	if err := vk.Verify(&proof, aggregator.ToInstance(b)); err != nil {
		return err
	}
	log := logger.Logger().With().Str("component", "cli").Logger()
	log.Info().Str("public_input_hash", b.PublicInputHash.Hex()).Msg("proof verified")
	return nil
}

func circuitIDMain(cmd *cobra.Command, _ []string) error {
	var vk aggregator.Vk
	if err := readFile(vkPath, &vk); err != nil {
		return err
	}
	id := vk.CircuitID()
	b := id.Bytes()
	fmt.Fprintln(cmd.OutOrStdout(), hexutil.Encode(b[:]))
	return nil
}

func writeFile(path string, v io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := v.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func readFile(path string, v io.ReaderFrom) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := v.ReadFrom(f); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}
