package main

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	aggregator "github.com/eon-protocol/pi-aggregator"
	"github.com/eon-protocol/pi-aggregator/circuits/batch"
	"github.com/eon-protocol/pi-aggregator/circuits/layout"
)

var (
	hashCmd = &cobra.Command{
		Use:   "hash",
		Short: "Derives the data hash, the public input hash and every chunk public input hash of a batch.",
		Args:  cobra.NoArgs,
		RunE:  hashMain,
	}
	instanceCmd = &cobra.Command{
		Use:   "instance",
		Short: "Prints the public input of a batch, one byte per field element.",
		Args:  cobra.NoArgs,
		RunE:  instanceMain,
	}
	layoutCmd = &cobra.Command{
		Use:   "layout",
		Short: "Reports the keccak table usage of a batch of --chunks chunks.",
		Args:  cobra.NoArgs,
		RunE:  layoutMain,
	}
	numChunks int
)

func init() {
	layoutCmd.Flags().IntVar(&numChunks, "chunks", 1, "Number of chunks in the batch.")
	rootCmd.AddCommand(hashCmd, instanceCmd, layoutCmd)
}

func hashMain(cmd *cobra.Command, _ []string) error {
	b, err := readBatch()
	if err != nil {
		return err
	}
	chunks := make([]common.Hash, len(b.Chunks))
	for i := range b.Chunks {
		chunks[i] = b.Chunks[i].PublicInputHash()
	}
	return printJSON(cmd, struct {
		ChainID         hexutil.Uint64 `json:"chain_id"`
		DataHash        common.Hash    `json:"data_hash"`
		PublicInputHash common.Hash    `json:"public_input_hash"`
		Chunks          []common.Hash  `json:"chunk_public_input_hashes"`
	}{hexutil.Uint64(b.ChainID), b.DataHash, b.PublicInputHash, chunks})
}

func instanceMain(cmd *cobra.Command, _ []string) error {
	b, err := readBatch()
	if err != nil {
		return err
	}
	pi := aggregator.NewPublicInput(b)
	return printJSON(cmd, struct {
		PublicInput hexutil.Bytes `json:"public_input"`
		Size        int           `json:"size"`
	}{pi.Bytes(), aggregator.NumInstance()[0]})
}

func layoutMain(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	lengths := batch.PreimageLengths(numChunks)
	blocks := layout.Blocks(lengths)
	capacity, _ := cfg.Capacity()
	return printJSON(cmd, struct {
		Chunks      int   `json:"chunks"`
		Preimages   []int `json:"preimage_lengths"`
		Blocks      int   `json:"blocks"`
		BlockHeight int   `json:"block_height"`
		Rows        int   `json:"rows"`
		Capacity    int   `json:"capacity"`
		Fits        bool  `json:"fits"`
	}{
		Chunks:      numChunks,
		Preimages:   lengths,
		Blocks:      blocks,
		BlockHeight: cfg.Layout().BlockHeight(),
		Rows:        cfg.NumRows(),
		Capacity:    capacity,
		Fits:        cfg.Layout().CheckCapacity(lengths, cfg.NumRows()) == nil,
	})
}
