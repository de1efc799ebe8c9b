package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/caffeineduck/hostbind/abi"
)

var wasmCmd = &cobra.Command{
	Use:   "wasm <module.wasm>",
	Short: "Run a WASI guest against the host ABI modules",
	Long: `Run a compiled WASI guest. The guest may import fastly_abi,
fastly_dictionary, fastly_log and fastly_object_store; those calls are
served by the platform from --config.`,
	Args: cobra.ExactArgs(1),
	RunE: runWasm,
}

func init() {
	wasmCmd.Flags().Uint32("memory-pages", 0, "Guest memory limit in 64KB pages (0 = default)")
	rootCmd.AddCommand(wasmCmd)
}

func runWasm(cmd *cobra.Command, args []string) error {
	guest, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read guest: %w", err)
	}
	pages, _ := cmd.Flags().GetUint32("memory-pages")

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	rt, err := abi.NewRuntime(s.ctx, s.registry,
		abi.WithMemoryLimit(pages),
		abi.WithLogger(s.logger))
	if err != nil {
		return err
	}
	defer rt.Close(s.ctx)

	return rt.Run(s.ctx, filepath.Base(args[0]), guest, cmd.OutOrStdout(), cmd.ErrOrStderr())
}
