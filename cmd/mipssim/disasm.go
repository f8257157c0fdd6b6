package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bassosimone/mips32sim/pkg/disasm"
	"github.com/bassosimone/mips32sim/pkg/elfload"
	"github.com/bassosimone/mips32sim/pkg/endian"
	"github.com/bassosimone/mips32sim/pkg/state"
)

func newDisasmCmd() *cobra.Command {
	var (
		memSize uint32
		at      uint32
		count   int
	)
	cmd := &cobra.Command{
		Use:   "disasm <elf-image>",
		Short: "Disassemble n instructions at a given address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("disasm: %w", err)
			}
			s := state.New(memSize, endian.Little)
			img, err := elfload.Load(raw, s.Mem)
			if err != nil {
				return fmt.Errorf("disasm: %w", err)
			}
			s.Order = img.Order

			pc := at
			if !cmd.Flags().Changed("at") {
				pc = img.Entry
			}
			return disasm.Range(os.Stdout, s, pc, count)
		},
	}
	cmd.Flags().Uint32Var(&memSize, "mem", defaultMemSize, "simulated memory size in bytes")
	cmd.Flags().Uint32Var(&at, "at", 0, "address to start disassembling at (defaults to the entry point)")
	cmd.Flags().IntVar(&count, "n", 16, "number of instructions to disassemble")
	return cmd
}
