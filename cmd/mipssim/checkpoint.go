package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	cpkg "github.com/bassosimone/mips32sim/pkg/checkpoint"
	"github.com/bassosimone/mips32sim/pkg/elfload"
	"github.com/bassosimone/mips32sim/pkg/endian"
	"github.com/bassosimone/mips32sim/pkg/interp"
	"github.com/bassosimone/mips32sim/pkg/state"
)

func newCheckpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Save or restore a machine-state checkpoint",
	}
	cmd.AddCommand(newCheckpointSaveCmd())
	cmd.AddCommand(newCheckpointRestoreCmd())
	return cmd
}

func newCheckpointSaveCmd() *cobra.Command {
	var memSize uint32
	cmd := &cobra.Command{
		Use:   "save <elf-image> <checkpoint-file>",
		Short: "Run an image to its first halt and save a checkpoint",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("checkpoint save: %w", err)
			}
			s := state.New(memSize, endian.Little)
			img, err := elfload.Load(raw, s.Mem)
			if err != nil {
				return fmt.Errorf("checkpoint save: %w", err)
			}
			s.Order = img.Order
			s.PC = img.Entry

			it := interp.New(s, false)
			if err := it.Run(); err != nil {
				return fmt.Errorf("checkpoint save: %w", err)
			}

			f, err := os.Create(args[1])
			if err != nil {
				return fmt.Errorf("checkpoint save: %w", err)
			}
			defer f.Close()
			if err := cpkg.Save(f, s); err != nil {
				return fmt.Errorf("checkpoint save: %w", err)
			}
			log.Info("checkpoint written", "path", args[1], "icnt", s.Icnt)
			return nil
		},
	}
	cmd.Flags().Uint32Var(&memSize, "mem", defaultMemSize, "simulated memory size in bytes")
	return cmd
}

func newCheckpointRestoreCmd() *cobra.Command {
	var memSize uint32
	cmd := &cobra.Command{
		Use:   "restore <checkpoint-file>",
		Short: "Restore and print a checkpoint's machine state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("checkpoint restore: %w", err)
			}
			defer f.Close()

			s := state.New(memSize, endian.Little)
			if err := cpkg.Restore(f, s); err != nil {
				return fmt.Errorf("checkpoint restore: %w", err)
			}
			fmt.Print(s.String())
			return nil
		},
	}
	cmd.Flags().Uint32Var(&memSize, "mem", defaultMemSize, "simulated memory size of the checkpoint being restored")
	return cmd
}
