package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	cpkg "github.com/bassosimone/mips32sim/pkg/checkpoint"
	"github.com/bassosimone/mips32sim/pkg/config"
	"github.com/bassosimone/mips32sim/pkg/disasm"
	"github.com/bassosimone/mips32sim/pkg/elfload"
	"github.com/bassosimone/mips32sim/pkg/endian"
	"github.com/bassosimone/mips32sim/pkg/interp"
	"github.com/bassosimone/mips32sim/pkg/isa"
	"github.com/bassosimone/mips32sim/pkg/monitor"
	"github.com/bassosimone/mips32sim/pkg/state"
)

const defaultMemSize = 256 << 20 // 256 MiB, comfortably above a static newlib image

func newRunCmd() *cobra.Command {
	var (
		memSize      uint32
		buildCFG     bool
		checkpointTo string
	)
	cmd := &cobra.Command{
		Use:   "run <elf-image>",
		Short: "Load and interpret an ELF image to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile, err := loadConfig()
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("run: %w", err)
			}

			s := state.New(memSize, endian.Little)
			img, err := elfload.Load(raw, s.Mem)
			if err != nil {
				return fmt.Errorf("run: %w", err)
			}
			s.Order = img.Order
			s.PC = img.Entry

			it := interp.New(s, buildCFG)

			mon := monitor.New(os.Args)
			mon.EnableClockFuncts = cfgFile.Monitor.EnableClockFuncts
			mon.IcountMIPS = cfgFile.Monitor.IcountMIPS
			mon.Disassemble = func(pc uint32, n int) {
				_ = disasm.Range(os.Stdout, s, pc, n)
			}
			it.Monitor = mon.Dispatch

			if checkpointTo != "" {
				it.OnHalt = func(it *interp.Interp) {
					f, err := os.Create(checkpointTo)
					if err != nil {
						log.Error("checkpoint: create failed", "err", err)
						return
					}
					defer f.Close()
					if err := cpkg.Save(f, it.S); err != nil {
						log.Error("checkpoint: save failed", "err", err)
					}
				}
			}

			log.Info("loaded image", "entry", fmt.Sprintf("%#08x", img.Entry), "symbols", len(img.Symbols))

			if err := it.Run(); err != nil {
				return fmt.Errorf("run: %w", err)
			}
			log.Info("halted", "icnt", s.Icnt, "pc", fmt.Sprintf("%#08x", s.PC), "v0", s.GPR[isa.RV0])
			return nil
		},
	}
	cmd.Flags().Uint32Var(&memSize, "mem", defaultMemSize, "simulated memory size in bytes")
	cmd.Flags().BoolVar(&buildCFG, "cfg", false, "discover the control-flow graph while interpreting")
	cmd.Flags().StringVar(&checkpointTo, "checkpoint", "", "write a checkpoint file here when the run halts")
	return cmd
}

func loadConfig() (*config.Config, error) {
	if flagConfigPath == "" {
		return config.Default(), nil
	}
	return config.Load(flagConfigPath)
}
