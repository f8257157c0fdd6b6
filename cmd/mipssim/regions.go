package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bassosimone/mips32sim/pkg/cfg"
	"github.com/bassosimone/mips32sim/pkg/elfload"
	"github.com/bassosimone/mips32sim/pkg/endian"
	"github.com/bassosimone/mips32sim/pkg/interp"
	"github.com/bassosimone/mips32sim/pkg/region"
	"github.com/bassosimone/mips32sim/pkg/state"
)

func newRegionsCmd() *cobra.Command {
	var (
		memSize   uint32
		simpoints bool
	)
	cmd := &cobra.Command{
		Use:   "regions <elf-image>",
		Short: "Interpret an image with CFG discovery and report formed regions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile, err := loadConfig()
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("regions: %w", err)
			}

			s := state.New(memSize, endian.Little)
			img, err := elfload.Load(raw, s.Mem)
			if err != nil {
				return fmt.Errorf("regions: %w", err)
			}
			s.Order = img.Order
			s.PC = img.Entry

			it := interp.New(s, true)
			bld := region.NewBuilder(it.CFG, cfgFile.Region.MaxBlocks, cfgFile.AugmentationLevel())

			var sampler *region.SimPointSampler
			if simpoints || cfgFile.SimPoints.Enabled {
				sampler = region.NewSimPointSampler(cfgFile.SimPoints.IntervalInsns)
			}

			if err := it.Run(); err != nil {
				return fmt.Errorf("regions: %w", err)
			}

			for n := 0; n < it.CFG.NumBlocks(); n++ {
				id := cfg.BlockID(n)
				b := it.CFG.Block(id)
				if sampler != nil {
					sampler.Observe(b, uint64(b.NumIns()))
				}
				if region.ShouldAttempt(it.CFG, id, cfgFile.Region.EnoughRegionsEdges) {
					if r, err := bld.BuildFrom(id); err == nil {
						log.Info("formed region", "head", fmt.Sprintf("%#08x", b.EntryAddr), "blocks", len(r.Blocks))
					}
				}
			}

			log.Info("done", "blocks", it.CFG.NumBlocks(), "regions", len(bld.Regions()))
			return nil
		},
	}
	cmd.Flags().Uint32Var(&memSize, "mem", defaultMemSize, "simulated memory size in bytes")
	cmd.Flags().BoolVar(&simpoints, "simpoints", false, "build a basic-block distribution histogram from the discovered blocks after the run")
	return cmd
}
