package main

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	flagConfigPath string
	flagVerbose    bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mipssim",
		Short:         "MIPS32 functional simulator with CFG discovery and region formation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagVerbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
	root.PersistentFlags().StringVar(&flagConfigPath, "config", "", "path to a mipssim TOML config file")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug-level logging")

	root.AddCommand(newRunCmd())
	root.AddCommand(newRegionsCmd())
	root.AddCommand(newCheckpointCmd())
	root.AddCommand(newDisasmCmd())
	return root
}
