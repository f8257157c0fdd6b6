// Command mipssim is the simulator's driver: a small spf13/cobra
// command tree replacing the teacher's three flag-based binaries
// (cmd/asm, cmd/vm, cmd/interp) with one tool grown to the scale this
// project's surface actually needs (run, regions, checkpoint,
// disasm), logging through charmbracelet/log the way the teacher logs
// through bare log.Printf/log.Fatal but structured for a CFG/region
// subsystem's noisier event stream.
package main

import (
	"os"

	"github.com/charmbracelet/log"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		log.Error("mipssim failed", "err", err)
		os.Exit(1)
	}
}
