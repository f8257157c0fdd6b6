// Package config loads the TOML settings file that configures a run:
// region-formation thresholds, the augmentation level recorded by the
// region builder, the simulated-MIPS rate used for the monitor's
// synthetic clock, and the simPoint sampling interval. It is grounded
// on original_source/globals.hh, whose free-standing globals
// (enoughRegions, icountMIPS, cfgAug, simPointsSlice, enClockFuncts)
// this struct collects into one decodable value, loaded with
// BurntSushi/toml.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/bassosimone/mips32sim/pkg/region"
)

// Config mirrors globals.hh's run-tunable fields.
type Config struct {
	Region struct {
		// EnoughRegionsEdges is the per-block edge-count threshold that
		// must be crossed before a region attempt is worthwhile, matching
		// globals::enoughRegions.
		EnoughRegionsEdges uint64 `toml:"enough_regions_edges"`
		// MaxBlocks bounds how many blocks a single region may admit.
		MaxBlocks int `toml:"max_blocks"`
		// Augmentation names the region.AugmentationLevel given to the
		// builder: "none", "head", "aggressive", or "insane". BuildFrom
		// behaves the same at every level.
		Augmentation string `toml:"augmentation"`
	} `toml:"region"`

	Monitor struct {
		// EnableClockFuncts selects a real wall clock over the
		// icnt-derived synthetic one for gettimeofday/times.
		EnableClockFuncts bool `toml:"enable_clock_functs"`
		// IcountMIPS is the assumed simulated instruction rate (millions
		// of instructions per simulated second) the synthetic clock
		// divides by.
		IcountMIPS float64 `toml:"icount_mips"`
	} `toml:"monitor"`

	SimPoints struct {
		Enabled       bool   `toml:"enabled"`
		IntervalInsns uint64 `toml:"interval_insns"`
	} `toml:"simpoints"`
}

// Default returns the configuration this project runs with absent a
// config file: augmentation none, the original's own enoughRegions
// default of 1000 edges, a 200 MIPS synthetic clock, simPoints off.
func Default() *Config {
	var c Config
	c.Region.EnoughRegionsEdges = 1000
	c.Region.MaxBlocks = 64
	c.Region.Augmentation = "none"
	c.Monitor.IcountMIPS = 200.0
	c.SimPoints.IntervalInsns = 100_000_000
	return &c
}

// Load decodes path into a Config seeded with Default's values, so
// a config file only needs to mention the fields it wants to change.
func Load(path string) (*Config, error) {
	c := Default()
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if _, err := toml.DecodeFile(path, c); err != nil {
		return nil, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	return c, nil
}

// AugmentationLevel resolves the Augmentation string into the
// region package's enum, defaulting to AugNone on an unrecognised
// value.
func (c *Config) AugmentationLevel() region.AugmentationLevel {
	switch c.Region.Augmentation {
	case "head":
		return region.AugHead
	case "aggressive":
		return region.AugAggressive
	case "insane":
		return region.AugInsane
	default:
		return region.AugNone
	}
}
