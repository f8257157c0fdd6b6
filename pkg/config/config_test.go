package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassosimone/mips32sim/pkg/region"
)

func TestDefaultValues(t *testing.T) {
	c := Default()
	assert.Equal(t, uint64(1000), c.Region.EnoughRegionsEdges)
	assert.Equal(t, region.AugNone, c.AugmentationLevel())
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
[region]
enough_regions_edges = 42
augmentation = "aggressive"

[monitor]
enable_clock_functs = true
icount_mips = 50.5
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), c.Region.EnoughRegionsEdges)
	assert.Equal(t, region.AugAggressive, c.AugmentationLevel())
	assert.True(t, c.Monitor.EnableClockFuncts)
	assert.Equal(t, 50.5, c.Monitor.IcountMIPS)
	assert.Equal(t, 64, c.Region.MaxBlocks) // untouched field keeps its default
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	assert.Error(t, err)
}
