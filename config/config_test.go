package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelined/sox/combine"
)

func TestDefaultPolicyIsSequence(t *testing.T) {
	c := Default()
	p, err := c.Policy()
	require.NoError(t, err)
	assert.Equal(t, combine.Sequence, p)
}

func TestLoadFillsInMissingFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sox.yaml")
	require.NoError(t, os.WriteFile(path, []byte("combine_policy: mix\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mix", c.CombinePolicy)
	assert.Greater(t, c.BufferCapacity, 0)

	p, err := c.Policy()
	require.NoError(t, err)
	assert.Equal(t, combine.Mix, p)
}

func TestPolicyRejectsUnknownName(t *testing.T) {
	c := Config{CombinePolicy: "bogus"}
	_, err := c.Policy()
	assert.Error(t, err)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
