package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/cake-cutting/backend/internal/cake"
)

func TestParseSize(t *testing.T) {
	atoms, agents, err := parseSize("20, 3")
	require.NoError(t, err)
	assert.Equal(t, 20, atoms)
	assert.Equal(t, 3, agents)

	for _, s := range []string{"20", "a,3", "20,b", ""} {
		_, _, err := parseSize(s)
		assert.Error(t, err, s)
	}
}

func TestLoadInstance(t *testing.T) {
	out := filepath.Join(t.TempDir(), "generated.txt")

	inst, err := loadInstance("", "10,3", out, 0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, 3, inst.AgentCount())

	// 写出的文件可以重新读入，得到相同的矩阵
	reloaded, err := loadInstance(out, "", "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, inst.Matrix(), reloaded.Matrix())

	_, err = loadInstance(out, "10,3", "", 0, 0)
	assert.Error(t, err)

	_, err = loadInstance("", "", "", 0, 0)
	assert.Error(t, err)

	_, err = loadInstance("", "0,3", "", 0, 1)
	assert.ErrorIs(t, err, cake.ErrInvalidArgument)
}
