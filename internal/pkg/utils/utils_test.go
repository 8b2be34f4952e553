package utils_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/roackb2/snowdream/internal/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrDefault(t *testing.T) {
	assert.Equal(t, 1, utils.GetOrDefault(1, 2))
	assert.Equal(t, 2, utils.GetOrDefault(0, 2))
	assert.Equal(t, "x", utils.GetOrDefault("", "x"))
	assert.Equal(t, time.Second, utils.GetOrDefault(time.Duration(0), time.Second))
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "state.json")

	require.NoError(t, utils.WriteFileAtomic(path, []byte("one"), 0o644))
	require.NoError(t, utils.WriteFileAtomic(path, []byte("two"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestRecoverPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		defer utils.RecoverPanic()
		panic("boom")
	})
}
