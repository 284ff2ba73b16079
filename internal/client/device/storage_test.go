package device

import (
	"errors"
	"math/rand"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeStatfs(total, free, avail uint64) func(string, *syscall.Statfs_t) error {
	return func(path string, st *syscall.Statfs_t) error {
		st.Bsize = 4096
		st.Blocks = total
		st.Bfree = free
		st.Bavail = avail
		return nil
	}
}

func TestAnalyze_TotalsFromStatfs(t *testing.T) {
	a := NewStorageAnalyzer("/")
	a.Rand = rand.New(rand.NewSource(1))
	a.statfs = fakeStatfs(1000, 400, 350)

	usage, err := a.Analyze()
	require.NoError(t, err)

	assert.EqualValues(t, 1000*4096, usage.TotalBytes)
	assert.EqualValues(t, 350*4096, usage.FreeBytes)
	assert.EqualValues(t, 600*4096, usage.UsedBytes)
}

func TestAnalyze_CategoriesRoughlySumToUsed(t *testing.T) {
	a := NewStorageAnalyzer("/")
	a.Rand = rand.New(rand.NewSource(42))
	a.statfs = fakeStatfs(1000, 400, 350)

	usage, err := a.Analyze()
	require.NoError(t, err)
	require.NotEmpty(t, usage.Categories)

	var sum uint64
	for _, c := range usage.Categories {
		assert.NotEmpty(t, c.Name)
		assert.LessOrEqual(t, c.Bytes, usage.UsedBytes)
		sum += c.Bytes
	}
	// normalized shares; only integer truncation may shave bytes off
	assert.InDelta(t, float64(usage.UsedBytes), float64(sum), float64(len(usage.Categories)))
}

func TestAnalyze_DeterministicWithSeededRand(t *testing.T) {
	run := func() []StorageCategory {
		a := NewStorageAnalyzer("/")
		a.Rand = rand.New(rand.NewSource(7))
		a.statfs = fakeStatfs(1000, 400, 350)
		usage, err := a.Analyze()
		require.NoError(t, err)
		return usage.Categories
	}

	assert.Equal(t, run(), run())
}

func TestAnalyze_StatfsError(t *testing.T) {
	a := NewStorageAnalyzer("/nonexistent")
	a.statfs = func(string, *syscall.Statfs_t) error { return errors.New("boom") }

	_, err := a.Analyze()
	assert.Error(t, err)
}

func TestAnalyze_RealFilesystem(t *testing.T) {
	usage, err := NewStorageAnalyzer("/").Analyze()
	require.NoError(t, err)

	assert.Greater(t, usage.TotalBytes, uint64(0))
	assert.GreaterOrEqual(t, usage.TotalBytes, usage.UsedBytes)
}
