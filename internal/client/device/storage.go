package device

import (
	_ "embed"
	"fmt"
	"math/rand"
	"syscall"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var categoriesYAML []byte

// StorageCategory is one slice of the usage breakdown.
type StorageCategory struct {
	Name  string `yaml:"name"`
	Bytes uint64 `yaml:"-"`

	Weight float64 `yaml:"weight"`
	Jitter float64 `yaml:"jitter"`
}

type categoryCatalog struct {
	Categories []StorageCategory `yaml:"categories"`
}

// StorageUsage is the storage screen's data: real totals from the
// filesystem plus a per-category breakdown of used space. The breakdown is
// partly synthetic: only the total and free numbers come from the OS, the
// category shares are catalog weights with random jitter.
type StorageUsage struct {
	TotalBytes uint64
	FreeBytes  uint64
	UsedBytes  uint64
	Categories []StorageCategory
}

// StorageAnalyzer produces StorageUsage reports for one mount point.
type StorageAnalyzer struct {
	Path string
	// Rand drives the category jitter. Defaults to the global source; tests
	// inject a seeded one.
	Rand *rand.Rand

	statfs func(path string, buf *syscall.Statfs_t) error
}

func NewStorageAnalyzer(path string) *StorageAnalyzer {
	return &StorageAnalyzer{Path: path, statfs: syscall.Statfs}
}

// Analyze reads real filesystem totals and distributes used space across
// the catalog categories.
func (a *StorageAnalyzer) Analyze() (*StorageUsage, error) {
	statfs := a.statfs
	if statfs == nil {
		statfs = syscall.Statfs
	}

	var st syscall.Statfs_t
	if err := statfs(a.Path, &st); err != nil {
		return nil, fmt.Errorf("statfs %s: %w", a.Path, err)
	}

	total := st.Blocks * uint64(st.Bsize)
	free := st.Bavail * uint64(st.Bsize)
	used := total - st.Bfree*uint64(st.Bsize)

	categories, err := a.breakdown(used)
	if err != nil {
		return nil, err
	}

	return &StorageUsage{
		TotalBytes: total,
		FreeBytes:  free,
		UsedBytes:  used,
		Categories: categories,
	}, nil
}

// breakdown splits used bytes across the catalog. Shares are normalized so
// the categories always sum to the used total regardless of jitter.
func (a *StorageAnalyzer) breakdown(used uint64) ([]StorageCategory, error) {
	var catalog categoryCatalog
	if err := yaml.Unmarshal(categoriesYAML, &catalog); err != nil {
		return nil, fmt.Errorf("parsing category catalog: %w", err)
	}

	randFloat := rand.Float64
	if a.Rand != nil {
		randFloat = a.Rand.Float64
	}

	shares := make([]float64, len(catalog.Categories))
	var sum float64
	for i, c := range catalog.Categories {
		share := c.Weight + (randFloat()*2-1)*c.Jitter
		if share < 0 {
			share = 0
		}
		shares[i] = share
		sum += share
	}

	out := make([]StorageCategory, len(catalog.Categories))
	for i, c := range catalog.Categories {
		out[i] = c
		if sum > 0 {
			out[i].Bytes = uint64(float64(used) * shares[i] / sum)
		}
	}
	return out, nil
}
