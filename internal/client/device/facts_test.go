package device

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFakeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func TestFactsReader_ReadsFromFakeRoot(t *testing.T) {
	root := t.TempDir()
	writeFakeFile(t, root, "sys/devices/virtual/dmi/id/product_name", "Pixel Slate\n")
	writeFakeFile(t, root, "sys/devices/virtual/dmi/id/sys_vendor", "Google\n")
	writeFakeFile(t, root, "etc/os-release", "NAME=\"Debian GNU/Linux\"\nVERSION_ID=\"12\"\nID=debian\n")
	writeFakeFile(t, root, "sys/class/graphics/fb0/virtual_size", "2560,1600\n")

	f := (&FactsReader{Root: root}).Read()

	assert.Equal(t, "Pixel Slate", f.Model)
	assert.Equal(t, "Google", f.Manufacturer)
	assert.Equal(t, "Debian GNU/Linux", f.OSName)
	assert.Equal(t, "12", f.OSVersion)
	assert.Equal(t, "2560x1600", f.Resolution)
	assert.NotEmpty(t, f.Architecture)
	assert.NotEmpty(t, f.ABIs)
}

func TestFactsReader_MissingSourcesDegradeToUnknown(t *testing.T) {
	f := (&FactsReader{Root: t.TempDir()}).Read()

	assert.Equal(t, "unknown", f.Model)
	assert.Equal(t, "unknown", f.Manufacturer)
	assert.Equal(t, "unknown", f.OSName)
	assert.Equal(t, "unknown", f.OSVersion)
	assert.Equal(t, "unknown", f.Resolution)
}
