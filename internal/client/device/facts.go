// Package device implements the device-introspection features: static
// device facts, a refresh-rate measurement, a heuristic root check, and a
// storage-usage breakdown.
package device

import (
	"bufio"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Facts is the static device information shown on the facts screen.
type Facts struct {
	Model        string
	Manufacturer string
	OSName       string
	OSVersion    string
	Architecture string
	ABIs         []string
	Resolution   string
	Hostname     string
}

// FactsReader collects Facts from the filesystem. Root points at the
// filesystem root and is injectable so tests can fake /etc and /sys.
type FactsReader struct {
	Root string
}

func NewFactsReader() *FactsReader {
	return &FactsReader{Root: "/"}
}

// Read gathers device facts. Missing sources degrade to "unknown" fields,
// never to an error: the facts screen always renders.
func (r *FactsReader) Read() *Facts {
	f := &Facts{
		Model:        r.readTrimmed("sys/devices/virtual/dmi/id/product_name"),
		Manufacturer: r.readTrimmed("sys/devices/virtual/dmi/id/sys_vendor"),
		Architecture: runtime.GOARCH,
		ABIs:         supportedABIs(),
	}

	f.OSName, f.OSVersion = r.readOSRelease()
	f.Resolution = r.readResolution()

	if host, err := os.Hostname(); err == nil {
		f.Hostname = host
	}

	if f.Model == "" {
		f.Model = "unknown"
	}
	if f.Manufacturer == "" {
		f.Manufacturer = "unknown"
	}
	return f
}

func (r *FactsReader) readTrimmed(rel string) string {
	data, err := os.ReadFile(filepath.Join(r.Root, rel))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// readOSRelease parses the NAME and VERSION_ID fields of os-release.
func (r *FactsReader) readOSRelease() (name, version string) {
	name, version = "unknown", "unknown"

	file, err := os.Open(filepath.Join(r.Root, "etc/os-release"))
	if err != nil {
		return name, version
	}
	defer file.Close()

	sc := bufio.NewScanner(file)
	for sc.Scan() {
		line := sc.Text()
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.Trim(value, `"`)
		switch key {
		case "NAME":
			name = value
		case "VERSION_ID":
			version = value
		}
	}
	return name, version
}

// readResolution reads the primary framebuffer size, reported by the
// kernel as "width,height".
func (r *FactsReader) readResolution() string {
	raw := r.readTrimmed("sys/class/graphics/fb0/virtual_size")
	w, h, ok := strings.Cut(raw, ",")
	if !ok {
		return "unknown"
	}
	return w + "x" + h
}

// supportedABIs maps the runtime architecture to the instruction sets the
// hardware can execute.
func supportedABIs() []string {
	switch runtime.GOARCH {
	case "amd64":
		return []string{"x86_64", "x86"}
	case "arm64":
		return []string{"arm64-v8a", "armeabi-v7a", "armeabi"}
	case "arm":
		return []string{"armeabi-v7a", "armeabi"}
	default:
		return []string{runtime.GOARCH}
	}
}
