package device

import (
	"os"
	"path/filepath"
)

// Known locations of the su binary on rooted devices.
var suPaths = []string{
	"sbin/su",
	"system/bin/su",
	"system/xbin/su",
	"system/sbin/su",
	"vendor/bin/su",
	"usr/bin/su",
	"usr/local/bin/su",
	"bin/su",
}

// RootCheck is the outcome of the heuristic root check. The Indicators list
// names the findings the verdict is based on, for display.
type RootCheck struct {
	Rooted     bool
	Demo       bool
	Indicators []string
}

var geteuid = os.Geteuid

// RootChecker looks for common root indicators. It is a heuristic: absence
// of indicators is not proof of an unmodified system. Root and Demo are
// injectable for tests and for demo presentations.
type RootChecker struct {
	Root string
	// Demo skips the probes and reports a simulated clean system.
	Demo bool
}

func NewRootChecker(demo bool) *RootChecker {
	return &RootChecker{Root: "/", Demo: demo}
}

func (c *RootChecker) Check() *RootCheck {
	if c.Demo {
		return &RootCheck{Rooted: false, Demo: true}
	}

	res := &RootCheck{}
	for _, rel := range suPaths {
		p := filepath.Join(c.Root, rel)
		if _, err := os.Stat(p); err == nil {
			res.Rooted = true
			res.Indicators = append(res.Indicators, "su binary found at /"+rel)
		}
	}

	// Effective UID 0 means we are already root.
	if geteuid() == 0 {
		res.Rooted = true
		res.Indicators = append(res.Indicators, "running with uid 0")
	}

	return res
}
