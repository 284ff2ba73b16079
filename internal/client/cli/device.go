package cli

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

// DeviceInfo prints the device facts screen.
func (a *App) DeviceInfo(ctx context.Context) error {
	f := a.facts.Read()

	printlnFn("Model:       ", f.Model)
	printlnFn("Manufacturer:", f.Manufacturer)
	printlnFn("OS:          ", f.OSName, f.OSVersion)
	printlnFn("Architecture:", f.Architecture)
	printlnFn("ABIs:        ", strings.Join(f.ABIs, ", "))
	printlnFn("Resolution:  ", f.Resolution)
	printlnFn("Hostname:    ", f.Hostname)
	return nil
}

// RefreshRate measures the display refresh rate over a short window.
func (a *App) RefreshRate(ctx context.Context) error {
	printlnFn("Measuring, hold on...")
	hz := a.refreshRate.Measure(ctx, 2*time.Second)
	printlnFn(fmt.Sprintf("Refresh rate: %.1f Hz", hz))
	return nil
}

// RootCheck runs the root detection heuristics and prints the verdict.
func (a *App) RootCheck(ctx context.Context) error {
	res := a.rootChecker.Check()

	if res.Rooted {
		printlnFn("Device appears to be ROOTED")
	} else {
		printlnFn("No root indicators found")
	}
	for _, ind := range res.Indicators {
		printlnFn("  -", ind)
	}
	if res.Demo {
		printlnFn("(demo mode: simulated result)")
	}
	return nil
}

// StorageReport prints the storage totals and the per-category breakdown.
func (a *App) StorageReport(ctx context.Context) error {
	usage, err := a.storage.Analyze()
	if err != nil {
		log.Printf("Error analyzing storage: %s", err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Total: %s  Used: %s  Free: %s",
		formatBytes(usage.TotalBytes), formatBytes(usage.UsedBytes), formatBytes(usage.FreeBytes)))
	for _, c := range usage.Categories {
		printlnFn(fmt.Sprintf("  %-12s %s", c.Name, formatBytes(c.Bytes)))
	}
	return nil
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
