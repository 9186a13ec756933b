// Package cpuspec detects CPU performance core counts so the classifier can
// size its interpreter thread pool on hybrid architectures.
package cpuspec

import (
	"regexp"
	"runtime"
	"strings"

	"github.com/klauspost/cpuid/v2"
)

// CPUSpec contains information about CPU specifications
type CPUSpec struct {
	BrandName        string
	PerformanceCores int
}

// GetCPUSpec returns CPU specifications including the number of performance cores
func GetCPUSpec() CPUSpec {
	brandName := cpuid.CPU.BrandName
	return CPUSpec{
		BrandName:        brandName,
		PerformanceCores: determinePerformanceCores(brandName),
	}
}

// GetOptimalThreadCount returns the recommended number of threads for inference
func (c CPUSpec) GetOptimalThreadCount() int {
	// Actual available CPU count matters in VMs and containers
	availableCPUs := runtime.NumCPU()

	// On hybrid architectures prefer performance cores only
	if c.PerformanceCores > 0 {
		if c.PerformanceCores > availableCPUs {
			return availableCPUs
		}
		return c.PerformanceCores
	}

	return cpuid.CPU.LogicalCores
}

var intelCoreRegex = regexp.MustCompile(`intel.*core.*i[3579]-(\d{5})`)
var appleRegex = regexp.MustCompile(`(?i)apple\s+(m[1234]\s*(pro|max|ultra)?)\s*`)

// determinePerformanceCores maps known hybrid CPU families to their P-core
// counts. Returns 0 when the brand string is not recognized.
func determinePerformanceCores(brandName string) int {
	brandName = strings.ToLower(brandName)

	// Intel 12th-14th gen hybrid parts
	if matches := intelCoreRegex.FindStringSubmatch(brandName); len(matches) > 1 {
		model := matches[1]
		switch {
		case strings.HasSuffix(model, "900"):
			return 8
		case strings.HasSuffix(model, "700"):
			return 8
		case strings.HasSuffix(model, "600"), strings.HasSuffix(model, "500"), strings.HasSuffix(model, "400"):
			return 6
		case strings.HasSuffix(model, "100"):
			return 4
		}
	}

	// Apple Silicon
	if matches := appleRegex.FindStringSubmatch(brandName); len(matches) > 1 {
		chip := strings.ToLower(strings.TrimSpace(matches[1]))
		switch {
		case strings.HasSuffix(chip, "ultra"):
			return 16
		case strings.HasSuffix(chip, "max"), strings.HasSuffix(chip, "pro"):
			return 8
		default:
			return 4
		}
	}

	return 0
}
