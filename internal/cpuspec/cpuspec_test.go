package cpuspec

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeterminePerformanceCores(t *testing.T) {
	t.Parallel()

	tests := []struct {
		brand string
		want  int
	}{
		{"Intel(R) Core(TM) i9-13900K", 8},
		{"Intel(R) Core(TM) i5-12400F", 6},
		{"Intel(R) Core(TM) i3-14100", 4},
		{"Apple M1 Pro", 8},
		{"Apple M2 Ultra", 16},
		{"Apple M3", 4},
		{"AMD Ryzen 9 5950X 16-Core Processor", 0},
		{"", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, determinePerformanceCores(tt.brand), "brand %q", tt.brand)
	}
}

func TestGetOptimalThreadCountBounded(t *testing.T) {
	t.Parallel()

	spec := CPUSpec{BrandName: "test", PerformanceCores: 1024}
	assert.Equal(t, runtime.NumCPU(), spec.GetOptimalThreadCount())

	spec = CPUSpec{BrandName: "test", PerformanceCores: 1}
	assert.Equal(t, 1, spec.GetOptimalThreadCount())
}

func TestGetCPUSpecDoesNotPanic(t *testing.T) {
	t.Parallel()

	spec := GetCPUSpec()
	assert.GreaterOrEqual(t, spec.PerformanceCores, 0)
}
