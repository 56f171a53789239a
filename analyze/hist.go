package analyze

import (
	"fmt"
	"math"
	"strings"
)

// HistInfo describes the binning of a histogram. Scale is "log" or "linear".
type HistInfo struct {
	Min, Max float64
	Bins     int
	Scale    string
}

func (info *HistInfo) isLog() bool {
	return strings.ToLower(info.Scale) == "log"
}

// Check returns an error if the bins cannot be built.
func (info *HistInfo) Check() error {
	switch {
	case info.Bins <= 0:
		return fmt.Errorf("Histogram needs a positive bin count, got %d.", info.Bins)
	case !(info.Max > info.Min):
		return fmt.Errorf("Histogram range [%g, %g] is empty.", info.Min, info.Max)
	case info.isLog() && info.Min <= 0:
		return fmt.Errorf("Log histogram needs a positive minimum, got %g.", info.Min)
	case !info.isLog() && strings.ToLower(info.Scale) != "linear":
		return fmt.Errorf("Unrecognized histogram scale '%s'.", info.Scale)
	}
	return nil
}

// Centers returns the centers of each bin.
func (info *HistInfo) Centers() []float64 {
	min, max := info.Min, info.Max

	isLog := info.isLog()
	if isLog {
		min, max = math.Log10(min), math.Log10(max)
	}

	dx := (max - min) / float64(info.Bins)

	centers := make([]float64, info.Bins)
	for i := range centers {
		centers[i] = min + dx*(float64(i)+0.5)
		if isLog {
			centers[i] = math.Pow(10, centers[i])
		}
	}

	return centers
}

// Histogram counts the values of x in each bin. Values outside [Min, Max)
// and non-finite values are dropped.
func Histogram(x []float64, info *HistInfo) ([]int, error) {
	if err := info.Check(); err != nil {
		return nil, err
	}

	counts := make([]int, info.Bins)
	min, max := info.Min, info.Max
	fBins := float64(info.Bins)

	isLog := info.isLog()
	if isLog {
		min, max = math.Log10(min), math.Log10(max)
	}
	dx := (max - min) / fBins

	for i := range x {
		v := x[i]
		if isLog {
			if v <= 0 {
				continue
			}
			v = math.Log10(v)
		}
		if !finite(v) {
			continue
		}

		idx := (v - min) / dx
		if idx < 0 || idx >= fBins {
			continue
		}
		counts[int(idx)]++
	}
	return counts, nil
}
