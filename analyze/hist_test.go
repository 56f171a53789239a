package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogram(t *testing.T) {
	table := []struct {
		x      []float64
		info   HistInfo
		counts []int
	}{
		{[]float64{0.5, 1.5, 1.5, 3.9, 4, -1}, HistInfo{0, 4, 4, "linear"}, []int{1, 2, 0, 1}},
		{[]float64{0.02, 0.2, 2, 20, 0, -3}, HistInfo{0.01, 100, 4, "log"}, []int{1, 1, 1, 1}},
	}

	for i, test := range table {
		counts, err := Histogram(test.x, &test.info)
		require.NoError(t, err, "%d", i)
		assert.Equal(t, test.counts, counts, "%d", i)
	}
}

func TestHistCenters(t *testing.T) {
	info := HistInfo{0, 4, 4, "linear"}
	assert.Equal(t, []float64{0.5, 1.5, 2.5, 3.5}, info.Centers())

	info = HistInfo{1, 100, 2, "Log"}
	centers := info.Centers()
	assert.InDelta(t, 10.0/3.1622776601683795, centers[0], 1e-12)
	assert.InDelta(t, 31.622776601683793, centers[1], 1e-9)
}

func TestHistCheck(t *testing.T) {
	bad := []HistInfo{
		{0, 1, 0, "linear"},
		{1, 1, 4, "linear"},
		{0, 1, 4, "log"},
		{0, 1, 4, "cubic"},
	}
	for i := range bad {
		assert.Error(t, bad[i].Check(), "%d", i)
	}
}
