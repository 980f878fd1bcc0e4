package style

import (
	"math"
	"math/rand"
	"sort"
)

// Wasserstein1 computes the one-dimensional earth-mover distance between
// two empirical value distributions: sort both, resample the shorter to
// the longer's length by linear interpolation, then average the absolute
// elementwise differences.
func Wasserstein1(u, v []float64) float64 {
	if len(u) == 0 || len(v) == 0 {
		return 0
	}

	us := append([]float64(nil), u...)
	vs := append([]float64(nil), v...)
	sort.Float64s(us)
	sort.Float64s(vs)

	n := len(us)
	if len(vs) > n {
		n = len(vs)
	}
	us = resample(us, n)
	vs = resample(vs, n)

	sum := 0.0
	for i := 0; i < n; i++ {
		sum += math.Abs(us[i] - vs[i])
	}
	return sum / float64(n)
}

// SlicedWasserstein approximates the earth-mover distance between two
// embedding point sets by projecting both onto shared random unit
// directions, comparing the sorted 1-D projections and averaging across
// directions. It is symmetric in its two arguments.
func SlicedWasserstein(x, y [][]float32, numProjections int) float64 {
	if len(x) == 0 || len(y) == 0 {
		return 0
	}
	if numProjections <= 0 {
		numProjections = 50
	}

	dim := len(x[0])
	if len(y[0]) < dim {
		dim = len(y[0])
	}
	if dim == 0 {
		return 0
	}

	rng := rand.New(rand.NewSource(42))

	total := 0.0
	for p := 0; p < numProjections; p++ {
		// One random unit direction shared by both sets.
		dir := make([]float64, dim)
		norm := 0.0
		for i := range dir {
			dir[i] = rng.NormFloat64()
			norm += dir[i] * dir[i]
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			continue
		}
		for i := range dir {
			dir[i] /= norm
		}

		xp := project(x, dir)
		yp := project(y, dir)
		sort.Float64s(xp)
		sort.Float64s(yp)

		n := len(xp)
		if len(yp) > n {
			n = len(yp)
		}
		xp = resample(xp, n)
		yp = resample(yp, n)

		sum := 0.0
		for i := 0; i < n; i++ {
			sum += math.Abs(xp[i] - yp[i])
		}
		total += sum / float64(n)
	}
	return total / float64(numProjections)
}

func project(points [][]float32, dir []float64) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		sum := 0.0
		for j := 0; j < len(dir) && j < len(p); j++ {
			sum += float64(p[j]) * dir[j]
		}
		out[i] = sum
	}
	return out
}

// resample stretches a sorted sequence to length n via linear
// interpolation over the [0,1] positions of its values.
func resample(sorted []float64, n int) []float64 {
	if len(sorted) == n {
		return sorted
	}
	if len(sorted) == 1 {
		out := make([]float64, n)
		for i := range out {
			out[i] = sorted[0]
		}
		return out
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		pos := float64(i) / float64(n-1) * float64(len(sorted)-1)
		lo := int(math.Floor(pos))
		hi := int(math.Ceil(pos))
		if hi >= len(sorted) {
			hi = len(sorted) - 1
		}
		frac := pos - float64(lo)
		out[i] = sorted[lo]*(1-frac) + sorted[hi]*frac
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
