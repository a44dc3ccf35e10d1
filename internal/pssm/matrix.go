// internal/pssm/matrix.go
package pssm

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"modscan/internal/dna"
)

// ErrMalformed is returned for empty, negative or non-stochastic matrices.
var ErrMalformed = errors.New("malformed pssm")

// Tolerance for row and background sums.
const ProbTolerance = 1e-3

// Default pseudocounts, spread over a row in proportion to the background.
const (
	DefaultCountPseudocount = 1.0
	DefaultProbPseudocount  = 0.01
)

// Uniform is the default background distribution.
var Uniform = [dna.Size]float64{0.25, 0.25, 0.25, 0.25}

// Options controls matrix construction.
type Options struct {
	Background  []float64 // nil = uniform
	Pseudocount float64   // 0 = default for the constructor; only applied to rows with a zero
}

// Matrix is a read-only PSSM: per-position probabilities plus the log-odds
// against its background, computed once at construction.
type Matrix struct {
	ID   string
	Name string

	probs   [][dna.Size]float64
	logOdds [][dna.Size]float64
	bg      [dna.Size]float64

	minLO, maxLO float64
}

// FromCounts builds a Matrix from non-negative weights (counts or any scale).
// Each row is normalized by its own sum.
func FromCounts(id string, rows [][]float64, opt Options) (*Matrix, error) {
	if opt.Pseudocount == 0 {
		opt.Pseudocount = DefaultCountPseudocount
	}
	return build(id, rows, opt, false)
}

// FromProbabilities builds a Matrix from rows that already sum to 1.
func FromProbabilities(id string, rows [][]float64, opt Options) (*Matrix, error) {
	if opt.Pseudocount == 0 {
		opt.Pseudocount = DefaultProbPseudocount
	}
	return build(id, rows, opt, true)
}

// FromLogProbabilities exponentiates natural-log probabilities and defers to
// FromProbabilities. -Inf entries become zero probabilities.
func FromLogProbabilities(id string, rows [][]float64, opt Options) (*Matrix, error) {
	ex := make([][]float64, len(rows))
	for i, r := range rows {
		ex[i] = make([]float64, len(r))
		for j, v := range r {
			if math.IsNaN(v) || math.IsInf(v, 1) {
				return nil, fmt.Errorf("%w: %s: position %d: bad log probability %v", ErrMalformed, id, i+1, v)
			}
			ex[i][j] = math.Exp(v)
		}
	}
	return FromProbabilities(id, ex, opt)
}

func build(id string, rows [][]float64, opt Options, stochastic bool) (*Matrix, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s: no positions", ErrMalformed, id)
	}
	if opt.Pseudocount < 0 || math.IsNaN(opt.Pseudocount) || math.IsInf(opt.Pseudocount, 0) {
		return nil, fmt.Errorf("%w: %s: bad pseudocount %v", ErrMalformed, id, opt.Pseudocount)
	}
	bg, err := background(opt.Background)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", id, err)
	}

	m := &Matrix{
		ID:      id,
		probs:   make([][dna.Size]float64, len(rows)),
		logOdds: make([][dna.Size]float64, len(rows)),
		bg:      bg,
	}
	for i, r := range rows {
		if len(r) != dna.Size {
			return nil, fmt.Errorf("%w: %s: position %d has %d entries, want %d", ErrMalformed, id, i+1, len(r), dna.Size)
		}
		hasZero := false
		for _, v := range r {
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: %s: position %d: bad weight %v", ErrMalformed, id, i+1, v)
			}
			if v == 0 {
				hasZero = true
			}
		}
		sum := floats.Sum(r)
		if sum <= 0 {
			return nil, fmt.Errorf("%w: %s: position %d sums to zero", ErrMalformed, id, i+1)
		}
		if stochastic && !floats.EqualWithinAbs(sum, 1, ProbTolerance) {
			return nil, fmt.Errorf("%w: %s: position %d sums to %.6g, want 1", ErrMalformed, id, i+1, sum)
		}
		pc := 0.0
		if hasZero {
			pc = opt.Pseudocount
		}
		var row [dna.Size]float64
		for b := range row {
			row[b] = (r[b] + pc*bg[b]) / (sum + pc)
		}
		m.probs[i] = row
	}
	m.cacheLogOdds()
	return m, nil
}

func background(in []float64) ([dna.Size]float64, error) {
	if in == nil {
		return Uniform, nil
	}
	var bg [dna.Size]float64
	if len(in) != dna.Size {
		return bg, fmt.Errorf("%w: background has %d entries, want %d", ErrMalformed, len(in), dna.Size)
	}
	for i, v := range in {
		if !(v > 0) || math.IsInf(v, 0) {
			return bg, fmt.Errorf("%w: background entry %d is %v", ErrMalformed, i, v)
		}
	}
	sum := floats.Sum(in)
	if !floats.EqualWithinAbs(sum, 1, ProbTolerance) {
		return bg, fmt.Errorf("%w: background sums to %.6g, want 1", ErrMalformed, sum)
	}
	for i, v := range in {
		bg[i] = v / sum
	}
	return bg, nil
}

func (m *Matrix) cacheLogOdds() {
	m.minLO, m.maxLO = 0, 0
	for i, row := range m.probs {
		lo, hi := math.Inf(1), math.Inf(-1)
		for b, p := range row {
			v := math.Log(p / m.bg[b])
			m.logOdds[i][b] = v
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		m.minLO += lo
		m.maxLO += hi
	}
}

// Len returns the number of positions.
func (m *Matrix) Len() int { return len(m.probs) }

// Prob returns the probability of core symbol s at 0-based position i.
func (m *Matrix) Prob(i int, s dna.Symbol) float64 { return m.probs[i][s] }

// LogOdds returns log(p/bg) of core symbol s at 0-based position i.
func (m *Matrix) LogOdds(i int, s dna.Symbol) float64 { return m.logOdds[i][s] }

// Row returns a copy of the probability vector at position i.
func (m *Matrix) Row(i int) [dna.Size]float64 { return m.probs[i] }

// Background returns the background distribution.
func (m *Matrix) Background() [dna.Size]float64 { return m.bg }

// MinLogOdds and MaxLogOdds bound the log-odds of any wildcard-free window.
func (m *Matrix) MinLogOdds() float64 { return m.minLO }
func (m *Matrix) MaxLogOdds() float64 { return m.maxLO }

// Consensus returns the most probable symbol per position.
func (m *Matrix) Consensus() string {
	out := make([]dna.Symbol, len(m.probs))
	for i, row := range m.probs {
		best := dna.A
		for b := dna.C; b < dna.Size; b++ {
			if row[b] > row[best] {
				best = b
			}
		}
		out[i] = best
	}
	return dna.Encode(out)
}
