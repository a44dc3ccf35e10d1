// internal/score/scanner.go
package score

import (
	"errors"
	"fmt"
	"iter"
	"math"

	"gonum.org/v1/gonum/floats"

	"modscan/internal/dna"
	"modscan/internal/hit"
	"modscan/internal/pssm"
)

// ErrInvalidConfig is returned by NewScanner for out-of-range settings.
var ErrInvalidConfig = errors.New("invalid scanner config")

// DefaultPrior is the prior probability that an arbitrary window is a site.
const DefaultPrior = 0.5

// Config controls a Scanner.
type Config struct {
	Threshold     float64 // keep hits with p_binding > Threshold; <= 0 keeps every window
	Prior         float64 // 0 = DefaultPrior
	AllowWildcard bool    // score windows containing N instead of skipping them
}

// Scanner slides one matrix along sequences. It is read-only after
// construction and safe for concurrent use.
type Scanner struct {
	m          *pssm.Matrix
	cfg        Config
	logitPrior float64
}

// NewScanner validates cfg and binds it to m.
func NewScanner(m *pssm.Matrix, cfg Config) (*Scanner, error) {
	if m == nil || m.Len() == 0 {
		return nil, fmt.Errorf("%w: empty matrix", pssm.ErrMalformed)
	}
	if cfg.Prior == 0 {
		cfg.Prior = DefaultPrior
	}
	if !(cfg.Prior > 0 && cfg.Prior < 1) {
		return nil, fmt.Errorf("%w: prior %v must be in (0,1)", ErrInvalidConfig, cfg.Prior)
	}
	if math.IsNaN(cfg.Threshold) || cfg.Threshold > 1 {
		return nil, fmt.Errorf("%w: threshold %v must be <= 1", ErrInvalidConfig, cfg.Threshold)
	}
	return &Scanner{m: m, cfg: cfg, logitPrior: math.Log(cfg.Prior / (1 - cfg.Prior))}, nil
}

// Matrix returns the bound matrix.
func (s *Scanner) Matrix() *pssm.Matrix { return s.m }

// PBinding maps a log-odds score to the posterior probability of binding,
// sigmoid(logOdds + logit(prior)), clamped to [0,1].
func (s *Scanner) PBinding(logOdds float64) float64 {
	x := logOdds + s.logitPrior
	v := [2]float64{x, 0}
	p := math.Exp(x - floats.LogSumExp(v[:]))
	switch {
	case math.IsNaN(p):
		return 0
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// OneStrand yields (offset, Word score) for every valid start offset on the
// given strand, in ascending offset order. Offsets whose window contains a
// wildcard are skipped unless the scanner allows wildcards, so fewer than
// N-L+1 values are yielded when the sequence holds an N. The sequence
// is restartable: each range over it rescans from offset 0.
func (s *Scanner) OneStrand(seq dna.Sequence, strand hit.Strand) iter.Seq2[int, float64] {
	return func(yield func(int, float64) bool) {
		L := s.m.Len()
		n := seq.Len()
		if n < L {
			return
		}
		wild := wildPrefix(seq)
		buf := make([]dna.Symbol, L)
		for pos := 0; pos+L <= n; pos++ {
			if !s.cfg.AllowWildcard && wild[pos+L]-wild[pos] > 0 {
				continue
			}
			w := seq.Window(pos, L)
			if strand == hit.Reverse {
				w = dna.RevCompInto(buf, w)
			}
			if !yield(pos, wordSum(s.m, w)) {
				return
			}
		}
	}
}

// Sequence scores both strands at every offset and returns the hits whose
// binding probability exceeds the threshold, ordered by position with the
// forward strand first. With Threshold <= 0 that is 2*(N-L+1) hits for a
// sequence without wildcards. Windows containing N are skipped unless
// AllowWildcard is set, so each such window removes two hits.
func (s *Scanner) Sequence(seq dna.Sequence) []hit.Hit {
	L := s.m.Len()
	n := seq.Len()
	if n < L {
		return nil
	}
	wild := wildPrefix(seq)
	buf := make([]dna.Symbol, L)
	var out []hit.Hit
	for pos := 0; pos+L <= n; pos++ {
		if !s.cfg.AllowWildcard && wild[pos+L]-wild[pos] > 0 {
			continue
		}
		w := seq.Window(pos, L)
		for _, strand := range [...]hit.Strand{hit.Forward, hit.Reverse} {
			win := w
			if strand == hit.Reverse {
				win = dna.RevCompInto(buf, w)
			}
			lo := logOddsSum(s.m, win)
			p := s.PBinding(lo)
			if s.cfg.Threshold > 0 && !(p > s.cfg.Threshold) {
				continue
			}
			out = append(out, hit.Hit{
				BinderID:   s.m.ID,
				Location:   hit.Location{Position: pos, Length: L, Strand: strand},
				Score:      p,
				LogOdds:    lo,
				HasLogOdds: true,
			})
		}
	}
	return out
}

// Sequence is a one-shot helper: NewScanner then Scanner.Sequence.
func Sequence(m *pssm.Matrix, seq dna.Sequence, cfg Config) ([]hit.Hit, error) {
	sc, err := NewScanner(m, cfg)
	if err != nil {
		return nil, err
	}
	return sc.Sequence(seq), nil
}

// wildPrefix[i] counts wildcards in seq[0:i].
func wildPrefix(seq dna.Sequence) []int {
	n := seq.Len()
	out := make([]int, n+1)
	for i := 0; i < n; i++ {
		out[i+1] = out[i]
		if seq.At(i) == dna.Wildcard {
			out[i+1]++
		}
	}
	return out
}
