package score

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"modscan/internal/dna"
	"modscan/internal/hit"
	"modscan/internal/pssm"
)

func mustProbs(t *testing.T, rows [][]float64) *pssm.Matrix {
	t.Helper()
	m, err := pssm.FromProbabilities("m", rows, pssm.Options{})
	if err != nil {
		t.Fatalf("matrix: %v", err)
	}
	return m
}

func mustSeq(t *testing.T, s string) dna.Sequence {
	t.Helper()
	seq, err := dna.Decode("s", []byte(s))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return seq
}

// Golden regression: four near-deterministic columns plus one uniform
// column, built from log probabilities, scored against ACGTN.
func TestWordGoldenACGTN(t *testing.T) {
	lg := func(ps ...float64) []float64 {
		out := make([]float64, len(ps))
		for i, p := range ps {
			out[i] = math.Log(p)
		}
		return out
	}
	m, err := pssm.FromLogProbabilities("golden", [][]float64{
		lg(0.7, 0.1, 0.1, 0.1),
		lg(0.1, 0.7, 0.1, 0.1),
		lg(0.1, 0.1, 0.7, 0.1),
		lg(0.1, 0.1, 0.1, 0.7),
		lg(0.25, 0.25, 0.25, 0.25),
	}, pssm.Options{})
	if err != nil {
		t.Fatal(err)
	}
	w := []dna.Symbol{0, 1, 2, 3, dna.Wildcard}
	got, err := Word(m, w, true)
	if err != nil {
		t.Fatalf("Word: %v", err)
	}
	if math.Abs(got-3.05) > 1e-9 {
		t.Fatalf("golden score = %.12f, want 3.05", got)
	}
	gotS, err := WordString(m, "acgtn", true)
	if err != nil || math.Abs(gotS-got) > 1e-15 {
		t.Fatalf("WordString = %v, %v; want %v", gotS, err, got)
	}
	// Without opting in, the wildcard is refused.
	if _, err := Word(m, w, false); !errors.Is(err, dna.ErrInvalidSymbol) {
		t.Fatalf("wildcard accepted by default: %v", err)
	}
}

func TestWordMatchesAnalyticSum(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for L := 1; L <= 12; L++ {
		rows := make([][]float64, L)
		var want float64
		w := make([]dna.Symbol, L)
		for i := range rows {
			row := []float64{rng.Float64() + 0.01, rng.Float64() + 0.01, rng.Float64() + 0.01, rng.Float64() + 0.01}
			sum := row[0] + row[1] + row[2] + row[3]
			best := 0
			for b := range row {
				row[b] /= sum
				if row[b] > row[best] {
					best = b
				}
			}
			rows[i] = row
			w[i] = dna.Symbol(best)
			want += row[best]
		}
		m := mustProbs(t, rows)
		got, err := Word(m, w, false)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("L=%d: Word = %v, want %v", L, got, want)
		}
	}
}

func TestWordInvalidLength(t *testing.T) {
	for L := 1; L <= 8; L++ {
		rows := make([][]float64, L)
		for i := range rows {
			rows[i] = []float64{0.25, 0.25, 0.25, 0.25}
		}
		m := mustProbs(t, rows)
		for _, n := range []int{0, L - 1, L + 1, 2 * L} {
			if n == L || n < 0 {
				continue
			}
			if _, err := Word(m, make([]dna.Symbol, n), false); !errors.Is(err, ErrInvalidLength) {
				t.Errorf("L=%d n=%d: err = %v, want ErrInvalidLength", L, n, err)
			}
			if _, err := WordString(m, strings.Repeat("A", n), false); !errors.Is(err, ErrInvalidLength) {
				t.Errorf("L=%d n=%d string: err = %v", L, n, err)
			}
		}
	}
}

func TestWordInvalidSymbol(t *testing.T) {
	m := mustProbs(t, [][]float64{{0.25, 0.25, 0.25, 0.25}, {0.25, 0.25, 0.25, 0.25}})
	if _, err := WordString(m, "AX", true); !errors.Is(err, dna.ErrInvalidSymbol) || errors.Is(err, ErrInvalidLength) {
		t.Fatalf("undecodable char: %v", err)
	}
	if _, err := Word(m, []dna.Symbol{0, 7}, true); !errors.Is(err, dna.ErrInvalidSymbol) {
		t.Fatalf("bad code: %v", err)
	}
	if _, err := LogOddsString(m, "AN", false); !errors.Is(err, dna.ErrInvalidSymbol) {
		t.Fatalf("wildcard log-odds: %v", err)
	}
}

func TestLogOddsWildcardIsNeutral(t *testing.T) {
	m := mustProbs(t, [][]float64{{0.7, 0.1, 0.1, 0.1}, {0.1, 0.1, 0.1, 0.7}})
	full, _ := LogOddsString(m, "AT", false)
	half, err := LogOddsString(m, "AN", true)
	if err != nil {
		t.Fatal(err)
	}
	if want := math.Log(0.7 / 0.25); math.Abs(half-want) > 1e-12 {
		t.Fatalf("AN log-odds = %v, want %v", half, want)
	}
	if math.Abs(full-2*math.Log(0.7/0.25)) > 1e-12 {
		t.Fatalf("AT log-odds = %v", full)
	}
}

func TestSequenceCountsAllWindows(t *testing.T) {
	m := mustProbs(t, [][]float64{{0.7, 0.1, 0.1, 0.1}, {0.1, 0.7, 0.1, 0.1}, {0.1, 0.1, 0.7, 0.1}})
	sc, err := NewScanner(m, Config{Threshold: 0})
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{"", "AC", "ACG", "ACGTACGTTT", strings.Repeat("GATTACA", 20)} {
		hits := sc.Sequence(mustSeq(t, s))
		want := 0
		if len(s) >= m.Len() {
			want = 2 * (len(s) - m.Len() + 1)
		}
		if len(hits) != want {
			t.Errorf("len %d: %d hits, want %d", len(s), len(hits), want)
		}
	}
}

func TestWildcardWindowCounts(t *testing.T) {
	m := mustProbs(t, [][]float64{{0.7, 0.1, 0.1, 0.1}, {0.1, 0.7, 0.1, 0.1}, {0.1, 0.1, 0.7, 0.1}})
	// N at index 3 lies in the windows starting at 1, 2 and 3.
	seq := mustSeq(t, "ACGNACGTAC")
	cases := []struct {
		allow        bool
		oneStrand    int
		sequenceHits int
	}{
		{false, 5, 10},
		{true, 8, 16},
	}
	for _, tc := range cases {
		sc, err := NewScanner(m, Config{AllowWildcard: tc.allow})
		if err != nil {
			t.Fatal(err)
		}
		n := 0
		for range sc.OneStrand(seq, hit.Forward) {
			n++
		}
		if n != tc.oneStrand {
			t.Errorf("allow=%v: OneStrand yielded %d, want %d", tc.allow, n, tc.oneStrand)
		}
		if got := len(sc.Sequence(seq)); got != tc.sequenceHits {
			t.Errorf("allow=%v: Sequence returned %d hits, want %d", tc.allow, got, tc.sequenceHits)
		}
	}
}

func TestSequenceOrderAndIdempotence(t *testing.T) {
	m := mustProbs(t, [][]float64{{0.7, 0.1, 0.1, 0.1}, {0.1, 0.7, 0.1, 0.1}})
	sc, _ := NewScanner(m, Config{})
	seq := mustSeq(t, "ACGTTGCAACGT")
	a := sc.Sequence(seq)
	b := sc.Sequence(seq)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("repeated scans differ")
	}
	for i := 1; i < len(a); i++ {
		prev, cur := a[i-1], a[i]
		if cur.Position < prev.Position || (cur.Position == prev.Position && prev.Strand == hit.Reverse) {
			t.Fatalf("order broken at %d: %+v then %+v", i, prev, cur)
		}
	}
	for _, h := range a {
		if h.Score < 0 || h.Score > 1 || !h.HasLogOdds || h.BinderID != "m" || h.Length != 2 {
			t.Fatalf("bad hit %+v", h)
		}
		if err := h.Location.ValidateIn(seq.Len()); err != nil {
			t.Fatal(err)
		}
	}
}

func TestReverseStrandScoresRevComp(t *testing.T) {
	m := mustProbs(t, [][]float64{{0.7, 0.1, 0.1, 0.1}, {0.1, 0.7, 0.1, 0.1}, {0.1, 0.1, 0.1, 0.7}})
	sc, _ := NewScanner(m, Config{})
	// ACT on the forward strand; its reverse complement AGT carries ACT on the reverse strand.
	fw := sc.Sequence(mustSeq(t, "ACT"))
	rv := sc.Sequence(mustSeq(t, "AGT"))
	if len(fw) != 2 || len(rv) != 2 {
		t.Fatalf("hit counts %d %d", len(fw), len(rv))
	}
	if math.Abs(fw[0].LogOdds-rv[1].LogOdds) > 1e-12 || rv[1].Strand != hit.Reverse {
		t.Fatalf("forward %+v vs reverse %+v", fw[0], rv[1])
	}
}

func TestThresholdAndWildcardSkipping(t *testing.T) {
	m := mustProbs(t, [][]float64{{0.97, 0.01, 0.01, 0.01}, {0.01, 0.97, 0.01, 0.01}})
	sc, _ := NewScanner(m, Config{Threshold: 0.9})
	hits := sc.Sequence(mustSeq(t, "TTACTT"))
	if len(hits) != 1 || hits[0].Position != 2 || hits[0].Strand != hit.Forward {
		t.Fatalf("hits = %+v", hits)
	}

	all, _ := NewScanner(m, Config{})
	if got := len(all.Sequence(mustSeq(t, "ANCA"))); got != 2 {
		t.Fatalf("wildcard windows not skipped: %d hits", got)
	}
	wild, _ := NewScanner(m, Config{AllowWildcard: true})
	if got := len(wild.Sequence(mustSeq(t, "ANCA"))); got != 6 {
		t.Fatalf("AllowWildcard: %d hits, want 6", got)
	}
}

func TestOneStrandLazyRestartable(t *testing.T) {
	m := mustProbs(t, [][]float64{{0.7, 0.1, 0.1, 0.1}, {0.1, 0.7, 0.1, 0.1}})
	sc, _ := NewScanner(m, Config{})
	seq := mustSeq(t, "ACACG")
	collect := func() []float64 {
		var out []float64
		for pos, v := range sc.OneStrand(seq, hit.Forward) {
			if pos != len(out) {
				t.Fatalf("offset %d out of order", pos)
			}
			out = append(out, v)
		}
		return out
	}
	first, second := collect(), collect()
	if len(first) != 4 || !reflect.DeepEqual(first, second) {
		t.Fatalf("first %v second %v", first, second)
	}
	if math.Abs(first[0]-1.4) > 1e-9 {
		t.Fatalf("AC score = %v, want 1.4", first[0])
	}
	n := 0
	for range sc.OneStrand(seq, hit.Reverse) {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Fatal("early break not honoured")
	}
	for range sc.OneStrand(mustSeq(t, "A"), hit.Forward) {
		t.Fatal("short sequence yielded a window")
	}
}

func TestPBinding(t *testing.T) {
	m := mustProbs(t, [][]float64{{0.25, 0.25, 0.25, 0.25}})
	sc, _ := NewScanner(m, Config{})
	if got := sc.PBinding(0); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("PBinding(0) = %v", got)
	}
	prev := -1.0
	for _, x := range []float64{-1e6, -50, -1, 0, 1, 50, 1e6} {
		p := sc.PBinding(x)
		if p < 0 || p > 1 || p < prev {
			t.Fatalf("PBinding(%v) = %v (prev %v)", x, p, prev)
		}
		prev = p
	}
	skewed, _ := NewScanner(m, Config{Prior: 0.01})
	if got := skewed.PBinding(0); math.Abs(got-0.01) > 1e-12 {
		t.Fatalf("prior not applied: %v", got)
	}
}

func TestNewScannerValidates(t *testing.T) {
	m := mustProbs(t, [][]float64{{0.25, 0.25, 0.25, 0.25}})
	for _, cfg := range []Config{{Prior: 1}, {Prior: -0.2}, {Threshold: 1.5}, {Threshold: math.NaN()}} {
		if _, err := NewScanner(m, cfg); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("cfg %+v accepted: %v", cfg, err)
		}
	}
	if _, err := Sequence(nil, dna.Sequence{}, Config{}); !errors.Is(err, pssm.ErrMalformed) {
		t.Errorf("nil matrix: %v", err)
	}
}
