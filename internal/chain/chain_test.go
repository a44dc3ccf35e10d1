package chain

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"modscan/internal/hit"
)

func h(id string, pos, length int, score float64) hit.Hit {
	return hit.Hit{BinderID: id, Location: hit.Location{Position: pos, Length: length, Strand: hit.Forward}, Score: score}
}

func col(src string, hs ...hit.Hit) hit.Collection { return hit.Collection{Source: src, Hits: hs} }

// checkChain asserts the structural guarantees of a selection.
func checkChain(t *testing.T, ch Chain, cfg Config) {
	t.Helper()
	var total float64
	for i, a := range ch.Members {
		total += a.Score
		for _, b := range ch.Members[i+1:] {
			if a.Source == b.Source && a.Overlaps(b.Location) {
				t.Fatalf("overlapping members from source %d: %+v %+v", a.Source, a, b)
			}
		}
		if i > 0 && ch.Members[i-1].Position > a.Position {
			t.Fatalf("members out of order: %+v", ch.Members)
		}
	}
	if math.Abs(total-ch.Total) > 1e-9 {
		t.Fatalf("Total %v != sum %v", ch.Total, total)
	}
	if len(ch.Members) > 0 && spanOf(ch.Members, cfg.Span) > cfg.Window {
		t.Fatalf("span %d exceeds window %d", spanOf(ch.Members, cfg.Span), cfg.Window)
	}
}

func spanOf(ms []Member, mode SpanMode) int {
	if mode == SpanCenterToCenter {
		lo, hi := ms[0].Center2(), ms[0].Center2()
		for _, m := range ms {
			lo, hi = min(lo, m.Center2()), max(hi, m.Center2())
		}
		return (hi - lo + 1) / 2
	}
	lo, hi := ms[0].Position, ms[0].End()
	for _, m := range ms {
		lo, hi = min(lo, m.Position), max(hi, m.End())
	}
	return hi - lo
}

func TestThreeMutuallyOverlappingPicksBest(t *testing.T) {
	c := col("s", h("A", 5, 10, 0.5), h("B", 5, 10, 0.3), h("C", 5, 10, 0.7))
	ch, err := AnalyseMaxChain([]hit.Collection{c}, 1_000_000)
	if err != nil {
		t.Fatal(err)
	}
	if ch.Len() != 1 || ch.Members[0].BinderID != "C" || math.Abs(ch.Total-0.7) > 1e-12 {
		t.Fatalf("chain = %+v", ch)
	}
}

func TestTwoCollectionsBothChosen(t *testing.T) {
	a := col("human", h("X", 100, 10, 0.6))
	b := col("mouse", h("Y", 120, 10, 0.8))
	ch, err := AnalyseMaxChain([]hit.Collection{a, b}, 5000)
	if err != nil {
		t.Fatal(err)
	}
	if ch.Len() != 2 || math.Abs(ch.Total-1.4) > 1e-12 {
		t.Fatalf("chain = %+v", ch)
	}
	if ch.Members[0].SourceName != "human" || ch.Members[1].Source != 1 {
		t.Fatalf("provenance lost: %+v", ch.Members)
	}
}

func TestIdenticalHitsAcrossCollectionsAreIndependent(t *testing.T) {
	x := h("X", 10, 8, 0.9)
	ch, err := AnalyseMaxChain([]hit.Collection{col("a", x), col("b", x)}, 100)
	if err != nil {
		t.Fatal(err)
	}
	if ch.Len() != 2 || math.Abs(ch.Total-1.8) > 1e-12 {
		t.Fatalf("chain = %+v", ch)
	}
}

func TestDisjointHitsAllChosen(t *testing.T) {
	c := col("s", h("a", 0, 5, 0.1), h("b", 5, 5, 0.2), h("c", 20, 5, 0.3), h("d", 40, 5, 0.4))
	ch, err := AnalyseMaxChain([]hit.Collection{c}, 45)
	if err != nil {
		t.Fatal(err)
	}
	if ch.Len() != 4 || math.Abs(ch.Total-1.0) > 1e-12 {
		t.Fatalf("chain = %+v", ch)
	}
	checkChain(t, ch, Config{Window: 45})
}

func TestWindowLimitsChain(t *testing.T) {
	c := col("s", h("a", 0, 5, 0.5), h("b", 10, 5, 0.5), h("c", 100, 5, 0.9))
	ch, err := AnalyseMaxChain([]hit.Collection{c}, 15)
	if err != nil {
		t.Fatal(err)
	}
	if ch.Len() != 2 || ch.Members[0].BinderID != "a" || ch.Members[1].BinderID != "b" {
		t.Fatalf("chain = %+v", ch)
	}
	ch, _ = AnalyseMaxChain([]hit.Collection{c}, 14)
	if ch.Len() != 1 || ch.Members[0].BinderID != "c" {
		t.Fatalf("window 14 chain = %+v", ch)
	}
}

func TestWindowSmallerThanHitsIsEmpty(t *testing.T) {
	c := col("s", h("a", 0, 10, 0.5), h("b", 30, 12, 0.9))
	ch, err := AnalyseMaxChain([]hit.Collection{c}, 9)
	if err != nil {
		t.Fatal(err)
	}
	if ch.Len() != 0 || ch.Total != 0 {
		t.Fatalf("chain = %+v", ch)
	}
}

func TestEmptyInputs(t *testing.T) {
	for _, cols := range [][]hit.Collection{nil, {}, {col("a"), col("b")}} {
		ch, err := AnalyseMaxChain(cols, 10)
		if err != nil || ch.Len() != 0 || ch.Total != 0 {
			t.Fatalf("cols %v: chain %+v err %v", cols, ch, err)
		}
	}
}

func TestInvalidInputs(t *testing.T) {
	if _, err := AnalyseMaxChain([]hit.Collection{col("s", h("a", 0, 0, 0.5))}, 10); !errors.Is(err, hit.ErrInvalidLocation) {
		t.Fatalf("zero length: %v", err)
	}
	if _, err := AnalyseMaxChain([]hit.Collection{col("s", h("a", -3, 2, 0.5))}, 10); !errors.Is(err, hit.ErrInvalidLocation) {
		t.Fatalf("negative position: %v", err)
	}
	if _, err := AnalyseMaxChain([]hit.Collection{col("s", h("a", 0, 2, math.NaN()))}, 10); !errors.Is(err, hit.ErrInvalidScore) {
		t.Fatalf("nan score: %v", err)
	}
	for _, w := range []int{0, -5} {
		if _, err := AnalyseMaxChain(nil, w); !errors.Is(err, ErrInvalidWindow) {
			t.Fatalf("window %d: %v", w, err)
		}
	}
	if _, err := Select(nil, Config{Window: 5, Span: 9}); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("bad span: %v", err)
	}
}

func TestTieBreaks(t *testing.T) {
	// One hit worth 1.0 against two disjoint hits worth 0.5 each: fewer hits wins.
	c := col("s", h("big", 0, 10, 1.0), h("l", 0, 5, 0.5), h("r", 5, 5, 0.5))
	ch, _ := AnalyseMaxChain([]hit.Collection{c}, 100)
	if ch.Len() != 1 || ch.Members[0].BinderID != "big" {
		t.Fatalf("fewer-hits tie-break: %+v", ch)
	}
	// Equal single hits far apart: earliest start wins.
	c = col("s", h("late", 500, 5, 0.7), h("early", 100, 5, 0.7))
	ch, _ = AnalyseMaxChain([]hit.Collection{c}, 10)
	if ch.Len() != 1 || ch.Members[0].BinderID != "early" {
		t.Fatalf("earliest tie-break: %+v", ch)
	}
	// Zero-score hits are never padded in.
	c = col("s", h("z", 0, 5, 0), h("p", 10, 5, 0.2))
	ch, _ = AnalyseMaxChain([]hit.Collection{c}, 100)
	if ch.Len() != 1 || ch.Members[0].BinderID != "p" {
		t.Fatalf("zero-score hit chosen: %+v", ch)
	}
}

func TestTieBreakOverlappingEqualHits(t *testing.T) {
	// Y starts later but ends earlier than X; equal scores go to the earlier start.
	x, y := h("X", 0, 20, 1.0), h("Y", 5, 10, 1.0)
	for _, span := range []SpanMode{SpanStartToEnd, SpanCenterToCenter} {
		for _, c := range []hit.Collection{col("s", x, y), col("s", y, x)} {
			ch, err := Select([]hit.Collection{c}, Config{Window: 100, Span: span})
			if err != nil {
				t.Fatal(err)
			}
			if ch.Len() != 1 || ch.Members[0].BinderID != "X" {
				t.Fatalf("span %v input %v: chain = %+v", span, c.Hits, ch)
			}
		}
	}
	// Across sources: equal totals from two anchors keep the earlier one.
	a := col("a", h("late", 40, 5, 0.5))
	b := col("b", h("early", 10, 5, 0.5))
	ch, _ := AnalyseMaxChain([]hit.Collection{a, b}, 10)
	if ch.Len() != 1 || ch.Members[0].BinderID != "early" {
		t.Fatalf("cross-source tie-break: %+v", ch)
	}
}

func TestScoreAboveOneRejected(t *testing.T) {
	if _, err := AnalyseMaxChain([]hit.Collection{col("s", h("a", 0, 2, 1.5))}, 10); !errors.Is(err, hit.ErrInvalidScore) {
		t.Fatalf("score 1.5: %v", err)
	}
}

func TestLargeWindowOverManyHits(t *testing.T) {
	const n = 200_000
	hs := make([]hit.Hit, n)
	for i := range hs {
		hs[i] = h("m", 10*i, 5, 0.5)
	}
	cfg := Config{Window: 10 * n}
	ch, err := Select([]hit.Collection{col("s", hs...)}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if ch.Len() != n || math.Abs(ch.Total-0.5*n) > 1e-6 {
		t.Fatalf("chose %d hits totalling %v", ch.Len(), ch.Total)
	}
	for i, m := range ch.Members {
		if m.Position != 10*i {
			t.Fatalf("member %d at %d", i, m.Position)
		}
	}
}

func TestDenseOverlappingHits(t *testing.T) {
	// A hit at every offset: a window of 100 packs at most 16 six-base hits.
	const n = 50_000
	hs := make([]hit.Hit, n)
	for i := range hs {
		hs[i] = h("d", i, 6, 0.5)
	}
	cfg := Config{Window: 100}
	ch, err := Select([]hit.Collection{col("s", hs...)}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if ch.Len() != 16 || math.Abs(ch.Total-8) > 1e-9 || ch.Members[0].Position != 0 {
		t.Fatalf("chain = %d hits, total %v, first %+v", ch.Len(), ch.Total, ch.Members[0])
	}
	checkChain(t, ch, cfg)
}

func TestStrandsOverlapWithinSource(t *testing.T) {
	f := h("a", 10, 6, 0.6)
	r := h("a", 12, 6, 0.6)
	r.Strand = hit.Reverse
	ch, _ := AnalyseMaxChain([]hit.Collection{col("s", f, r)}, 100)
	if ch.Len() != 1 {
		t.Fatalf("overlapping opposite-strand hits both chosen: %+v", ch)
	}
}

func TestCenterToCenterSpan(t *testing.T) {
	// Centres at 5 and 25: fits a centre window of 20 but not a bounds window of 20.
	c := col("s", h("a", 0, 10, 0.5), h("b", 20, 10, 0.5))
	start, _ := Select([]hit.Collection{c}, Config{Window: 20})
	center, _ := Select([]hit.Collection{c}, Config{Window: 20, Span: SpanCenterToCenter})
	if start.Len() != 1 || center.Len() != 2 {
		t.Fatalf("start-end %d hits, center %d hits", start.Len(), center.Len())
	}
	checkChain(t, center, Config{Window: 20, Span: SpanCenterToCenter})
	if center.Extent() != 30 {
		t.Fatalf("Extent = %d", center.Extent())
	}
}

func TestParseSpanMode(t *testing.T) {
	for in, want := range map[string]SpanMode{"": SpanStartToEnd, "start-end": SpanStartToEnd, "center": SpanCenterToCenter} {
		got, err := ParseSpanMode(in)
		if err != nil || got != want {
			t.Errorf("ParseSpanMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseSpanMode("middle"); !errors.Is(err, ErrInvalidWindow) {
		t.Error("expected ErrInvalidWindow")
	}
	if SpanCenterToCenter.String() != "center" {
		t.Error("String changed")
	}
}

func TestDoesNotMutateInput(t *testing.T) {
	c := col("s", h("b", 30, 5, 0.2), h("a", 0, 5, 0.4))
	_, _ = AnalyseMaxChain([]hit.Collection{c}, 100)
	if c.Hits[0].BinderID != "b" || c.Hits[1].BinderID != "a" {
		t.Fatal("input reordered")
	}
}

// bruteForce enumerates every subset of the merged hits and returns the best
// total with its hit count and first position under the documented order.
func bruteForce(cols []hit.Collection, cfg Config) (best float64, count, first int) {
	var all []Member
	for ci, c := range cols {
		for _, x := range c.Hits {
			if x.Score > 0 {
				all = append(all, Member{Source: ci, Hit: x})
			}
		}
	}
	for mask := 1; mask < 1<<len(all); mask++ {
		var sel []Member
		ok := true
		for i := 0; i < len(all) && ok; i++ {
			if mask&(1<<i) == 0 {
				continue
			}
			for _, s := range sel {
				if s.Source == all[i].Source && s.Overlaps(all[i].Location) {
					ok = false
					break
				}
			}
			sel = append(sel, all[i])
		}
		if !ok {
			continue
		}
		if cfg.Span == SpanCenterToCenter {
			lo, hi := sel[0].Center2(), sel[0].Center2()
			for _, m := range sel {
				lo, hi = min(lo, m.Center2()), max(hi, m.Center2())
			}
			if hi-lo > 2*cfg.Window {
				continue
			}
		} else if spanOf(sel, SpanStartToEnd) > cfg.Window {
			continue
		}
		var sum float64
		lo := sel[0].Position
		for _, m := range sel {
			sum += m.Score
			lo = min(lo, m.Position)
		}
		switch {
		case sum > best+1e-9:
		case sum < best-1e-9:
			continue
		case len(sel) < count:
		case len(sel) > count:
			continue
		case lo >= first:
			continue
		}
		best, count, first = sum, len(sel), lo
	}
	return best, count, first
}

func TestRandomizedAgainstBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	strands := []hit.Strand{hit.Forward, hit.Reverse}
	for iter := 0; iter < 300; iter++ {
		ncol := 1 + rng.Intn(3)
		total := 0
		cols := make([]hit.Collection, ncol)
		for ci := range cols {
			n := rng.Intn(5)
			if total+n > 11 {
				n = 11 - total
			}
			total += n
			for k := 0; k < n; k++ {
				x := hit.Hit{
					BinderID: string(rune('a' + k)),
					Location: hit.Location{Position: rng.Intn(60), Length: 1 + rng.Intn(12), Strand: strands[rng.Intn(2)]},
					Score:    float64(rng.Intn(100)) / 100,
				}
				cols[ci].Hits = append(cols[ci].Hits, x)
			}
		}
		cfg := Config{Window: 1 + rng.Intn(50), Span: SpanMode(rng.Intn(2))}
		ch, err := Select(cols, cfg)
		if err != nil {
			t.Fatalf("iter %d: %v", iter, err)
		}
		checkChain(t, ch, cfg)
		want, n, first := bruteForce(cols, cfg)
		if math.Abs(ch.Total-want) > 1e-9 || ch.Len() != n {
			t.Fatalf("iter %d cfg %+v: total %v (%d hits), brute force %v (%d hits)\ninput %+v\nchain %+v", iter, cfg, ch.Total, ch.Len(), want, n, cols, ch)
		}
		if n > 0 && ch.Members[0].Position != first {
			t.Fatalf("iter %d cfg %+v: first hit at %d, brute force %d\ninput %+v\nchain %+v", iter, cfg, ch.Members[0].Position, first, cols, ch)
		}
	}
}
