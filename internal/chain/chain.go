// Package chain selects the best-supported set of binding-site hits inside a
// bounded window.
//
// Hits from different collections (sequences, species) never conflict with
// each other; only hits of the same collection must not overlap. All chosen
// hits together must fit in one window.
package chain

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"modscan/internal/hit"
)

// ErrInvalidWindow is returned for a non-positive window or unknown span mode.
var ErrInvalidWindow = errors.New("invalid window")

// SpanMode selects how the extent of a chain is measured.
type SpanMode int

const (
	// SpanStartToEnd: last hit end minus first hit start.
	SpanStartToEnd SpanMode = iota
	// SpanCenterToCenter: distance between the outermost hit centres.
	SpanCenterToCenter
)

func (m SpanMode) String() string {
	switch m {
	case SpanStartToEnd:
		return "start-end"
	case SpanCenterToCenter:
		return "center"
	}
	return fmt.Sprintf("SpanMode(%d)", int(m))
}

// ParseSpanMode accepts "start-end" (default for "") and "center".
func ParseSpanMode(s string) (SpanMode, error) {
	switch strings.ToLower(s) {
	case "", "start-end", "start-to-end", "bounds":
		return SpanStartToEnd, nil
	case "center", "centre", "center-to-center":
		return SpanCenterToCenter, nil
	}
	return 0, fmt.Errorf("%w: unknown span mode %q", ErrInvalidWindow, s)
}

// Config controls Select.
type Config struct {
	Window int
	Span   SpanMode
}

func (c Config) validate() error {
	if c.Window <= 0 {
		return fmt.Errorf("%w: window %d must be positive", ErrInvalidWindow, c.Window)
	}
	if c.Span != SpanStartToEnd && c.Span != SpanCenterToCenter {
		return fmt.Errorf("%w: span mode %d", ErrInvalidWindow, int(c.Span))
	}
	return nil
}

// Member is a chosen hit tagged with the collection it came from.
type Member struct {
	Source     int    // index into the input collections
	SourceName string // Collection.Source
	hit.Hit
}

// Chain is the selection result, ordered by position.
type Chain struct {
	Members []Member
	Total   float64
}

// Len returns the number of chosen hits.
func (c Chain) Len() int { return len(c.Members) }

// Extent returns last end minus first start over all members, 0 if empty.
func (c Chain) Extent() int {
	if len(c.Members) == 0 {
		return 0
	}
	lo, hi := c.Members[0].Position, c.Members[0].End()
	for _, m := range c.Members[1:] {
		lo = min(lo, m.Position)
		hi = max(hi, m.End())
	}
	return hi - lo
}

// AnalyseMaxChain is Select with the default start-to-end span.
func AnalyseMaxChain(cols []hit.Collection, window int) (Chain, error) {
	return Select(cols, Config{Window: window})
}

// Select returns the maximum-total-score chain. Ties go to the chain with
// fewer hits, then to the one whose first hit starts earliest.
//
// Every chain has a leftmost hit, so each distinct hit start (or centre) a
// is tried as the anchor of a window [a, a+window]. Anchors are handled in
// blocks that share a cut point c with a <= c <= a+window. Inside a block
// each collection's selection splits at c into hits ending at or before c,
// hits starting at or after c, and at most one hit crossing c. The first
// two parts are prefix maxima built by one sweep each, so every anchor of
// the block is answered by lookup. The cost is O(H log H) for H hits plus
// one extra sweep per hit crossing a cut point.
func Select(cols []hit.Collection, cfg Config) (Chain, error) {
	if err := cfg.validate(); err != nil {
		return Chain{}, err
	}
	tracks, err := prepare(cols, cfg.Span)
	if err != nil {
		return Chain{}, err
	}
	ext := cfg.Window
	if cfg.Span == SpanCenterToCenter {
		ext = 2 * cfg.Window // coordinates are kept doubled
	}

	var (
		best       value
		bestAnchor int
		keys       = anchors(tracks)
		vals       []value
	)
	for lo := 0; lo < len(keys); {
		cut := keys[lo] + ext
		hi := lo + sort.SearchInts(keys[lo:], cut+1)
		block := keys[lo:hi]
		vals = append(vals[:0], make([]value, len(block))...)
		for _, tr := range tracks {
			addBlock(vals, block, tr, cut, ext)
		}
		for i, v := range vals {
			if v.cmp(best) > 0 {
				best, bestAnchor = v, block[i]
			}
		}
		lo = hi
	}
	if best.count == 0 {
		return Chain{}, nil
	}
	picks := make([][]int, len(tracks))
	for ti, tr := range tracks {
		_, picks[ti] = schedule(inWindow(tr, bestAnchor, ext), nil)
	}
	return assemble(cols, picks), nil
}

/* ------------------------------- internals ------------------------------- */

const tieEps = 1e-9

// value ranks selections: higher score, then fewer hits, then the earlier
// first hit. first is meaningful only when count > 0.
type value struct {
	score float64
	count int
	first int
}

func unit(it item) value { return value{it.score, 1, it.pos} }

func (a value) add(b value) value {
	switch {
	case a.count == 0:
		return b
	case b.count == 0:
		return a
	}
	return value{a.score + b.score, a.count + b.count, min(a.first, b.first)}
}

// cmp orders by score (within tolerance), then by fewer hits, then by the
// earlier first hit.
func (a value) cmp(b value) int {
	tol := tieEps * math.Max(1, math.Max(math.Abs(a.score), math.Abs(b.score)))
	switch {
	case a.score > b.score+tol:
		return 1
	case b.score > a.score+tol:
		return -1
	case a.count < b.count:
		return 1
	case a.count > b.count:
		return -1
	case a.count == 0:
		return 0
	case a.first < b.first:
		return 1
	case a.first > b.first:
		return -1
	}
	return 0
}

func better(a, b value) value {
	if b.cmp(a) > 0 {
		return b
	}
	return a
}

type item struct {
	idx   int // index into the source collection
	pos   int // hit position
	key   int // anchor coordinate: start, or doubled centre
	limit int // must not pass anchor+extent: end, or doubled centre
	start int // occupied bases [start, end), doubled in centre mode
	end   int
	score float64
}

// prepare validates hits and builds one key-sorted track per collection.
// Zero-score hits are dropped: they never raise the total and would only
// lengthen a chain.
func prepare(cols []hit.Collection, span SpanMode) ([][]item, error) {
	tracks := make([][]item, len(cols))
	for ci, c := range cols {
		tr := make([]item, 0, len(c.Hits))
		for hi, h := range c.Hits {
			if err := h.Validate(); err != nil {
				return nil, fmt.Errorf("collection %d (%s) hit %d: %w", ci, c.Source, hi, err)
			}
			if h.Score == 0 {
				continue
			}
			it := item{idx: hi, pos: h.Position, start: h.Position, end: h.End(), score: h.Score}
			if span == SpanCenterToCenter {
				it.start, it.end = 2*it.start, 2*it.end
				it.key, it.limit = h.Center2(), h.Center2()
			} else {
				it.key, it.limit = h.Position, h.End()
			}
			tr = append(tr, it)
		}
		sort.SliceStable(tr, func(i, j int) bool {
			if tr[i].key != tr[j].key {
				return tr[i].key < tr[j].key
			}
			return hit.Less(c.Hits[tr[i].idx], c.Hits[tr[j].idx])
		})
		tracks[ci] = tr
	}
	return tracks, nil
}

func anchors(tracks [][]item) []int {
	var keys []int
	for _, tr := range tracks {
		for _, it := range tr {
			keys = append(keys, it.key)
		}
	}
	sort.Ints(keys)
	out := keys[:0]
	for i, k := range keys {
		if i == 0 || k != keys[i-1] {
			out = append(out, k)
		}
	}
	return out
}

// inWindow returns the items of a key-sorted track lying inside the window
// anchored at a.
func inWindow(tr []item, a, ext int) []item {
	var out []item
	for i := sort.Search(len(tr), func(k int) bool { return tr[k].key >= a }); i < len(tr) && tr[i].key <= a+ext; i++ {
		if tr[i].limit <= a+ext {
			out = append(out, tr[i])
		}
	}
	return out
}

// addBlock adds the best selection of one track at every anchor in block to
// vals. Every anchor a satisfies a <= cut <= a+ext, so hits ending at or
// before cut always pass the upper window bound and hits starting at or
// after cut always pass the lower one.
func addBlock(vals []value, block []int, tr []item, cut, ext int) {
	var (
		left, right, cross []item
		maxLimit           = cut + ext
	)
	i := sort.Search(len(tr), func(k int) bool { return tr[k].key >= block[0] })
	for ; i < len(tr) && tr[i].key <= maxLimit; i++ {
		switch it := tr[i]; {
		case it.limit > maxLimit:
		case it.end <= cut:
			left = append(left, it)
		case it.start >= cut:
			right = append(right, it)
		default:
			cross = append(cross, it)
		}
	}
	if len(left)+len(right)+len(cross) == 0 {
		return
	}

	type crossing struct {
		it          item
		left, right table
	}
	l, r := leftTable(left), rightTable(right)
	xs := make([]crossing, len(cross))
	for k, it := range cross {
		xs[k] = crossing{it: it, left: leftTable(endingBy(left, it.start)), right: rightTable(startingFrom(right, it.end))}
	}
	for ai, a := range block {
		v := l.query(a).add(r.query(a + ext))
		for _, x := range xs {
			if x.it.key < a || x.it.limit > a+ext {
				continue
			}
			v = better(v, x.left.query(a).add(unit(x.it)).add(x.right.query(a+ext)))
		}
		vals[ai] = vals[ai].add(v)
	}
}

func endingBy(items []item, pos int) []item {
	var out []item
	for _, it := range items {
		if it.end <= pos {
			out = append(out, it)
		}
	}
	return out
}

func startingFrom(items []item, pos int) []item {
	var out []item
	for _, it := range items {
		if it.start >= pos {
			out = append(out, it)
		}
	}
	return out
}

// table keeps prefix maxima of values ordered by a bound and answers the
// best value among entries whose bound passes q.
type table struct {
	bounds []int
	best   []value
	desc   bool // entries with bound >= q pass; otherwise bound <= q
}

func newTable(bounds []int, vals []value, desc bool) table {
	idx := make([]int, len(bounds))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		if desc {
			return bounds[idx[i]] > bounds[idx[j]]
		}
		return bounds[idx[i]] < bounds[idx[j]]
	})
	t := table{bounds: make([]int, len(idx)), best: make([]value, len(idx)), desc: desc}
	for k, i := range idx {
		t.bounds[k], t.best[k] = bounds[i], vals[i]
		if k > 0 {
			t.best[k] = better(t.best[k-1], vals[i])
		}
	}
	return t
}

func (t table) query(q int) value {
	p := sort.Search(len(t.bounds), func(m int) bool {
		if t.desc {
			return t.bounds[m] < q
		}
		return t.bounds[m] > q
	})
	if p == 0 {
		return value{}
	}
	return t.best[p-1]
}

// leftTable answers "best selection among items with key >= a". A selection
// passes when its leftmost item does, since the others lie further right.
func leftTable(items []item) table {
	byStart := append([]item(nil), items...)
	sort.SliceStable(byStart, func(i, j int) bool { return byStart[i].start > byStart[j].start })
	var (
		n      = len(byStart)
		starts = make([]int, n)
		pre    = make([]value, n) // best over byStart[:k+1]
		keys   = make([]int, n)
		heads  = make([]value, n) // best selection led by byStart[k]
	)
	for k, it := range byStart {
		p := sort.Search(k, func(m int) bool { return starts[m] < it.end })
		v := unit(it)
		if p > 0 {
			v = v.add(pre[p-1])
		}
		starts[k], keys[k], heads[k], pre[k] = it.start, it.key, v, v
		if k > 0 {
			pre[k] = better(pre[k-1], v)
		}
	}
	return newTable(keys, heads, true)
}

// rightTable answers "best selection among items with limit <= b". A
// selection passes when its rightmost item does.
func rightTable(items []item) table {
	byEnd := append([]item(nil), items...)
	sort.SliceStable(byEnd, func(i, j int) bool { return byEnd[i].end < byEnd[j].end })
	var (
		n      = len(byEnd)
		ends   = make([]int, n)
		pre    = make([]value, n)
		limits = make([]int, n)
		tails  = make([]value, n) // best selection closed by byEnd[k]
	)
	for k, it := range byEnd {
		p := sort.Search(k, func(m int) bool { return ends[m] > it.start })
		v := unit(it)
		if p > 0 {
			v = pre[p-1].add(v)
		}
		ends[k], limits[k], tails[k], pre[k] = it.end, it.limit, v, v
		if k > 0 {
			pre[k] = better(pre[k-1], v)
		}
	}
	return newTable(limits, tails, false)
}

// schedule solves weighted interval scheduling over items (mutually
// independent apart from overlap) and appends the chosen collection
// indices to dst.
func schedule(items []item, dst []int) (value, []int) {
	n := len(items)
	if n == 0 {
		return value{}, dst
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].end != items[j].end {
			return items[i].end < items[j].end
		}
		return items[i].start < items[j].start
	})
	pred := make([]int, n) // number of items ending at or before items[j].start
	for j := range items {
		s := items[j].start
		pred[j] = sort.Search(j, func(i int) bool { return items[i].end > s })
	}
	dp := make([]value, n+1)
	take := make([]bool, n+1)
	for j := 0; j < n; j++ {
		with := dp[pred[j]].add(unit(items[j]))
		if with.cmp(dp[j]) > 0 {
			dp[j+1], take[j+1] = with, true
		} else {
			dp[j+1] = dp[j]
		}
	}
	for j := n; j > 0; {
		if take[j] {
			dst = append(dst, items[j-1].idx)
			j = pred[j-1]
		} else {
			j--
		}
	}
	return dp[n], dst
}

func assemble(cols []hit.Collection, picks [][]int) Chain {
	var ch Chain
	for ci, idxs := range picks {
		for _, idx := range idxs {
			ch.Members = append(ch.Members, Member{Source: ci, SourceName: cols[ci].Source, Hit: cols[ci].Hits[idx]})
		}
	}
	sort.SliceStable(ch.Members, func(i, j int) bool {
		a, b := ch.Members[i], ch.Members[j]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if a.Strand != b.Strand {
			return a.Strand > b.Strand
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return hit.Less(a.Hit, b.Hit)
	})
	for _, m := range ch.Members {
		ch.Total += m.Score
	}
	return ch
}
