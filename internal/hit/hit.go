// Package hit holds the located, scored binding-site records shared by the
// scoring engine, the chain selector and the writers.
package hit

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrInvalidLocation is returned for non-positive lengths, negative
	// positions and positions past the end of the scored sequence.
	ErrInvalidLocation = errors.New("invalid location")
	// ErrInvalidScore is returned for scores outside [0,1].
	ErrInvalidScore = errors.New("invalid score")
)

// Strand is the reading direction of a hit.
type Strand int8

const (
	Forward Strand = 1
	Reverse Strand = -1
)

func (s Strand) String() string {
	switch s {
	case Forward:
		return "+"
	case Reverse:
		return "-"
	}
	return "?"
}

// Name returns the long wire name ("forward" / "reverse").
func (s Strand) Name() string {
	switch s {
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	}
	return ""
}

// ParseStrand accepts "+", "-", "forward", "reverse", "1" and "-1".
func ParseStrand(v string) (Strand, error) {
	switch v {
	case "+", "forward", "fwd", "1":
		return Forward, nil
	case "-", "reverse", "rev", "revcomp", "-1":
		return Reverse, nil
	}
	return 0, fmt.Errorf("%w: unknown strand %q", ErrInvalidLocation, v)
}

// Location is a half-open interval [Position, Position+Length) on a strand.
type Location struct {
	Position int
	Length   int
	Strand   Strand
}

// End returns the exclusive end coordinate.
func (l Location) End() int { return l.Position + l.Length }

// Center2 returns twice the centre coordinate, which keeps centres integral.
func (l Location) Center2() int { return 2*l.Position + l.Length }

// Overlaps reports whether the two intervals share at least one base.
// Strand is ignored: both strands of a site occupy the same bases.
func (l Location) Overlaps(o Location) bool {
	return l.Position < o.End() && o.Position < l.End()
}

// Validate checks Length > 0 and Position >= 0.
func (l Location) Validate() error {
	if l.Length <= 0 {
		return fmt.Errorf("%w: length %d", ErrInvalidLocation, l.Length)
	}
	if l.Position < 0 {
		return fmt.Errorf("%w: position %d", ErrInvalidLocation, l.Position)
	}
	if l.Strand != Forward && l.Strand != Reverse {
		return fmt.Errorf("%w: strand %d", ErrInvalidLocation, l.Strand)
	}
	return nil
}

// ValidateIn additionally checks that the location fits a sequence of length n.
func (l Location) ValidateIn(n int) error {
	if err := l.Validate(); err != nil {
		return err
	}
	if l.End() > n {
		return fmt.Errorf("%w: [%d,%d) exceeds sequence length %d", ErrInvalidLocation, l.Position, l.End(), n)
	}
	return nil
}

// Hit is one scored match of a binder. Score is the binding probability.
type Hit struct {
	BinderID string
	Location
	Score float64

	LogOdds    float64
	HasLogOdds bool
}

// Validate checks the location and that Score lies in [0,1].
func (h Hit) Validate() error {
	if err := h.Location.Validate(); err != nil {
		return err
	}
	if math.IsNaN(h.Score) || h.Score < 0 || h.Score > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidScore, h.Score)
	}
	return nil
}

// Less orders hits by position, forward strand first, then end and binder.
func Less(a, b Hit) bool {
	if a.Position != b.Position {
		return a.Position < b.Position
	}
	if a.Strand != b.Strand {
		return a.Strand > b.Strand
	}
	if a.Length != b.Length {
		return a.Length < b.Length
	}
	return a.BinderID < b.BinderID
}

// Collection is the ordered hit list of one source (sequence or species).
type Collection struct {
	Source string
	Hits   []Hit
}

// Len returns the number of hits.
func (c Collection) Len() int { return len(c.Hits) }

// Sort orders the hits in place with Less. The sort is stable.
func (c Collection) Sort() {
	sort.SliceStable(c.Hits, func(i, j int) bool { return Less(c.Hits[i], c.Hits[j]) })
}

// Clone returns a deep copy.
func (c Collection) Clone() Collection {
	return Collection{Source: c.Source, Hits: append([]Hit(nil), c.Hits...)}
}

// Filter returns a new collection with the hits for which keep is true.
func (c Collection) Filter(keep func(Hit) bool) Collection {
	out := Collection{Source: c.Source}
	for _, h := range c.Hits {
		if keep(h) {
			out.Hits = append(out.Hits, h)
		}
	}
	return out
}
