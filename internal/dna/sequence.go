// internal/dna/sequence.go
package dna

import "fmt"

// Sequence is an immutable, decoded nucleotide sequence.
type Sequence struct {
	id   string
	syms []Symbol
}

// Decode validates text and builds a Sequence. Only A, C, G, T and N are
// accepted, in either case.
func Decode(id string, text []byte) (Sequence, error) {
	return decodeWith(id, text, &decodeTab)
}

// DecodeMasked is like Decode but turns IUPAC ambiguity codes into the
// wildcard and reads U as T. Gaps, digits and other characters still fail.
func DecodeMasked(id string, text []byte) (Sequence, error) {
	return decodeWith(id, text, &maskedTab)
}

func decodeWith(id string, text []byte, tab *[256]byte) (Sequence, error) {
	syms := make([]Symbol, len(text))
	for i, c := range text {
		v := tab[c]
		if v == bad {
			return Sequence{}, fmt.Errorf("%s: position %d: %w %q", id, i, ErrInvalidSymbol, c)
		}
		syms[i] = Symbol(v)
	}
	return Sequence{id: id, syms: syms}, nil
}

// FromSymbols builds a Sequence from already-coded symbols. The slice is copied.
func FromSymbols(id string, syms []Symbol) (Sequence, error) {
	out := make([]Symbol, len(syms))
	for i, s := range syms {
		if !s.Valid() {
			return Sequence{}, fmt.Errorf("%s: position %d: %w code %d", id, i, ErrInvalidSymbol, s)
		}
		out[i] = s
	}
	return Sequence{id: id, syms: out}, nil
}

func (s Sequence) ID() string { return s.id }
func (s Sequence) Len() int   { return len(s.syms) }

// At returns the symbol at 0-based offset i.
func (s Sequence) At(i int) Symbol { return s.syms[i] }

// Window returns the n symbols starting at pos. The result aliases the
// sequence and must not be modified.
func (s Sequence) Window(pos, n int) []Symbol { return s.syms[pos : pos+n : pos+n] }

// String renders the sequence as upper-case text.
func (s Sequence) String() string { return Encode(s.syms) }

// HasWildcard reports whether any position is the wildcard.
func (s Sequence) HasWildcard() bool {
	for _, c := range s.syms {
		if c == Wildcard {
			return true
		}
	}
	return false
}

// RevCompInto writes the reverse complement of w into dst (len(dst) must
// equal len(w)) and returns dst.
func RevCompInto(dst, w []Symbol) []Symbol {
	n := len(w)
	for i := 0; i < n; i++ {
		dst[i] = w[n-1-i].Complement()
	}
	return dst
}

// RevComp returns a freshly allocated reverse complement of w.
func RevComp(w []Symbol) []Symbol {
	if len(w) == 0 {
		return nil
	}
	return RevCompInto(make([]Symbol, len(w)), w)
}
