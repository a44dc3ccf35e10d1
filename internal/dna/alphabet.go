// internal/dna/alphabet.go
package dna

import (
	"errors"
	"fmt"
)

// Symbol is the integer code of one nucleotide.
type Symbol uint8

// Core symbols index PSSM columns directly; Wildcard never does.
const (
	A Symbol = iota
	C
	G
	T
	Wildcard

	// Size is the number of scoring symbols (wildcard excluded).
	Size = 4
)

// ErrInvalidSymbol is returned for characters or codes outside the alphabet.
var ErrInvalidSymbol = errors.New("invalid symbol")

/* ----------------------------- lookup tables ----------------------------- */

const bad = 0xff

var (
	decodeTab [256]byte // strict: ACGTN only
	maskedTab [256]byte // IUPAC ambiguity codes collapse to Wildcard
)

func init() {
	for i := range decodeTab {
		decodeTab[i] = bad
		maskedTab[i] = bad
	}
	set := func(c byte, s Symbol) {
		decodeTab[c], decodeTab[c|0x20] = byte(s), byte(s)
		maskedTab[c], maskedTab[c|0x20] = byte(s), byte(s)
	}
	set('A', A)
	set('C', C)
	set('G', G)
	set('T', T)
	set('N', Wildcard)
	for _, c := range []byte("RYSWKMBDHVU") {
		maskedTab[c], maskedTab[c|0x20] = byte(Wildcard), byte(Wildcard)
	}
	// U is RNA thymine, not an ambiguity.
	maskedTab['U'], maskedTab['u'] = byte(T), byte(T)
}

var letters = [...]byte{'A', 'C', 'G', 'T', 'N'}

// Valid reports whether s is a core symbol or the wildcard.
func (s Symbol) Valid() bool { return s <= Wildcard }

// IsWildcard reports whether s is the wildcard.
func (s Symbol) IsWildcard() bool { return s == Wildcard }

// Letter returns the upper-case letter for s, or '?' for an invalid code.
func (s Symbol) Letter() byte {
	if !s.Valid() {
		return '?'
	}
	return letters[s]
}

func (s Symbol) String() string { return string(s.Letter()) }

// Complement returns the Watson-Crick partner; the wildcard maps to itself.
func (s Symbol) Complement() Symbol {
	if s < Size {
		return T - s
	}
	return s
}

// DecodeByte maps one character to its Symbol (case-insensitive).
func DecodeByte(c byte) (Symbol, error) {
	v := decodeTab[c]
	if v == bad {
		return 0, fmt.Errorf("%w %q", ErrInvalidSymbol, c)
	}
	return Symbol(v), nil
}

// Encode renders symbols back to upper-case text.
func Encode(syms []Symbol) string {
	b := make([]byte, len(syms))
	for i, s := range syms {
		b[i] = s.Letter()
	}
	return string(b)
}
