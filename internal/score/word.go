// Package score evaluates PSSMs against sequence windows.
//
// Word and LogOdds score one window; Scanner slides a matrix along a whole
// sequence on both strands and turns log-odds into binding probabilities.
package score

import (
	"errors"
	"fmt"

	"modscan/internal/dna"
	"modscan/internal/pssm"
)

// ErrInvalidLength is returned when a window does not match the matrix length.
var ErrInvalidLength = errors.New("invalid length")

// Word returns the sum over positions of the matrix probability of the
// window's symbol. No log is taken.
//
// A wildcard is rejected unless allowWildcard is set; when allowed it
// contributes the mean probability of its position.
func Word(m *pssm.Matrix, w []dna.Symbol, allowWildcard bool) (float64, error) {
	if err := checkWindow(m, w, allowWildcard); err != nil {
		return 0, err
	}
	return wordSum(m, w), nil
}

// WordString decodes text through the alphabet codec and scores it with Word.
func WordString(m *pssm.Matrix, text string, allowWildcard bool) (float64, error) {
	w, err := decodeWindow(m, text)
	if err != nil {
		return 0, err
	}
	return Word(m, w, allowWildcard)
}

// LogOdds returns the summed log(p/bg) of the window. An allowed wildcard
// contributes 0: its probability marginalized over the background is 1
// under both models.
func LogOdds(m *pssm.Matrix, w []dna.Symbol, allowWildcard bool) (float64, error) {
	if err := checkWindow(m, w, allowWildcard); err != nil {
		return 0, err
	}
	return logOddsSum(m, w), nil
}

// LogOddsString is LogOdds over character input.
func LogOddsString(m *pssm.Matrix, text string, allowWildcard bool) (float64, error) {
	w, err := decodeWindow(m, text)
	if err != nil {
		return 0, err
	}
	return LogOdds(m, w, allowWildcard)
}

func decodeWindow(m *pssm.Matrix, text string) ([]dna.Symbol, error) {
	if len(text) != m.Len() {
		return nil, fmt.Errorf("%w: window %d, matrix %s has %d positions", ErrInvalidLength, len(text), m.ID, m.Len())
	}
	w := make([]dna.Symbol, len(text))
	for i := 0; i < len(text); i++ {
		s, err := dna.DecodeByte(text[i])
		if err != nil {
			return nil, fmt.Errorf("window position %d: %w", i, err)
		}
		w[i] = s
	}
	return w, nil
}

func checkWindow(m *pssm.Matrix, w []dna.Symbol, allowWildcard bool) error {
	if len(w) != m.Len() {
		return fmt.Errorf("%w: window %d, matrix %s has %d positions", ErrInvalidLength, len(w), m.ID, m.Len())
	}
	for i, s := range w {
		switch {
		case s < dna.Size:
		case s == dna.Wildcard && allowWildcard:
		case s == dna.Wildcard:
			return fmt.Errorf("window position %d: %w: wildcard not allowed", i, dna.ErrInvalidSymbol)
		default:
			return fmt.Errorf("window position %d: %w code %d", i, dna.ErrInvalidSymbol, s)
		}
	}
	return nil
}

// wordSum assumes a checked window.
func wordSum(m *pssm.Matrix, w []dna.Symbol) float64 {
	var sum float64
	for i, s := range w {
		if s == dna.Wildcard {
			sum += meanProb(m, i)
			continue
		}
		sum += m.Prob(i, s)
	}
	return sum
}

func logOddsSum(m *pssm.Matrix, w []dna.Symbol) float64 {
	var sum float64
	for i, s := range w {
		if s != dna.Wildcard {
			sum += m.LogOdds(i, s)
		}
	}
	return sum
}

func meanProb(m *pssm.Matrix, i int) float64 {
	row := m.Row(i)
	return (row[0] + row[1] + row[2] + row[3]) / dna.Size
}
