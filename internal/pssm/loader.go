// internal/pssm/loader.go
package pssm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Kind tells the loader how to read matrix weights.
type Kind int

const (
	KindAuto          Kind = iota // probabilities if every row sums to 1, else counts
	KindCounts                    // arbitrary non-negative weights
	KindProbabilities             // each row must sum to 1
)

// ParseKind maps a flag value onto a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return KindAuto, nil
	case "counts":
		return KindCounts, nil
	case "probabilities", "probs":
		return KindProbabilities, nil
	}
	return KindAuto, fmt.Errorf("unknown matrix kind %q (auto|counts|probabilities)", s)
}

// LoadOptions configures Load and Parse.
type LoadOptions struct {
	Kind Kind
	Options
}

// Load reads every matrix in path. Two layouts are accepted, and may be mixed
// between records:
//
//	>ID optional name          >ID optional name
//	0.7 0.1 0.1 0.1            A [ 7 1 1 ]
//	0.1 0.7 0.1 0.1            C [ 1 7 1 ]
//	...                        G [ 1 1 7 ]
//	                           T [ 1 1 1 ]
//
// Rows-per-position on the left, JASPAR columns-per-position on the right.
// A file without a header line is one matrix named after the file.
func Load(path string, opt LoadOptions) ([]*Matrix, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fh.Close() }()
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Parse(fh, path, base, opt)
}

type record struct {
	id, name string
	line     int
	rows     [][]float64        // row layout
	cols     map[byte][]float64 // JASPAR layout
}

// Parse reads matrices from r. src labels error messages; defaultID names a
// headerless matrix.
func Parse(r io.Reader, src, defaultID string, opt LoadOptions) ([]*Matrix, error) {
	var (
		out []*Matrix
		cur *record
		ln  int
	)
	finish := func() error {
		if cur == nil {
			return nil
		}
		m, err := cur.matrix(src, opt)
		if err != nil {
			return err
		}
		out = append(out, m)
		cur = nil
		return nil
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		if line[0] == '>' {
			if err := finish(); err != nil {
				return nil, err
			}
			f := strings.Fields(line[1:])
			if len(f) == 0 {
				return nil, fmt.Errorf("%w: %s:%d: empty header", ErrMalformed, src, ln)
			}
			cur = &record{id: f[0], name: strings.Join(f[1:], " "), line: ln}
			continue
		}
		if cur == nil {
			cur = &record{id: defaultID, line: ln}
		}
		if err := cur.add(line, src, ln); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return out, nil
}

func (rec *record) add(line, src string, ln int) error {
	c := line[0] &^ 0x20
	if c == 'A' || c == 'C' || c == 'G' || c == 'T' {
		if len(rec.rows) > 0 {
			return fmt.Errorf("%w: %s:%d: mixed row and column layout", ErrMalformed, src, ln)
		}
		if rec.cols == nil {
			rec.cols = make(map[byte][]float64, 4)
		}
		if _, dup := rec.cols[c]; dup {
			return fmt.Errorf("%w: %s:%d: duplicate %c row", ErrMalformed, src, ln, c)
		}
		body := strings.NewReplacer("[", " ", "]", " ").Replace(line[1:])
		vals, err := parseFloats(strings.Fields(body))
		if err != nil {
			return fmt.Errorf("%w: %s:%d: %v", ErrMalformed, src, ln, err)
		}
		rec.cols[c] = vals
		return nil
	}
	if rec.cols != nil {
		return fmt.Errorf("%w: %s:%d: mixed row and column layout", ErrMalformed, src, ln)
	}
	vals, err := parseFloats(strings.Fields(line))
	if err != nil {
		return fmt.Errorf("%w: %s:%d: %v", ErrMalformed, src, ln, err)
	}
	rec.rows = append(rec.rows, vals)
	return nil
}

func (rec *record) matrix(src string, opt LoadOptions) (*Matrix, error) {
	rows := rec.rows
	if rec.cols != nil {
		if len(rec.cols) != 4 {
			return nil, fmt.Errorf("%w: %s:%d: %s needs A, C, G and T rows", ErrMalformed, src, rec.line, rec.id)
		}
		n := len(rec.cols['A'])
		for _, b := range []byte("CGT") {
			if len(rec.cols[b]) != n {
				return nil, fmt.Errorf("%w: %s:%d: %s rows differ in length", ErrMalformed, src, rec.line, rec.id)
			}
		}
		rows = make([][]float64, n)
		for i := 0; i < n; i++ {
			rows[i] = []float64{rec.cols['A'][i], rec.cols['C'][i], rec.cols['G'][i], rec.cols['T'][i]}
		}
	}

	kind := opt.Kind
	if kind == KindAuto {
		kind = KindProbabilities
		for _, r := range rows {
			if !floats.EqualWithinAbs(floats.Sum(r), 1, ProbTolerance) {
				kind = KindCounts
				break
			}
		}
	}
	var (
		m   *Matrix
		err error
	)
	if kind == KindProbabilities {
		m, err = FromProbabilities(rec.id, rows, opt.Options)
	} else {
		m, err = FromCounts(rec.id, rows, opt.Options)
	}
	if err != nil {
		return nil, fmt.Errorf("%s:%d: %w", src, rec.line, err)
	}
	m.Name = rec.name
	return m, nil
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", f)
		}
		out = append(out, v)
	}
	return out, nil
}
