// internal/chainapp/input.go
package chainapp

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"modscan/internal/chaincli"
	"modscan/internal/fasta"
	"modscan/internal/hit"
	"modscan/internal/jsonlutil"
	"modscan/internal/jsonutil"
	"modscan/internal/output"
	"modscan/pkg/api"
)

// grouper merges hits by source in first-appearance order.
type grouper struct {
	order []string
	by    map[string]*api.CollectionV1
}

func (g *grouper) add(source string, hs ...api.HitV1) {
	if g.by == nil {
		g.by = map[string]*api.CollectionV1{}
	}
	c := g.by[source]
	if c == nil {
		c = &api.CollectionV1{Source: source}
		g.by[source] = c
		g.order = append(g.order, source)
	}
	c.Hits = append(c.Hits, hs...)
}

func (g *grouper) collections() ([]hit.Collection, error) {
	list := make([]api.CollectionV1, 0, len(g.order))
	for _, s := range g.order {
		list = append(list, *g.by[s])
	}
	return output.FromAPICollections(list)
}

// LoadCollections reads every input and returns the hit collections,
// merged by source name.
func LoadCollections(paths []string, format string) ([]hit.Collection, error) {
	var g grouper
	for _, p := range paths {
		if err := loadOne(&g, p, format); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	return g.collections()
}

func loadOne(g *grouper, path, format string) error {
	rc, err := fasta.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()
	br := bufio.NewReader(rc)

	if format == chaincli.InputAuto {
		format, err = sniff(br)
		if err != nil {
			return err
		}
	}
	switch format {
	case chaincli.InputJSON:
		var list []api.CollectionV1
		if err := jsonutil.DecodeStrict(br, &list); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		for _, c := range list {
			g.add(c.Source, c.Hits...)
		}
		return nil
	default:
		return jsonlutil.Decode[api.HitV1](br, func(_ int, h api.HitV1) error {
			g.add(h.Source, h)
			return nil
		})
	}
}

// sniff picks json for a leading '[' and jsonl otherwise.
func sniff(br *bufio.Reader) (string, error) {
	for {
		b, err := br.Peek(1)
		if err == io.EOF {
			return chaincli.InputJSONL, nil
		}
		if err != nil {
			return "", err
		}
		if len(bytes.TrimSpace(b)) == 0 {
			_, _ = br.ReadByte()
			continue
		}
		if b[0] == '[' {
			return chaincli.InputJSON, nil
		}
		return chaincli.InputJSONL, nil
	}
}
