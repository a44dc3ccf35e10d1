// internal/writers/registry.go
package writers

import (
	"fmt"
	"io"
	"sort"

	"modscan/pkg/api"
)

// HitStreamFunc drains in and writes every hit to w.
type HitStreamFunc func(w io.Writer, in <-chan api.HitV1, header bool) error

// ChainStreamFunc drains in and writes every chain to w.
type ChainStreamFunc func(w io.Writer, in <-chan api.ChainV1, header bool) error

// Writer registries (format → handler). Registered in init() of hit.go / chain.go.
var (
	HitWriters   = map[string]HitStreamFunc{}
	ChainWriters = map[string]ChainStreamFunc{}
)

// RegisterHit is last-wins.
func RegisterHit(format string, fn HitStreamFunc) { HitWriters[format] = fn }

// RegisterChain is last-wins.
func RegisterChain(format string, fn ChainStreamFunc) { ChainWriters[format] = fn }

// HitFormats lists registered hit formats, sorted.
func HitFormats() []string { return keys(HitWriters) }

// ChainFormats lists registered chain formats, sorted.
func ChainFormats() []string { return keys(ChainWriters) }

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func lookupHit(format string) (HitStreamFunc, error) {
	fn, ok := HitWriters[format]
	if !ok {
		return nil, fmt.Errorf("unknown hit format %q (no writer registered)", format)
	}
	return fn, nil
}

func lookupChain(format string) (ChainStreamFunc, error) {
	fn, ok := ChainWriters[format]
	if !ok {
		return nil, fmt.Errorf("unknown chain format %q (no writer registered)", format)
	}
	return fn, nil
}

// drain empties in so producers never block on an abandoned writer.
func drain[T any](in <-chan T) {
	for range in {
	}
}
