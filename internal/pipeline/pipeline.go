// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"modscan/internal/dna"
	"modscan/internal/fasta"
	"modscan/internal/hit"
	"modscan/internal/score"
)

// Config controls the scanning pipeline.
type Config struct {
	Threads   int  // number of worker goroutines (>=1)
	ChunkSize int  // FASTA chunking window; 0 disables chunking
	Overlap   int  // overlap between chunks; raised to the longest matrix minus one
	Strict    bool // reject IUPAC ambiguity codes instead of reading them as N
	Log       logrus.FieldLogger
}

// Key identifies a hit in record coordinates, used to drop duplicates
// produced by overlapping chunks.
type Key struct {
	File, Record int
	Scanner      int
	Pos          int
	Strand       hit.Strand
}

// Record is the scan result for one FASTA record.
type Record struct {
	File  string // path as given
	Index int    // 0-based record number within File
	ID    string
	Len   int
	Hits  hit.Collection // Source is ID; sorted by position, forward first
}

type job struct {
	file int
	rec  fasta.Record
}

type scored struct {
	scanner int
	hit.Hit
}

type result struct {
	file, index int
	id          string
	end         int
	hits        []scored
	err         error
}

// Scan scores every record of seqFiles with every scanner. Records are
// returned in file order then record order; output is identical for any
// Threads or ChunkSize. A record that fails to decode is logged and
// omitted. The first file-level error is returned after the remaining
// files have been scanned.
func Scan(ctx context.Context, cfg Config, seqFiles []string, scanners []*score.Scanner) ([]Record, error) {
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}
	if cfg.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		cfg.Log = l
	}
	if cfg.ChunkSize > 0 {
		if ov := MaxMatrixLen(scanners) - 1; ov > cfg.Overlap {
			cfg.Overlap = ov
		}
	}
	decode := dna.DecodeMasked
	if cfg.Strict {
		decode = dna.Decode
	}

	jobs := make(chan job, cfg.Threads*2)
	results := make(chan result, cfg.Threads*2)

	// Workers
	var wg sync.WaitGroup
	wg.Add(cfg.Threads)
	for w := 0; w < cfg.Threads; w++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case j, ok := <-jobs:
					if !ok {
						return
					}
					res := result{file: j.file, index: j.rec.Index, id: j.rec.ID, end: j.rec.Offset + len(j.rec.Seq)}
					seq, err := decode(j.rec.ID, j.rec.Seq)
					if err != nil {
						res.err = fmt.Errorf("offset %d: %w", j.rec.Offset, err)
					} else {
						for si, sc := range scanners {
							for _, h := range sc.Sequence(seq) {
								h.Position += j.rec.Offset
								res.hits = append(res.hits, scored{scanner: si, Hit: h})
							}
						}
					}
					select {
					case results <- res:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	// Collector + deduper
	type recKey struct{ file, index int }
	type acc struct {
		id   string
		n    int
		hits []scored
		err  error
	}
	var (
		cwg  sync.WaitGroup
		recs = map[recKey]*acc{}
		seen = make(map[Key]struct{}, 1<<12)
	)
	cwg.Add(1)
	go func() {
		defer cwg.Done()
		for r := range results {
			k := recKey{r.file, r.index}
			a := recs[k]
			if a == nil {
				a = &acc{id: r.id}
				recs[k] = a
			}
			a.n = max(a.n, r.end)
			if r.err != nil {
				if a.err == nil {
					a.err = r.err
				}
				continue
			}
			for _, h := range r.hits {
				hk := Key{File: r.file, Record: r.index, Scanner: h.scanner, Pos: h.Position, Strand: h.Strand}
				if _, dup := seen[hk]; dup {
					continue
				}
				seen[hk] = struct{}{}
				a.hits = append(a.hits, h)
			}
		}
	}()

	// Feed work
	var feedErr error
	for fi, fa := range seqFiles {
		err := fasta.StreamPathCtx(ctx, fa, cfg.ChunkSize, cfg.Overlap, func(rec fasta.Record) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case jobs <- job{file: fi, rec: rec}:
				return nil
			}
		})
		if ctx.Err() != nil {
			break
		}
		if err != nil && feedErr == nil {
			// Keep scanning other files; first error will be returned.
			feedErr = fmt.Errorf("%s: %w", fa, err)
		}
	}

	close(jobs)
	wg.Wait()
	close(results)
	cwg.Wait()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	keys := make([]recKey, 0, len(recs))
	for k := range recs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].file != keys[j].file {
			return keys[i].file < keys[j].file
		}
		return keys[i].index < keys[j].index
	})
	out := make([]Record, 0, len(keys))
	for _, k := range keys {
		a := recs[k]
		if a.err != nil {
			cfg.Log.WithFields(logrus.Fields{
				"file":   seqFiles[k.file],
				"record": a.id,
			}).Warnf("skipping record: %v", a.err)
			continue
		}
		out = append(out, Record{
			File:  seqFiles[k.file],
			Index: k.index,
			ID:    a.id,
			Len:   a.n,
			Hits:  hit.Collection{Source: a.id, Hits: sortHits(a.hits)},
		})
	}
	return out, feedErr
}

func sortHits(in []scored) []hit.Hit {
	sort.Slice(in, func(i, j int) bool {
		if hit.Less(in[i].Hit, in[j].Hit) {
			return true
		}
		if hit.Less(in[j].Hit, in[i].Hit) {
			return false
		}
		return in[i].scanner < in[j].scanner
	})
	out := make([]hit.Hit, len(in))
	for i, h := range in {
		out[i] = h.Hit
	}
	return out
}

// MaxMatrixLen returns the longest matrix among scanners.
func MaxMatrixLen(scanners []*score.Scanner) int {
	n := 0
	for _, sc := range scanners {
		n = max(n, sc.Matrix().Len())
	}
	return n
}
