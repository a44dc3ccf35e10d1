// internal/fasta/reader.go
package fasta

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrFormat is returned for input that is not FASTA.
var ErrFormat = errors.New("fasta: malformed input")

// Record is one FASTA record, or a window of one.
type Record struct {
	ID     string // header ID (first word after '>')
	Index  int    // 0-based record number within its file
	Offset int    // 0-based start of Seq within the full record
	Seq    []byte
	IsLast bool // last window of the record
}

// StreamCtx parses FASTA from r and calls emit for each record, split into
// windows of chunkSize bases overlapping by overlap bases. chunkSize <= 0
// emits whole records. Cancellation is checked between lines and windows.
func StreamCtx(ctx context.Context, r io.Reader, chunkSize, overlap int, emit func(Record) error) error {
	if overlap < 0 {
		overlap = 0
	}
	sc := bufio.NewScanner(r)
	const maxLine = 64 * 1024 * 1024 // long single-line sequences
	sc.Buffer(make([]byte, 64*1024), maxLine)

	var (
		id    string
		index = -1
		seq   = make([]byte, 0, 1<<20)
	)

	flush := func() error {
		if index < 0 {
			return nil
		}
		step := chunkSize - overlap
		if chunkSize <= 0 || chunkSize >= len(seq) || step <= 0 {
			return emit(Record{ID: id, Index: index, Seq: append([]byte(nil), seq...), IsLast: true})
		}
		for off := 0; off < len(seq); off += step {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			end := min(off+chunkSize, len(seq))
			rec := Record{ID: id, Index: index, Offset: off, Seq: append([]byte(nil), seq[off:end]...), IsLast: end == len(seq)}
			if err := emit(rec); err != nil {
				return err
			}
			if rec.IsLast {
				break
			}
		}
		return nil
	}

	for sc.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line := sc.Bytes()
		if len(line) == 0 || line[0] == ';' {
			continue
		}
		if line[0] == '>' {
			if err := flush(); err != nil {
				return err
			}
			seq = seq[:0]
			index++
			id = parseHeaderID(line[1:])
			continue
		}
		if index < 0 {
			return fmt.Errorf("%w: sequence data before first header", ErrFormat)
		}
		seq = append(seq, bytes.TrimSpace(line)...)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("fasta scan: %w", err)
	}
	return flush()
}

// StreamPathCtx opens path (gzip and "-" aware) and streams it with StreamCtx.
func StreamPathCtx(ctx context.Context, path string, chunkSize, overlap int, emit func(Record) error) error {
	rc, err := Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()
	return StreamCtx(ctx, rc, chunkSize, overlap, emit)
}

// ReadAll returns every record of path as one window each.
func ReadAll(ctx context.Context, path string) ([]Record, error) {
	var out []Record
	err := StreamPathCtx(ctx, path, 0, 0, func(r Record) error {
		out = append(out, r)
		return nil
	})
	return out, err
}

func parseHeaderID(hdr []byte) string {
	hdr = bytes.TrimSpace(hdr)
	if i := bytes.IndexAny(hdr, " \t"); i >= 0 {
		return string(hdr[:i])
	}
	return string(hdr)
}
