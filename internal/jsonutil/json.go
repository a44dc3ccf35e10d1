// internal/jsonutil/json.go
package jsonutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidJSON wraps every DecodeStrict failure except an empty input (io.EOF).
var ErrInvalidJSON = errors.New("invalid JSON")

// EncodePretty writes v as indented JSON to w.
func EncodePretty(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// DecodeStrict reads a single JSON document from r into v, rejecting unknown fields.
func DecodeStrict(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return err
		}
		return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	return nil
}
