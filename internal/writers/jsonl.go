// internal/writers/jsonl.go
package writers

import (
	"encoding/json"
	"io"

	"modscan/internal/jsonlutil"
	"modscan/pkg/api"
)

// StartHitJSONLWriter streams each hit as one JSON line (v1).
func StartHitJSONLWriter(out io.Writer, bufSize int) (chan<- api.HitV1, <-chan error) {
	return jsonlutil.Start[api.HitV1](out, bufSize,
		func(enc *json.Encoder, h api.HitV1) error { return enc.Encode(h) },
		IsBrokenPipe,
	)
}

// StartChainJSONLWriter streams each chain as one JSON line (v1).
func StartChainJSONLWriter(out io.Writer, bufSize int) (chan<- api.ChainV1, <-chan error) {
	return jsonlutil.Start[api.ChainV1](out, bufSize,
		func(enc *json.Encoder, c api.ChainV1) error { return enc.Encode(c) },
		IsBrokenPipe,
	)
}
