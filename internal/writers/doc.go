// Package writers turns hits and chains into serialized outputs.
//
// Design:
//   - Writers own all presentation knowledge (TSV, GFF, JSON/JSONL).
//   - Scoring and chain selection stay domain-only; the pipeline stays orchestration-only.
//   - JSON/JSONL go through pkg/api (v1) for a stable wire format.
package writers
