// Package pipeline streams FASTA records (optionally chunked) through a set
// of PSSM scanners, restores record coordinates, removes chunk-overlap
// duplicates and groups hits per record. It also fans chain selection out
// over independent regions.
package pipeline
