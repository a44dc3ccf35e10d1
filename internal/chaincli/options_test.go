package chaincli

import (
	"flag"
	"testing"
)

func parse(args ...string) (Options, error) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Usage = func() {}
	return ParseArgs(fs, args)
}

func TestDefaultsToStdin(t *testing.T) {
	o, err := parse("--window", "5000")
	if err != nil {
		t.Fatal(err)
	}
	if len(o.Inputs) != 1 || o.Inputs[0] != "-" || o.InputFormat != InputAuto || o.Output != "text" {
		t.Fatalf("defaults: %+v", o)
	}
}

func TestInputs(t *testing.T) {
	o, err := parse("-w", "10", "-i", "a.json", "b.jsonl", "--separate", "--span", "center")
	if err != nil {
		t.Fatal(err)
	}
	if len(o.Inputs) != 2 || o.Inputs[0] != "a.json" || !o.Separate || o.Span != "center" {
		t.Fatalf("parse: %+v", o)
	}
}

func TestErrors(t *testing.T) {
	cases := [][]string{
		{},
		{"--window", "0"},
		{"--window", "-3"},
		{"--window", "10", "-o", "gff"},
		{"--window", "10", "--input-format", "xml"},
		{"--window", "10", "--span", "wide"},
	}
	for _, args := range cases {
		if _, err := parse(args...); err == nil {
			t.Errorf("expected error for %v", args)
		}
	}
}
