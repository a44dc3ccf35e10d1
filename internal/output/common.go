package output

// Output formats.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatGFF   = "gff"
)

// HitTSVHeader is the canonical header row for hit text/TSV output.
// Keep this as the single source of truth; all writers should use it.
const HitTSVHeader = "source_file\tsource\tbinder_id\tposition\tend\tlength\tstrand\tp_binding\tlog_odds"

// ChainTSVHeader is the header row for chain text output: one row per chosen hit.
const ChainTSVHeader = "region\tchain_total\tsource\tbinder_id\tposition\tend\tlength\tstrand\tp_binding"
