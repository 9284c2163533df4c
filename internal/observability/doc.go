// Package observability records the runs of the metric tools in an
// append-only JSON Lines (JSONL) file and summarizes that history on demand.
package observability
