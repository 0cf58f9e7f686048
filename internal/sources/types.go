package sources

import "context"

// UnitVNDPerChi is the display unit every fetcher reports in.
const UnitVNDPerChi = "k VND/chỉ"

// Entry is one raw quote from one source, prior to normalization.
// Buy and Sell stay untyped here: feeds report numbers as integers,
// floats or decorated strings, and the snapshot package owns coercion.
type Entry struct {
	Source  string
	Product string
	Buy     any
	Sell    any
	Unit    string
}

// Fetcher produces raw entries from one provider. A failing fetcher
// contributes zero entries; it must never take the whole run down.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]Entry, error)
}
