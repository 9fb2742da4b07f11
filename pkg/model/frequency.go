// pkg/model/frequency.go
package model

// PairCount is one entry of a composite-key frequency table: an ordered
// (brand, model) pair and the number of listings carrying it. An absent model
// is a distinct key, flagged by SecondNull rather than excluded.
type PairCount struct {
	First      string
	Second     string
	SecondNull bool
	Count      int
}

// Label renders the composite key for display.
func (p PairCount) Label() string {
	if p.SecondNull {
		return p.First + " (unknown model)"
	}
	return p.First + " " + p.Second
}

// FrequencyTable is a ranked sequence of composite-key counts, ordered by
// count descending with ties in first-encountered input order.
type FrequencyTable struct {
	FirstKey  string
	SecondKey string
	Entries   []PairCount
}

// TopK returns the first k entries of the ranking. If k exceeds the table
// size or is negative, the whole ranking is returned.
func (t FrequencyTable) TopK(k int) []PairCount {
	if k < 0 || k > len(t.Entries) {
		k = len(t.Entries)
	}
	return t.Entries[:k]
}
