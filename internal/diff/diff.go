// Package diff compares a fresh snapshot against the previously
// persisted one, producing one delta per (source, product) in a fixed,
// deterministic order.
package diff

import (
	"sort"

	"goldpricebot/internal/snapshot"
)

// sourceRank pins the known vendors to their report position. Unknown
// sources sort after every known one, tie-broken by name.
var sourceRank = map[string]int{
	"SJC":       0,
	"Doji":      1,
	"PNJ":       2,
	"Phú Quý":   3,
	"Ngọc Thẩm": 4,
}

const unknownRank = 99

// Delta is the comparison of one current quote against the last
// persisted values for the same key. A nil previous value means "no
// previous data", which is distinct from an unchanged price.
type Delta struct {
	Source   string
	Product  string
	Current  snapshot.Quote
	PrevBuy  *int64
	PrevSell *int64
}

// BuyChange returns the signed buy movement. ok is false when either
// side is missing; a true zero means the price is unchanged.
func (d Delta) BuyChange() (int64, bool) {
	return change(d.Current.Buy, d.PrevBuy)
}

// SellChange is the sell-side counterpart of BuyChange.
func (d Delta) SellChange() (int64, bool) {
	return change(d.Current.Sell, d.PrevSell)
}

func change(current, previous *int64) (int64, bool) {
	if current == nil || previous == nil {
		return 0, false
	}
	return *current - *previous, true
}

// Diff walks every entry of current, looks up the same key in previous
// and emits deltas ordered by source priority, then product name.
// Neither snapshot is modified.
func Diff(current, previous *snapshot.Snapshot) []Delta {
	srcs := current.Sources()
	sort.SliceStable(srcs, func(i, j int) bool {
		ri, rj := rank(srcs[i]), rank(srcs[j])
		if ri != rj {
			return ri < rj
		}
		return srcs[i] < srcs[j]
	})

	var out []Delta
	for _, source := range srcs {
		products := current.Products(source)
		sort.Strings(products)
		for _, product := range products {
			q, _ := current.Get(source, product)
			d := Delta{Source: source, Product: product, Current: q}
			if prev, ok := previous.Get(source, product); ok {
				d.PrevBuy = prev.Buy
				d.PrevSell = prev.Sell
			}
			out = append(out, d)
		}
	}
	return out
}

func rank(source string) int {
	if r, ok := sourceRank[source]; ok {
		return r
	}
	return unknownRank
}
