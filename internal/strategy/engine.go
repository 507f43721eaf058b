package strategy

import (
	"sort"

	"MarketBrief/internal/model"
)

// Midline splits weak from strong momentum. A stock exactly on it is neither.
const Midline = 50.0

// DefaultTop is how many stocks each side of the ranking lists.
const DefaultTop = 5

// Rank splits the series by RSI around the midline and keeps the top
// entries of each side: the lowest RSI first on the weak side, the
// highest first on the strong side. Series whose indicators are not
// usable are listed in Failed.
func Rank(series []*model.Series, top int) *model.Suggestion {
	if top <= 0 {
		top = DefaultTop
	}
	out := &model.Suggestion{}
	for _, s := range series {
		snap, err := snapshot(s)
		if err != nil {
			out.Failed = append(out.Failed, s.Symbol)
			continue
		}
		switch {
		case snap.RSI < Midline:
			out.Weak = append(out.Weak, snap)
		case snap.RSI > Midline:
			out.Strong = append(out.Strong, snap)
		}
	}

	sort.SliceStable(out.Weak, func(i, j int) bool { return before(out.Weak[i], out.Weak[j], false) })
	sort.SliceStable(out.Strong, func(i, j int) bool { return before(out.Strong[i], out.Strong[j], true) })
	out.Weak = head(out.Weak, top)
	out.Strong = head(out.Strong, top)
	return out
}

// before orders by RSI, then symbol so equal scores rank the same every run.
func before(a, b model.Snapshot, desc bool) bool {
	if a.RSI != b.RSI {
		return (a.RSI < b.RSI) != desc
	}
	return a.Symbol < b.Symbol
}

func head(s []model.Snapshot, n int) []model.Snapshot {
	if len(s) > n {
		return s[:n]
	}
	return s
}
