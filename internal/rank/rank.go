// Package rank orders frequency tables into top-N lists.
package rank

import (
	"cmp"
	"slices"

	"github.com/nao1215/userclean/internal/model"
)

// DefaultN is the number of entries reported when no limit is configured.
const DefaultN = 10

// TopN returns at most n entries of table, sorted by count descending.
// Entries with equal counts keep the order in which their keys were first
// inserted into the table. n <= 0 returns an empty slice. The table is not
// modified.
func TopN(table *model.FrequencyTable, n int) []model.RankedEntry {
	if n <= 0 || table.Len() == 0 {
		return []model.RankedEntry{}
	}

	entries := table.Entries()
	slices.SortFunc(entries, func(a, b model.TableEntry) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})

	if n > len(entries) {
		n = len(entries)
	}
	out := make([]model.RankedEntry, n)
	for i := range n {
		out[i] = model.RankedEntry{Key: entries[i].Key, Count: entries[i].Count}
	}
	return out
}
