// Package dedupe groups catalog rows that share a normalized name and
// applies the caller's keep/drop selection.
package dedupe

import (
	"sort"
	"strings"

	"catalogqa/domain/catalog"
)

// Groups returns the duplicate groups of rows: every non-empty normalized
// name shared by two or more rows becomes one group carrying full row
// snapshots. Groups are sorted lexicographically by key so output order is
// deterministic. Rows with unique names never appear in any group.
func Groups(rows []catalog.Row) []catalog.DuplicateGroup {
	byName := make(map[string][]catalog.Row)
	for _, r := range rows {
		key := strings.TrimSpace(r.Name)
		if key == "" {
			continue
		}
		byName[key] = append(byName[key], r)
	}

	var groups []catalog.DuplicateGroup
	for key, members := range byName {
		if len(members) < 2 {
			continue
		}
		groups = append(groups, catalog.DuplicateGroup{Key: key, Count: len(members), Rows: members})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups
}

// Filter applies the duplicate selection: rows outside every duplicate
// group are always kept; rows inside a group survive only when their id is
// in selected. An empty selection therefore drops every duplicate row —
// callers that want no filtering at all skip this step instead of passing
// an empty set.
func Filter(rows []catalog.Row, selected map[catalog.RowID]bool) []catalog.Row {
	duplicate := make(map[catalog.RowID]bool)
	for _, g := range Groups(rows) {
		for _, r := range g.Rows {
			duplicate[r.ID] = true
		}
	}

	kept := make([]catalog.Row, 0, len(rows))
	for _, r := range rows {
		if !duplicate[r.ID] || selected[r.ID] {
			kept = append(kept, r)
		}
	}
	return kept
}
