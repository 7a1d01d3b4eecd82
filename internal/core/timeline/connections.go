package timeline

import (
	"sort"
)

// BuildConnections infers relationships between placed items:
//
//   - rule_chain: chronological chain of items sharing a rule id
//   - task_chain: chronological chain of items sharing a task id
//   - file_link: adjacent items touching the same file from different
//     categories within FileLinkWindowMs (same-category neighbors are one
//     natural sequence, not a hop)
//
// The three builders run independently and their edges are unioned; an item
// may participate in several kinds at once. Only items in the placed set are
// ever referenced.
func BuildConnections(placed []PlacedItem) []Connection {
	connections := make([]Connection, 0)
	connections = append(connections, chainByKey(placed, func(p *PlacedItem) string {
		if p.Event == nil || p.Event.RuleId == nil {
			return ""
		}
		return *p.Event.RuleId
	}, ConnRuleChain, nil)...)

	connections = append(connections, chainByKey(placed, func(p *PlacedItem) string {
		if p.Event == nil || p.Event.TaskId == nil {
			return ""
		}
		return *p.Event.TaskId
	}, ConnTaskChain, nil)...)

	connections = append(connections, chainByKey(placed, func(p *PlacedItem) string {
		if p.Event == nil || p.Event.File == nil {
			return ""
		}
		return *p.Event.File
	}, ConnFileLink, func(from, to *PlacedItem) bool {
		if from.Category == to.Category {
			return false
		}
		return to.StartMs-from.EndMs <= FileLinkWindowMs
	})...)

	return connections
}

// chainByKey groups placed items by a key, orders each group by start time,
// and connects chronologically adjacent pairs. An optional link predicate
// can veto individual pairs; vetoed pairs are skipped, not bridged.
func chainByKey(placed []PlacedItem, key func(*PlacedItem) string, kind ConnectionKind, link func(from, to *PlacedItem) bool) []Connection {
	groups := make(map[string][]int)
	keys := make([]string, 0)
	for i := range placed {
		k := key(&placed[i])
		if k == "" {
			continue
		}
		if _, seen := groups[k]; !seen {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], i)
	}
	sort.Strings(keys)

	var out []Connection
	for _, k := range keys {
		idxs := groups[k]
		if len(idxs) < 2 {
			continue
		}
		sort.SliceStable(idxs, func(a, b int) bool {
			return placed[idxs[a]].StartMs < placed[idxs[b]].StartMs
		})
		for i := 0; i < len(idxs)-1; i++ {
			from, to := idxs[i], idxs[i+1]
			if link != nil && !link(&placed[from], &placed[to]) {
				continue
			}
			out = append(out, Connection{
				From:   from,
				To:     to,
				FromId: placed[from].Id,
				ToId:   placed[to].Id,
				Kind:   kind,
			})
		}
	}
	return out
}
