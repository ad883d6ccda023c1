// Package jobs threads scheduler job ordering through the build graph and
// implements the submission protocol. Each rule looks exactly one hop
// upstream: its dependency set is whatever job ids its sources were tagged
// with, and its own targets are tagged with the job that will build them.
package jobs

import (
	"sort"

	"github.com/macadam-build/macadam/pkg/graph"
)

// CollectDependencies gathers the distinct job ids tagged on sources under
// key. Untagged sources contribute nothing. The result is sorted for
// deterministic rendering.
func CollectDependencies(tags *graph.TagTable, sources []*graph.Node, key graph.TagKey) []int64 {
	seen := make(map[int64]struct{})
	for _, s := range sources {
		if id, ok := tags.Get(s, key); ok {
			seen[id] = struct{}{}
		}
	}
	out := make([]int64, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// TagTargets records id under key on every target node.
func TagTargets(tags *graph.TagTable, targets []*graph.Node, key graph.TagKey, id int64) {
	for _, t := range targets {
		tags.Set(t, key, id)
	}
}
