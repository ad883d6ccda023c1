package graph

import "sync"

// TagKey names a node annotation. The vocabulary is fixed: real and
// descriptive-mode job identifiers live under disjoint keys and are never
// cross-read.
type TagKey string

const (
	// TagBuiltByJob records the scheduler job id that produces a target.
	// It is written only after the scheduler has accepted the submission.
	TagBuiltByJob TagKey = "built_by_job"

	// TagBuiltByPseudoJob records a fabricated descriptive-mode id.
	TagBuiltByPseudoJob TagKey = "built_by_pseudo_job"
)

// TagTable is the side-table of node annotations, keyed by node identity
// (the absolute path), so that separately constructed Node values for the
// same artifact share tags. The host graph owns one table per build
// invocation; all access is mutex-guarded so the host may process rules
// concurrently.
type TagTable struct {
	mu   sync.Mutex
	tags map[string]map[TagKey]int64
}

func NewTagTable() *TagTable {
	return &TagTable{tags: make(map[string]map[TagKey]int64)}
}

// Set records id under key for node n.
func (t *TagTable) Set(n *Node, key TagKey, id int64) {
	if n == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.tags[n.AbsPath()]
	if !ok {
		rec = make(map[TagKey]int64, 1)
		t.tags[n.AbsPath()] = rec
	}
	rec[key] = id
}

// Get returns the id recorded under key for node n, if any.
func (t *TagTable) Get(n *Node, key TagKey) (int64, bool) {
	if n == nil {
		return 0, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.tags[n.AbsPath()]
	if !ok {
		return 0, false
	}
	id, ok := rec[key]
	return id, ok
}
