package jobs

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/macadam-build/macadam/pkg/graph"
)

// nameDigestLen keeps derived names under common scheduler name-length
// limits.
const nameDigestLen = 32

// JobName derives the deterministic scheduler name for a rule: a digest over
// the absolute paths of all targets and sources, under the configured
// prefix. This is deliberately a different digest than content addressing
// uses: it hashes paths, not command text, so the name is stable across
// command edits while the artifact path is not.
func JobName(prefix string, targets, sources []*graph.Node) string {
	paths := make([]string, 0, len(targets)+len(sources))
	for _, t := range targets {
		paths = append(paths, t.AbsPath())
	}
	for _, s := range sources {
		paths = append(paths, s.AbsPath())
	}
	sum := sha256.Sum256([]byte(strings.Join(paths, " ")))
	return prefix + "_" + hex.EncodeToString(sum[:])[:nameDigestLen]
}
