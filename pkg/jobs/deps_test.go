package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macadam-build/macadam/pkg/graph"
)

func fileNode(t *testing.T, path string) *graph.Node {
	t.Helper()
	n, err := graph.NewFile(path)
	require.NoError(t, err)
	return n
}

func TestCollectDependencies(t *testing.T) {
	tags := graph.NewTagTable()

	tagged := fileNode(t, "/work/a.txt")
	untagged := fileNode(t, "/data/raw.txt")
	alsoTagged := fileNode(t, "/work/b.txt")
	sameJob := fileNode(t, "/work/c.txt")

	tags.Set(tagged, graph.TagBuiltByJob, 42)
	tags.Set(alsoTagged, graph.TagBuiltByJob, 7)
	tags.Set(sameJob, graph.TagBuiltByJob, 42)

	tests := []struct {
		name     string
		sources  []*graph.Node
		expected []int64
	}{
		{"tagged and untagged", []*graph.Node{tagged, untagged}, []int64{42}},
		{"distinct ids sorted", []*graph.Node{tagged, alsoTagged}, []int64{7, 42}},
		{"duplicate ids collapse", []*graph.Node{tagged, sameJob}, []int64{42}},
		{"only untagged", []*graph.Node{untagged}, []int64{}},
		{"no sources", nil, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CollectDependencies(tags, tt.sources, graph.TagBuiltByJob)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCollectDependenciesIgnoresPseudoTags(t *testing.T) {
	tags := graph.NewTagTable()
	src := fileNode(t, "/work/a.txt")
	tags.Set(src, graph.TagBuiltByPseudoJob, 3)

	got := CollectDependencies(tags, []*graph.Node{src}, graph.TagBuiltByJob)
	assert.Empty(t, got)
}

func TestTagTargets(t *testing.T) {
	tags := graph.NewTagTable()
	t1 := fileNode(t, "/work/a.txt")
	t2 := fileNode(t, "/work/b.txt")

	TagTargets(tags, []*graph.Node{t1, t2}, graph.TagBuiltByJob, 99)

	for _, n := range []*graph.Node{t1, t2} {
		id, ok := tags.Get(n, graph.TagBuiltByJob)
		require.True(t, ok)
		assert.Equal(t, int64(99), id)
	}
}

func TestJobName(t *testing.T) {
	targets := []*graph.Node{fileNode(t, "/work/out.txt")}
	sources := []*graph.Node{fileNode(t, "/data/in.txt")}

	name := JobName("macadam", targets, sources)
	assert.True(t, len(name) == len("macadam")+1+nameDigestLen)
	assert.Contains(t, name, "macadam_")

	// Deterministic for fixed paths.
	assert.Equal(t, name, JobName("macadam", targets, sources))

	// Different paths give a different digest.
	other := JobName("macadam", []*graph.Node{fileNode(t, "/work/other.txt")}, sources)
	assert.NotEqual(t, name, other)

	// The name hashes paths, not command text: it ignores tag state.
	withPrefix := JobName("exp42", targets, sources)
	assert.Contains(t, withPrefix, "exp42_")
}
