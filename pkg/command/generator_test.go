package command

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macadam-build/macadam/pkg/graph"
)

func TestNewGenerator(t *testing.T) {
	tests := []struct {
		name     string
		commands []string
		wantErr  bool
	}{
		{"single command", []string{"run --x 1"}, false},
		{"multiple commands", []string{"a", "b"}, false},
		{"no commands", nil, true},
		{"blank command", []string{"run", "   "}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGenerator(tt.commands)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, g)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, g)
		})
	}
}

func TestGeneratorRenderDeterministic(t *testing.T) {
	target, err := graph.NewFile("/work/out.txt")
	require.NoError(t, err)
	source, err := graph.NewFile("/data/in.txt")
	require.NoError(t, err)

	g, err := NewGenerator([]string{"python tok.py --input ${SOURCES} --output ${TARGETS}"})
	require.NoError(t, err)

	env := graph.NewEnv(nil)
	first, err := g.Render(env, []*graph.Node{target}, []*graph.Node{source})
	require.NoError(t, err)
	second, err := g.Render(env, []*graph.Node{target}, []*graph.Node{source})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"python tok.py --input /data/in.txt --output /work/out.txt"}, first)
}

func TestGeneratorRenderMissingVariable(t *testing.T) {
	g, err := NewGenerator([]string{"run ${UNDECLARED}"})
	require.NoError(t, err)

	_, err = g.Render(graph.NewEnv(nil), nil, nil)
	require.Error(t, err)

	var missing *graph.MissingVarError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "UNDECLARED", missing.Name)
}

func TestDecompose(t *testing.T) {
	tests := []struct {
		name        string
		cmd         string
		interpreter string
		script      string
		args        string
		wantErr     bool
	}{
		{"python script", "python3 scripts/tok.py --x 1", "python3", "scripts/tok.py", "--x 1", false},
		{"leading spaces", "  sh run.sh", "sh", "run.sh", "", false},
		{"no script word", "makeall", "", "", "", true},
		{"flag instead of script", "python --version", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			interp, script, args, err := Decompose(tt.cmd)
			if tt.wantErr {
				require.Error(t, err)
				var de *DecomposeError
				assert.True(t, errors.As(err, &de))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.interpreter, interp)
			assert.Equal(t, tt.script, script)
			assert.Equal(t, tt.args, args)
		})
	}
}
