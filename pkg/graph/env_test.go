package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvSubst(t *testing.T) {
	env := NewEnv(map[string]string{
		"NAME":  "job_abc",
		"EMPTY": "",
	})

	tests := []struct {
		name     string
		in       string
		expected string
		wantErr  bool
	}{
		{"braced", "--job-name ${NAME}", "--job-name job_abc", false},
		{"bare", "--job-name $NAME", "--job-name job_abc", false},
		{"empty value", "x${EMPTY}y", "xy", false},
		{"literal dollar", "cost: $$5", "cost: $5", false},
		{"no variables", "plain text", "plain text", false},
		{"missing", "${NOPE}", "", true},
		{"unterminated", "${NAME", "", true},
		{"dangling dollar", "tail $", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.Subst(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEnvMissingVarError(t *testing.T) {
	env := NewEnv(nil)
	_, err := env.Subst("run ${ABSENT}")
	require.Error(t, err)

	var missing *MissingVarError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "ABSENT", missing.Name)
}

func TestEnvOverrideLayers(t *testing.T) {
	base := NewEnv(map[string]string{"A": "1", "B": "2"})
	child := base.Override(map[string]string{"B": "20", "C": "30"})

	// Child sees its own values first, then the parent's.
	got, ok := child.Lookup("B")
	require.True(t, ok)
	assert.Equal(t, "20", got)

	got, ok = child.Lookup("A")
	require.True(t, ok)
	assert.Equal(t, "1", got)

	got, ok = child.Lookup("C")
	require.True(t, ok)
	assert.Equal(t, "30", got)

	// The parent layer is untouched.
	got, ok = base.Lookup("B")
	require.True(t, ok)
	assert.Equal(t, "2", got)
	_, ok = base.Lookup("C")
	assert.False(t, ok)
}

func TestEnvSubstCommand(t *testing.T) {
	target, err := NewFile("/work/out.txt")
	require.NoError(t, err)
	source, err := NewFile("/data/in file.txt")
	require.NoError(t, err)

	env := NewEnv(map[string]string{"FLAG": "--fast"})
	got, err := env.SubstCommand("run ${FLAG} --in ${SOURCES} --out ${TARGET}",
		[]*Node{target}, []*Node{source})
	require.NoError(t, err)
	assert.Equal(t, "run --fast --in '/data/in file.txt' --out /work/out.txt", got)
}

func TestEnvSubstCommandEmptyLists(t *testing.T) {
	env := NewEnv(nil)
	got, err := env.SubstCommand("echo ${TARGETS}${SOURCES}", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "echo ", got)
}
