// Package command renders the shell commands a build rule would execute.
// Rendering is pure: fixed inputs always produce the same command strings,
// and nothing here touches the filesystem or spawns processes.
package command

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/macadam-build/macadam/pkg/graph"
)

// Generator holds the raw command templates of one build rule.
type Generator struct {
	templates []string
}

func NewGenerator(commands []string) (*Generator, error) {
	if len(commands) == 0 {
		return nil, fmt.Errorf("rule declares no commands")
	}
	templates := make([]string, 0, len(commands))
	for i, c := range commands {
		trimmed := strings.TrimSpace(c)
		if trimmed == "" {
			return nil, fmt.Errorf("command %d is empty", i)
		}
		templates = append(templates, trimmed)
	}
	return &Generator{templates: templates}, nil
}

// Templates returns the raw, unsubstituted command strings.
func (g *Generator) Templates() []string {
	out := make([]string, len(g.templates))
	copy(out, g.templates)
	return out
}

// Render substitutes every template against env and the given targets and
// sources. A missing substitution variable fails the whole render.
func (g *Generator) Render(env *graph.Env, targets, sources []*graph.Node) ([]string, error) {
	rendered := make([]string, 0, len(g.templates))
	for i, tmpl := range g.templates {
		cmd, err := env.SubstCommand(tmpl, targets, sources)
		if err != nil {
			return nil, fmt.Errorf("render command %d: %w", i, err)
		}
		rendered = append(rendered, cmd)
	}
	return rendered, nil
}

// interpreterRe decomposes "interpreter script args..." command lines. The
// script word must carry an extension so bare flags are not mistaken for it.
var interpreterRe = regexp.MustCompile(`^\s*(\S+)\s+(\S+\.[A-Za-z0-9]+)\s*(.*)$`)

// DecomposeError reports a command that could not be split into
// interpreter, script, and arguments.
type DecomposeError struct {
	Command string
}

func (e *DecomposeError) Error() string {
	return fmt.Sprintf("could not parse command: %q", e.Command)
}

// Decompose splits a command line into its interpreter, script path, and
// trailing arguments. The script is the generating file a rule's outputs
// must depend on.
func Decompose(cmd string) (interpreter, script, args string, err error) {
	m := interpreterRe.FindStringSubmatch(cmd)
	if m == nil {
		return "", "", "", &DecomposeError{Command: cmd}
	}
	return m[1], m[2], m[3], nil
}
