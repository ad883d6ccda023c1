package graph

import (
	"fmt"
	"strings"
)

// MissingVarError reports a substitution variable the environment cannot
// resolve. Substitution never defaults silently; an unresolved variable
// fails the enclosing rule.
type MissingVarError struct {
	Name string
}

func (e *MissingVarError) Error() string {
	return fmt.Sprintf("substitution variable %q is not defined", e.Name)
}

// Env is a layered substitution environment. Override returns a child layer
// without copying the parent, matching how rule-level parameters shadow the
// build-wide configuration.
type Env struct {
	vars   map[string]string
	parent *Env
}

func NewEnv(vars map[string]string) *Env {
	copied := make(map[string]string, len(vars))
	for k, v := range vars {
		copied[k] = v
	}
	return &Env{vars: copied}
}

// Override returns a new environment layering vars over e.
func (e *Env) Override(vars map[string]string) *Env {
	child := NewEnv(vars)
	child.parent = e
	return child
}

// Lookup resolves name through the layer chain.
func (e *Env) Lookup(name string) (string, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.vars[name]; ok {
			return v, true
		}
	}
	return "", false
}

// Subst expands ${NAME} and $NAME references in text. "$$" yields a literal
// "$". An unresolvable variable returns a MissingVarError.
func (e *Env) Subst(text string) (string, error) {
	var out strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '$' {
			out.WriteRune(r)
			continue
		}
		if i+1 < len(runes) && runes[i+1] == '$' {
			out.WriteRune('$')
			i++
			continue
		}

		name, next, err := scanVarName(runes, i+1)
		if err != nil {
			return "", err
		}
		value, ok := e.Lookup(name)
		if !ok {
			return "", &MissingVarError{Name: name}
		}
		out.WriteString(value)
		i = next - 1
	}
	return out.String(), nil
}

// SubstCommand renders one command template against concrete targets and
// sources. The node lists are exposed as shell-quoted pseudo-variables
// (TARGETS, SOURCES, TARGET, SOURCE) layered over e.
func (e *Env) SubstCommand(text string, targets, sources []*Node) (string, error) {
	renv := e.Override(map[string]string{
		"TARGETS": joinQuoted(targets),
		"SOURCES": joinQuoted(sources),
		"TARGET":  firstQuoted(targets),
		"SOURCE":  firstQuoted(sources),
	})
	return renv.Subst(text)
}

func joinQuoted(nodes []*Node) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		parts = append(parts, Quote(n.AbsPath()))
	}
	return strings.Join(parts, " ")
}

func firstQuoted(nodes []*Node) string {
	if len(nodes) == 0 {
		return ""
	}
	return Quote(nodes[0].AbsPath())
}

// scanVarName reads a variable reference starting at runes[start], which is
// the character after '$'. It returns the name and the index just past the
// reference.
func scanVarName(runes []rune, start int) (string, int, error) {
	if start >= len(runes) {
		return "", 0, fmt.Errorf("dangling '$' at end of command text")
	}

	if runes[start] == '{' {
		end := start + 1
		for end < len(runes) && runes[end] != '}' {
			end++
		}
		if end >= len(runes) {
			return "", 0, fmt.Errorf("unterminated ${...} reference")
		}
		name := string(runes[start+1 : end])
		if name == "" || !validVarName(name) {
			return "", 0, fmt.Errorf("invalid variable reference ${%s}", name)
		}
		return name, end + 1, nil
	}

	end := start
	for end < len(runes) && isVarRune(runes[end], end > start) {
		end++
	}
	if end == start {
		return "", 0, fmt.Errorf("invalid '$' reference in command text")
	}
	return string(runes[start:end]), end, nil
}

func validVarName(name string) bool {
	for i, r := range name {
		if !isVarRune(r, i > 0) {
			return false
		}
	}
	return true
}

func isVarRune(r rune, notFirst bool) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		return true
	case r >= '0' && r <= '9':
		return notFirst
	default:
		return false
	}
}
