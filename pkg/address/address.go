// Package address ties a build target's identity to the command that builds
// it. Targets are renamed with a short digest of the rendered command text,
// so changed commands produce new artifact paths while identical commands
// stay idempotent.
package address

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/macadam-build/macadam/pkg/command"
	"github.com/macadam-build/macadam/pkg/graph"
)

// discriminatorLen is the hex-prefix length embedded in renamed paths.
const discriminatorLen = 8

// UnsupportedTargetKindError reports a target that is neither file-like nor
// directory-like. Renaming never falls back to a best-effort guess.
type UnsupportedTargetKindError struct {
	Kind graph.Kind
	Path string
}

func (e *UnsupportedTargetKindError) Error() string {
	return fmt.Sprintf("unsupported target kind %s for %s", e.Kind, e.Path)
}

// Dep is an explicit build dependency the host graph must register: Target
// is invalidated whenever On changes.
type Dep struct {
	Target *graph.Node
	On     *graph.Node
}

// Result carries the rewritten rule back to the host graph. Both command
// renderings are exposed: the preliminary text (against nominal targets)
// determines the digest, while the final text (against renamed targets) is
// what gets logged. The two can diverge when a command references its own
// target paths; that divergence is preserved, not resolved.
type Result struct {
	Targets []*graph.Node
	Sources []*graph.Node

	Discriminator          string
	PreliminaryCommandText string
	FinalCommands          []string
	FinalCommandText       string

	LogPaths  []string
	ExtraDeps []Dep
}

// Rewrite performs the two-pass content addressing for one rule:
// render against the nominal targets, digest, rename, render again against
// the renamed targets, and log the final command next to each artifact.
// script and auxDeps become explicit dependencies of every renamed target.
func Rewrite(gen *command.Generator, env *graph.Env, targets, sources []*graph.Node, script *graph.Node, auxDeps []*graph.Node) (*Result, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("rule declares no targets")
	}

	preliminary, err := gen.Render(env, targets, sources)
	if err != nil {
		return nil, err
	}
	preliminaryText := strings.Join(preliminary, "\n")
	disc := digest(preliminaryText)

	renamed := make([]*graph.Node, 0, len(targets))
	for _, t := range targets {
		nt, err := renameTarget(t, disc)
		if err != nil {
			return nil, err
		}
		renamed = append(renamed, nt)
	}

	final, err := gen.Render(env, renamed, sources)
	if err != nil {
		return nil, err
	}
	finalText := strings.Join(final, "\n")

	logPaths := make([]string, 0, len(targets))
	for _, t := range targets {
		logPath := commandLogPath(t.AbsPath())
		if err := writeCommandLog(logPath, finalText); err != nil {
			return nil, err
		}
		logPaths = append(logPaths, logPath)
	}

	deps := make([]Dep, 0, len(renamed)*(len(auxDeps)+1))
	for _, t := range renamed {
		if script != nil {
			deps = append(deps, Dep{Target: t, On: script})
		}
		for _, d := range auxDeps {
			deps = append(deps, Dep{Target: t, On: d})
		}
	}

	return &Result{
		Targets:                renamed,
		Sources:                sources,
		Discriminator:          disc,
		PreliminaryCommandText: preliminaryText,
		FinalCommands:          final,
		FinalCommandText:       finalText,
		LogPaths:               logPaths,
		ExtraDeps:              deps,
	}, nil
}

func digest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:discriminatorLen]
}

// renameTarget embeds the discriminator in the target path: before the
// extension for files, appended for directories.
func renameTarget(t *graph.Node, disc string) (*graph.Node, error) {
	switch t.Kind() {
	case graph.KindFile:
		base, ext := splitExt(t.AbsPath())
		return graph.NewFile(base + "_" + disc + ext)
	case graph.KindDir:
		return graph.NewDir(t.AbsPath() + "_" + disc)
	default:
		return nil, &UnsupportedTargetKindError{Kind: t.Kind(), Path: t.AbsPath()}
	}
}

// commandLogPath folds the nominal target's extension into the stem and
// appends .command: /x/out.txt -> /x/out_txt.command.
func commandLogPath(nominal string) string {
	base, ext := splitExt(nominal)
	return base + "_" + strings.TrimPrefix(ext, ".") + ".command"
}

func writeCommandLog(path, finalText string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create command log dir: %w", err)
	}
	// Break long option lists onto their own lines. Cosmetic only; the
	// digest is computed over the unformatted text.
	formatted := strings.ReplaceAll(finalText, " --", "\n  --")
	if err := os.WriteFile(path, []byte(formatted), 0644); err != nil {
		return fmt.Errorf("write command log: %w", err)
	}
	return nil
}

func splitExt(path string) (string, string) {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext), ext
}
