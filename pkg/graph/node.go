package graph

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind distinguishes file-like from directory-like nodes.
type Kind int

// The zero Kind is deliberately invalid so an improperly constructed node
// fails fast instead of being treated as a file.
const (
	KindFile Kind = iota + 1
	KindDir
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node is a build-graph vertex: a file or directory artifact identified by
// its absolute path. Nodes are immutable; cross-rule metadata lives in a
// TagTable, not on the node itself.
type Node struct {
	kind Kind
	path string
}

// NewFile returns a file node for path, resolved to an absolute path.
func NewFile(path string) (*Node, error) {
	abs, err := absPath(path)
	if err != nil {
		return nil, err
	}
	return &Node{kind: KindFile, path: abs}, nil
}

// NewDir returns a directory node for path, resolved to an absolute path.
func NewDir(path string) (*Node, error) {
	abs, err := absPath(path)
	if err != nil {
		return nil, err
	}
	return &Node{kind: KindDir, path: abs}, nil
}

func absPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("node path is empty")
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve node path: %w", err)
	}
	return abs, nil
}

func (n *Node) Kind() Kind {
	return n.kind
}

// AbsPath returns the node's absolute path.
func (n *Node) AbsPath() string {
	return n.path
}

func (n *Node) String() string {
	return n.path
}
