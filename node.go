package sandfs

import (
	"net/url"
	"path/filepath"

	"github.com/GriffinCanCode/sandfs/internal/monitoring"
	"github.com/GriffinCanCode/sandfs/internal/shared/paths"
)

// Node is a path inside a Sandbox. Navigation is pure path arithmetic;
// existence, type and size are read from the host on every call.
//
// A Node remembers the error of its most recent fallible call in LastError.
// That makes a Node unsafe for concurrent use; share paths, not nodes.
type Node struct {
	sb      *Sandbox
	path    string
	lastErr error
}

// Path returns the absolute host path.
func (n *Node) Path() string { return n.path }

// Sandbox returns the sandbox the node belongs to.
func (n *Node) Sandbox() *Sandbox { return n.sb }

// Name returns the last path element.
func (n *Node) Name() string { return filepath.Base(n.path) }

// SimpleName returns the name without its extension.
func (n *Node) SimpleName() string {
	stem, _ := paths.SplitExt(n.Name())
	return stem
}

// Extension returns the extension without the leading dot, or "".
func (n *Node) Extension() string {
	_, ext := paths.SplitExt(n.Name())
	return ext
}

// URL returns the file:// URL of the node.
func (n *Node) URL() *url.URL {
	return &url.URL{Scheme: "file", Path: filepath.ToSlash(n.path)}
}

// String implements fmt.Stringer.
func (n *Node) String() string { return n.path }

// LastError returns the error of the most recent fallible call on this node,
// or nil if it succeeded.
func (n *Node) LastError() error { return n.lastErr }

// IsRoot reports whether the node is its sandbox root.
func (n *Node) IsRoot() bool { return n.path == n.sb.root }

// HasParent reports whether Parent would return a node.
func (n *Node) HasParent() bool { return !n.IsRoot() }

// Parent returns the enclosing directory, or nil at the sandbox root.
func (n *Node) Parent() *Node {
	if n.IsRoot() {
		return nil
	}
	return &Node{sb: n.sb, path: filepath.Dir(n.path)}
}

// Root returns the sandbox root node.
func (n *Node) Root() *Node { return n.sb.Root() }

// Child returns the node for name directly below n. name must be a single
// path element.
func (n *Node) Child(name string) (*Node, error) {
	if err := paths.ValidateName(name); err != nil {
		n.lastErr = newError(opChild, filepath.Join(n.path, name), err)
		return nil, n.lastErr
	}
	n.lastErr = nil
	return &Node{sb: n.sb, path: filepath.Join(n.path, name)}, nil
}

// Equal reports whether both nodes name the same path.
func (n *Node) Equal(other *Node) bool {
	return other != nil && n.path == other.path
}

// Rel returns the slash-separated path of n relative to its sandbox root.
func (n *Node) Rel() string {
	rel, err := paths.Rel(n.sb.root, n.path)
	if err != nil {
		return n.path
	}
	return rel
}

// finish records the outcome of op and stores it as the node's last error.
func (n *Node) finish(op string, start *monitoring.Timer, err error) error {
	err = newError(op, n.path, err)
	n.lastErr = err
	n.sb.record(op, n.path, start, err)
	return err
}

// fail is finish for an error of an explicit kind.
func (n *Node) fail(op string, start *monitoring.Timer, kind error, format string, args ...any) error {
	return n.finish(op, start, kindError(op, n.path, kind, format, args...))
}
