package sandfs

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/GriffinCanCode/sandfs/internal/monitoring"
	"github.com/google/uuid"
)

// Read returns the whole content of a file.
func (n *Node) Read() ([]byte, error) {
	start := n.sb.timer()
	if err := n.requireFile(opRead); err != nil {
		return nil, n.finish(opRead, start, err)
	}
	b, err := os.ReadFile(n.path)
	if err != nil {
		return nil, n.finish(opRead, start, err)
	}
	n.sb.metrics.AddBytes(monitoring.DirectionRead, int64(len(b)))
	return b, n.finish(opRead, start, nil)
}

// ReadText decodes the file content with enc.
func (n *Node) ReadText(enc Encoding) (string, error) {
	b, err := n.Read()
	if err != nil {
		return "", err
	}
	start := n.sb.timer()
	s, err := enc.decode(b)
	if err != nil {
		return "", n.finish(opRead, start, err)
	}
	return s, n.finish(opRead, start, nil)
}

// Text reads the file as UTF-8.
func (n *Node) Text() (string, error) {
	return n.ReadText(EncodingUTF8)
}

// Write replaces the file content with b, creating the file when missing.
// The parent directory must exist. Content is written to a temporary
// sibling and renamed into place, so readers never see a partial file.
func (n *Node) Write(b []byte) error {
	start := n.sb.timer()
	if err := n.checkWritable(opWrite); err != nil {
		return n.finish(opWrite, start, err)
	}
	written, err := n.sb.writeAtomic(n.path, n.currentPerm(), bytes.NewReader(b))
	n.sb.metrics.AddBytes(monitoring.DirectionWrite, written)
	return n.finish(opWrite, start, err)
}

// WriteText encodes s with enc and writes it like Write.
func (n *Node) WriteText(s string, enc Encoding) error {
	start := n.sb.timer()
	b, err := enc.encode(s)
	if err != nil {
		return n.finish(opWrite, start, err)
	}
	return n.Write(b)
}

// Append adds b to the end of the file, creating it when missing.
func (n *Node) Append(b []byte) error {
	start := n.sb.timer()
	if err := n.checkWritable(opAppend); err != nil {
		return n.finish(opAppend, start, err)
	}
	f, err := os.OpenFile(n.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return n.finish(opAppend, start, err)
	}
	written, err := f.Write(b)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	n.sb.metrics.AddBytes(monitoring.DirectionWrite, int64(written))
	return n.finish(opAppend, start, err)
}

// AppendText encodes s with enc and appends it. For EncodingUTF16 the byte
// order follows the file's existing BOM and no second BOM is written.
func (n *Node) AppendText(s string, enc Encoding) error {
	start := n.sb.timer()
	if enc == EncodingUTF16 {
		if order, ok := n.utf16Order(); ok {
			enc = order
		}
	}
	b, err := enc.encode(s)
	if err != nil {
		return n.finish(opAppend, start, err)
	}
	return n.Append(b)
}

// WriteChild writes b to the child called name and returns the child.
func (n *Node) WriteChild(b []byte, name string) (*Node, error) {
	c, err := n.Child(name)
	if err != nil {
		return nil, err
	}
	if err := c.Write(b); err != nil {
		n.lastErr = err
		return c, err
	}
	return c, nil
}

// WriteChildExt is WriteChild for the name "<name>.<ext>". A leading dot on
// ext is optional.
func (n *Node) WriteChildExt(b []byte, name, ext string) (*Node, error) {
	ext = strings.TrimPrefix(ext, ".")
	if ext != "" {
		name += "." + ext
	}
	return n.WriteChild(b, name)
}

// checkWritable requires an existing parent directory and rejects writing
// over a directory.
func (n *Node) checkWritable(op string) error {
	if err := n.sb.confine(n.path, true); err != nil {
		return err
	}
	parent, err := os.Stat(filepath.Dir(n.path))
	if err != nil {
		return err
	}
	if !parent.IsDir() {
		return kindError(op, n.path, ErrTypeMismatch, "parent is not a directory")
	}
	if fi, err := os.Stat(n.path); err == nil && fi.IsDir() {
		return kindError(op, n.path, ErrTypeMismatch, "is a directory")
	}
	return nil
}

func (n *Node) currentPerm() fs.FileMode {
	if fi, err := os.Stat(n.path); err == nil && fi.Mode().IsRegular() {
		return fi.Mode().Perm()
	}
	return 0o644
}

// utf16Order reports the byte order of an existing UTF-16 file from its BOM.
func (n *Node) utf16Order() (Encoding, bool) {
	if n.sb.confine(n.path, true) != nil {
		return EncodingUTF16, false
	}
	f, err := os.Open(n.path)
	if err != nil {
		return EncodingUTF16, false
	}
	defer f.Close()
	var bom [2]byte
	if _, err := io.ReadFull(f, bom[:]); err != nil {
		return EncodingUTF16, false
	}
	switch bom {
	case [2]byte{0xFE, 0xFF}:
		return EncodingUTF16BE, true
	case [2]byte{0xFF, 0xFE}:
		return EncodingUTF16LE, true
	}
	return EncodingUTF16, false
}

// writeAtomic streams r into a uuid-named sibling of path and renames it
// over path. The temporary file is removed on failure.
func (s *Sandbox) writeAtomic(path string, perm fs.FileMode, r io.Reader) (int64, error) {
	tmp := filepath.Join(filepath.Dir(path), ".sandfs-"+uuid.NewString()+".tmp")
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return 0, err
	}

	buf := make([]byte, s.cfg.chunkSize)
	written, err := io.CopyBuffer(struct{ io.Writer }{f}, struct{ io.Reader }{r}, buf)
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmp, perm)
	}
	if err == nil {
		err = os.Rename(tmp, path)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return written, err
	}
	return written, nil
}
