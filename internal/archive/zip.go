package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/yeka/zip"
)

func (c *Codec) writeZip(ctx context.Context, out io.Writer, sources []source) error {
	zw := zip.NewWriter(out)
	for _, s := range sources {
		if err := ctx.Err(); err != nil {
			_ = zw.Close()
			return err
		}
		n, err := c.addZipEntry(zw, s)
		if err != nil {
			_ = zw.Close()
			return fmt.Errorf("%s: %w", s.rel, err)
		}
		c.advance(s.rel, n)
	}
	return zw.Close()
}

func (c *Codec) addZipEntry(zw *zip.Writer, s source) (int64, error) {
	if s.info.IsDir() {
		fh, err := zip.FileInfoHeader(s.info)
		if err != nil {
			return 0, err
		}
		fh.Name = s.rel + "/"
		fh.Method = zip.Store
		_, err = zw.CreateHeader(fh)
		return 0, err
	}
	if !s.info.Mode().IsRegular() {
		return 0, fmt.Errorf("unsupported file type %s", s.info.Mode().Type())
	}

	var w io.Writer
	var err error
	if c.opts.HasPassword {
		w, err = zw.Encrypt(s.rel, c.opts.Password, c.opts.Encryption.method())
	} else {
		var fh *zip.FileHeader
		fh, err = zip.FileInfoHeader(s.info)
		if err == nil {
			fh.Name = s.rel
			fh.Method = zip.Deflate
			w, err = zw.CreateHeader(fh)
		}
	}
	if err != nil {
		return 0, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return c.copyChunked(w, f)
}

func (c *Codec) extractZip(ctx context.Context, src, dst string) error {
	zr, err := zip.OpenReader(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	defer zr.Close()

	targets := make([]string, len(zr.File))
	for i, f := range zr.File {
		if f.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("%s: %w", f.Name, ErrSymlink)
		}
		target, err := entryTarget(dst, f.Name, isZipDir(f))
		if err != nil {
			return err
		}
		targets[i] = target
	}
	c.setTotal(len(zr.File))

	if err := c.verifyZip(ctx, zr.File); err != nil {
		return err
	}

	if err := ensureDir(dst); err != nil {
		return err
	}
	for i, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := c.extractZipEntry(f, targets[i])
		if err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
		c.advance(f.Name, n)
	}
	return nil
}

// verifyZip decrypts every encrypted entry into io.Discard so a bad password
// is detected before the first byte reaches disk.
func (c *Codec) verifyZip(ctx context.Context, files []*zip.File) error {
	for _, f := range files {
		if !f.IsEncrypted() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !c.opts.HasPassword {
			return fmt.Errorf("%s: %w: entry is encrypted", f.Name, ErrWrongPassword)
		}
		f.SetPassword(c.opts.Password)
		rc, err := f.Open()
		if err != nil {
			return classifyZip(f.Name, err)
		}
		_, err = c.copyChunked(io.Discard, rc)
		rc.Close()
		if err != nil {
			return classifyZip(f.Name, err)
		}
	}
	return nil
}

func classifyZip(name string, err error) error {
	if errors.Is(err, zip.ErrFormat) || errors.Is(err, zip.ErrAlgorithm) {
		return fmt.Errorf("%s: %w: %v", name, ErrMalformed, err)
	}
	return fmt.Errorf("%s: %w: %v", name, ErrWrongPassword, err)
}

func isZipDir(f *zip.File) bool {
	return f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/")
}

func (c *Codec) extractZipEntry(f *zip.File, target string) (int64, error) {
	if isZipDir(f) {
		return 0, ensureDir(target)
	}
	if err := prepareFile(target); err != nil {
		return 0, err
	}

	rc, err := f.Open()
	if err != nil {
		if f.IsEncrypted() {
			return 0, classifyZip(f.Name, err)
		}
		return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm(f.Mode()))
	if err != nil {
		return 0, err
	}
	n, err := c.copyChunked(out, rc)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if errors.Is(err, zip.ErrChecksum) || errors.Is(err, zip.ErrFormat) {
			return n, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return n, err
	}
	if mt := f.ModTime(); !f.IsEncrypted() && mt.Year() > 1980 {
		_ = os.Chtimes(target, mt, mt)
	}
	return n, nil
}

func listZip(src string) ([]Entry, error) {
	zr, err := zip.OpenReader(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	defer zr.Close()

	out := make([]Entry, 0, len(zr.File))
	for _, f := range zr.File {
		out = append(out, Entry{
			Name:           strings.TrimSuffix(f.Name, "/"),
			Size:           int64(f.UncompressedSize64),
			CompressedSize: int64(f.CompressedSize64),
			ModTime:        f.ModTime(),
			Mode:           f.Mode(),
			IsDir:          isZipDir(f),
			Encrypted:      f.IsEncrypted(),
		})
	}
	return out, nil
}
