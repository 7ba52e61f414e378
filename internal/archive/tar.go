package archive

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

func (c *Codec) writeTar(ctx context.Context, out io.Writer, sources []source) error {
	cw, err := c.compressor(out)
	if err != nil {
		return err
	}
	tw := tar.NewWriter(cw)

	for _, s := range sources {
		if err := ctx.Err(); err != nil {
			_ = tw.Close()
			_ = cw.Close()
			return err
		}
		n, err := c.addTarEntry(tw, s)
		if err != nil {
			_ = tw.Close()
			_ = cw.Close()
			return fmt.Errorf("%s: %w", s.rel, err)
		}
		c.advance(s.rel, n)
	}

	if err := tw.Close(); err != nil {
		_ = cw.Close()
		return err
	}
	return cw.Close()
}

func (c *Codec) compressor(out io.Writer) (io.WriteCloser, error) {
	if c.opts.Format == FormatTarZstd {
		return zstd.NewWriter(out, zstd.WithEncoderLevel(c.opts.Level.zstd()))
	}
	return gzip.NewWriterLevel(out, c.opts.Level.gzip())
}

func (c *Codec) addTarEntry(tw *tar.Writer, s source) (int64, error) {
	if !s.info.IsDir() && !s.info.Mode().IsRegular() {
		return 0, fmt.Errorf("unsupported file type %s", s.info.Mode().Type())
	}
	hdr, err := tar.FileInfoHeader(s.info, "")
	if err != nil {
		return 0, err
	}
	hdr.Name = s.rel
	if s.info.IsDir() {
		hdr.Name += "/"
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return 0, err
	}
	if s.info.IsDir() {
		return 0, nil
	}

	f, err := os.Open(s.path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return c.copyChunked(tw, f)
}

// tarStream opens src and wraps it in the decompressor for format.
type tarStream struct {
	file  *os.File
	gz    *gzip.Reader
	zd    *zstd.Decoder
	*tar.Reader
}

func openTar(src string, format Format) (*tarStream, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, err
	}
	ts := &tarStream{file: f}
	var r io.Reader
	if format == FormatTarZstd {
		ts.zd, err = zstd.NewReader(f)
		r = ts.zd
	} else {
		ts.gz, err = gzip.NewReader(f)
		r = ts.gz
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	ts.Reader = tar.NewReader(r)
	return ts, nil
}

func (ts *tarStream) next() (*tar.Header, error) {
	hdr, err := ts.Next()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return hdr, nil
}

func (ts *tarStream) Close() error {
	if ts.zd != nil {
		ts.zd.Close()
	}
	if ts.gz != nil {
		_ = ts.gz.Close()
	}
	return ts.file.Close()
}

func (c *Codec) extractTar(ctx context.Context, src, dst string) error {
	// Tar has no central directory; a first pass validates every header so a
	// hostile name aborts the job before anything is written.
	total, err := scanTar(src, c.opts.Format, dst)
	if err != nil {
		return err
	}
	c.setTotal(total)

	ts, err := openTar(src, c.opts.Format)
	if err != nil {
		return err
	}
	defer ts.Close()

	if err := ensureDir(dst); err != nil {
		return err
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		hdr, err := ts.next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		target, err := entryTarget(dst, hdr.Name, hdr.Typeflag == tar.TypeDir)
		if err != nil {
			return err
		}

		var n int64
		switch hdr.Typeflag {
		case tar.TypeDir:
			err = ensureDir(target)
		case tar.TypeReg:
			n, err = c.writeTarFile(ts.Reader, target, hdr)
		}
		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				err = fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			return fmt.Errorf("%s: %w", hdr.Name, err)
		}
		c.advance(strings.TrimSuffix(hdr.Name, "/"), n)
	}
}

func scanTar(src string, format Format, dst string) (int, error) {
	ts, err := openTar(src, format)
	if err != nil {
		return 0, err
	}
	defer ts.Close()

	total := 0
	for {
		hdr, err := ts.next()
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return 0, err
		}
		switch hdr.Typeflag {
		case tar.TypeDir, tar.TypeReg:
		case tar.TypeSymlink, tar.TypeLink:
			return 0, fmt.Errorf("%s: %w", hdr.Name, ErrSymlink)
		default:
			return 0, fmt.Errorf("%w: %s: unsupported entry type %q", ErrMalformed, hdr.Name, hdr.Typeflag)
		}
		if _, err := entryTarget(dst, hdr.Name, hdr.Typeflag == tar.TypeDir); err != nil {
			return 0, err
		}
		total++
	}
}

func (c *Codec) writeTarFile(r io.Reader, target string, hdr *tar.Header) (int64, error) {
	if err := prepareFile(target); err != nil {
		return 0, err
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm(os.FileMode(hdr.Mode)))
	if err != nil {
		return 0, err
	}
	n, err := c.copyChunked(out, r)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, err
	}
	if !hdr.ModTime.IsZero() {
		_ = os.Chtimes(target, hdr.ModTime, hdr.ModTime)
	}
	return n, nil
}

func listTar(src string, format Format) ([]Entry, error) {
	ts, err := openTar(src, format)
	if err != nil {
		return nil, err
	}
	defer ts.Close()

	var out []Entry
	for {
		hdr, err := ts.next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, Entry{
			Name:    strings.TrimSuffix(hdr.Name, "/"),
			Size:    hdr.Size,
			ModTime: hdr.ModTime,
			Mode:    hdr.FileInfo().Mode(),
			IsDir:   hdr.Typeflag == tar.TypeDir,
		})
	}
}
