package sandfs

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	big := make([]byte, 5<<20+3)
	for i := range big {
		big[i] = byte(i*7 + i>>9)
	}

	tests := []struct {
		name    string
		payload []byte
	}{
		{"empty", []byte{}},
		{"one byte", []byte{0x42}},
		{"multi megabyte", big},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sb := newTestSandbox(t, WithChunkSize(4096))
			n := sb.MustResolve("payload.bin")
			require.NoError(t, n.Write(tt.payload))

			got, err := n.Read()
			require.NoError(t, err)
			assert.True(t, bytes.Equal(tt.payload, got))
			assert.Equal(t, int64(len(tt.payload)), n.Size())
			assert.Nil(t, n.LastError())
		})
	}
}

func TestWriteOverwritesAndLeavesNoTemp(t *testing.T) {
	sb := newTestSandbox(t)
	n := sb.MustResolve("f.txt")
	require.NoError(t, n.Write([]byte("a much longer first version")))
	require.NoError(t, os.Chmod(n.Path(), 0o600))
	require.NoError(t, n.Write([]byte("short")))

	got, err := n.Text()
	require.NoError(t, err)
	assert.Equal(t, "short", got)

	fi, err := os.Stat(n.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	list, err := sb.Root().ListChildren()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "f.txt", list[0].Name())
}

func TestWriteRequiresParent(t *testing.T) {
	sb := newTestSandbox(t)

	err := sb.MustResolve("missing/f.txt").Write([]byte("x"))
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, sb.MustResolve("file").Write([]byte("x")))
	err = sb.MustResolve("file/child").Write([]byte("x"))
	assert.ErrorIs(t, err, ErrTypeMismatch)

	require.NoError(t, sb.MustResolve("dir").MakeDirs())
	err = sb.MustResolve("dir").Write([]byte("x"))
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.True(t, sb.MustResolve("dir").IsDir())
}

func TestReadErrors(t *testing.T) {
	sb := newTestSandbox(t)
	missing := sb.MustResolve("missing")

	_, err := missing.Read()
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, missing.LastError(), ErrNotFound)

	_, err = sb.Root().Read()
	assert.ErrorIs(t, err, ErrTypeMismatch)

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "read", se.Op)
	assert.Equal(t, sb.RootPath(), se.Path)
}

func TestLastErrorClearedOnSuccess(t *testing.T) {
	sb := newTestSandbox(t)
	n := sb.MustResolve("f")

	_, err := n.Read()
	require.Error(t, err)
	require.Error(t, n.LastError())

	require.NoError(t, n.Write([]byte("x")))
	assert.Nil(t, n.LastError())
}

func TestAppend(t *testing.T) {
	sb := newTestSandbox(t)
	n := sb.MustResolve("log.txt")

	require.NoError(t, n.Append([]byte("one\n")))
	require.NoError(t, n.AppendText("two\n", EncodingUTF8))

	got, err := n.Text()
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", got)

	assert.ErrorIs(t, sb.MustResolve("nope/log.txt").Append([]byte("x")), ErrNotFound)
}

func TestWriteChild(t *testing.T) {
	sb := newTestSandbox(t)
	dir := sb.MustResolve("notes")
	require.NoError(t, dir.MakeDirs())

	c, err := dir.WriteChild([]byte("hi"), "hello.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello.txt", c.Name())
	assert.True(t, c.IsFile())

	c, err = dir.WriteChildExt([]byte("{}"), "config", ".json")
	require.NoError(t, err)
	assert.Equal(t, "config.json", c.Name())

	c, err = dir.WriteChildExt([]byte("x"), "plain", "")
	require.NoError(t, err)
	assert.Equal(t, "plain", c.Name())

	_, err = dir.WriteChild([]byte("x"), "../escape")
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.ErrorIs(t, dir.LastError(), ErrInvalidName)
}

func TestNonASCIIPaths(t *testing.T) {
	sb := newTestSandbox(t)
	dir := sb.MustResolve("données/日本語")
	require.NoError(t, dir.MakeDirs())

	c, err := dir.WriteChild([]byte(strings.Repeat("ü", 100)), "ファイル.txt")
	require.NoError(t, err)
	got, err := c.Text()
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("ü", 100), got)
	assert.Equal(t, "txt", c.Extension())
	assert.Equal(t, "ファイル", c.SimpleName())
}
