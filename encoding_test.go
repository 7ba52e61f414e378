package sandfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextRoundTrip(t *testing.T) {
	tests := []struct {
		enc  Encoding
		text string
	}{
		{EncodingUTF8, "héllo 世界 🌍"},
		{EncodingUTF16LE, "héllo 世界 🌍"},
		{EncodingUTF16BE, "héllo 世界"},
		{EncodingUTF16, "héllo 世界"},
		{EncodingISO8859_1, "héllo wörld"},
		{EncodingWindows1252, "€uro “quotes”"},
		{EncodingShiftJIS, "こんにちは世界"},
		{EncodingEUCJP, "こんにちは世界"},
		{EncodingGBK, "你好世界"},
		{EncodingGB18030, "你好世界"},
		{EncodingBig5, "你好世界"},
		{EncodingEUCKR, "안녕하세요"},
	}
	for _, tt := range tests {
		t.Run(tt.enc.String(), func(t *testing.T) {
			sb := newTestSandbox(t)
			n := sb.MustResolve("text")
			require.NoError(t, n.WriteText(tt.text, tt.enc))

			got, err := n.ReadText(tt.enc)
			require.NoError(t, err)
			assert.Equal(t, tt.text, got)
		})
	}
}

func TestUTF16ByteOrderMark(t *testing.T) {
	sb := newTestSandbox(t)
	n := sb.MustResolve("bom.txt")

	require.NoError(t, n.WriteText("hi", EncodingUTF16))
	raw, err := n.Read()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFE, 0xFF, 0x00, 'h', 0x00, 'i'}, raw)

	require.NoError(t, n.AppendText("!", EncodingUTF16))
	raw, err = n.Read()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFE, 0xFF, 0x00, 'h', 0x00, 'i', 0x00, '!'}, raw)

	got, err := n.ReadText(EncodingUTF16)
	require.NoError(t, err)
	assert.Equal(t, "hi!", got)

	le := sb.MustResolve("le.txt")
	require.NoError(t, le.Write([]byte{0xFF, 0xFE, 'o', 0x00, 'k', 0x00}))
	got, err = le.ReadText(EncodingUTF16)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestDecodeInvalid(t *testing.T) {
	tests := []struct {
		name string
		enc  Encoding
		raw  []byte
	}{
		{"utf-8", EncodingUTF8, []byte{0xff, 0xfe, 0xfd}},
		{"utf-16 odd length", EncodingUTF16LE, []byte{'A', 0x00, 'B'}},
		{"utf-16 lone surrogate", EncodingUTF16BE, []byte{0xD8, 0x00, 0x00, 'A'}},
		{"shift_jis", EncodingShiftJIS, []byte{0x82, 0xA0, 0x82}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sb := newTestSandbox(t)
			n := sb.MustResolve("bad")
			require.NoError(t, n.Write(tt.raw))

			_, err := n.ReadText(tt.enc)
			assert.ErrorIs(t, err, ErrEncoding)
			assert.ErrorIs(t, n.LastError(), ErrEncoding)
		})
	}
}

func TestDecodeKeepsGenuineReplacementCharacter(t *testing.T) {
	sb := newTestSandbox(t)
	n := sb.MustResolve("fffd")
	require.NoError(t, n.WriteText("a�b", EncodingUTF16LE))

	got, err := n.ReadText(EncodingUTF16LE)
	require.NoError(t, err)
	assert.Equal(t, "a�b", got)
}

func TestEncodeUnrepresentable(t *testing.T) {
	sb := newTestSandbox(t)
	n := sb.MustResolve("latin")

	err := n.WriteText("世界", EncodingISO8859_1)
	assert.ErrorIs(t, err, ErrEncoding)
	assert.False(t, n.Exists())

	err = n.WriteText("\xff", EncodingUTF8)
	assert.ErrorIs(t, err, ErrEncoding)
}

func TestEncodingAuto(t *testing.T) {
	sb := newTestSandbox(t)

	utf8 := sb.MustResolve("utf8")
	require.NoError(t, utf8.WriteText("plain ünïcode", EncodingUTF8))
	got, err := utf8.ReadText(EncodingAuto)
	require.NoError(t, err)
	assert.Equal(t, "plain ünïcode", got)

	bom := sb.MustResolve("bom")
	require.NoError(t, bom.WriteText("with a mark", EncodingUTF16))
	got, err = bom.ReadText(EncodingAuto)
	require.NoError(t, err)
	assert.Equal(t, "with a mark", got)

	require.NoError(t, sb.MustResolve("auto").WriteText("written as utf-8", EncodingAuto))
	got, err = sb.MustResolve("auto").Text()
	require.NoError(t, err)
	assert.Equal(t, "written as utf-8", got)
}

func TestDetectEncodingNonUTF8(t *testing.T) {
	latin := []byte("Le caf\xe9 cr\xe8me br\xfbl\xe9e est d\xe9j\xe0 pr\xeat, c'est tr\xe8s fran\xe7ais et tr\xe8s d\xe9licieux.")
	enc, err := detectEncoding(latin)
	if err != nil {
		assert.ErrorIs(t, err, ErrEncoding)
		return
	}
	assert.NotEqual(t, EncodingUTF8, enc)
}

func TestParseEncoding(t *testing.T) {
	tests := []struct {
		in      string
		want    Encoding
		wantErr bool
	}{
		{"UTF-8", EncodingUTF8, false},
		{"utf8", EncodingUTF8, false},
		{"utf-16", EncodingUTF16, false},
		{"UTF-16LE", EncodingUTF16LE, false},
		{"iso-8859-1", EncodingISO8859_1, false},
		{"latin1", EncodingWindows1252, false},
		{"cp1252", EncodingWindows1252, false},
		{"Shift_JIS", EncodingShiftJIS, false},
		{"sjis", EncodingShiftJIS, false},
		{"EUC-JP", EncodingEUCJP, false},
		{"gbk", EncodingGBK, false},
		{"GB-18030", EncodingGB18030, false},
		{"big5", EncodingBig5, false},
		{"euc-kr", EncodingEUCKR, false},
		{"auto", EncodingAuto, false},
		{"klingon", EncodingUTF8, true},
	}
	for _, tt := range tests {
		got, err := ParseEncoding(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrEncoding, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
