package sandfs

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// Encoding is a text encoding for ReadText, WriteText and AppendText.
type Encoding int

const (
	EncodingUTF8 Encoding = iota
	EncodingUTF16LE
	EncodingUTF16BE
	// EncodingUTF16 honours a byte order mark when decoding (big endian
	// without one) and writes a big-endian BOM when encoding.
	EncodingUTF16
	EncodingISO8859_1
	EncodingWindows1252
	EncodingShiftJIS
	EncodingEUCJP
	EncodingGBK
	EncodingGB18030
	EncodingBig5
	EncodingEUCKR
	// EncodingAuto detects the charset when reading and writes UTF-8.
	EncodingAuto
)

var encodingNames = [...]string{
	EncodingUTF8:        "utf-8",
	EncodingUTF16LE:     "utf-16le",
	EncodingUTF16BE:     "utf-16be",
	EncodingUTF16:       "utf-16",
	EncodingISO8859_1:   "iso-8859-1",
	EncodingWindows1252: "windows-1252",
	EncodingShiftJIS:    "shift_jis",
	EncodingEUCJP:       "euc-jp",
	EncodingGBK:         "gbk",
	EncodingGB18030:     "gb18030",
	EncodingBig5:        "big5",
	EncodingEUCKR:       "euc-kr",
	EncodingAuto:        "auto",
}

func (e Encoding) String() string {
	if e >= 0 && int(e) < len(encodingNames) {
		return encodingNames[e]
	}
	return fmt.Sprintf("Encoding(%d)", int(e))
}

// ParseEncoding maps a charset label onto an Encoding. Besides the names
// returned by String it accepts WHATWG labels such as "latin1" or "sjis".
// Note that WHATWG treats "latin1" as windows-1252.
func ParseEncoding(name string) (Encoding, error) {
	label := strings.ToLower(strings.TrimSpace(name))
	switch label {
	case "iso8859-1", "iso_8859-1":
		return EncodingISO8859_1, nil
	case "gb-18030":
		return EncodingGB18030, nil
	}
	for i, n := range encodingNames {
		if n == label {
			return Encoding(i), nil
		}
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return EncodingUTF8, fmt.Errorf("%w: unknown charset %q", ErrEncoding, name)
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil {
		return EncodingUTF8, fmt.Errorf("%w: unknown charset %q", ErrEncoding, name)
	}
	for i, n := range encodingNames {
		if n == canonical {
			return Encoding(i), nil
		}
	}
	return EncodingUTF8, fmt.Errorf("%w: unsupported charset %q", ErrEncoding, name)
}

func (e Encoding) codec() (encoding.Encoding, error) {
	switch e {
	case EncodingUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	case EncodingUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), nil
	case EncodingUTF16:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM), nil
	case EncodingISO8859_1:
		return charmap.ISO8859_1, nil
	case EncodingWindows1252:
		return charmap.Windows1252, nil
	case EncodingShiftJIS:
		return japanese.ShiftJIS, nil
	case EncodingEUCJP:
		return japanese.EUCJP, nil
	case EncodingGBK:
		return simplifiedchinese.GBK, nil
	case EncodingGB18030:
		return simplifiedchinese.GB18030, nil
	case EncodingBig5:
		return traditionalchinese.Big5, nil
	case EncodingEUCKR:
		return korean.EUCKR, nil
	}
	return nil, fmt.Errorf("%w: %s has no codec", ErrEncoding, e)
}

// decode converts b to a string. Decoders in x/text substitute U+FFFD for
// invalid input instead of failing, so any replacement character that does
// not survive re-encoding is reported as ErrEncoding.
func (e Encoding) decode(b []byte) (string, error) {
	switch e {
	case EncodingUTF8:
		if !utf8.Valid(b) {
			return "", fmt.Errorf("%w: invalid utf-8", ErrEncoding)
		}
		return string(b), nil
	case EncodingAuto:
		detected, err := detectEncoding(b)
		if err != nil {
			return "", err
		}
		return detected.decode(b)
	}

	codec, err := e.codec()
	if err != nil {
		return "", err
	}
	out, err := codec.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrEncoding, e, err)
	}
	if bytes.ContainsRune(out, utf8.RuneError) {
		back, err := e.encode(string(out))
		if err != nil || !bytes.Equal(stripBOM(back), stripBOM(b)) {
			return "", fmt.Errorf("%w: invalid %s input", ErrEncoding, e)
		}
	}
	return string(out), nil
}

// encode converts s to bytes. Runes the encoding cannot represent yield
// ErrEncoding rather than a substitute.
func (e Encoding) encode(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("%w: text is not valid utf-8", ErrEncoding)
	}
	if e == EncodingUTF8 || e == EncodingAuto {
		return []byte(s), nil
	}
	codec, err := e.codec()
	if err != nil {
		return nil, err
	}
	out, err := codec.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %s cannot represent the text: %v", ErrEncoding, e, err)
	}
	return out, nil
}

func stripBOM(b []byte) []byte {
	if len(b) >= 2 && (b[0] == 0xFE && b[1] == 0xFF || b[0] == 0xFF && b[1] == 0xFE) {
		return b[2:]
	}
	return b
}

// detectEncoding guesses the charset of b. Valid UTF-8 short-circuits the
// detector, which is unreliable on short ASCII input.
func detectEncoding(b []byte) (Encoding, error) {
	if len(b) >= 2 && (b[0] == 0xFE && b[1] == 0xFF || b[0] == 0xFF && b[1] == 0xFE) {
		return EncodingUTF16, nil
	}
	if utf8.Valid(b) {
		return EncodingUTF8, nil
	}
	res, err := chardet.NewTextDetector().DetectBest(b)
	if err != nil {
		return EncodingUTF8, fmt.Errorf("%w: charset detection failed: %v", ErrEncoding, err)
	}
	enc, err := ParseEncoding(res.Charset)
	if err != nil {
		return EncodingUTF8, err
	}
	return enc, nil
}
