package encoding

import (
	"fmt"
	"strings"
	"sync/atomic"

	xtext "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"

	"github.com/vaseug/PowerLib-sub000/endian"
	"github.com/vaseug/PowerLib-sub000/errs"
	"github.com/vaseug/PowerLib-sub000/format"
)

// TextCodec stores strings encoded with a character encoding.
//
// The zero value uses the runtime-wide default encoding at the time of each
// call, see SetDefaultTextEncoding.
type TextCodec struct {
	enc xtext.Encoding
}

// Text is the text codec bound to the runtime-wide default encoding.
var Text VariableCodec[string] = TextCodec{}

type encodingHolder struct {
	enc xtext.Encoding
}

var defaultTextEncoding atomic.Pointer[encodingHolder]

func init() {
	defaultTextEncoding.Store(&encodingHolder{enc: unicode.UTF8})
}

// SetDefaultTextEncoding replaces the runtime-wide default text encoding.
// A nil enc restores UTF-8.
func SetDefaultTextEncoding(enc xtext.Encoding) {
	if enc == nil {
		enc = unicode.UTF8
	}
	defaultTextEncoding.Store(&encodingHolder{enc: enc})
}

// DefaultTextEncoding returns the runtime-wide default text encoding.
func DefaultTextEncoding() xtext.Encoding {
	return defaultTextEncoding.Load().enc
}

// codepages maps numeric codepage ids to encodings.
var codepages = map[int]xtext.Encoding{
	437:   charmap.CodePage437,
	850:   charmap.CodePage850,
	852:   charmap.CodePage852,
	855:   charmap.CodePage855,
	866:   charmap.CodePage866,
	874:   charmap.Windows874,
	1200:  unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	1201:  unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	1250:  charmap.Windows1250,
	1251:  charmap.Windows1251,
	1252:  charmap.Windows1252,
	1253:  charmap.Windows1253,
	1254:  charmap.Windows1254,
	1255:  charmap.Windows1255,
	1256:  charmap.Windows1256,
	1257:  charmap.Windows1257,
	1258:  charmap.Windows1258,
	10000: charmap.Macintosh,
	12000: utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM),
	12001: utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM),
	20866: charmap.KOI8R,
	21866: charmap.KOI8U,
	28591: charmap.ISO8859_1,
	28592: charmap.ISO8859_2,
	28595: charmap.ISO8859_5,
	28597: charmap.ISO8859_7,
	28605: charmap.ISO8859_15,
	65001: unicode.UTF8,
}

// NewText returns a text codec bound to enc. A nil enc follows the runtime-wide default.
func NewText(enc xtext.Encoding) TextCodec {
	return TextCodec{enc: enc}
}

// TextByCodepage returns a text codec for a numeric codepage id such as 1252 or 65001.
func TextByCodepage(id int) (TextCodec, error) {
	enc, ok := codepages[id]
	if !ok {
		return TextCodec{}, fmt.Errorf("codepage %d: %w", id, errs.ErrEncodingUnsupported)
	}

	return TextCodec{enc: enc}, nil
}

// TextByName returns a text codec for an IANA character set name such as
// "windows-1251" or "UTF-16LE". Names are matched case-insensitively.
func TextByName(name string) (TextCodec, error) {
	enc, err := ianaindex.IANA.Encoding(strings.TrimSpace(name))
	if err != nil || enc == nil {
		return TextCodec{}, fmt.Errorf("encoding %q: %w", name, errs.ErrEncodingUnsupported)
	}

	return TextCodec{enc: enc}, nil
}

// Encoding returns the encoding in effect for the codec.
func (c TextCodec) Encoding() xtext.Encoding {
	if c.enc == nil {
		return DefaultTextEncoding()
	}

	return c.enc
}

func (TextCodec) Kind() format.Kind      { return format.KindText }
func (TextCodec) Quoted() bool           { return true }
func (TextCodec) Equal(a, b string) bool { return a == b }

func (c TextCodec) Append(_ endian.EndianEngine, dst []byte, v string) ([]byte, error) {
	enc := c.Encoding()
	if enc == unicode.UTF8 {
		return append(dst, v...), nil
	}

	b, err := enc.NewEncoder().Bytes([]byte(v))
	if err != nil {
		return dst, fmt.Errorf("text %q: %v: %w", v, err, errs.ErrEncodingUnsupported) //nolint:errorlint
	}

	return append(dst, b...), nil
}

func (c TextCodec) Decode(_ endian.EndianEngine, src []byte) (string, error) {
	enc := c.Encoding()
	if enc == unicode.UTF8 {
		return string(src), nil
	}

	b, err := enc.NewDecoder().Bytes(src)
	if err != nil {
		return "", fmt.Errorf("text payload: %v: %w", err, errs.ErrMalformedStream) //nolint:errorlint
	}

	return string(b), nil
}

func (TextCodec) FormatLiteral(v string) string {
	return v
}

func (TextCodec) ParseLiteral(s string) (string, error) {
	return s, nil
}
