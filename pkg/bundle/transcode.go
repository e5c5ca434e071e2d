package bundle

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Encoding is the on-disk character set of member files.
type Encoding string

const (
	EncodingWindows1252 Encoding = "windows-1252"
	EncodingLatin1      Encoding = "iso-8859-1"
	EncodingUTF8        Encoding = "utf-8"
)

// DefaultEncoding is what PCI producers write.
const DefaultEncoding = EncodingWindows1252

// ParseEncoding accepts the usual aliases of the supported encodings.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "windows-1252", "cp1252", "win1252":
		return EncodingWindows1252, nil
	case "iso-8859-1", "latin1", "latin-1", "8859-1":
		return EncodingLatin1, nil
	case "utf-8", "utf8":
		return EncodingUTF8, nil
	default:
		return "", fmt.Errorf("unsupported encoding %q", s)
	}
}

// ErrTranscode matches any *TranscodeError.
var ErrTranscode = errors.New("transcode")

// TranscodeError lists the byte offsets that had no mapping in the source
// encoding. Each was replaced by U+FFFD in the returned text.
type TranscodeError struct {
	Encoding Encoding
	Offsets  []int
}

func (e *TranscodeError) Error() string {
	return fmt.Sprintf("transcode %s: %d undecodable byte(s), first at offset %d", e.Encoding, len(e.Offsets), e.Offsets[0])
}

func (e *TranscodeError) Is(target error) bool {
	return target == ErrTranscode
}

// Transcode decodes member bytes to UTF-8 text. When some bytes cannot be
// decoded the text is still returned, with a *TranscodeError.
func Transcode(data []byte, enc Encoding) (string, error) {
	switch enc {
	case EncodingUTF8:
		return transcodeUTF8(data)
	case EncodingWindows1252, "":
		return transcodeCharmap(data, charmap.Windows1252, EncodingWindows1252)
	case EncodingLatin1:
		return transcodeCharmap(data, charmap.ISO8859_1, EncodingLatin1)
	default:
		return "", fmt.Errorf("unsupported encoding %q", enc)
	}
}

// Decoding byte by byte keeps the offset of every unmapped byte. The
// Windows-1252 and ISO-8859-1 tables map all 256 bytes (0x81, 0x8D, 0x8F,
// 0x90 and 0x9D become C1 controls), so for them the error never fires.
func transcodeCharmap(data []byte, cm *charmap.Charmap, enc Encoding) (string, error) {
	var sb strings.Builder
	sb.Grow(len(data))
	var bad []int
	for i, c := range data {
		r := cm.DecodeByte(c)
		if r == utf8.RuneError {
			bad = append(bad, i)
		}
		sb.WriteRune(r)
	}
	if len(bad) > 0 {
		return sb.String(), &TranscodeError{Encoding: enc, Offsets: bad}
	}
	return sb.String(), nil
}

func transcodeUTF8(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	var sb strings.Builder
	var bad []int
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			bad = append(bad, i)
		}
		sb.WriteRune(r)
		i += size
	}
	return sb.String(), &TranscodeError{Encoding: EncodingUTF8, Offsets: bad}
}
