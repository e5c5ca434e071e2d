package record

import (
	"fmt"
	"strings"
)

// Fixed byte layout of a record header: CODE(3) NATURE(1) FORMAT(1) SIZE(2) ':'.
const (
	codeOffset   = 0
	natureOffset = 3
	formatOffset = 4
	sizeOffset   = 5
	sepOffset    = 7
	headerLen    = sepOffset + 1
)

// Nature tells how many values a field carries.
type Nature byte

const (
	NatureReserved Nature = 'T' // reserved logical record
	NatureSimple   Nature = 'S' // one value
	NatureCompound Nature = 'C' // several values
)

// ParseNature validates a nature tag character.
func ParseNature(b byte) (Nature, error) {
	switch n := Nature(b); n {
	case NatureReserved, NatureSimple, NatureCompound:
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidNature, string(b))
	}
}

func (n Nature) String() string {
	switch n {
	case NatureReserved:
		return "reserved"
	case NatureSimple:
		return "simple"
	case NatureCompound:
		return "compound"
	default:
		return fmt.Sprintf("nature(%q)", byte(n))
	}
}

// Format is the value format tag of a field.
type Format byte

const (
	FormatText          Format = 'A' // string of characters
	FormatCoordinate    Format = 'C'
	FormatDate          Format = 'D' // YYYYMMDD
	FormatRealExponent  Format = 'E'
	FormatSignedInt     Format = 'I'
	FormatUnsignedInt   Format = 'N'
	FormatDescriptorRef Format = 'P'
	FormatReal          Format = 'R'
	FormatPlainText     Format = 'T'
	FormatBlank         Format = ' ' // reserved logical record
)

// ParseFormat validates a format tag character.
func ParseFormat(b byte) (Format, error) {
	switch f := Format(b); f {
	case FormatText, FormatCoordinate, FormatDate, FormatRealExponent,
		FormatSignedInt, FormatUnsignedInt, FormatDescriptorRef,
		FormatReal, FormatPlainText, FormatBlank:
		return f, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, string(b))
	}
}

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatCoordinate:
		return "coordinate"
	case FormatDate:
		return "date"
	case FormatRealExponent:
		return "real-exponent"
	case FormatSignedInt:
		return "signed-int"
	case FormatUnsignedInt:
		return "unsigned-int"
	case FormatDescriptorRef:
		return "descriptor-ref"
	case FormatReal:
		return "real"
	case FormatPlainText:
		return "plain-text"
	case FormatBlank:
		return "blank"
	default:
		return fmt.Sprintf("format(%q)", byte(f))
	}
}

// Header is the fixed seven-character prefix of a record.
type Header struct {
	Code   Code
	Nature Nature
	Format Format
	Size   int
}

// ParseHeader decodes the header prefix of line. The prefix is read at fixed
// offsets, so colons inside the value never shift it.
//
//	RTYSA03:GTS -> {RTY, simple, text, 3}
func ParseHeader(line string) (Header, error) {
	if !strings.Contains(line, ":") {
		return Header{}, ErrMissingSeparator
	}
	if len(line) < natureOffset {
		return Header{}, fmt.Errorf("%w: %q", ErrUnknownCode, line)
	}
	code, err := LookupCode(line[codeOffset:natureOffset])
	if err != nil {
		return Header{}, err
	}
	if len(line) <= natureOffset {
		return Header{}, fmt.Errorf("%w: truncated header", ErrInvalidNature)
	}
	nature, err := ParseNature(line[natureOffset])
	if err != nil {
		return Header{}, err
	}
	if len(line) <= formatOffset {
		return Header{}, fmt.Errorf("%w: truncated header", ErrInvalidFormat)
	}
	format, err := ParseFormat(line[formatOffset])
	if err != nil {
		return Header{}, err
	}
	if len(line) < sepOffset {
		return Header{}, fmt.Errorf("%w: truncated header", ErrInvalidSize)
	}
	size, err := parseSize(line[sizeOffset:sepOffset])
	if err != nil {
		return Header{}, err
	}
	if len(line) < headerLen || line[sepOffset] != ':' {
		return Header{}, fmt.Errorf("%w: expected ':' at offset %d", ErrMissingSeparator, sepOffset)
	}
	return Header{Code: code, Nature: nature, Format: format, Size: size}, nil
}

func parseSize(s string) (int, error) {
	if len(s) != 2 || !isDigit(s[0]) || !isDigit(s[1]) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// String renders h back into its seven-character wire form, without the
// trailing separator.
func (h Header) String() string {
	return fmt.Sprintf("%s%c%c%02d", h.Code, byte(h.Nature), byte(h.Format), h.Size)
}
