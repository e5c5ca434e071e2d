package record

import (
	"strings"
	"unicode/utf8"
)

// Record is one decoded line of a member file.
type Record struct {
	Header Header
	Raw    string
	// Value is nil for fields that carry no value, such as EOM.
	Value Value
	// Line is the 1-based line number in the member file, zero when the
	// record was parsed outside of a file.
	Line int
}

// ParseRecord parses a single line into a Record. The declared size must
// equal the character count of the value.
func ParseRecord(line string) (Record, error) {
	h, err := ParseHeader(line)
	if err != nil {
		return Record{}, err
	}
	// ParseHeader guarantees the first ':' sits at sepOffset.
	raw := line[headerLen:]
	if n := utf8.RuneCountInString(raw); n != h.Size {
		return Record{}, &SizeMismatchError{Declared: h.Size, Actual: n}
	}
	v, err := DecodeValue(h.Format, h.Nature, raw)
	if err != nil {
		return Record{}, err
	}
	return Record{Header: h, Raw: raw, Value: v}, nil
}

// Text returns the record's value as a string when it decoded to Text.
func (r Record) Text() (string, bool) {
	t, ok := r.Value.(Text)
	return string(t), ok
}

// Scan parses every non-empty line of text in order and hands each record to
// fn. Both LF and CRLF line endings are accepted. A line that fails to parse
// stops the scan with a *LineError naming member.
func Scan(member, text string, fn func(Record) error) error {
	lineNo := 0
	for len(text) > 0 {
		var line string
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			line, text = text[:i], text[i+1:]
		} else {
			line, text = text, ""
		}
		lineNo++
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		rec, err := ParseRecord(line)
		if err != nil {
			return &LineError{Member: member, Line: lineNo, Raw: line, Err: err}
		}
		rec.Line = lineNo
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

// ParseLines returns every record of text in file order.
func ParseLines(member, text string) ([]Record, error) {
	var out []Record
	err := Scan(member, text, func(r Record) error {
		out = append(out, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
