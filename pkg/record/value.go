package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Value is a decoded field value: one of Float, Int, Date, Text, Coordinate
// or Descriptor. A field that carries no value decodes to a nil Value.
type Value interface {
	isValue()
	String() string
}

// Float is a real number.
type Float float64

// Int is a signed or unsigned integer field.
type Int int32

// Text is a character string.
type Text string

// Date is a calendar date transmitted as YYYYMMDD.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Coordinate is a coordinate pair kept in its transmitted textual form.
type Coordinate struct {
	X string
	Y string
}

// Descriptor is the ordered list of parts of a compound descriptor reference.
type Descriptor []Value

func (Float) isValue()      {}
func (Int) isValue()        {}
func (Text) isValue()       {}
func (Date) isValue()       {}
func (Coordinate) isValue() {}
func (Descriptor) isValue() {}

func (f Float) String() string { return strconv.FormatFloat(float64(f), 'f', -1, 64) }
func (i Int) String() string   { return strconv.Itoa(int(i)) }
func (t Text) String() string  { return string(t) }

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns d at midnight UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (c Coordinate) String() string { return c.X + ";" + c.Y }

// Float parses both components as real numbers.
func (c Coordinate) Float() (x, y float64, err error) {
	if x, err = strconv.ParseFloat(c.X, 64); err != nil {
		return 0, 0, fmt.Errorf("coordinate x: %w", err)
	}
	if y, err = strconv.ParseFloat(c.Y, 64); err != nil {
		return 0, 0, fmt.Errorf("coordinate y: %w", err)
	}
	return x, y, nil
}

func (d Descriptor) String() string {
	parts := make([]string, len(d))
	for i, v := range d {
		parts[i] = v.String()
	}
	return strings.Join(parts, ";")
}

// DecodeValue turns a raw value into its typed form according to the
// header's format and nature tags.
func DecodeValue(format Format, nature Nature, raw string) (Value, error) {
	switch format {
	case FormatText, FormatPlainText, FormatRealExponent:
		return Text(raw), nil
	case FormatReal:
		return decodeReal(raw)
	case FormatCoordinate:
		return decodeCoordinate(raw)
	case FormatDate:
		return decodeDate(raw)
	case FormatSignedInt:
		return decodeInt(raw, true)
	case FormatUnsignedInt:
		return decodeInt(raw, false)
	case FormatDescriptorRef:
		if nature == NatureCompound {
			return decodeDescriptor(raw), nil
		}
		return Text(raw), nil
	case FormatBlank:
		// EOMT 00: is reserved too but carries nothing.
		if nature == NatureReserved && raw != "" {
			return Text(raw), nil
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, byte(format))
	}
}

func decodeReal(raw string) (Value, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: real %q", ErrInvalidValue, raw)
	}
	return Float(f), nil
}

func decodeCoordinate(raw string) (Value, error) {
	// Producers terminate coordinate lists with ';'.
	raw = strings.TrimSuffix(raw, ";")
	x, y, ok := strings.Cut(raw, ";")
	if !ok {
		return nil, fmt.Errorf("%w: coordinate %q has no ';'", ErrInvalidValue, raw)
	}
	return Coordinate{X: x, Y: y}, nil
}

func decodeDate(raw string) (Value, error) {
	if len(raw) != 8 {
		return nil, fmt.Errorf("%w: date %q is not YYYYMMDD", ErrInvalidValue, raw)
	}
	for i := 0; i < len(raw); i++ {
		if !isDigit(raw[i]) {
			return nil, fmt.Errorf("%w: date %q is not YYYYMMDD", ErrInvalidValue, raw)
		}
	}
	year, _ := strconv.Atoi(raw[0:4])
	month, _ := strconv.Atoi(raw[4:6])
	day, _ := strconv.Atoi(raw[6:8])
	d := Date{Year: year, Month: time.Month(month), Day: day}
	t := d.Time()
	if t.Year() != year || t.Month() != d.Month || t.Day() != day {
		return nil, fmt.Errorf("%w: date %q is not a calendar date", ErrInvalidValue, raw)
	}
	return d, nil
}

func decodeInt(raw string, signed bool) (Value, error) {
	if !signed && strings.HasPrefix(raw, "-") {
		return nil, fmt.Errorf("%w: unsigned integer %q", ErrInvalidValue, raw)
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: integer %q", ErrInvalidValue, raw)
	}
	return Int(n), nil
}

func decodeDescriptor(raw string) Descriptor {
	parts := strings.Split(raw, ";")
	out := make(Descriptor, len(parts))
	for i, p := range parts {
		out[i] = Text(p)
	}
	return out
}
