package bundle

import (
	"errors"
	"fmt"
	"strings"
)

// Member identifies one file slot of an EDIGéO lot.
type Member uint8

const (
	MemberTHF Member = iota
	MemberGEO
	MemberQAL
	MemberT1
	MemberT2
	MemberT3
	MemberS1
	MemberDIC
	MemberGEN
	MemberSCD

	memberCount
)

type memberInfo struct {
	name        string
	suffix      string
	fileKind    string
	mandatory   bool
	description string
}

// Suffixes are listed most specific first; see Classify.
var members = [memberCount]memberInfo{
	MemberTHF: {"THF", ".THF", "THF", true, "exchange manifest"},
	MemberGEO: {"GEO", ".GEO", "GEO", true, "coordinate reference"},
	MemberQAL: {"QAL", ".QAL", "QAL", true, "quality"},
	MemberT1:  {"T1", "T1.VEC", "VEC", true, "vector data, topic 1"},
	MemberT2:  {"T2", "T2.VEC", "VEC", true, "vector data, topic 2"},
	MemberT3:  {"T3", "T3.VEC", "VEC", true, "vector data, topic 3"},
	MemberS1:  {"S1", "S1.VEC", "VEC", true, "vector data, sheet"},
	MemberDIC: {"DIC", ".DIC", "DIC", false, "nomenclature"},
	MemberGEN: {"GEN", ".GEN", "GEN", false, "general data"},
	MemberSCD: {"SCD", ".SCD", "SCD", false, "conceptual schema"},
}

// Members returns every member slot in canonical order.
func Members() []Member {
	out := make([]Member, memberCount)
	for i := range out {
		out[i] = Member(i)
	}
	return out
}

// ParseMember resolves a member name such as "THF" or "T1".
func ParseMember(s string) (Member, error) {
	for m := Member(0); m < memberCount; m++ {
		if strings.EqualFold(members[m].name, s) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown member %q", s)
}

func (m Member) String() string {
	if m >= memberCount {
		return fmt.Sprintf("member(%d)", uint8(m))
	}
	return members[m].name
}

// FileKind is the EDIGéO file kind of the member: THF, GEO, QAL, VEC, DIC,
// GEN or SCD.
func (m Member) FileKind() string { return members[m].fileKind }

// Mandatory reports whether a lot is unusable without the member.
func (m Member) Mandatory() bool { return members[m].mandatory }

func (m Member) Description() string { return members[m].description }

// Classify maps a file name to its member slot by case-sensitive suffix.
// Names matching no member return false.
func Classify(name string) (Member, bool) {
	// VEC suffixes first: they are longer than the bare extensions.
	for _, m := range []Member{MemberT1, MemberT2, MemberT3, MemberS1} {
		if strings.HasSuffix(name, members[m].suffix) {
			return m, true
		}
	}
	for _, m := range []Member{MemberTHF, MemberGEO, MemberQAL, MemberDIC, MemberGEN, MemberSCD} {
		if strings.HasSuffix(name, members[m].suffix) {
			return m, true
		}
	}
	return 0, false
}

// Bundle holds the raw bytes of every member of one lot. Optional members
// that were not found have nil data.
type Bundle struct {
	data  [memberCount][]byte
	names [memberCount][]string
}

// New returns an empty bundle.
func New() *Bundle {
	return &Bundle{}
}

// Add appends data to a member slot. Several source entries matching the same
// slot accumulate in the order they are added, each starting on a new line.
func (b *Bundle) Add(m Member, name string, data []byte) {
	if b.data[m] == nil {
		b.data[m] = []byte{}
	}
	if prev := b.data[m]; len(prev) > 0 && prev[len(prev)-1] != '\n' {
		b.data[m] = append(b.data[m], '\r', '\n')
	}
	b.data[m] = append(b.data[m], data...)
	b.names[m] = append(b.names[m], name)
}

// Data returns the raw bytes of m, nil when absent.
func (b *Bundle) Data(m Member) []byte { return b.data[m] }

// Has reports whether at least one source entry filled m.
func (b *Bundle) Has(m Member) bool { return len(b.names[m]) > 0 }

// Name returns the file name m was read from. When several entries matched,
// the names are joined with '+'.
func (b *Bundle) Name(m Member) string { return strings.Join(b.names[m], "+") }

// Present lists the members that were found, in canonical order.
func (b *Bundle) Present() []Member {
	var out []Member
	for _, m := range Members() {
		if b.Has(m) {
			out = append(out, m)
		}
	}
	return out
}

// Field accessors mirroring the lot layout.
func (b *Bundle) THF() []byte { return b.data[MemberTHF] }
func (b *Bundle) GEO() []byte { return b.data[MemberGEO] }
func (b *Bundle) QAL() []byte { return b.data[MemberQAL] }
func (b *Bundle) T1() []byte  { return b.data[MemberT1] }
func (b *Bundle) T2() []byte  { return b.data[MemberT2] }
func (b *Bundle) T3() []byte  { return b.data[MemberT3] }
func (b *Bundle) S1() []byte  { return b.data[MemberS1] }
func (b *Bundle) DIC() []byte { return b.data[MemberDIC] }
func (b *Bundle) GEN() []byte { return b.data[MemberGEN] }
func (b *Bundle) SCD() []byte { return b.data[MemberSCD] }

// Validate checks that every mandatory member is present and non-empty.
func (b *Bundle) Validate() error {
	var missing []Member
	for _, m := range Members() {
		if m.Mandatory() && len(b.data[m]) == 0 {
			missing = append(missing, m)
		}
	}
	if len(missing) > 0 {
		return &IncompleteError{Missing: missing}
	}
	return nil
}

// ErrIncompleteBundle matches any *IncompleteError.
var ErrIncompleteBundle = errors.New("incomplete bundle")

// IncompleteError lists the mandatory members a lot lacks.
type IncompleteError struct {
	Missing []Member
}

func (e *IncompleteError) Error() string {
	names := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		names[i] = m.String()
	}
	return fmt.Sprintf("incomplete bundle: missing %s", strings.Join(names, ", "))
}

func (e *IncompleteError) Is(target error) bool {
	return target == ErrIncompleteBundle
}
