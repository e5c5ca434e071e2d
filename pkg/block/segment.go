package block

import (
	"fmt"

	"github.com/odvcencio/edigeo/pkg/record"
)

// Block is an ordered group of records sharing one role.
type Block struct {
	// ID is the block-type token that opens the block, e.g. "GTS".
	ID      string
	Role    Role
	Entries []record.Record
}

// AnomalyKind classifies a non-fatal segmentation irregularity.
type AnomalyKind string

const (
	// AnomalyUnknownBlockType is an RTY record whose token the table lacks.
	AnomalyUnknownBlockType AnomalyKind = "unknown-block-type"
	// AnomalyOrphanRecord is a zone record seen while no block is open.
	AnomalyOrphanRecord AnomalyKind = "orphan-record"
	// AnomalyRepeatedKeyword is a second BOM, CSE or EOM.
	AnomalyRepeatedKeyword AnomalyKind = "repeated-keyword"
	// AnomalyMissingEOM means the stream ended without EOM.
	AnomalyMissingEOM AnomalyKind = "missing-eom"
)

// Anomaly records a segmentation irregularity at a given line.
type Anomaly struct {
	Kind AnomalyKind
	Line int
	Code record.Code
	// Token holds the RTY value for AnomalyUnknownBlockType.
	Token string
}

func (a Anomaly) String() string {
	switch a.Kind {
	case AnomalyUnknownBlockType:
		return fmt.Sprintf("line %d: unknown block type %q", a.Line, a.Token)
	case AnomalyOrphanRecord:
		return fmt.Sprintf("line %d: %s record outside any block", a.Line, a.Code)
	case AnomalyRepeatedKeyword:
		return fmt.Sprintf("line %d: repeated %s", a.Line, a.Code)
	case AnomalyMissingEOM:
		return "missing EOM"
	default:
		return fmt.Sprintf("line %d: %s", a.Line, a.Kind)
	}
}

// Segmentation is the block partition of one member file. Blocks follows the
// role table's order and holds every role, populated or not.
type Segmentation struct {
	Kind      Kind
	Member    string
	Blocks    []Block
	Anomalies []Anomaly
}

// Block returns the block playing role.
func (s *Segmentation) Block(role Role) (Block, bool) {
	for _, b := range s.Blocks {
		if b.Role == role {
			return b, true
		}
	}
	return Block{}, false
}

// Len is the number of records assigned to blocks.
func (s *Segmentation) Len() int {
	n := 0
	for _, b := range s.Blocks {
		n += len(b.Entries)
	}
	return n
}

const noBlock = -1

// Segmenter is the per-member block state machine. The active block is an
// index into blocks, never a reference to one.
type Segmenter struct {
	table  RoleTable
	seg    Segmentation
	index  map[Role]int
	active int
	seen   map[record.Code]bool
}

// NewSegmenter starts a segmentation for one member file.
func NewSegmenter(table RoleTable, member string) *Segmenter {
	roles := table.Roles()
	s := &Segmenter{
		table:  table,
		index:  make(map[Role]int, len(roles)),
		active: noBlock,
		seen:   make(map[record.Code]bool, 3),
		seg: Segmentation{
			Kind:   table.Kind(),
			Member: member,
			Blocks: make([]Block, len(roles)),
		},
	}
	for i, role := range roles {
		token, _ := table.Token(role)
		s.seg.Blocks[i] = Block{ID: token, Role: role}
		s.index[role] = i
	}
	return s
}

// Feed advances the state machine by one record. Records must arrive in file
// order.
func (s *Segmenter) Feed(rec record.Record) {
	switch rec.Header.Code.Family() {
	case record.FamilyStructural:
		if s.seen[rec.Header.Code] {
			s.anomaly(Anomaly{Kind: AnomalyRepeatedKeyword, Line: rec.Line, Code: rec.Header.Code})
		}
		s.seen[rec.Header.Code] = true
		if rec.Header.Code == record.CodeEOM {
			s.active = noBlock
		}
	case record.FamilyBlockType:
		token, _ := rec.Text()
		role, ok := s.table.Lookup(token)
		if !ok {
			s.anomaly(Anomaly{Kind: AnomalyUnknownBlockType, Line: rec.Line, Code: rec.Header.Code, Token: token})
			return
		}
		s.active = s.index[role]
	case record.FamilyZone:
		if s.active == noBlock {
			s.anomaly(Anomaly{Kind: AnomalyOrphanRecord, Line: rec.Line, Code: rec.Header.Code})
			return
		}
		b := &s.seg.Blocks[s.active]
		b.Entries = append(b.Entries, rec)
	}
}

// Finish closes the segmentation and returns it. The Segmenter must not be
// fed afterwards.
func (s *Segmenter) Finish() Segmentation {
	if !s.seen[record.CodeEOM] {
		s.anomaly(Anomaly{Kind: AnomalyMissingEOM})
	}
	s.active = noBlock
	return s.seg
}

func (s *Segmenter) anomaly(a Anomaly) {
	s.seg.Anomalies = append(s.seg.Anomalies, a)
}

// Segment partitions an ordered record stream into the blocks of table.
func Segment(table RoleTable, member string, records []record.Record) Segmentation {
	s := NewSegmenter(table, member)
	for _, rec := range records {
		s.Feed(rec)
	}
	return s.Finish()
}

// SegmentText parses text line by line and segments it in one pass. Parsing
// stops at the first malformed line.
func SegmentText(table RoleTable, member, text string) (Segmentation, error) {
	s := NewSegmenter(table, member)
	err := record.Scan(member, text, func(rec record.Record) error {
		s.Feed(rec)
		return nil
	})
	if err != nil {
		return Segmentation{}, err
	}
	return s.Finish(), nil
}
