package block

import (
	"fmt"
	"slices"
)

// Kind is the member file kind a role table applies to.
type Kind string

const (
	KindTHF Kind = "THF"
	KindGEN Kind = "GEN"
	KindGEO Kind = "GEO"
	KindQAL Kind = "QAL"
	KindDIC Kind = "DIC"
	KindSCD Kind = "SCD"
	KindVEC Kind = "VEC"
)

// Role names the part a block plays inside its member file.
type Role string

const (
	RoleSupport Role = "support"
	RoleBatch   Role = "batch"

	RoleGeographicDescriptor Role = "geographic-descriptor"
	RoleGeographicData       Role = "geographic-data"

	RoleReference Role = "reference"

	RoleQualityUpdate Role = "quality-update"

	RoleObjectDefinition    Role = "object-definition"
	RoleAttributeDefinition Role = "attribute-definition"
	RoleQualityDefinition   Role = "quality-definition"
	RoleRelationDefinition  Role = "relation-definition"

	RoleObjectSchema    Role = "object-schema"
	RoleAttributeSchema Role = "attribute-schema"
	RoleRelationSchema  Role = "relation-schema"

	RoleNode         Role = "node"
	RoleArc          Role = "arc"
	RoleFace         Role = "face"
	RoleRelationship Role = "relationship"
	RoleObject       Role = "object"
)

// RoleTable maps the block-type tokens announced by RTY records to roles.
type RoleTable struct {
	kind    Kind
	entries []roleEntry
}

type roleEntry struct {
	token string
	role  Role
}

func newTable(kind Kind, pairs ...roleEntry) RoleTable {
	return RoleTable{kind: kind, entries: pairs}
}

var tables = map[Kind]RoleTable{
	KindTHF: newTable(KindTHF,
		roleEntry{"GTS", RoleSupport},
		roleEntry{"GTL", RoleBatch},
	),
	KindGEN: newTable(KindGEN,
		roleEntry{"DEG", RoleGeographicDescriptor},
		roleEntry{"GSE", RoleGeographicData},
	),
	KindGEO: newTable(KindGEO,
		roleEntry{"GEO", RoleReference},
	),
	KindQAL: newTable(KindQAL,
		roleEntry{"QUP", RoleQualityUpdate},
	),
	KindDIC: newTable(KindDIC,
		roleEntry{"DIO", RoleObjectDefinition},
		roleEntry{"DIA", RoleAttributeDefinition},
		roleEntry{"DIQ", RoleQualityDefinition},
		roleEntry{"DIR", RoleRelationDefinition},
	),
	KindSCD: newTable(KindSCD,
		roleEntry{"OBJ", RoleObjectSchema},
		roleEntry{"ATT", RoleAttributeSchema},
		roleEntry{"REL", RoleRelationSchema},
	),
	KindVEC: newTable(KindVEC,
		roleEntry{"PNO", RoleNode},
		roleEntry{"PAR", RoleArc},
		roleEntry{"PFE", RoleFace},
		roleEntry{"LNK", RoleRelationship},
		roleEntry{"FEA", RoleObject},
	),
}

// TableFor returns the role table of a member file kind.
func TableFor(kind Kind) (RoleTable, error) {
	t, ok := tables[kind]
	if !ok {
		return RoleTable{}, fmt.Errorf("no block table for member kind %q", kind)
	}
	return t, nil
}

// Kind reports which member kind the table belongs to.
func (t RoleTable) Kind() Kind { return t.kind }

// Lookup returns the role announced by a block-type token.
func (t RoleTable) Lookup(token string) (Role, bool) {
	for _, e := range t.entries {
		if e.token == token {
			return e.role, true
		}
	}
	return "", false
}

// Token returns the block-type token that opens role.
func (t RoleTable) Token(role Role) (string, bool) {
	for _, e := range t.entries {
		if e.role == role {
			return e.token, true
		}
	}
	return "", false
}

// Roles lists the table's roles in declaration order.
func (t RoleTable) Roles() []Role {
	out := make([]Role, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.role
	}
	return out
}

// Has reports whether role belongs to the table.
func (t RoleTable) Has(role Role) bool {
	return slices.Contains(t.Roles(), role)
}
