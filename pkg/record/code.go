package record

import "fmt"

// Family classifies a Code by the control behaviour it carries.
type Family uint8

const (
	// FamilyStructural holds the file-level keywords BOM, CSE and EOM.
	FamilyStructural Family = iota + 1
	// FamilyBlockType holds the single block-type marker RTY.
	FamilyBlockType
	// FamilyZone holds every content-bearing field code.
	FamilyZone
)

func (f Family) String() string {
	switch f {
	case FamilyStructural:
		return "structural"
	case FamilyBlockType:
		return "block-type"
	case FamilyZone:
		return "zone"
	default:
		return fmt.Sprintf("family(%d)", uint8(f))
	}
}

// Code is a three-letter field mnemonic from the closed EDIGéO vocabulary.
// The zero value is not a valid code.
type Code uint8

const (
	codeInvalid Code = iota

	// Structural keywords.
	CodeBOM
	CodeCSE
	CodeEOM

	// Block-type marker.
	CodeRTY

	// Exchange and lot descriptors (THF).
	CodeRID
	CodeAUT
	CodeADR
	CodeLOC
	CodeVOC
	CodeSEC
	CodeRDI
	CodeVER
	CodeVDA
	CodeTRL
	CodeEDN
	CodeTDA
	CodeINF
	CodeLON
	CodeGNN
	CodeGNI
	CodeGON
	CodeGOI
	CodeQAN
	CodeQAI
	CodeDIN
	CodeDII
	CodeSCN
	CodeSCI
	CodeGDC
	CodeGDN
	CodeGDI

	// General data (GEN).
	CodeCM1
	CodeCM2
	CodeSTR
	CodeREG

	// Geographic reference (GEO).
	CodeRET
	CodeREL
	CodeDIM
	CodeALS
	CodeUNH

	// Quality (QAL).
	CodeODA
	CodeUTE
	CodeRDA
	CodeEDA
	CodeTRV
	CodeLTE

	// Nomenclature (DIC).
	CodeLAB
	CodeTEX
	CodeDEF
	CodeORI
	CodeCAT
	CodeTYP
	CodeUNI
	CodeAVC
	CodeAVV
	CodeAVL
	CodeAVD

	// Conceptual schema (SCD).
	CodeDIP
	CodeKND
	CodeAAC
	CodeAAP
	CodeQAC
	CodeQAP
	CodeASC
	CodeAMI
	CodeAMA
	CodeARP

	// Vector data (VEC).
	CodeCOR
	CodeSCP
	CodeATC
	CodeATP
	CodeATV
	CodePTC
	CodePTP
	CodeFTC
	CodeFTP
	CodeSNS

	codeCount
)

type codeInfo struct {
	mnemonic    string
	family      Family
	description string
}

var codeTable = [codeCount]codeInfo{
	CodeBOM: {"BOM", FamilyStructural, "logical start of file"},
	CodeCSE: {"CSE", FamilyStructural, "character set"},
	CodeEOM: {"EOM", FamilyStructural, "logical end of file"},

	CodeRTY: {"RTY", FamilyBlockType, "descriptor type"},

	CodeRID: {"RID", FamilyZone, "descriptor identifier"},
	CodeAUT: {"AUT", FamilyZone, "exchange author"},
	CodeADR: {"ADR", FamilyZone, "recipient"},
	CodeLOC: {"LOC", FamilyZone, "number of lots"},
	CodeVOC: {"VOC", FamilyZone, "number of volumes"},
	CodeSEC: {"SEC", FamilyZone, "security classification"},
	CodeRDI: {"RDI", FamilyZone, "distribution restrictions"},
	CodeVER: {"VER", FamilyZone, "standard version"},
	CodeVDA: {"VDA", FamilyZone, "standard version date"},
	CodeTRL: {"TRL", FamilyZone, "transmission title"},
	CodeEDN: {"EDN", FamilyZone, "edition number"},
	CodeTDA: {"TDA", FamilyZone, "transmission date"},
	CodeINF: {"INF", FamilyZone, "general information"},
	CodeLON: {"LON", FamilyZone, "lot name"},
	CodeGNN: {"GNN", FamilyZone, "general data file name"},
	CodeGNI: {"GNI", FamilyZone, "general data identifier"},
	CodeGON: {"GON", FamilyZone, "geographic reference file name"},
	CodeGOI: {"GOI", FamilyZone, "geographic reference identifier"},
	CodeQAN: {"QAN", FamilyZone, "quality file name"},
	CodeQAI: {"QAI", FamilyZone, "quality identifier"},
	CodeDIN: {"DIN", FamilyZone, "nomenclature file name"},
	CodeDII: {"DII", FamilyZone, "nomenclature identifier"},
	CodeSCN: {"SCN", FamilyZone, "schema file name"},
	CodeSCI: {"SCI", FamilyZone, "schema identifier"},
	CodeGDC: {"GDC", FamilyZone, "number of geographic data files"},
	CodeGDN: {"GDN", FamilyZone, "geographic data file name"},
	CodeGDI: {"GDI", FamilyZone, "geographic data identifier"},

	CodeCM1: {"CM1", FamilyZone, "minimum bounding coordinate"},
	CodeCM2: {"CM2", FamilyZone, "maximum bounding coordinate"},
	CodeSTR: {"STR", FamilyZone, "data structure"},
	CodeREG: {"REG", FamilyZone, "geographic region reference"},

	CodeRET: {"RET", FamilyZone, "reference type"},
	CodeREL: {"REL", FamilyZone, "reference system code"},
	CodeDIM: {"DIM", FamilyZone, "dimension"},
	CodeALS: {"ALS", FamilyZone, "altimetric system"},
	CodeUNH: {"UNH", FamilyZone, "horizontal unit"},

	CodeODA: {"ODA", FamilyZone, "observation date"},
	CodeUTE: {"UTE", FamilyZone, "update type"},
	CodeRDA: {"RDA", FamilyZone, "last update date"},
	CodeEDA: {"EDA", FamilyZone, "evaluation date"},
	CodeTRV: {"TRV", FamilyZone, "survey type"},
	CodeLTE: {"LTE", FamilyZone, "survey precision"},

	CodeLAB: {"LAB", FamilyZone, "label"},
	CodeTEX: {"TEX", FamilyZone, "text encoding"},
	CodeDEF: {"DEF", FamilyZone, "definition"},
	CodeORI: {"ORI", FamilyZone, "origin"},
	CodeCAT: {"CAT", FamilyZone, "category"},
	CodeTYP: {"TYP", FamilyZone, "value type"},
	CodeUNI: {"UNI", FamilyZone, "unit"},
	CodeAVC: {"AVC", FamilyZone, "number of attribute values"},
	CodeAVV: {"AVV", FamilyZone, "attribute value"},
	CodeAVL: {"AVL", FamilyZone, "attribute value label"},
	CodeAVD: {"AVD", FamilyZone, "attribute value definition"},

	CodeDIP: {"DIP", FamilyZone, "nomenclature pointer"},
	CodeKND: {"KND", FamilyZone, "object kind"},
	CodeAAC: {"AAC", FamilyZone, "number of attributes"},
	CodeAAP: {"AAP", FamilyZone, "attribute pointer"},
	CodeQAC: {"QAC", FamilyZone, "number of quality references"},
	CodeQAP: {"QAP", FamilyZone, "quality pointer"},
	CodeASC: {"ASC", FamilyZone, "number of associated roles"},
	CodeAMI: {"AMI", FamilyZone, "minimum cardinality"},
	CodeAMA: {"AMA", FamilyZone, "maximum cardinality"},
	CodeARP: {"ARP", FamilyZone, "role pointer"},

	CodeCOR: {"COR", FamilyZone, "coordinates"},
	CodeSCP: {"SCP", FamilyZone, "schema pointer"},
	CodeATC: {"ATC", FamilyZone, "number of attribute values"},
	CodeATP: {"ATP", FamilyZone, "attribute type pointer"},
	CodeATV: {"ATV", FamilyZone, "attribute value"},
	CodePTC: {"PTC", FamilyZone, "number of points"},
	CodePTP: {"PTP", FamilyZone, "point pointer"},
	CodeFTC: {"FTC", FamilyZone, "number of linked elements"},
	CodeFTP: {"FTP", FamilyZone, "linked element pointer"},
	CodeSNS: {"SNS", FamilyZone, "link direction"},
}

var codesByMnemonic = func() map[string]Code {
	m := make(map[string]Code, codeCount)
	for c := CodeBOM; c < codeCount; c++ {
		m[codeTable[c].mnemonic] = c
	}
	return m
}()

// LookupCode returns the Code for a three-character mnemonic.
func LookupCode(s string) (Code, error) {
	if c, ok := codesByMnemonic[s]; ok {
		return c, nil
	}
	return codeInvalid, fmt.Errorf("%w: %q", ErrUnknownCode, s)
}

// Codes returns every code of the vocabulary in declaration order.
func Codes() []Code {
	out := make([]Code, 0, codeCount-1)
	for c := CodeBOM; c < codeCount; c++ {
		out = append(out, c)
	}
	return out
}

// Valid reports whether c belongs to the vocabulary.
func (c Code) Valid() bool {
	return c > codeInvalid && c < codeCount
}

func (c Code) String() string {
	if !c.Valid() {
		return fmt.Sprintf("code(%d)", uint8(c))
	}
	return codeTable[c].mnemonic
}

// Family returns the family c belongs to, or zero for an invalid code.
func (c Code) Family() Family {
	if !c.Valid() {
		return 0
	}
	return codeTable[c].family
}

// Description is a short English gloss of the field.
func (c Code) Description() string {
	if !c.Valid() {
		return ""
	}
	return codeTable[c].description
}
