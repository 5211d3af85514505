// Package catalog holds the immutable object-class and attribute lookup
// tables that the field decoder and feature builder consult when turning raw
// S-57 codes into typed values. Both tables are bundled data, decoded afresh
// by each LoadBundled call; Catalog itself has no mutable state after Load.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed objectclasses.yaml
var objectClassesYAML []byte

//go:embed attributes.yaml
var attributesYAML []byte

// AttrType is the coercion target for an attribute's raw ATNV value.
type AttrType string

const (
	AttrFloat  AttrType = "float"
	AttrInt    AttrType = "int"
	AttrString AttrType = "string"
	AttrEnum   AttrType = "enum"
)

// ObjectClass is one row of the object-class catalogue: a numeric OBJL code,
// its uppercase acronym, and a human display name.
type ObjectClass struct {
	Code    uint32 `yaml:"code"`
	Acronym string `yaml:"acronym"`
	Name    string `yaml:"name"`
}

// AttributeDef is one row of the attribute catalogue: a numeric ATTL code,
// its acronym, coercion type, a display name, and (for enums) a code->label
// domain.
type AttributeDef struct {
	Code    uint16            `yaml:"code"`
	Acronym string            `yaml:"acronym"`
	Type    AttrType          `yaml:"type"`
	Name    string            `yaml:"name"`
	Domain  map[string]string `yaml:"domain,omitempty"`
}

// Catalog is the read-only, thread-safe pair of lookup tables used
// throughout decoding. All fields are populated once at construction and
// never mutated afterward, so concurrent readers need no locking.
type Catalog struct {
	byObjectCode map[uint32]ObjectClass
	byAttrCode   map[uint16]AttributeDef
	byAttrAcro   map[string]AttributeDef
}

// genericObjectClass is returned by ObjectClassByCode for codes the
// catalogue has no entry for; the feature is still produced (spec: "unknown
// code -> UNKNOWN_OBJ_CODE and the feature is still produced with a generic
// class"), carrying only the numeric code as its name.
func genericObjectClass(code uint32) ObjectClass {
	return ObjectClass{Code: code, Acronym: fmt.Sprintf("OBJL_%d", code), Name: fmt.Sprintf("OBJL_%d", code)}
}

// LoadBundled builds a fresh Catalog from the bundled object-class and
// attribute YAML on every call. There is no process-wide cache: the caller
// owns the returned instance, and construction is cheap enough (two YAML
// unmarshals) that callers needing one per session should just call this
// directly rather than share global state.
func LoadBundled() (*Catalog, error) {
	var classes []ObjectClass
	if err := yaml.Unmarshal(objectClassesYAML, &classes); err != nil {
		return nil, fmt.Errorf("catalog: decode object classes: %w", err)
	}
	var attrs []AttributeDef
	if err := yaml.Unmarshal(attributesYAML, &attrs); err != nil {
		return nil, fmt.Errorf("catalog: decode attributes: %w", err)
	}
	return Load(classes, attrs)
}

// Load builds a Catalog from already-decoded object-class and attribute
// rows, indexing attributes by both their numeric ATTL code and their
// acronym.
func Load(classes []ObjectClass, attrs []AttributeDef) (*Catalog, error) {
	c := &Catalog{
		byObjectCode: make(map[uint32]ObjectClass, len(classes)),
		byAttrCode:   make(map[uint16]AttributeDef, len(attrs)),
		byAttrAcro:   make(map[string]AttributeDef, len(attrs)),
	}
	for _, oc := range classes {
		c.byObjectCode[oc.Code] = oc
	}
	for _, a := range attrs {
		c.byAttrCode[a.Code] = a
		c.byAttrAcro[a.Acronym] = a
	}
	return c, nil
}

// ObjectClassByCode resolves an OBJL code to its catalogue entry. The bool
// is false when the code is unknown, in which case the caller should still
// use the returned generic entry and raise UNKNOWN_OBJ_CODE.
func (c *Catalog) ObjectClassByCode(code uint32) (ObjectClass, bool) {
	if oc, ok := c.byObjectCode[code]; ok {
		return oc, true
	}
	return genericObjectClass(code), false
}

// AttributeByAcronym resolves an attribute acronym to its type/name/domain.
// The bool is false when the acronym is unknown, in which case raw values
// are preserved untyped (spec: "preserve unknown acronyms with raw values").
func (c *Catalog) AttributeByAcronym(acronym string) (AttributeDef, bool) {
	a, ok := c.byAttrAcro[acronym]
	return a, ok
}

// AttributeByCode resolves a numeric ATTL code to its catalogue entry. The
// bool is false when the code is unknown, in which case the caller should
// preserve the raw ATNV value untyped under a synthetic acronym.
func (c *Catalog) AttributeByCode(code uint16) (AttributeDef, bool) {
	a, ok := c.byAttrCode[code]
	return a, ok
}
