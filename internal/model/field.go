package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// FieldKind identifies which variant of Field a value holds.
// The set of kinds is closed: a Field can only be built through the
// constructors in this package.
type FieldKind int

const (
	// FieldKindSimple is a plain column, including flattened parent
	// relationship columns such as "Account.Name".
	FieldKindSimple FieldKind = iota

	// FieldKindSubquery is a nested child result set.
	FieldKindSubquery

	// FieldKindFunction is a column produced by an aggregate function.
	FieldKindFunction
)

// Wire names of the field kinds, used under the "fieldType" JSON key.
const (
	fieldTypeSimple   = "field"
	fieldTypeSubquery = "subqueryField"
	fieldTypeFunction = "functionField"
)

// ErrUnknownFieldType is returned when decoding a field whose fieldType is not
// one of the known kinds.
var ErrUnknownFieldType = errors.New("unknown field type")

// String returns the wire name of the kind.
func (k FieldKind) String() string {
	switch k {
	case FieldKindSimple:
		return fieldTypeSimple
	case FieldKindSubquery:
		return fieldTypeSubquery
	case FieldKindFunction:
		return fieldTypeFunction
	default:
		return "unknown"
	}
}

// Field is one classified column of a query result.
//
// Only the data relevant to its kind is populated: children for subqueries,
// alias for functions.
type Field struct {
	kind     FieldKind
	name     string
	alias    string
	children []Field
}

// NewSimpleField returns a plain column field.
func NewSimpleField(name string) Field {
	return Field{kind: FieldKindSimple, name: name}
}

// NewSubqueryField returns a sub-result field whose children are plain
// columns with the given names.
func NewSubqueryField(name string, children ...string) Field {
	f := Field{kind: FieldKindSubquery, name: name, children: make([]Field, 0, len(children))}
	for _, child := range children {
		f.children = append(f.children, NewSimpleField(child))
	}
	return f
}

// NewFunctionField returns an aggregate field. An empty alias means the
// aggregate has no alias.
func NewFunctionField(name, alias string) Field {
	return Field{kind: FieldKindFunction, name: name, alias: alias}
}

// Kind returns the variant of the field.
func (f Field) Kind() FieldKind {
	return f.kind
}

// Name returns the field name. For functions this is the display name.
func (f Field) Name() string {
	return f.name
}

// Alias returns the alias of a function field and whether it is set.
func (f Field) Alias() (string, bool) {
	return f.alias, f.alias != ""
}

// Children returns a copy of the child fields of a subquery field.
func (f Field) Children() []Field {
	if len(f.children) == 0 {
		return nil
	}
	out := make([]Field, len(f.children))
	copy(out, f.children)
	return out
}

// Label returns the column name under which the field is displayed:
// the alias for aliased functions, the name otherwise.
func (f Field) Label() string {
	if f.kind == FieldKindFunction && f.alias != "" {
		return f.alias
	}
	return f.name
}

// String returns "<kind>.<name>", the form used in log output.
func (f Field) String() string {
	return f.kind.String() + "." + f.name
}

// fieldJSON is the serialized form of Field.
type fieldJSON struct {
	FieldType string      `json:"fieldType"`
	Name      string      `json:"name"`
	Alias     string      `json:"alias,omitempty"`
	Fields    []fieldJSON `json:"fields,omitempty"`
}

func (f Field) toJSON() fieldJSON {
	out := fieldJSON{
		FieldType: f.kind.String(),
		Name:      f.name,
		Alias:     f.alias,
	}
	for _, child := range f.children {
		out.Fields = append(out.Fields, child.toJSON())
	}
	return out
}

func fieldFromJSON(in fieldJSON) (Field, error) {
	switch in.FieldType {
	case fieldTypeSimple:
		return NewSimpleField(in.Name), nil
	case fieldTypeFunction:
		return NewFunctionField(in.Name, in.Alias), nil
	case fieldTypeSubquery:
		f := Field{kind: FieldKindSubquery, name: in.Name, children: make([]Field, 0, len(in.Fields))}
		for _, child := range in.Fields {
			if child.FieldType != fieldTypeSimple {
				return Field{}, fmt.Errorf("subquery %q: child %q: %w", in.Name, child.Name, ErrUnknownFieldType)
			}
			f.children = append(f.children, NewSimpleField(child.Name))
		}
		return f, nil
	default:
		return Field{}, fmt.Errorf("%w: %q", ErrUnknownFieldType, in.FieldType)
	}
}

// MarshalJSON implements json.Marshaler.
func (f Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.toJSON())
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Field) UnmarshalJSON(data []byte) error {
	var in fieldJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	decoded, err := fieldFromJSON(in)
	if err != nil {
		return err
	}
	*f = decoded
	return nil
}
