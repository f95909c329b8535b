package gff

import "fmt"

// FieldType identifies the wire type of a field value.
type FieldType uint32

const (
	TypeByte      FieldType = 0
	TypeChar      FieldType = 1
	TypeWord      FieldType = 2
	TypeShort     FieldType = 3
	TypeDWord     FieldType = 4
	TypeInt       FieldType = 5
	TypeDWord64   FieldType = 6
	TypeInt64     FieldType = 7
	TypeFloat     FieldType = 8
	TypeDouble    FieldType = 9
	TypeString    FieldType = 10
	TypeResRef    FieldType = 11
	TypeLocString FieldType = 12
	TypeVoid      FieldType = 13
	TypeStruct    FieldType = 14
	TypeList      FieldType = 15
)

// RootStructType is the sentinel type ID carried by the root struct. Encode
// always writes it for the root; every other type ID is derived from field
// signature frequency.
const RootStructType = 0xFFFFFFFF

func (t FieldType) String() string {
	switch t {
	case TypeByte:
		return "byte"
	case TypeChar:
		return "char"
	case TypeWord:
		return "word"
	case TypeShort:
		return "short"
	case TypeDWord:
		return "dword"
	case TypeInt:
		return "int"
	case TypeDWord64:
		return "dword64"
	case TypeInt64:
		return "int64"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	case TypeString:
		return "string"
	case TypeResRef:
		return "resref"
	case TypeLocString:
		return "locstring"
	case TypeVoid:
		return "void"
	case TypeStruct:
		return "struct"
	case TypeList:
		return "list"
	default:
		return fmt.Sprintf("type(%d)", uint32(t))
	}
}

// simple reports whether the value is stored inline in the field record
// rather than in the field-data pool or an index table.
func (t FieldType) simple() bool {
	switch t {
	case TypeByte, TypeChar, TypeWord, TypeShort, TypeDWord, TypeInt, TypeFloat:
		return true
	}
	return false
}

// Substring is one per-language variant inside a localized string. The wire
// ID packs a language ID and a speaker gender; internal/language decodes it.
type Substring struct {
	ID   uint32
	Text string
}

// NoStrRef marks a localized string with no external string-table reference.
const NoStrRef = 0xFFFFFFFF

// LocString is a localized string value: an optional reference into an
// external string table plus zero or more inline per-language variants.
type LocString struct {
	StrRef     uint32
	Substrings []Substring
}

// First returns the first inline variant, or the empty string.
func (l LocString) First() string {
	if len(l.Substrings) == 0 {
		return ""
	}
	return l.Substrings[0].Text
}

// Field is a single labeled value owned by a struct. Value holds the Go
// representation matching Type:
//
//	byte→uint8 char→int8 word→uint16 short→int16 dword→uint32 int→int32
//	dword64→uint64 int64→int64 float→float32 double→float64
//	string→string resref→string locstring→LocString void→[]byte
//	struct→*Struct list→[]*Struct
type Field struct {
	Label string
	Type  FieldType
	Value any
}

// Struct is an ordered set of fields. Field order is significant: it is
// preserved across decode/encode so untouched structs re-emit byte-for-byte.
type Struct struct {
	// TypeID is the decoded type ID. Encode ignores it unless TypePinned is
	// set; type IDs are otherwise re-derived from signature frequency.
	TypeID uint32
	// TypePinned keeps TypeID on encode for formats that carry meaning in
	// the struct type (equipment slots in creature blueprints).
	TypePinned bool

	Fields []Field
}

// NewStruct returns an empty struct with the given decoded type ID.
func NewStruct(typeID uint32) *Struct {
	return &Struct{TypeID: typeID}
}

// Field returns a pointer to the field with the given label, or nil.
func (s *Struct) Field(label string) *Field {
	for i := range s.Fields {
		if s.Fields[i].Label == label {
			return &s.Fields[i]
		}
	}
	return nil
}

// Has reports whether a field with the given label exists.
func (s *Struct) Has(label string) bool {
	return s.Field(label) != nil
}

// Set replaces the value of the labeled field in place, preserving its
// position, or appends a new field when the label is absent.
func (s *Struct) Set(label string, typ FieldType, value any) {
	if f := s.Field(label); f != nil {
		f.Type = typ
		f.Value = value
		return
	}
	s.Fields = append(s.Fields, Field{Label: label, Type: typ, Value: value})
}

// Remove deletes the labeled field. It reports whether a field was removed.
func (s *Struct) Remove(label string) bool {
	for i := range s.Fields {
		if s.Fields[i].Label == label {
			s.Fields = append(s.Fields[:i], s.Fields[i+1:]...)
			return true
		}
	}
	return false
}

// Typed getters. Missing fields and type mismatches yield the zero value;
// overlays that need to distinguish use Field directly.

func (s *Struct) Byte(label string) uint8 {
	if f := s.Field(label); f != nil {
		if v, ok := f.Value.(uint8); ok {
			return v
		}
	}
	return 0
}

func (s *Struct) Word(label string) uint16 {
	if f := s.Field(label); f != nil {
		if v, ok := f.Value.(uint16); ok {
			return v
		}
	}
	return 0
}

func (s *Struct) Short(label string) int16 {
	if f := s.Field(label); f != nil {
		if v, ok := f.Value.(int16); ok {
			return v
		}
	}
	return 0
}

func (s *Struct) DWord(label string) uint32 {
	if f := s.Field(label); f != nil {
		if v, ok := f.Value.(uint32); ok {
			return v
		}
	}
	return 0
}

func (s *Struct) Int(label string) int32 {
	if f := s.Field(label); f != nil {
		if v, ok := f.Value.(int32); ok {
			return v
		}
	}
	return 0
}

func (s *Struct) Float(label string) float32 {
	if f := s.Field(label); f != nil {
		if v, ok := f.Value.(float32); ok {
			return v
		}
	}
	return 0
}

func (s *Struct) String(label string) string {
	if f := s.Field(label); f != nil {
		if v, ok := f.Value.(string); ok {
			return v
		}
	}
	return ""
}

// ResRef returns a resource-reference field value. ResRefs share the string
// representation; the distinction matters only on the wire.
func (s *Struct) ResRef(label string) string {
	return s.String(label)
}

func (s *Struct) LocString(label string) LocString {
	if f := s.Field(label); f != nil {
		if v, ok := f.Value.(LocString); ok {
			return v
		}
	}
	return LocString{StrRef: NoStrRef}
}

func (s *Struct) Struct(label string) *Struct {
	if f := s.Field(label); f != nil {
		if v, ok := f.Value.(*Struct); ok {
			return v
		}
	}
	return nil
}

func (s *Struct) List(label string) []*Struct {
	if f := s.Field(label); f != nil {
		if v, ok := f.Value.([]*Struct); ok {
			return v
		}
	}
	return nil
}

// signature returns the ordered label set used to group structs for type
// assignment. Labels cannot contain NUL, so it is collision-free.
func (s *Struct) signature() string {
	n := 0
	for i := range s.Fields {
		n += len(s.Fields[i].Label) + 1
	}
	buf := make([]byte, 0, n)
	for i := range s.Fields {
		buf = append(buf, s.Fields[i].Label...)
		buf = append(buf, 0)
	}
	return string(buf)
}

// File is a decoded container: the 4-byte family tag, the 4-byte version
// tag, and the root struct.
type File struct {
	Type    string
	Version string
	Root    *Struct
}

// Version32 is the only container version this package reads or writes.
const Version32 = "V3.2"
