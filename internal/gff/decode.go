package gff

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	headerSize      = 56
	structEntrySize = 12
	fieldEntrySize  = 12
	labelSize       = 16
)

type header struct {
	fileType    string
	fileVersion string

	structOffset       uint32
	structCount        uint32
	fieldOffset        uint32
	fieldCount         uint32
	labelOffset        uint32
	labelCount         uint32
	fieldDataOffset    uint32
	fieldDataSize      uint32
	fieldIndicesOffset uint32
	fieldIndicesSize   uint32
	listIndicesOffset  uint32
	listIndicesSize    uint32
}

type structEntry struct {
	typeID       uint32
	dataOrOffset uint32
	fieldCount   uint32
}

type fieldEntry struct {
	typeID       uint32
	labelIndex   uint32
	dataOrOffset uint32
}

type decoder struct {
	structs      []structEntry
	fields       []fieldEntry
	labels       []string
	fieldData    []byte
	fieldIndices []byte
	listIndices  []byte

	// building guards against struct cycles, which a well-formed file
	// cannot contain but a corrupt one might.
	building []bool
}

// Decode parses a container file held fully in memory and returns its
// struct tree. Every table reference is bounds-checked before use; corrupt
// input fails with ErrMalformedHeader or ErrDanglingReference, never with an
// out-of-bounds read.
func Decode(data []byte) (*File, error) {
	hdr, err := parseHeader(data)
	if err != nil {
		return nil, err
	}

	d := &decoder{
		fieldData:    section(data, hdr.fieldDataOffset, hdr.fieldDataSize),
		fieldIndices: section(data, hdr.fieldIndicesOffset, hdr.fieldIndicesSize),
		listIndices:  section(data, hdr.listIndicesOffset, hdr.listIndicesSize),
	}

	structBytes := section(data, hdr.structOffset, hdr.structCount*structEntrySize)
	d.structs = make([]structEntry, hdr.structCount)
	for i := range d.structs {
		rec := structBytes[i*structEntrySize:]
		d.structs[i] = structEntry{
			typeID:       binary.LittleEndian.Uint32(rec),
			dataOrOffset: binary.LittleEndian.Uint32(rec[4:]),
			fieldCount:   binary.LittleEndian.Uint32(rec[8:]),
		}
	}

	fieldBytes := section(data, hdr.fieldOffset, hdr.fieldCount*fieldEntrySize)
	d.fields = make([]fieldEntry, hdr.fieldCount)
	for i := range d.fields {
		rec := fieldBytes[i*fieldEntrySize:]
		d.fields[i] = fieldEntry{
			typeID:       binary.LittleEndian.Uint32(rec),
			labelIndex:   binary.LittleEndian.Uint32(rec[4:]),
			dataOrOffset: binary.LittleEndian.Uint32(rec[8:]),
		}
	}

	labelBytes := section(data, hdr.labelOffset, hdr.labelCount*labelSize)
	d.labels = make([]string, hdr.labelCount)
	for i := range d.labels {
		d.labels[i] = trimLabel(labelBytes[i*labelSize : (i+1)*labelSize])
	}

	d.building = make([]bool, len(d.structs))
	root, err := d.buildStruct(0)
	if err != nil {
		return nil, err
	}

	return &File{Type: hdr.fileType, Version: hdr.fileVersion, Root: root}, nil
}

func parseHeader(data []byte) (header, error) {
	var hdr header
	if len(data) < headerSize {
		return hdr, fmt.Errorf("%w: file is %d bytes, header needs %d", ErrMalformedHeader, len(data), headerSize)
	}

	hdr.fileType = string(data[0:4])
	hdr.fileVersion = string(data[4:8])
	for _, b := range data[0:4] {
		if b < 0x20 || b > 0x7E {
			return hdr, fmt.Errorf("%w: file type tag is not printable ASCII", ErrMalformedHeader)
		}
	}
	if hdr.fileVersion != Version32 {
		return hdr, fmt.Errorf("%w: unsupported version %q", ErrMalformedHeader, hdr.fileVersion)
	}

	u32 := func(off int) uint32 { return binary.LittleEndian.Uint32(data[off:]) }
	hdr.structOffset, hdr.structCount = u32(8), u32(12)
	hdr.fieldOffset, hdr.fieldCount = u32(16), u32(20)
	hdr.labelOffset, hdr.labelCount = u32(24), u32(28)
	hdr.fieldDataOffset, hdr.fieldDataSize = u32(32), u32(36)
	hdr.fieldIndicesOffset, hdr.fieldIndicesSize = u32(40), u32(44)
	hdr.listIndicesOffset, hdr.listIndicesSize = u32(48), u32(52)

	// Section counts for the struct, field, and label tables are record
	// counts; the remaining three are byte sizes.
	type span struct {
		name   string
		offset uint32
		size   uint64
	}
	spans := []span{
		{"struct table", hdr.structOffset, uint64(hdr.structCount) * structEntrySize},
		{"field table", hdr.fieldOffset, uint64(hdr.fieldCount) * fieldEntrySize},
		{"label table", hdr.labelOffset, uint64(hdr.labelCount) * labelSize},
		{"field data", hdr.fieldDataOffset, uint64(hdr.fieldDataSize)},
		{"field indices", hdr.fieldIndicesOffset, uint64(hdr.fieldIndicesSize)},
		{"list indices", hdr.listIndicesOffset, uint64(hdr.listIndicesSize)},
	}
	prevEnd := uint64(headerSize)
	for _, sp := range spans {
		if uint64(sp.offset) < prevEnd {
			return hdr, fmt.Errorf("%w: %s offset %d overlaps preceding section", ErrMalformedHeader, sp.name, sp.offset)
		}
		end := uint64(sp.offset) + sp.size
		if end > uint64(len(data)) {
			return hdr, fmt.Errorf("%w: %s extends past end of file (%d > %d)", ErrMalformedHeader, sp.name, end, len(data))
		}
		prevEnd = end
	}

	if hdr.structCount == 0 {
		return hdr, fmt.Errorf("%w: no root struct", ErrMalformedHeader)
	}
	return hdr, nil
}

// section slices a validated span; parseHeader has already bounds-checked it.
func section(data []byte, offset, size uint32) []byte {
	return data[offset : uint64(offset)+uint64(size)]
}

func trimLabel(raw []byte) string {
	end := len(raw)
	for end > 0 && raw[end-1] == 0 {
		end--
	}
	return string(raw[:end])
}

func (d *decoder) buildStruct(index uint32) (*Struct, error) {
	if index >= uint32(len(d.structs)) {
		return nil, fmt.Errorf("%w: struct index %d of %d", ErrDanglingReference, index, len(d.structs))
	}
	if d.building[index] {
		return nil, fmt.Errorf("%w: struct %d references itself", ErrDanglingReference, index)
	}
	d.building[index] = true
	defer func() { d.building[index] = false }()

	entry := d.structs[index]
	out := &Struct{TypeID: entry.typeID}
	if entry.fieldCount == 0 {
		return out, nil
	}

	indices, err := d.structFieldIndices(entry)
	if err != nil {
		return nil, fmt.Errorf("struct %d: %w", index, err)
	}
	out.Fields = make([]Field, 0, len(indices))
	for _, fi := range indices {
		field, err := d.buildField(fi)
		if err != nil {
			return nil, fmt.Errorf("struct %d: %w", index, err)
		}
		out.Fields = append(out.Fields, field)
	}
	return out, nil
}

func (d *decoder) structFieldIndices(entry structEntry) ([]uint32, error) {
	if entry.fieldCount == 1 {
		return []uint32{entry.dataOrOffset}, nil
	}
	// Multi-field structs point into the field-index table.
	offset := uint64(entry.dataOrOffset)
	end := offset + uint64(entry.fieldCount)*4
	if offset%4 != 0 || end > uint64(len(d.fieldIndices)) {
		return nil, fmt.Errorf("%w: field-index run [%d,%d) outside table of %d bytes", ErrDanglingReference, offset, end, len(d.fieldIndices))
	}
	indices := make([]uint32, entry.fieldCount)
	for i := range indices {
		indices[i] = binary.LittleEndian.Uint32(d.fieldIndices[offset+uint64(i)*4:])
	}
	return indices, nil
}

func (d *decoder) buildField(index uint32) (Field, error) {
	if index >= uint32(len(d.fields)) {
		return Field{}, fmt.Errorf("%w: field index %d of %d", ErrDanglingReference, index, len(d.fields))
	}
	entry := d.fields[index]
	if entry.labelIndex >= uint32(len(d.labels)) {
		return Field{}, fmt.Errorf("%w: label index %d of %d", ErrDanglingReference, entry.labelIndex, len(d.labels))
	}
	field := Field{Label: d.labels[entry.labelIndex], Type: FieldType(entry.typeID)}

	value, err := d.fieldValue(field.Type, entry.dataOrOffset)
	if err != nil {
		return Field{}, fmt.Errorf("field %q: %w", field.Label, err)
	}
	field.Value = value
	return field, nil
}

func (d *decoder) fieldValue(typ FieldType, data uint32) (any, error) {
	switch typ {
	case TypeByte:
		return uint8(data), nil
	case TypeChar:
		return int8(data), nil
	case TypeWord:
		return uint16(data), nil
	case TypeShort:
		return int16(data), nil
	case TypeDWord:
		return data, nil
	case TypeInt:
		return int32(data), nil
	case TypeFloat:
		return math.Float32frombits(data), nil
	case TypeDWord64:
		raw, err := d.poolBytes(data, 8)
		if err != nil {
			return nil, err
		}
		return binary.LittleEndian.Uint64(raw), nil
	case TypeInt64:
		raw, err := d.poolBytes(data, 8)
		if err != nil {
			return nil, err
		}
		return int64(binary.LittleEndian.Uint64(raw)), nil
	case TypeDouble:
		raw, err := d.poolBytes(data, 8)
		if err != nil {
			return nil, err
		}
		return math.Float64frombits(binary.LittleEndian.Uint64(raw)), nil
	case TypeString:
		raw, err := d.poolPrefixed(data)
		if err != nil {
			return nil, err
		}
		return decodeString(raw), nil
	case TypeResRef:
		return d.poolResRef(data)
	case TypeLocString:
		return d.poolLocString(data)
	case TypeVoid:
		raw, err := d.poolPrefixed(data)
		if err != nil {
			return nil, err
		}
		out := make([]byte, len(raw))
		copy(out, raw)
		return out, nil
	case TypeStruct:
		return d.buildStruct(data)
	case TypeList:
		return d.buildList(data)
	default:
		return nil, fmt.Errorf("%w: unknown field type %d", ErrDanglingReference, typ)
	}
}

func (d *decoder) poolBytes(offset uint32, size uint64) ([]byte, error) {
	end := uint64(offset) + size
	if end > uint64(len(d.fieldData)) {
		return nil, fmt.Errorf("%w: field data [%d,%d) outside pool of %d bytes", ErrDanglingReference, offset, end, len(d.fieldData))
	}
	return d.fieldData[offset:end], nil
}

// poolPrefixed reads a u32 length-prefixed value from the field-data pool.
// The untrusted length is checked against the remaining pool before use.
func (d *decoder) poolPrefixed(offset uint32) ([]byte, error) {
	raw, err := d.poolBytes(offset, 4)
	if err != nil {
		return nil, err
	}
	size := binary.LittleEndian.Uint32(raw)
	return d.poolBytes(offset+4, uint64(size))
}

func (d *decoder) poolResRef(offset uint32) (string, error) {
	raw, err := d.poolBytes(offset, 1)
	if err != nil {
		return "", err
	}
	size := raw[0]
	body, err := d.poolBytes(offset+1, uint64(size))
	if err != nil {
		return "", err
	}
	return decodeString(body), nil
}

func (d *decoder) poolLocString(offset uint32) (LocString, error) {
	raw, err := d.poolBytes(offset, 4)
	if err != nil {
		return LocString{}, err
	}
	total := binary.LittleEndian.Uint32(raw)
	body, err := d.poolBytes(offset+4, uint64(total))
	if err != nil {
		return LocString{}, err
	}
	if len(body) < 8 {
		return LocString{}, fmt.Errorf("%w: localized string of %d bytes", ErrDanglingReference, len(body))
	}

	out := LocString{StrRef: binary.LittleEndian.Uint32(body)}
	count := binary.LittleEndian.Uint32(body[4:])
	pos := uint64(8)
	for i := uint32(0); i < count; i++ {
		if pos+8 > uint64(len(body)) {
			return LocString{}, fmt.Errorf("%w: localized substring %d header outside record", ErrDanglingReference, i)
		}
		id := binary.LittleEndian.Uint32(body[pos:])
		size := binary.LittleEndian.Uint32(body[pos+4:])
		pos += 8
		if pos+uint64(size) > uint64(len(body)) {
			return LocString{}, fmt.Errorf("%w: localized substring %d of %d bytes outside record", ErrDanglingReference, i, size)
		}
		out.Substrings = append(out.Substrings, Substring{
			ID:   id,
			Text: decodeString(body[pos : pos+uint64(size)]),
		})
		pos += uint64(size)
	}
	return out, nil
}

func (d *decoder) buildList(offset uint32) ([]*Struct, error) {
	end := uint64(offset) + 4
	if offset%4 != 0 || end > uint64(len(d.listIndices)) {
		return nil, fmt.Errorf("%w: list group at %d outside table of %d bytes", ErrDanglingReference, offset, len(d.listIndices))
	}
	count := binary.LittleEndian.Uint32(d.listIndices[offset:])
	if end+uint64(count)*4 > uint64(len(d.listIndices)) {
		return nil, fmt.Errorf("%w: list group of %d entries outside table of %d bytes", ErrDanglingReference, count, len(d.listIndices))
	}

	out := make([]*Struct, 0, count)
	for i := uint32(0); i < count; i++ {
		structIndex := binary.LittleEndian.Uint32(d.listIndices[end+uint64(i)*4:])
		child, err := d.buildStruct(structIndex)
		if err != nil {
			return nil, err
		}
		out = append(out, child)
	}
	return out, nil
}
