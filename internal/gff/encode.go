package gff

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

type encoder struct {
	structs     []*Struct
	structIndex map[*Struct]uint32

	fieldRecords []fieldEntry
	labels       [][labelSize]byte
	labelIndex   map[[labelSize]byte]uint32
	fieldData    bytes.Buffer
	fieldIndices bytes.Buffer
	listIndices  bytes.Buffer
}

// Encode serializes the struct tree into the canonical container layout:
// header, struct table, field table, label table, field data, field indices,
// list indices. Labels are deduplicated by exact 16-byte value, every pool
// value is zero-padded to a 4-byte boundary, and struct type IDs are
// re-derived from field-signature frequency.
func Encode(f *File) ([]byte, error) {
	if f == nil || f.Root == nil {
		return nil, fmt.Errorf("gff: encode: no root struct")
	}
	if len(f.Type) > 4 {
		return nil, fmt.Errorf("gff: encode: file type tag %q exceeds 4 bytes", f.Type)
	}
	if f.Version != "" && f.Version != Version32 {
		return nil, fmt.Errorf("gff: encode: unsupported version %q", f.Version)
	}

	e := &encoder{
		structIndex: make(map[*Struct]uint32),
		labelIndex:  make(map[[labelSize]byte]uint32),
	}
	e.collect(f.Root)
	typeIDs := assignTypeIDs(e.structs)

	// Field emission happens struct by struct so the field table, the
	// field-data pool, and both index tables grow in traversal order. The
	// struct table itself is assembled last because a struct's field-index
	// offset is only known once its fields exist.
	structRecords := make([]structEntry, len(e.structs))
	for i, s := range e.structs {
		rec := structEntry{typeID: typeIDs[i], fieldCount: uint32(len(s.Fields))}
		firstField := uint32(len(e.fieldRecords))
		for fi := range s.Fields {
			if err := e.appendField(&s.Fields[fi]); err != nil {
				return nil, fmt.Errorf("gff: encode struct %d: %w", i, err)
			}
		}
		switch {
		case rec.fieldCount == 1:
			rec.dataOrOffset = firstField
		case rec.fieldCount > 1:
			rec.dataOrOffset = uint32(e.fieldIndices.Len())
			for fi := uint32(0); fi < rec.fieldCount; fi++ {
				writeU32(&e.fieldIndices, firstField+fi)
			}
		}
		structRecords[i] = rec
	}

	return e.assemble(f, structRecords), nil
}

// collect indexes every struct reachable from root in depth-first pre-order,
// matching the order Decode discovers them.
func (e *encoder) collect(s *Struct) {
	if _, ok := e.structIndex[s]; ok {
		return
	}
	e.structIndex[s] = uint32(len(e.structs))
	e.structs = append(e.structs, s)
	for i := range s.Fields {
		switch v := s.Fields[i].Value.(type) {
		case *Struct:
			if v != nil {
				e.collect(v)
			}
		case []*Struct:
			for _, child := range v {
				if child != nil {
					e.collect(child)
				}
			}
		}
	}
}

func (e *encoder) appendField(f *Field) error {
	labelIdx, err := e.internLabel(f.Label)
	if err != nil {
		return err
	}
	data, err := e.fieldDataWord(f)
	if err != nil {
		return fmt.Errorf("field %q: %w", f.Label, err)
	}
	e.fieldRecords = append(e.fieldRecords, fieldEntry{
		typeID:       uint32(f.Type),
		labelIndex:   labelIdx,
		dataOrOffset: data,
	})
	return nil
}

func (e *encoder) internLabel(label string) (uint32, error) {
	if len(label) > labelSize {
		return 0, fmt.Errorf("%w: %q", ErrLabelTooLong, label)
	}
	var padded [labelSize]byte
	copy(padded[:], label)
	if idx, ok := e.labelIndex[padded]; ok {
		return idx, nil
	}
	idx := uint32(len(e.labels))
	e.labels = append(e.labels, padded)
	e.labelIndex[padded] = idx
	return idx, nil
}

func (e *encoder) fieldDataWord(f *Field) (uint32, error) {
	switch f.Type {
	case TypeByte:
		return uint32(valueAs[uint8](f)), nil
	case TypeChar:
		return uint32(uint8(valueAs[int8](f))), nil
	case TypeWord:
		return uint32(valueAs[uint16](f)), nil
	case TypeShort:
		return uint32(uint16(valueAs[int16](f))), nil
	case TypeDWord:
		return valueAs[uint32](f), nil
	case TypeInt:
		return uint32(valueAs[int32](f)), nil
	case TypeFloat:
		return math.Float32bits(valueAs[float32](f)), nil
	case TypeDWord64:
		return e.poolU64(valueAs[uint64](f)), nil
	case TypeInt64:
		return e.poolU64(uint64(valueAs[int64](f))), nil
	case TypeDouble:
		return e.poolU64(math.Float64bits(valueAs[float64](f))), nil
	case TypeString:
		return e.poolPrefixed(encodeString(valueAs[string](f))), nil
	case TypeResRef:
		return e.poolResRef(encodeString(valueAs[string](f)))
	case TypeLocString:
		return e.poolLocString(valueAs[LocString](f)), nil
	case TypeVoid:
		return e.poolPrefixed(valueAs[[]byte](f)), nil
	case TypeStruct:
		child, _ := f.Value.(*Struct)
		if child == nil {
			return 0, fmt.Errorf("struct field with nil value")
		}
		return e.structIndex[child], nil
	case TypeList:
		children, _ := f.Value.([]*Struct)
		// collect never indexes nil members, so they are dropped here too;
		// counting them would point list entries at struct index 0.
		live := make([]*Struct, 0, len(children))
		for _, child := range children {
			if child != nil {
				live = append(live, child)
			}
		}
		offset := uint32(e.listIndices.Len())
		writeU32(&e.listIndices, uint32(len(live)))
		for _, child := range live {
			writeU32(&e.listIndices, e.structIndex[child])
		}
		return offset, nil
	default:
		return 0, fmt.Errorf("unknown field type %d", f.Type)
	}
}

func (e *encoder) poolU64(v uint64) uint32 {
	offset := uint32(e.fieldData.Len())
	var raw [8]byte
	binary.LittleEndian.PutUint64(raw[:], v)
	e.fieldData.Write(raw[:])
	e.padFieldData()
	return offset
}

func (e *encoder) poolPrefixed(body []byte) uint32 {
	offset := uint32(e.fieldData.Len())
	writeU32(&e.fieldData, uint32(len(body)))
	e.fieldData.Write(body)
	e.padFieldData()
	return offset
}

func (e *encoder) poolResRef(body []byte) (uint32, error) {
	if len(body) > 0xFF {
		return 0, fmt.Errorf("resref of %d bytes exceeds 255", len(body))
	}
	offset := uint32(e.fieldData.Len())
	e.fieldData.WriteByte(byte(len(body)))
	e.fieldData.Write(body)
	e.padFieldData()
	return offset, nil
}

func (e *encoder) poolLocString(v LocString) uint32 {
	encoded := make([][]byte, len(v.Substrings))
	total := uint32(8)
	for i, sub := range v.Substrings {
		encoded[i] = encodeString(sub.Text)
		total += 8 + uint32(len(encoded[i]))
	}

	offset := uint32(e.fieldData.Len())
	writeU32(&e.fieldData, total)
	writeU32(&e.fieldData, v.StrRef)
	writeU32(&e.fieldData, uint32(len(v.Substrings)))
	for i, sub := range v.Substrings {
		writeU32(&e.fieldData, sub.ID)
		writeU32(&e.fieldData, uint32(len(encoded[i])))
		e.fieldData.Write(encoded[i])
	}
	e.padFieldData()
	return offset
}

func (e *encoder) padFieldData() {
	for e.fieldData.Len()%4 != 0 {
		e.fieldData.WriteByte(0)
	}
}

func (e *encoder) assemble(f *File, structRecords []structEntry) []byte {
	structSize := uint32(len(structRecords)) * structEntrySize
	fieldSize := uint32(len(e.fieldRecords)) * fieldEntrySize
	labelBytes := uint32(len(e.labels)) * labelSize

	structOffset := uint32(headerSize)
	fieldOffset := structOffset + structSize
	labelOffset := fieldOffset + fieldSize
	fieldDataOffset := labelOffset + labelBytes
	fieldIndicesOffset := fieldDataOffset + uint32(e.fieldData.Len())
	listIndicesOffset := fieldIndicesOffset + uint32(e.fieldIndices.Len())
	totalSize := listIndicesOffset + uint32(e.listIndices.Len())

	var out bytes.Buffer
	out.Grow(int(totalSize))

	tag := f.Type
	for len(tag) < 4 {
		tag += " "
	}
	out.WriteString(tag)
	out.WriteString(Version32)
	for _, v := range []uint32{
		structOffset, uint32(len(structRecords)),
		fieldOffset, uint32(len(e.fieldRecords)),
		labelOffset, uint32(len(e.labels)),
		fieldDataOffset, uint32(e.fieldData.Len()),
		fieldIndicesOffset, uint32(e.fieldIndices.Len()),
		listIndicesOffset, uint32(e.listIndices.Len()),
	} {
		writeU32(&out, v)
	}

	for _, rec := range structRecords {
		writeU32(&out, rec.typeID)
		writeU32(&out, rec.dataOrOffset)
		writeU32(&out, rec.fieldCount)
	}
	for _, rec := range e.fieldRecords {
		writeU32(&out, rec.typeID)
		writeU32(&out, rec.labelIndex)
		writeU32(&out, rec.dataOrOffset)
	}
	for i := range e.labels {
		out.Write(e.labels[i][:])
	}
	out.Write(e.fieldData.Bytes())
	out.Write(e.fieldIndices.Bytes())
	out.Write(e.listIndices.Bytes())

	return out.Bytes()
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var raw [4]byte
	binary.LittleEndian.PutUint32(raw[:], v)
	buf.Write(raw[:])
}

// valueAs converts a field value with the zero value as fallback, so a field
// whose Value was left nil encodes as zero rather than panicking.
func valueAs[T any](f *Field) T {
	v, _ := f.Value.(T)
	return v
}
