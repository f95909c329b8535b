package gff_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"parley/internal/gff"
)

func sampleFile() *gff.File {
	child := gff.NewStruct(0)
	child.Set("Text", gff.TypeLocString, gff.LocString{
		StrRef: gff.NoStrRef,
		Substrings: []gff.Substring{
			{ID: 0, Text: "Well met, traveler."},
			{ID: 2, Text: "Seid gegrüßt."},
		},
	})
	child.Set("Sound", gff.TypeResRef, "vo_greet_01")
	child.Set("Delay", gff.TypeDWord, uint32(0xFFFFFFFF))

	inner := gff.NewStruct(0)
	inner.Set("Weight", gff.TypeFloat, float32(1.5))
	inner.Set("Payload", gff.TypeVoid, []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01})

	root := gff.NewStruct(gff.RootStructType)
	root.Set("Comment", gff.TypeString, "authored offline")
	root.Set("Count", gff.TypeInt, int32(-7))
	root.Set("BigID", gff.TypeDWord64, uint64(1)<<40)
	root.Set("Offset64", gff.TypeInt64, int64(-12))
	root.Set("Ratio", gff.TypeDouble, 0.25)
	root.Set("Flag", gff.TypeByte, uint8(1))
	root.Set("Glyph", gff.TypeChar, int8(-3))
	root.Set("Columns", gff.TypeWord, uint16(320))
	root.Set("Rows", gff.TypeShort, int16(-200))
	root.Set("Extra", gff.TypeStruct, inner)
	root.Set("EntryList", gff.TypeList, []*gff.Struct{child})

	return &gff.File{Type: "DLG ", Version: gff.Version32, Root: root}
}

func TestEncodeDecodePreservesLeafValues(t *testing.T) {
	data, err := gff.Encode(sampleFile())
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	decoded, err := gff.Decode(data)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if decoded.Type != "DLG " || decoded.Version != gff.Version32 {
		t.Fatalf("unexpected tags: %q %q", decoded.Type, decoded.Version)
	}
	root := decoded.Root
	if root.TypeID != gff.RootStructType {
		t.Fatalf("root type ID = %#x, want sentinel", root.TypeID)
	}
	if got := root.String("Comment"); got != "authored offline" {
		t.Fatalf("Comment = %q", got)
	}
	if got := root.Int("Count"); got != -7 {
		t.Fatalf("Count = %d", got)
	}
	if f := root.Field("BigID"); f == nil || f.Value.(uint64) != uint64(1)<<40 {
		t.Fatalf("BigID = %v", f)
	}
	if f := root.Field("Offset64"); f == nil || f.Value.(int64) != -12 {
		t.Fatalf("Offset64 = %v", f)
	}
	if f := root.Field("Ratio"); f == nil || f.Value.(float64) != 0.25 {
		t.Fatalf("Ratio = %v", f)
	}
	if got := root.Byte("Flag"); got != 1 {
		t.Fatalf("Flag = %d", got)
	}
	if f := root.Field("Glyph"); f == nil || f.Value.(int8) != -3 {
		t.Fatalf("Glyph = %v", f)
	}
	if got := root.Word("Columns"); got != 320 {
		t.Fatalf("Columns = %d", got)
	}
	if got := root.Short("Rows"); got != -200 {
		t.Fatalf("Rows = %d", got)
	}

	inner := root.Struct("Extra")
	if inner == nil {
		t.Fatal("Extra struct missing")
	}
	if got := inner.Float("Weight"); got != 1.5 {
		t.Fatalf("Weight = %v", got)
	}
	payload := inner.Field("Payload")
	if payload == nil || !bytes.Equal(payload.Value.([]byte), []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01}) {
		t.Fatalf("Payload = %v", payload)
	}

	entries := root.List("EntryList")
	if len(entries) != 1 {
		t.Fatalf("EntryList has %d entries", len(entries))
	}
	text := entries[0].LocString("Text")
	if text.StrRef != gff.NoStrRef || len(text.Substrings) != 2 {
		t.Fatalf("Text = %+v", text)
	}
	if text.Substrings[1].Text != "Seid gegrüßt." {
		t.Fatalf("second substring = %q (code page transcoding lost data)", text.Substrings[1].Text)
	}
	if got := entries[0].ResRef("Sound"); got != "vo_greet_01" {
		t.Fatalf("Sound = %q", got)
	}
	if got := entries[0].DWord("Delay"); got != 0xFFFFFFFF {
		t.Fatalf("Delay = %#x", got)
	}
}

func TestEncodeIsStableAcrossRoundTrips(t *testing.T) {
	first, err := gff.Encode(sampleFile())
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	decoded, err := gff.Decode(first)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	second, err := gff.Encode(decoded)
	if err != nil {
		t.Fatalf("re-Encode returned error: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("decode/encode cycle changed the byte layout")
	}
}

func TestEncodeDeduplicatesLabels(t *testing.T) {
	a := gff.NewStruct(0)
	a.Set("Tag", gff.TypeString, "a")
	b := gff.NewStruct(0)
	b.Set("Tag", gff.TypeString, "b")
	root := gff.NewStruct(gff.RootStructType)
	root.Set("Tag", gff.TypeString, "root")
	root.Set("Items", gff.TypeList, []*gff.Struct{a, b})

	data, err := gff.Encode(&gff.File{Type: "GEN ", Root: root})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	labelCount := binary.LittleEndian.Uint32(data[28:])
	if labelCount != 2 { // "Tag" and "Items"
		t.Fatalf("label count = %d, want 2", labelCount)
	}
}

func TestEncodeDropsNilListMembers(t *testing.T) {
	a := gff.NewStruct(0)
	a.Set("Tag", gff.TypeString, "a")
	b := gff.NewStruct(0)
	b.Set("Tag", gff.TypeString, "b")
	root := gff.NewStruct(gff.RootStructType)
	root.Set("Items", gff.TypeList, []*gff.Struct{a, nil, b})

	data, err := gff.Encode(&gff.File{Type: "GEN ", Root: root})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	decoded, err := gff.Decode(data)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	items := decoded.Root.List("Items")
	if len(items) != 2 {
		t.Fatalf("list has %d members, want 2", len(items))
	}
	if items[0].String("Tag") != "a" || items[1].String("Tag") != "b" {
		t.Fatalf("surviving members = %q, %q", items[0].String("Tag"), items[1].String("Tag"))
	}
}

func TestEncodePadsPoolValues(t *testing.T) {
	root := gff.NewStruct(gff.RootStructType)
	root.Set("Name", gff.TypeString, "abc") // 4-byte prefix + 3 bytes, needs 1 pad byte
	root.Set("Blob", gff.TypeVoid, []byte{1})

	data, err := gff.Encode(&gff.File{Type: "GEN ", Root: root})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	fieldDataSize := binary.LittleEndian.Uint32(data[36:])
	if fieldDataSize%4 != 0 {
		t.Fatalf("field data size %d is not 4-byte aligned", fieldDataSize)
	}
	if fieldDataSize != 16 { // (4+3+pad)=8 for the string, (4+1+pad)=8 for the blob
		t.Fatalf("field data size = %d, want 16", fieldDataSize)
	}
}

func TestDecodeRejectsMalformedHeaders(t *testing.T) {
	valid, err := gff.Encode(sampleFile())
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	t.Run("truncated file", func(t *testing.T) {
		_, err := gff.Decode(valid[:20])
		if !errors.Is(err, gff.ErrMalformedHeader) {
			t.Fatalf("err = %v, want ErrMalformedHeader", err)
		}
	})

	t.Run("unsupported version", func(t *testing.T) {
		data := append([]byte(nil), valid...)
		copy(data[4:8], "V9.9")
		_, err := gff.Decode(data)
		if !errors.Is(err, gff.ErrMalformedHeader) {
			t.Fatalf("err = %v, want ErrMalformedHeader", err)
		}
	})

	t.Run("field table past end of file", func(t *testing.T) {
		data := append([]byte(nil), valid...)
		binary.LittleEndian.PutUint32(data[16:], uint32(len(data))+4096)
		_, err := gff.Decode(data)
		if !errors.Is(err, gff.ErrMalformedHeader) {
			t.Fatalf("err = %v, want ErrMalformedHeader", err)
		}
	})

	t.Run("sections out of order", func(t *testing.T) {
		data := append([]byte(nil), valid...)
		binary.LittleEndian.PutUint32(data[24:], 0) // label table before header end
		_, err := gff.Decode(data)
		if !errors.Is(err, gff.ErrMalformedHeader) {
			t.Fatalf("err = %v, want ErrMalformedHeader", err)
		}
	})
}

func TestDecodeRejectsDanglingReferences(t *testing.T) {
	root := gff.NewStruct(gff.RootStructType)
	root.Set("Name", gff.TypeString, "hello")
	valid, err := gff.Encode(&gff.File{Type: "GEN ", Root: root})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	// One struct, so the single field record sits at the field table offset.
	fieldOffset := binary.LittleEndian.Uint32(valid[16:])

	t.Run("field data offset out of bounds", func(t *testing.T) {
		data := append([]byte(nil), valid...)
		binary.LittleEndian.PutUint32(data[fieldOffset+8:], 0xFFFF)
		_, err := gff.Decode(data)
		if !errors.Is(err, gff.ErrDanglingReference) {
			t.Fatalf("err = %v, want ErrDanglingReference", err)
		}
	})

	t.Run("unknown field type", func(t *testing.T) {
		data := append([]byte(nil), valid...)
		binary.LittleEndian.PutUint32(data[fieldOffset:], 99)
		_, err := gff.Decode(data)
		if !errors.Is(err, gff.ErrDanglingReference) {
			t.Fatalf("err = %v, want ErrDanglingReference", err)
		}
	})

	t.Run("label index out of bounds", func(t *testing.T) {
		data := append([]byte(nil), valid...)
		binary.LittleEndian.PutUint32(data[fieldOffset+4:], 40)
		_, err := gff.Decode(data)
		if !errors.Is(err, gff.ErrDanglingReference) {
			t.Fatalf("err = %v, want ErrDanglingReference", err)
		}
	})
}

func TestStructSetPreservesFieldPosition(t *testing.T) {
	s := gff.NewStruct(0)
	s.Set("First", gff.TypeByte, uint8(1))
	s.Set("Second", gff.TypeByte, uint8(2))
	s.Set("Third", gff.TypeByte, uint8(3))

	s.Set("Second", gff.TypeDWord, uint32(20))
	if len(s.Fields) != 3 {
		t.Fatalf("field count = %d, want 3", len(s.Fields))
	}
	if s.Fields[1].Label != "Second" || s.Fields[1].Type != gff.TypeDWord {
		t.Fatalf("Second moved or kept old type: %+v", s.Fields[1])
	}
	if !s.Remove("First") || s.Has("First") {
		t.Fatal("Remove did not delete First")
	}
}
