package gff

// Summary reports the table sizes a container declares in its header.
type Summary struct {
	Type          string
	Version       string
	StructCount   uint32
	FieldCount    uint32
	LabelCount    uint32
	FieldDataSize uint32
	FieldIndices  uint32
	ListIndices   uint32
}

// Summarize parses just the header of data and returns its table sizes. The
// same validation applies as in Decode, so a Summary is only produced for a
// structurally sound header.
func Summarize(data []byte) (Summary, error) {
	hdr, err := parseHeader(data)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Type:          hdr.fileType,
		Version:       hdr.fileVersion,
		StructCount:   hdr.structCount,
		FieldCount:    hdr.fieldCount,
		LabelCount:    hdr.labelCount,
		FieldDataSize: hdr.fieldDataSize,
		FieldIndices:  hdr.fieldIndicesSize,
		ListIndices:   hdr.listIndicesSize,
	}, nil
}
