package catalog

import (
	"fmt"
	"os"

	"parley/internal/dialogue"
	"parley/internal/fileutil"
	"parley/internal/gff"
)

// ScanFile decodes the container at path and builds a catalog record from
// what it finds. The record is not persisted; pass it to Upsert.
func ScanFile(path string) (*Record, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	file, err := gff.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	checksum, err := fileutil.Checksum(path)
	if err != nil {
		return nil, fmt.Errorf("checksum %s: %w", path, err)
	}

	rec := &Record{
		Path:       path,
		Family:     FamilyForType(file.Type),
		SizeBytes:  info.Size(),
		Checksum:   checksum,
		StructCnt:  countStructs(file.Root),
		ModifiedAt: info.ModTime(),
	}

	if rec.Family == FamilyDialogue {
		conv, err := dialogue.FromFile(file)
		if err != nil {
			return nil, fmt.Errorf("read dialogue %s: %w", path, err)
		}
		rec.NodeCount = conv.Len()
		rec.WordCount = int(conv.NumWords)
	}
	return rec, nil
}

func countStructs(root *gff.Struct) int {
	if root == nil {
		return 0
	}
	total := 1
	for _, field := range root.Fields {
		switch field.Type {
		case gff.TypeStruct:
			if child, ok := field.Value.(*gff.Struct); ok {
				total += countStructs(child)
			}
		case gff.TypeList:
			if children, ok := field.Value.([]*gff.Struct); ok {
				for _, child := range children {
					total += countStructs(child)
				}
			}
		}
	}
	return total
}
