package catalog

import "time"

// Record describes one cataloged container file.
type Record struct {
	ID         int64
	Path       string
	Family     string
	SizeBytes  int64
	Checksum   string
	StructCnt  int
	NodeCount  int
	WordCount  int
	ModifiedAt time.Time
	ScannedAt  time.Time
}

// Families the scanner recognizes by file tag.
const (
	FamilyDialogue = "dialogue"
	FamilyJournal  = "journal"
	FamilyCreature = "creature"
	FamilyUnknown  = "unknown"
)

// FamilyForType maps a container file tag to a catalog family.
func FamilyForType(fileType string) string {
	switch fileType {
	case "DLG ":
		return FamilyDialogue
	case "JRL ":
		return FamilyJournal
	case "UTC ":
		return FamilyCreature
	default:
		return FamilyUnknown
	}
}
