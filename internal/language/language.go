package language

import "fmt"

// ID is an engine language identifier.
type ID uint32

const (
	English  ID = 0
	French   ID = 1
	German   ID = 2
	Italian  ID = 3
	Spanish  ID = 4
	Polish   ID = 5
	Korean   ID = 128
	ChineseT ID = 129
	ChineseS ID = 130
	Japanese ID = 131
)

// Gender distinguishes the masculine and feminine variants a localized
// string may carry for gendered languages.
type Gender uint32

const (
	Masculine Gender = 0
	Feminine  Gender = 1
)

type entry struct {
	id      ID
	code    string // Short code used in CLI flags and dumps
	display string // Human-readable name
}

var languages = []entry{
	{English, "en", "English"},
	{French, "fr", "French"},
	{German, "de", "German"},
	{Italian, "it", "Italian"},
	{Spanish, "es", "Spanish"},
	{Polish, "pl", "Polish"},
	{Korean, "ko", "Korean"},
	{ChineseT, "zh-hant", "Chinese (Traditional)"},
	{ChineseS, "zh-hans", "Chinese (Simplified)"},
	{Japanese, "ja", "Japanese"},
}

// Index maps built at init time.
var (
	byID   map[ID]*entry
	byCode map[string]*entry
)

func init() {
	byID = make(map[ID]*entry, len(languages))
	byCode = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byID[e.id] = e
		byCode[e.code] = e
	}
}

// EncodeID packs a language and gender into the substring ID stored on disk.
func EncodeID(lang ID, gender Gender) uint32 {
	return uint32(lang)*2 + uint32(gender)
}

// DecodeID splits a stored substring ID into language and gender.
func DecodeID(id uint32) (ID, Gender) {
	return ID(id / 2), Gender(id % 2)
}

// Display returns a human-readable name for a language, falling back to the
// numeric form for IDs outside the known table.
func (id ID) Display() string {
	if e, ok := byID[id]; ok {
		return e.display
	}
	return fmt.Sprintf("language %d", uint32(id))
}

// Code returns the short code for a language, or "" when unknown.
func (id ID) Code() string {
	if e, ok := byID[id]; ok {
		return e.code
	}
	return ""
}

// Parse resolves a short code to a language ID.
func Parse(code string) (ID, bool) {
	if e, ok := byCode[code]; ok {
		return e.id, true
	}
	return 0, false
}

// DescribeID renders a packed substring ID for dumps, e.g. "German (feminine)".
func DescribeID(id uint32) string {
	lang, gender := DecodeID(id)
	if gender == Feminine {
		return lang.Display() + " (feminine)"
	}
	return lang.Display()
}
