// Package journal maps journal containers onto category and entry records.
//
// A journal is a flat list of quest categories, each owning numbered entries.
// The overlay recognizes the standard fields and leaves everything else on
// the backing structs, so engine-specific extensions survive a load/save
// cycle untouched.
package journal

import (
	"errors"
	"fmt"

	"parley/internal/gff"
)

// FileType is the container tag carried by journal files.
const FileType = "JRL "

// ErrNotJournal reports a container whose type tag is not a journal.
var ErrNotJournal = errors.New("journal: not a journal file")

// Entry is one numbered stage of a quest category. End marks the stages
// that finish the quest.
type Entry struct {
	ID   uint32
	End  bool
	Text gff.LocString

	backing *gff.Struct
}

// Category is a quest with its ordered stages.
type Category struct {
	Name     gff.LocString
	Tag      string
	Priority uint32
	XP       uint32
	Comment  string
	Entries  []*Entry

	backing *gff.Struct
}

// Journal owns the category list.
type Journal struct {
	Categories []*Category

	root *gff.Struct
}

// New returns an empty journal.
func New() *Journal {
	return &Journal{}
}

// AddCategory appends a category and returns it.
func (j *Journal) AddCategory(tag string) *Category {
	c := &Category{
		Name: gff.LocString{StrRef: gff.NoStrRef},
		Tag:  tag,
	}
	j.Categories = append(j.Categories, c)
	return c
}

// AddEntry appends a numbered stage to a category and returns it.
func (c *Category) AddEntry(id uint32) *Entry {
	e := &Entry{
		ID:   id,
		Text: gff.LocString{StrRef: gff.NoStrRef},
	}
	c.Entries = append(c.Entries, e)
	return e
}

// Decode parses a journal container from raw bytes.
func Decode(data []byte) (*Journal, error) {
	f, err := gff.Decode(data)
	if err != nil {
		return nil, err
	}
	return FromFile(f)
}

// FromFile builds a journal from a decoded container.
func FromFile(f *gff.File) (*Journal, error) {
	if f.Type != FileType {
		return nil, fmt.Errorf("%w: file type %q", ErrNotJournal, f.Type)
	}

	j := New()
	j.root = f.Root
	for _, cs := range f.Root.List("Categories") {
		cat := &Category{
			Name:     cs.LocString("Name"),
			Tag:      cs.String("Tag"),
			Priority: cs.DWord("Priority"),
			XP:       cs.DWord("XP"),
			Comment:  cs.String("Comment"),
			backing:  cs,
		}
		for _, es := range cs.List("EntryList") {
			cat.Entries = append(cat.Entries, &Entry{
				ID:      es.DWord("ID"),
				End:     es.Word("End") != 0,
				Text:    es.LocString("Text"),
				backing: es,
			})
		}
		j.Categories = append(j.Categories, cat)
	}
	return j, nil
}

// Encode serializes the journal back into container bytes.
func Encode(j *Journal) ([]byte, error) {
	f, err := j.File()
	if err != nil {
		return nil, err
	}
	return gff.Encode(f)
}

// File rebuilds the container struct tree, rewriting recognized fields in
// place on each backing struct.
func (j *Journal) File() (*gff.File, error) {
	categories := make([]*gff.Struct, 0, len(j.Categories))
	for _, cat := range j.Categories {
		cs := cat.backing
		if cs == nil {
			cs = gff.NewStruct(0)
			cat.backing = cs
		}
		cs.Set("Name", gff.TypeLocString, cat.Name)
		cs.Set("XP", gff.TypeDWord, cat.XP)
		cs.Set("Priority", gff.TypeDWord, cat.Priority)
		if cat.Comment != "" || cs.Has("Comment") {
			cs.Set("Comment", gff.TypeString, cat.Comment)
		}
		cs.Set("Tag", gff.TypeString, cat.Tag)

		entries := make([]*gff.Struct, 0, len(cat.Entries))
		for _, e := range cat.Entries {
			es := e.backing
			if es == nil {
				es = gff.NewStruct(0)
				e.backing = es
			}
			es.Set("ID", gff.TypeDWord, e.ID)
			end := uint16(0)
			if e.End {
				end = 1
			}
			es.Set("End", gff.TypeWord, end)
			es.Set("Text", gff.TypeLocString, e.Text)
			entries = append(entries, es)
		}
		cs.Set("EntryList", gff.TypeList, entries)
		categories = append(categories, cs)
	}

	root := j.root
	if root == nil {
		root = gff.NewStruct(gff.RootStructType)
		j.root = root
	}
	root.Set("Categories", gff.TypeList, categories)
	return &gff.File{Type: FileType, Version: gff.Version32, Root: root}, nil
}
