// Package creature maps creature blueprint containers onto blueprint
// records: identity, the dialogue hookup, and the inventory.
//
// Blueprints carry far more state than any editor in this suite touches;
// everything outside the recognized fields rides the backing structs and is
// re-emitted untouched. Equipped-item structs are the one place the engine
// stores meaning in a struct type ID (the equipment slot mask), so those
// structs are pinned and keep their IDs through the frequency-based
// reassignment every other struct goes through.
package creature

import (
	"errors"
	"fmt"

	"parley/internal/gff"
)

// FileType is the container tag carried by creature blueprint files.
const FileType = "UTC "

// ErrNotCreature reports a container whose type tag is not a creature
// blueprint.
var ErrNotCreature = errors.New("creature: not a creature blueprint")

// Item is one carried inventory record.
type Item struct {
	ResRef   string
	Dropable bool

	backing *gff.Struct
}

// EquippedItem is one equipped record; Slot is the equipment slot bitmask
// the engine stores as the struct type ID.
type EquippedItem struct {
	Slot   uint32
	ResRef string

	backing *gff.Struct
}

// Creature is a decoded blueprint.
type Creature struct {
	TemplateResRef string
	Tag            string
	FirstName      gff.LocString
	LastName       gff.LocString
	Race           uint8

	// Conversation names the dialogue container started when the player
	// talks to this creature.
	Conversation string

	Inventory []*Item
	Equipped  []*EquippedItem

	root *gff.Struct
}

// New returns an empty blueprint.
func New() *Creature {
	return &Creature{
		FirstName: gff.LocString{StrRef: gff.NoStrRef},
		LastName:  gff.LocString{StrRef: gff.NoStrRef},
	}
}

// Decode parses a creature blueprint from raw bytes.
func Decode(data []byte) (*Creature, error) {
	f, err := gff.Decode(data)
	if err != nil {
		return nil, err
	}
	return FromFile(f)
}

// FromFile builds a blueprint from a decoded container.
func FromFile(f *gff.File) (*Creature, error) {
	if f.Type != FileType {
		return nil, fmt.Errorf("%w: file type %q", ErrNotCreature, f.Type)
	}
	root := f.Root

	c := New()
	c.root = root
	c.TemplateResRef = root.ResRef("TemplateResRef")
	c.Tag = root.String("Tag")
	c.FirstName = root.LocString("FirstName")
	c.LastName = root.LocString("LastName")
	c.Race = root.Byte("Race")
	c.Conversation = root.ResRef("Conversation")

	for _, is := range root.List("ItemList") {
		c.Inventory = append(c.Inventory, &Item{
			ResRef:   is.ResRef("InventoryRes"),
			Dropable: is.Byte("Dropable") != 0,
			backing:  is,
		})
	}
	for _, es := range root.List("Equip_ItemList") {
		es.TypePinned = true
		c.Equipped = append(c.Equipped, &EquippedItem{
			Slot:    es.TypeID,
			ResRef:  es.ResRef("EquippedRes"),
			backing: es,
		})
	}
	return c, nil
}

// Encode serializes the blueprint back into container bytes.
func Encode(c *Creature) ([]byte, error) {
	f, err := c.File()
	if err != nil {
		return nil, err
	}
	return gff.Encode(f)
}

// File rebuilds the container struct tree.
func (c *Creature) File() (*gff.File, error) {
	root := c.root
	if root == nil {
		root = gff.NewStruct(gff.RootStructType)
		c.root = root
	}
	root.Set("TemplateResRef", gff.TypeResRef, c.TemplateResRef)
	root.Set("Tag", gff.TypeString, c.Tag)
	root.Set("FirstName", gff.TypeLocString, c.FirstName)
	root.Set("LastName", gff.TypeLocString, c.LastName)
	root.Set("Race", gff.TypeByte, c.Race)
	if c.Conversation != "" || root.Has("Conversation") {
		root.Set("Conversation", gff.TypeResRef, c.Conversation)
	}

	items := make([]*gff.Struct, 0, len(c.Inventory))
	for _, item := range c.Inventory {
		is := item.backing
		if is == nil {
			is = gff.NewStruct(0)
			item.backing = is
		}
		is.Set("InventoryRes", gff.TypeResRef, item.ResRef)
		dropable := uint8(0)
		if item.Dropable {
			dropable = 1
		}
		is.Set("Dropable", gff.TypeByte, dropable)
		items = append(items, is)
	}
	root.Set("ItemList", gff.TypeList, items)

	equipped := make([]*gff.Struct, 0, len(c.Equipped))
	for _, item := range c.Equipped {
		es := item.backing
		if es == nil {
			es = gff.NewStruct(item.Slot)
			item.backing = es
		}
		es.TypeID = item.Slot
		es.TypePinned = true
		es.Set("EquippedRes", gff.TypeResRef, item.ResRef)
		equipped = append(equipped, es)
	}
	root.Set("Equip_ItemList", gff.TypeList, equipped)

	return &gff.File{Type: FileType, Version: gff.Version32, Root: root}, nil
}
