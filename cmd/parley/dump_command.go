package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"parley/internal/creature"
	"parley/internal/dialogue"
	"parley/internal/journal"
	"parley/internal/language"
)

func newDumpCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var langFlag string

	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Print the readable contents of a container file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			lang, err := resolveLanguage(cfg, langFlag)
			if err != nil {
				return err
			}

			doc, err := loadDocument(args[0])
			if err != nil {
				return err
			}

			switch doc.file.Type {
			case dialogue.FileType:
				conv, err := dialogue.FromFile(doc.file)
				if err != nil {
					return err
				}
				return dumpDialogue(cmd, conv, lang, jsonOut)
			case journal.FileType:
				j, err := journal.FromFile(doc.file)
				if err != nil {
					return err
				}
				return dumpJournal(cmd, j, lang, jsonOut)
			case creature.FileType:
				c, err := creature.FromFile(doc.file)
				if err != nil {
					return err
				}
				return dumpCreature(cmd, c, lang, jsonOut)
			default:
				return fmt.Errorf("no dump view for %s files", familyName(doc.file.Type))
			}
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit machine-readable JSON")
	cmd.Flags().StringVar(&langFlag, "lang", "", "Language variant to show (en, fr, de, ...)")
	return cmd
}

type dumpLine struct {
	ID      int      `json:"id"`
	Kind    string   `json:"kind"`
	Text    string   `json:"text"`
	Speaker string   `json:"speaker,omitempty"`
	Script  string   `json:"script,omitempty"`
	Next    []string `json:"next,omitempty"`
}

func dumpDialogue(cmd *cobra.Command, conv *dialogue.Conversation, lang language.ID, jsonOut bool) error {
	lines := make([]dumpLine, 0, conv.Len())
	for _, node := range conv.Nodes() {
		line := dumpLine{
			ID:      node.ID,
			Kind:    node.Kind.String(),
			Text:    textFor(node.Text, lang),
			Speaker: node.Speaker,
			Script:  node.Script,
		}
		for _, ptr := range node.Pointers {
			ref := strconv.Itoa(ptr.Target)
			if ptr.IsLink {
				ref += " (link)"
			}
			line.Next = append(line.Next, ref)
		}
		lines = append(lines, line)
	}

	if jsonOut {
		starts := make([]int, 0, len(conv.Starts))
		for _, ptr := range conv.Starts {
			starts = append(starts, ptr.Target)
		}
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"starts": starts,
			"words":  conv.NumWords,
			"nodes":  lines,
		})
	}

	out := cmd.OutOrStdout()
	startRefs := make([]string, 0, len(conv.Starts))
	for _, ptr := range conv.Starts {
		startRefs = append(startRefs, strconv.Itoa(ptr.Target))
	}
	fmt.Fprintf(out, "Starts: %s\n", strings.Join(startRefs, ", "))

	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, []string{
			strconv.Itoa(line.ID),
			line.Kind,
			line.Speaker,
			line.Text,
			strings.Join(line.Next, ", "),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"ID", "Kind", "Speaker", "Text", "Next"},
		rows,
		0,
	))
	return nil
}

func dumpJournal(cmd *cobra.Command, j *journal.Journal, lang language.ID, jsonOut bool) error {
	type entryView struct {
		ID   uint32 `json:"id"`
		End  bool   `json:"end"`
		Text string `json:"text"`
	}
	type categoryView struct {
		Tag      string      `json:"tag"`
		Name     string      `json:"name"`
		Priority uint32      `json:"priority"`
		XP       uint32      `json:"xp"`
		Entries  []entryView `json:"entries"`
	}

	categories := make([]categoryView, 0, len(j.Categories))
	for _, cat := range j.Categories {
		view := categoryView{
			Tag:      cat.Tag,
			Name:     textFor(cat.Name, lang),
			Priority: cat.Priority,
			XP:       cat.XP,
		}
		for _, entry := range cat.Entries {
			view.Entries = append(view.Entries, entryView{
				ID:   entry.ID,
				End:  entry.End,
				Text: textFor(entry.Text, lang),
			})
		}
		categories = append(categories, view)
	}

	if jsonOut {
		return writeJSON(cmd.OutOrStdout(), map[string]any{"categories": categories})
	}

	out := cmd.OutOrStdout()
	for _, cat := range categories {
		fmt.Fprintf(out, "%s (%s) priority=%d xp=%d\n", cat.Name, cat.Tag, cat.Priority, cat.XP)
		rows := make([][]string, 0, len(cat.Entries))
		for _, entry := range cat.Entries {
			rows = append(rows, []string{
				strconv.FormatUint(uint64(entry.ID), 10),
				yesNo(entry.End),
				entry.Text,
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"ID", "End", "Text"},
			rows,
			0,
		))
	}
	return nil
}

func dumpCreature(cmd *cobra.Command, c *creature.Creature, lang language.ID, jsonOut bool) error {
	if jsonOut {
		type itemView struct {
			ResRef   string `json:"resref"`
			Dropable bool   `json:"dropable,omitempty"`
			Slot     uint32 `json:"slot,omitempty"`
		}
		inventory := make([]itemView, 0, len(c.Inventory))
		for _, item := range c.Inventory {
			inventory = append(inventory, itemView{ResRef: item.ResRef, Dropable: item.Dropable})
		}
		equipped := make([]itemView, 0, len(c.Equipped))
		for _, item := range c.Equipped {
			equipped = append(equipped, itemView{ResRef: item.ResRef, Slot: item.Slot})
		}
		return writeJSON(cmd.OutOrStdout(), map[string]any{
			"template":     c.TemplateResRef,
			"tag":          c.Tag,
			"first_name":   textFor(c.FirstName, lang),
			"last_name":    textFor(c.LastName, lang),
			"race":         c.Race,
			"conversation": c.Conversation,
			"inventory":    inventory,
			"equipped":     equipped,
		})
	}

	out := cmd.OutOrStdout()
	name := strings.TrimSpace(textFor(c.FirstName, lang) + " " + textFor(c.LastName, lang))
	fmt.Fprintf(out, "%s (%s)\n", name, c.Tag)
	fmt.Fprintf(out, "Template: %s  Race: %d  Conversation: %s\n", c.TemplateResRef, c.Race, c.Conversation)

	if len(c.Inventory) > 0 {
		rows := make([][]string, 0, len(c.Inventory))
		for _, item := range c.Inventory {
			rows = append(rows, []string{item.ResRef, yesNo(item.Dropable)})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Inventory", "Dropable"},
			rows,
		))
	}
	if len(c.Equipped) > 0 {
		rows := make([][]string, 0, len(c.Equipped))
		for _, item := range c.Equipped {
			rows = append(rows, []string{strconv.FormatUint(uint64(item.Slot), 16), item.ResRef})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Slot", "Equipped"},
			rows,
			0,
		))
	}
	return nil
}
