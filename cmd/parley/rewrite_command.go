package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"parley/internal/creature"
	"parley/internal/dialogue"
	"parley/internal/fileutil"
	"parley/internal/gff"
	"parley/internal/journal"
	"parley/internal/logging"
)

func newRewriteCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "rewrite <file>",
		Short: "Re-encode a container file into canonical form",
		Long: "Rewrite decodes a container file and writes it back through the " +
			"encoder, normalizing struct types, label order, and padding. " +
			"Dialogue files also get their word count refreshed. Unknown " +
			"fields are preserved byte for byte.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := args[0]
			runCtx := logging.WithDocument(cmd.Context(), path)

			doc, err := loadDocument(path)
			if err != nil {
				return err
			}

			var data []byte
			switch doc.file.Type {
			case dialogue.FileType:
				conv, err := dialogue.FromFile(doc.file)
				if err != nil {
					return err
				}
				conv.KeepWordCount = !cfg.Save.UpdateWordCount
				data, err = dialogue.Encode(conv)
				if err != nil {
					return err
				}
			case journal.FileType:
				j, err := journal.FromFile(doc.file)
				if err != nil {
					return err
				}
				data, err = journal.Encode(j)
				if err != nil {
					return err
				}
			case creature.FileType:
				c, err := creature.FromFile(doc.file)
				if err != nil {
					return err
				}
				data, err = creature.Encode(c)
				if err != nil {
					return err
				}
			default:
				data, err = gff.Encode(doc.file)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if outputPath != "" {
				if err := fileutil.WriteAtomic(outputPath, data, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(out, "wrote %s (%d bytes)\n", outputPath, len(data))
				return nil
			}

			if bytes.Equal(data, doc.raw) {
				fmt.Fprintf(out, "%s: already canonical\n", path)
				return nil
			}
			backup, err := saveDocument(cfg, path, data)
			if err != nil {
				return err
			}
			logging.FromContext(runCtx).Info("rewrote container", "bytes", len(data))
			fmt.Fprintf(out, "rewrote %s (%d -> %d bytes)\n", path, len(doc.raw), len(data))
			if backup != "" {
				fmt.Fprintf(out, "previous file backed up to %s\n", backup)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write to this path instead of replacing the input")
	return cmd
}
