package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"parley/internal/dialogue"
	"parley/internal/fileutil"
	"parley/internal/logging"
)

func newPruneCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var outputPath string

	cmd := &cobra.Command{
		Use:   "prune <file>",
		Short: "Remove orphaned nodes and dangling pointers from a conversation",
		Args:  cobra.ExactArgs(1),
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
			if doc.file.Type != dialogue.FileType {
				return fmt.Errorf("prune only applies to dialogue files, %s is %s", path, familyName(doc.file.Type))
			}
			conv, err := dialogue.FromFile(doc.file)
			if err != nil {
				return err
			}
			conv.KeepWordCount = !cfg.Save.UpdateWordCount

			removedPointers := conv.RemoveOrphanedPointers()
			removedNodes := conv.RemoveOrphanedNodes()

			out := cmd.OutOrStdout()
			if removedPointers == 0 && len(removedNodes) == 0 {
				fmt.Fprintf(out, "%s: nothing to prune\n", path)
				return nil
			}
			fmt.Fprintf(out, "%s: %d orphaned nodes, %d dangling pointers\n", path, len(removedNodes), removedPointers)

			if dryRun {
				fmt.Fprintln(out, "dry run; file not modified")
				return nil
			}

			data, err := dialogue.Encode(conv)
			if err != nil {
				return err
			}
			if outputPath != "" {
				if err := fileutil.WriteAtomic(outputPath, data, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(out, "wrote pruned conversation to %s\n", outputPath)
				return nil
			}
			backup, err := saveDocument(cfg, path, data)
			if err != nil {
				return err
			}
			logging.FromContext(runCtx).Info("pruned conversation",
				"removed_nodes", len(removedNodes),
				"removed_pointers", removedPointers,
			)
			if backup != "" {
				fmt.Fprintf(out, "previous file backed up to %s\n", backup)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be removed without writing")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write to this path instead of replacing the input")
	return cmd
}
