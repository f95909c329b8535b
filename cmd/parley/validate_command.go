package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"parley/internal/dialogue"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "validate <file>...",
		Short:       "Check container files for structural problems",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failures := 0
			for _, path := range args {
				problems := validateFile(path)
				if len(problems) == 0 {
					fmt.Fprintf(out, "%s: ok\n", path)
					continue
				}
				failures++
				for _, problem := range problems {
					fmt.Fprintf(out, "%s: %s\n", path, problem)
				}
			}
			if failures > 0 {
				return fmt.Errorf("%d of %d files failed validation", failures, len(args))
			}
			return nil
		},
	}
	return cmd
}

func validateFile(path string) []string {
	var problems []string

	doc, err := loadDocument(path)
	if err != nil {
		return []string{err.Error()}
	}

	if doc.file.Type == dialogue.FileType {
		conv, err := dialogue.FromFile(doc.file)
		if err != nil {
			return []string{err.Error()}
		}

		reachable := conv.Reachable()
		orphans := 0
		for _, node := range conv.Nodes() {
			if !reachable[node.ID] {
				orphans++
			}
		}
		if orphans > 0 {
			problems = append(problems, fmt.Sprintf("%d orphaned nodes (run `parley prune` to remove them)", orphans))
		}
		if len(conv.Starts) == 0 && conv.Len() > 0 {
			problems = append(problems, "conversation has nodes but no starting pointers")
		}

		// A clean file re-encodes to the same bytes; anything else means the
		// writer and this reader disagree about its contents.
		encoded, err := dialogue.Encode(conv)
		if err != nil {
			problems = append(problems, fmt.Sprintf("re-encode failed: %v", err))
		} else if orphans == 0 && !bytes.Equal(encoded, doc.raw) {
			problems = append(problems, "file is not in canonical form (run `parley rewrite` to normalize it)")
		}
	}

	return problems
}
