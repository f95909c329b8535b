package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"parley/internal/dialogue"
	"parley/internal/gff"
)

type infoReport struct {
	Path          string `json:"path"`
	Family        string `json:"family"`
	Type          string `json:"type"`
	Version       string `json:"version"`
	SizeBytes     int64  `json:"size_bytes"`
	Structs       uint32 `json:"structs"`
	Fields        uint32 `json:"fields"`
	Labels        uint32 `json:"labels"`
	FieldData     uint32 `json:"field_data_bytes"`
	FieldIndices  uint32 `json:"field_index_bytes"`
	ListIndices   uint32 `json:"list_index_bytes"`
	Nodes         int    `json:"nodes,omitempty"`
	Entries       int    `json:"entries,omitempty"`
	Replies       int    `json:"replies,omitempty"`
	Starts        int    `json:"starts,omitempty"`
	Words         uint32 `json:"words,omitempty"`
	OrphanedNodes int    `json:"orphaned_nodes"`
}

func newInfoCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:         "info <file>",
		Short:       "Show header and content summary for a container file",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := buildInfoReport(args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), report)
			}

			rows := [][]string{
				{"Family", report.Family},
				{"Type", report.Type},
				{"Version", report.Version},
				{"Size", fmt.Sprintf("%d bytes", report.SizeBytes)},
				{"Structs", strconv.FormatUint(uint64(report.Structs), 10)},
				{"Fields", strconv.FormatUint(uint64(report.Fields), 10)},
				{"Labels", strconv.FormatUint(uint64(report.Labels), 10)},
				{"Field data", fmt.Sprintf("%d bytes", report.FieldData)},
			}
			if report.Family == "dialogue" {
				rows = append(rows,
					[]string{"Nodes", strconv.Itoa(report.Nodes)},
					[]string{"Entries", strconv.Itoa(report.Entries)},
					[]string{"Replies", strconv.Itoa(report.Replies)},
					[]string{"Starts", strconv.Itoa(report.Starts)},
					[]string{"Words", strconv.FormatUint(uint64(report.Words), 10)},
					[]string{"Orphaned nodes", strconv.Itoa(report.OrphanedNodes)},
				)
			}

			fmt.Fprintln(cmd.OutOrStdout(), report.Path)
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Property", "Value"},
				rows,
				1,
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit machine-readable JSON")
	return cmd
}

func buildInfoReport(path string) (*infoReport, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	doc, err := loadDocument(path)
	if err != nil {
		return nil, err
	}
	summary, err := gff.Summarize(doc.raw)
	if err != nil {
		return nil, err
	}

	report := &infoReport{
		Path:         path,
		Family:       familyName(doc.file.Type),
		Type:         doc.file.Type,
		Version:      doc.file.Version,
		SizeBytes:    info.Size(),
		Structs:      summary.StructCount,
		Fields:       summary.FieldCount,
		Labels:       summary.LabelCount,
		FieldData:    summary.FieldDataSize,
		FieldIndices: summary.FieldIndices,
		ListIndices:  summary.ListIndices,
	}

	if doc.file.Type == dialogue.FileType {
		conv, err := dialogue.FromFile(doc.file)
		if err != nil {
			return nil, err
		}
		report.Nodes = conv.Len()
		report.Starts = len(conv.Starts)
		report.Words = conv.NumWords
		reachable := conv.Reachable()
		for _, node := range conv.Nodes() {
			if node.Kind == dialogue.KindEntry {
				report.Entries++
			} else {
				report.Replies++
			}
			if !reachable[node.ID] {
				report.OrphanedNodes++
			}
		}
	}
	return report, nil
}
