package main

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"parley/internal/catalog"
	"parley/internal/logging"
)

var scanExtensions = map[string]struct{}{
	".dlg": {},
	".jrl": {},
	".utc": {},
}

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Track known container files in a local database",
	}

	catalogCmd.AddCommand(newCatalogScanCommand(ctx))
	catalogCmd.AddCommand(newCatalogListCommand(ctx))
	catalogCmd.AddCommand(newCatalogForgetCommand(ctx))

	return catalogCmd
}

func newCatalogScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <path>...",
		Short: "Scan files or directories into the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := collectScanTargets(args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no container files found")
				return nil
			}

			return ctx.withCatalog(func(store *catalog.Store) error {
				out := cmd.OutOrStdout()
				scanned, failed := 0, 0
				for _, path := range paths {
					rec, err := catalog.ScanFile(path)
					if err != nil {
						failed++
						fmt.Fprintf(out, "%s: %v\n", path, err)
						logging.FromContext(logging.WithDocument(cmd.Context(), path)).
							Warn("scan failed", "error", err)
						continue
					}
					if _, err := store.Upsert(cmd.Context(), rec); err != nil {
						return err
					}
					scanned++
					fmt.Fprintf(out, "%s: %s, %d structs\n", path, rec.Family, rec.StructCnt)
				}
				fmt.Fprintf(out, "scanned %d files (%d failed)\n", scanned, failed)
				return nil
			})
		},
	}
}

func collectScanTargets(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if _, ok := scanExtensions[strings.ToLower(filepath.Ext(path))]; ok {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return paths, nil
}

func newCatalogListCommand(ctx *commandContext) *cobra.Command {
	var family string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cataloged files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCatalog(func(store *catalog.Store) error {
				records, err := store.List(cmd.Context(), family)
				if err != nil {
					return err
				}
				if jsonOut {
					type recordView struct {
						Path      string `json:"path"`
						Family    string `json:"family"`
						SizeBytes int64  `json:"size_bytes"`
						Structs   int    `json:"structs"`
						Nodes     int    `json:"nodes,omitempty"`
						Words     int    `json:"words,omitempty"`
						ScannedAt string `json:"scanned_at"`
					}
					views := make([]recordView, 0, len(records))
					for _, rec := range records {
						views = append(views, recordView{
							Path:      rec.Path,
							Family:    rec.Family,
							SizeBytes: rec.SizeBytes,
							Structs:   rec.StructCnt,
							Nodes:     rec.NodeCount,
							Words:     rec.WordCount,
							ScannedAt: rec.ScannedAt.Format("2006-01-02 15:04:05"),
						})
					}
					return writeJSON(cmd.OutOrStdout(), views)
				}

				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "catalog is empty")
					return nil
				}
				rows := make([][]string, 0, len(records))
				for _, rec := range records {
					rows = append(rows, []string{
						rec.Path,
						rec.Family,
						strconv.FormatInt(rec.SizeBytes, 10),
						strconv.Itoa(rec.StructCnt),
						strconv.Itoa(rec.NodeCount),
						strconv.Itoa(rec.WordCount),
						rec.ScannedAt.Local().Format("2006-01-02 15:04"),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Path", "Family", "Bytes", "Structs", "Nodes", "Words", "Scanned"},
					rows,
					2, 3, 4, 5,
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&family, "family", "", "Only list one family (dialogue, journal, creature)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit machine-readable JSON")
	return cmd
}

func newCatalogForgetCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "forget [path]",
		Short: "Remove entries from the catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return fmt.Errorf("pass exactly one of a path or --all")
			}
			return ctx.withCatalog(func(store *catalog.Store) error {
				out := cmd.OutOrStdout()
				if all {
					removed, err := store.ForgetAll(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "removed %d entries\n", removed)
					return nil
				}

				path, err := filepath.Abs(args[0])
				if err != nil {
					return err
				}
				removed, err := store.Forget(cmd.Context(), path)
				if err != nil {
					return err
				}
				if !removed {
					// Entries are stored with absolute paths; retry verbatim
					// in case the user pasted one straight from `list`.
					removed, err = store.Forget(cmd.Context(), args[0])
					if err != nil {
						return err
					}
				}
				if removed {
					fmt.Fprintf(out, "forgot %s\n", args[0])
				} else {
					fmt.Fprintf(out, "%s was not cataloged\n", args[0])
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Clear the entire catalog")
	return cmd
}
