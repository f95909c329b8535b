// Package gff reads and writes the generic binary container format used by
// the engine for dialogue, journal, and blueprint files.
//
// A container is a header plus six sections: a struct table, a field table, a
// label table, a field-data pool, a field-index table, and a list-index table.
// Decode produces a tree of Struct values rooted at File.Root; Encode emits
// the canonical section layout the engine's own tools produce, including
// label deduplication, 4-byte value padding, and frequency-derived struct
// type IDs.
//
// The package is structure-agnostic: it knows field types and labels, never
// what a "dialogue entry" is. Domain overlays (internal/dialogue and friends)
// interpret structs by label and are expected to leave fields they do not
// recognize untouched so unknown extensions survive a load/save cycle.
package gff
