// Package dialogue maps conversation containers onto an editable graph.
//
// A conversation is a pool of entry (NPC) and reply (player) nodes joined by
// pointers. A node is introduced exactly once by an "original" pointer; every
// further pointer at the same node is a "link". The distinction is structural:
// it falls out of depth-first traversal from the starting pointers and is
// recomputed after every structural mutation, never trusted from disk.
//
// Nodes live in an arena keyed by conversation-local IDs, so pointers hold
// handles rather than nested ownership and shared sub-trees and cycles need
// no reference counting. Fields the overlay does not recognize stay on the
// node's backing struct and are re-emitted untouched on save.
package dialogue
