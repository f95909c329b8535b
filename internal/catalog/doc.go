// Package catalog tracks known container files in a SQLite database.
//
// The catalog records where each file lives, which family it belongs to
// (dialogue, journal, creature), and summary counts gathered when it was
// last scanned. It backs the `parley catalog` commands and is entirely
// optional: nothing else depends on it being populated.
package catalog
