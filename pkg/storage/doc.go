// Package storage persists the wallet's portfolios to a single JSON
// database file and loads them back at startup. Writes follow a
// crash-safe protocol: serialize to a buffer, write it to a sibling
// "<path>.tmp" file (truncate, write, fsync), atomically rename it over
// the real path, then fsync the containing directory so the rename
// itself is durable. A reader never opens the file mid-write: the
// directory only ever exposes a complete old version or a complete new
// one.
package storage
