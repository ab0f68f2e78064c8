// Package portfolio holds the in-memory, ordered collection of documents
// that make up one named credential portfolio. It enforces id and name
// uniqueness, the secret-preservation-on-update rule, and computes the
// change flags the notification publisher needs. It does not take any
// lock itself: the wallet core calls every method here while holding its
// single reader-writer lock.
package portfolio
