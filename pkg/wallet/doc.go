// Package wallet is the security wallet's core: the in-memory portfolios,
// the single reader-writer lock guarding them, the ACL algorithm, and the
// command dispatcher transport layers call into. It owns persistence
// (pkg/storage) and notification (pkg/notify) as collaborators, and never
// performs I/O of its own beyond delegating to them.
package wallet
