// Package client is a reference accessor SDK for the wallet: a thin
// façade over pkg/wallet's command dispatcher, split into a
// ProducerAccessor and a ConsumerAccessor matching the two ACL roles.
// It is a convenience for in-process callers (the CLI, tests); remote
// callers sit behind whatever transport wraps Wallet.Dispatch and would
// implement the same Requester interface over the wire.
package client
