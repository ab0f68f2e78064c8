// Package config loads secwall's access-control configuration from a JSON
// file and answers the ACL questions the wallet core asks on every
// request: is this client a producer or consumer, which usages has it
// been granted, and can it touch a given tag. Configuration is read-only
// at run time; Reload atomically swaps in a freshly parsed file so
// queries never observe a half-updated configuration.
package config
