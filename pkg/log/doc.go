/*
Package log provides structured logging for secwall using zerolog.

It wraps zerolog with a package-level Logger, an Init(Config) that switches
between JSON and console output, and With* helpers that attach the fields
the wallet core logs against most often: client id, portfolio name, and
document id.
*/
package log
