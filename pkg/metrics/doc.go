// Package metrics exposes the wallet's Prometheus instrumentation: a
// documents-by-type-and-portfolio gauge, a dispatch latency histogram
// per command, and a notification-queue-drop counter per subscriber.
package metrics
