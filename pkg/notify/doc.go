// Package notify publishes CREATED/UPDATED/DELETED notifications to
// subscribers of the wallet's change stream. Delivery is best-effort and
// never blocks the dispatcher: each subscriber has a bounded queue, and a
// slow or stalled subscriber has its oldest pending notification dropped
// to make room for the newest one, with the drop count exposed for
// observability (pkg/metrics reads it). This is a deliberate
// drop-oldest policy, unlike the teacher's drop-newest broker in
// pkg/events: a credential-change feed is more useful with the latest
// state than with stale history.
package notify
