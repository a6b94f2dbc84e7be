// Package persist provides the node's durable key/value store.
//
// Entries are small integers grouped by namespace, the same shape as the
// preferences partition the node firmware used. Every PutInt is committed
// before it returns, so a value read back after a restart is exactly the
// last value written.
package persist
