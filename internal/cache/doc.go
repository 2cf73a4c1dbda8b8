// Package cache provides a bounded, thread-safe TTL cache.
//
// Entries expire a fixed duration after they were stored. When the cache is
// full, storing a new key evicts the least recently used entry. The clock is
// injectable so expiry can be tested without sleeping.
package cache
