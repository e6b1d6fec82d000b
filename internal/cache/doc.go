// Package cache provides a small generic in-memory cache with hit/miss
// accounting, used by the services as a read-through layer in front of
// storage.
package cache
