// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing the services to remain
// independent of specific database technologies or persistence details.
//
// Storage is the sole source of truth for tasks and lists. Implementations
// assign IDs, keep subtasks joined onto their parents on reads, and report
// missing entities with ErrTaskNotFound or ErrListNotFound.
package store
