// Package service implements the task and list façades that sit between
// callers and storage.
//
// Both services keep a read-through cache in front of the store, invalidate
// affected entries on every successful write, validate input before touching
// storage, and publish an event through the shared events.Dispatcher after the
// write has committed. Events are always dispatched with no cache lock held.
package service
