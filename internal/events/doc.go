// Package events is the in-process publish/subscribe hub that decouples the
// services from whoever observes their mutations.
//
// A Dispatcher delivers events synchronously, in registration order, to the
// listeners registered for the event's name. Listeners are registered either
// strongly (On, returning a Subscription that must be unsubscribed) or weakly
// (OnWeak, which holds only a weak pointer to the owning object and lets the
// registration disappear once the owner is garbage collected).
//
// Listener failures never reach the publisher: errors and panics are logged
// and the remaining listeners still run.
package events
