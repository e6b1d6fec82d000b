// Package jobs runs background work on a bounded in-memory queue drained by a
// fixed pool of workers. Jobs are not persisted; anything still queued when
// the pool stops is dropped.
package jobs

import (
	"context"

	"github.com/google/uuid"
)

// Job is a unit of background work.
type Job interface {
	// ID returns the job's unique identifier
	ID() uuid.UUID

	// Type returns the job type identifier
	Type() string

	// Execute runs the job logic
	Execute(ctx context.Context) error
}

// QueueReader provides read-only access to the job channel
// allowing workers to consume jobs without the ability to enqueue
type QueueReader interface {
	// Channel returns a read-only channel for consuming jobs
	Channel() <-chan Job
}

// QueueWriter provides write access to the job queue
// allowing producers to enqueue jobs for processing
type QueueWriter interface {
	// Enqueue adds a job to the queue for processing
	// Returns an error if the queue is full or closed
	Enqueue(job Job) error
}

// Func adapts a function to the Job interface.
type Func struct {
	id  uuid.UUID
	typ string
	fn  func(ctx context.Context) error
}

// NewFunc wraps fn as a job of type typ with a fresh ID.
func NewFunc(typ string, fn func(ctx context.Context) error) *Func {
	return &Func{id: uuid.New(), typ: typ, fn: fn}
}

// ID implements Job.
func (f *Func) ID() uuid.UUID { return f.id }

// Type implements Job.
func (f *Func) Type() string { return f.typ }

// Execute implements Job.
func (f *Func) Execute(ctx context.Context) error { return f.fn(ctx) }
