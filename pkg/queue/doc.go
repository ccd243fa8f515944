// Package queue is a small persistent task queue.
//
// An Enqueuer serialises payloads into Tasks named after the payload type; a
// Worker polls a WorkerRepository, claims due tasks with a lock, and runs the
// Handler registered under the task name with bounded concurrency. Handlers
// are built with NewTaskHandler, which decodes the JSON payload into T.
//
// Tasks run at most once per claim and are never rescheduled after a failure.
// A task whose worker died mid-run becomes claimable again once its lock
// expires. Two repositories are provided: MemoryStorage for tests and
// single-process development, MongoStorage for shared durable queues.
package queue
