// Package pool runs lazily-produced asynchronous tasks with a fixed
// concurrency limit, collecting results in submission order.
//
// The producer is pulled on demand: a new task is requested only when a
// worker slot frees up, so memory in flight stays proportional to the
// concurrency limit rather than the total task count. The first task
// failure aborts the run; in-flight siblings are allowed to finish but
// their results are discarded.
package pool
