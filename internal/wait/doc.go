// Package wait polls a caller-supplied fetch operation on a fixed
// interval until the observed snapshot leaves its pending state.
//
// The timeout measures staleness rather than total elapsed time: a job
// that keeps reporting changes never times out, while one whose snapshot
// stops changing fails after the configured inactivity window. Fetch
// failures abort the wait immediately; no retries happen internally.
package wait
