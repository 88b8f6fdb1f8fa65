// Package ledger tracks which content digests have already been uploaded
// within a client session, so repeated upload calls stay idempotent
// without extra round trips.
package ledger
