package ledger

import "sync"

// Ledger is a thread-safe in-memory record of uploaded content digests.
//
// Resources are content-addressed, so a digest that has been uploaded
// once in a session never needs uploading again. The ledger holds only
// digests, not content, keeping its footprint small even for large
// builds.
type Ledger struct {
	mu       sync.RWMutex
	uploaded map[string]struct{}
}

// New creates an empty [Ledger], immediately ready for use.
func New() *Ledger {
	return &Ledger{
		uploaded: make(map[string]struct{}),
	}
}

// MarkUploaded records a digest as uploaded.
//
// Marking an already-recorded digest is a no-op.
func (l *Ledger) MarkUploaded(digest string) {
	l.mu.Lock()
	l.uploaded[digest] = struct{}{}
	l.mu.Unlock()
}

// Uploaded reports whether a digest has been recorded in this session.
func (l *Ledger) Uploaded(digest string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.uploaded[digest]
	return ok
}

// Len returns the number of recorded digests.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.uploaded)
}
