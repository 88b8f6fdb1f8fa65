package snapgate

import (
	"strings"
	"testing"
)

// TestNewResource_Digest verifies that the digest is content-addressed:
// same content yields the same digest regardless of URL.
func TestNewResource_Digest(t *testing.T) {
	a, err := NewResource("/a.css", []byte("body {}"))
	if err != nil {
		t.Fatalf("NewResource() error = %v", err)
	}
	b, err := NewResource("/b.css", []byte("body {}"))
	if err != nil {
		t.Fatalf("NewResource() error = %v", err)
	}
	c, err := NewResource("/a.css", []byte("body { color: red }"))
	if err != nil {
		t.Fatalf("NewResource() error = %v", err)
	}

	if a.Digest() != b.Digest() {
		t.Errorf("same content produced different digests: %s vs %s", a.Digest(), b.Digest())
	}
	if a.Digest() == c.Digest() {
		t.Error("different content produced the same digest")
	}
	if len(a.Digest()) != 64 {
		t.Errorf("digest length = %d, want 64 hex chars", len(a.Digest()))
	}
}

// TestNewResource_Mimetype verifies MIME inference and its override.
func TestNewResource_Mimetype(t *testing.T) {
	html, err := NewResource("/index.html", []byte("<html></html>"))
	if err != nil {
		t.Fatalf("NewResource() error = %v", err)
	}
	if !strings.HasPrefix(html.Mimetype(), "text/html") {
		t.Errorf("Mimetype() = %q, want text/html prefix", html.Mimetype())
	}

	blob, err := NewResource("/data.bin2", nil)
	if err != nil {
		t.Fatalf("NewResource() error = %v", err)
	}
	if blob.Mimetype() != "application/octet-stream" {
		t.Errorf("Mimetype() = %q, want octet-stream fallback", blob.Mimetype())
	}

	forced, err := NewResource("/data.bin2", nil, WithMimetype("image/png"))
	if err != nil {
		t.Fatalf("NewResource() error = %v", err)
	}
	if forced.Mimetype() != "image/png" {
		t.Errorf("Mimetype() = %q, want override image/png", forced.Mimetype())
	}
}

// TestNewResource_Validation verifies the empty-URL rejection and the
// root marker option.
func TestNewResource_Validation(t *testing.T) {
	if _, err := NewResource("", []byte("x")); err == nil {
		t.Error("NewResource() with empty url: error = nil, want error")
	}

	r, err := NewResource("/index.html", []byte("x"), AsRoot())
	if err != nil {
		t.Fatalf("NewResource() error = %v", err)
	}
	if !r.Root() {
		t.Error("Root() = false after AsRoot(), want true")
	}
}

// TestResource_ContentCopy verifies that Content returns a copy rather
// than the internal buffer.
func TestResource_ContentCopy(t *testing.T) {
	r, err := NewResource("/a.txt", []byte("abc"))
	if err != nil {
		t.Fatalf("NewResource() error = %v", err)
	}

	got := r.Content()
	got[0] = 'z'
	if string(r.Content()) != "abc" {
		t.Error("mutating the returned content affected the resource")
	}
}
