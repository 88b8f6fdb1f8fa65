package snapgate

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"mime"
	"path/filepath"
)

const defaultMimetype = "application/octet-stream"

// Resource is a content-addressable artifact uploaded as part of a build.
//
// Resources are identified by the SHA-256 digest of their content, so the
// same content uploaded under different names is stored once server-side.
// Resource is immutable after creation via [NewResource].
type Resource struct {
	url      string
	digest   string
	mimetype string
	root     bool
	content  []byte
}

// URL returns the resource's path as referenced from the snapshot DOM,
// e.g. "/index.html" or "/assets/app.css".
func (r Resource) URL() string {
	return r.url
}

// Digest returns the lowercase hex SHA-256 digest of the content.
func (r Resource) Digest() string {
	return r.digest
}

// Mimetype returns the resource's MIME type, inferred from the URL's
// extension when not set explicitly.
func (r Resource) Mimetype() string {
	return r.mimetype
}

// Root reports whether this resource is the root document of a snapshot.
func (r Resource) Root() bool {
	return r.root
}

// Content returns a copy of the resource content.
func (r Resource) Content() []byte {
	return append([]byte(nil), r.content...)
}

// ResourceOption configures a [Resource] during construction.
type ResourceOption func(*Resource)

// WithMimetype overrides the inferred MIME type.
func WithMimetype(mt string) ResourceOption {
	return func(r *Resource) { r.mimetype = mt }
}

// AsRoot marks the resource as a snapshot's root document.
func AsRoot() ResourceOption {
	return func(r *Resource) { r.root = true }
}

// NewResource creates a content-addressed [Resource] for the given URL
// and content.
//
// The digest is computed from the content at construction time. The MIME
// type is inferred from the URL's file extension unless overridden with
// [WithMimetype]; unrecognized extensions fall back to
// "application/octet-stream".
//
// Returns an error if the URL is empty.
func NewResource(url string, content []byte, opts ...ResourceOption) (Resource, error) {
	if url == "" {
		return Resource{}, errors.New("resource url cannot be empty")
	}

	sum := sha256.Sum256(content)
	r := Resource{
		url:     url,
		digest:  hex.EncodeToString(sum[:]),
		content: append([]byte(nil), content...),
	}
	for _, opt := range opts {
		opt(&r)
	}

	if r.mimetype == "" {
		if mt := mime.TypeByExtension(filepath.Ext(url)); mt != "" {
			r.mimetype = mt
		} else {
			r.mimetype = defaultMimetype
		}
	}
	return r, nil
}
