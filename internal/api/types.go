package api

import (
	"encoding/json"
	"fmt"
)

// document is the top-level JSON:API envelope for requests and responses.
type document struct {
	Data   *resourceObject `json:"data,omitempty"`
	Errors []errorObject   `json:"errors,omitempty"`
	Meta   map[string]any  `json:"meta,omitempty"`
}

// resourceObject is a single JSON:API resource.
type resourceObject struct {
	Type          string                  `json:"type"`
	ID            string                  `json:"id,omitempty"`
	Attributes    map[string]any          `json:"attributes,omitempty"`
	Relationships map[string]relationship `json:"relationships,omitempty"`
}

// relationship links a resource to one or many others by identifier.
type relationship struct {
	Data json.RawMessage `json:"data"`
}

// identifier is a bare JSON:API resource identifier used inside
// relationships.
type identifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// errorObject is a single entry of a JSON:API errors array.
type errorObject struct {
	Status string `json:"status,omitempty"`
	Title  string `json:"title,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Build is the server's representation of one test run.
//
// State drives the client's completion polling: builds stay in "pending"
// or "processing" until the server reaches a terminal state. The struct
// is a plain value so snapshots compare structurally.
type Build struct {
	ID               string
	Number           int
	State            string
	WebURL           string
	FailureReason    string
	TotalSnapshots   int
	TotalComparisons int
}

// Snapshot is the server's representation of a named visual snapshot
// within a build.
type Snapshot struct {
	ID   string
	Name string
}

// BuildAttributes are the caller-supplied attributes for creating a build.
type BuildAttributes struct {
	Branch            string
	CommitSHA         string
	PullRequestNumber int
}

// SnapshotAttributes are the caller-supplied attributes for creating a
// snapshot within a build.
type SnapshotAttributes struct {
	Name      string
	Widths    []int
	MinHeight int
}

// ResourceRef identifies a content-addressed resource attached to a
// snapshot or build.
type ResourceRef struct {
	Digest   string
	URL      string
	Mimetype string
	Root     bool
}

// buildFromDocument extracts a Build from a JSON:API document.
func buildFromDocument(doc *document) (Build, error) {
	if doc == nil || doc.Data == nil {
		return Build{}, fmt.Errorf("api: response missing build data")
	}
	attrs := doc.Data.Attributes
	return Build{
		ID:               doc.Data.ID,
		Number:           intAttr(attrs, "build-number"),
		State:            stringAttr(attrs, "state"),
		WebURL:           stringAttr(attrs, "web-url"),
		FailureReason:    stringAttr(attrs, "failure-reason"),
		TotalSnapshots:   intAttr(attrs, "total-snapshots"),
		TotalComparisons: intAttr(attrs, "total-comparisons"),
	}, nil
}

// snapshotFromDocument extracts a Snapshot from a JSON:API document.
func snapshotFromDocument(doc *document) (Snapshot, error) {
	if doc == nil || doc.Data == nil {
		return Snapshot{}, fmt.Errorf("api: response missing snapshot data")
	}
	return Snapshot{
		ID:   doc.Data.ID,
		Name: stringAttr(doc.Data.Attributes, "name"),
	}, nil
}

func stringAttr(attrs map[string]any, key string) string {
	if s, ok := attrs[key].(string); ok {
		return s
	}
	return ""
}

// intAttr reads a numeric attribute; JSON numbers decode as float64.
func intAttr(attrs map[string]any, key string) int {
	switch v := attrs[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}
