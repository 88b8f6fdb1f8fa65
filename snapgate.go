package snapgate

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/mhollis/snapgate/internal/api"
	"github.com/mhollis/snapgate/internal/ledger"
	"github.com/mhollis/snapgate/internal/pool"
	"github.com/mhollis/snapgate/internal/wait"
)

// Version is the SDK version reported in the User-Agent header.
const Version = "0.3.0"

const (
	defaultBaseURL          = "https://api.snapgate.io/v1"
	defaultConcurrency      = 2
	defaultPollInterval     = 1 * time.Second
	defaultStalenessTimeout = 10 * time.Minute
	defaultHTTPTimeout      = 30 * time.Second
)

// Client is the entry point for the Snapgate build/snapshot lifecycle.
//
// A Client is created with [New] using functional options and drives one
// or more builds through their lifecycle:
//
//	c, err := snapgate.New(snapgate.WithToken(os.Getenv("SNAPGATE_TOKEN")))
//	if err != nil {
//	    slog.Error("failed to create client", "error", err)
//	    os.Exit(1)
//	}
//
//	build, _ := c.CreateBuild(ctx, snapgate.BuildOptions{Branch: "main"})
//	c.UploadResources(ctx, build.ID, resources)
//	c.CreateSnapshot(ctx, build.ID, snap)
//	c.FinalizeBuild(ctx, build.ID)
//	final, _ := c.WaitForBuild(ctx, build.ID, nil)
//
// A Client is safe for concurrent use.
type Client struct {
	api              *api.Client
	uploads          *ledger.Ledger
	concurrency      int
	pollInterval     time.Duration
	stalenessTimeout time.Duration
	logger           *slog.Logger
}

// BuildOptions are the caller-supplied attributes for [Client.CreateBuild].
// All fields are optional; the server fills in what it can from the
// project configuration.
type BuildOptions struct {
	// Branch is the VCS branch this build belongs to.
	Branch string

	// CommitSHA is the VCS commit under test.
	CommitSHA string

	// PullRequestNumber associates the build with a pull request.
	PullRequestNumber int
}

// SnapshotOptions describe one named snapshot within a build.
type SnapshotOptions struct {
	// Name uniquely identifies the snapshot within its build.
	Name string

	// Widths are the viewport widths, in pixels, to render at.
	Widths []int

	// MinHeight is the minimum render height in pixels.
	MinHeight int

	// Resources are the content-addressed artifacts this snapshot
	// references. Exactly one should be marked as root.
	Resources []Resource
}

// New creates a [Client] with the given options.
//
// A token is required via [WithToken]. Other options have sensible
// defaults:
//   - Base URL: the hosted Snapgate API
//   - Upload concurrency: 2
//   - Poll interval: 1 second
//   - Staleness timeout: 10 minutes
//   - HTTP timeout: 30 seconds
//
// Returns an error if the token is missing or any option is invalid.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		baseURL:          defaultBaseURL,
		concurrency:      defaultConcurrency,
		pollInterval:     defaultPollInterval,
		stalenessTimeout: defaultStalenessTimeout,
		httpTimeout:      defaultHTTPTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.token == "" {
		return nil, errors.New("an API token is required (use WithToken)")
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	userAgent := "snapgate-go/" + Version
	return &Client{
		api:              api.NewClient(cfg.baseURL, cfg.token, cfg.httpTimeout, userAgent, logger),
		uploads:          ledger.New(),
		concurrency:      cfg.concurrency,
		pollInterval:     cfg.pollInterval,
		stalenessTimeout: cfg.stalenessTimeout,
		logger:           logger,
	}, nil
}

// CreateBuild registers a new build on the server.
func (c *Client) CreateBuild(ctx context.Context, opts BuildOptions) (Build, error) {
	b, err := c.api.CreateBuild(ctx, api.BuildAttributes{
		Branch:            opts.Branch,
		CommitSHA:         opts.CommitSHA,
		PullRequestNumber: opts.PullRequestNumber,
	})
	if err != nil {
		return Build{}, fmt.Errorf("creating build: %w", err)
	}
	build := buildFromAPI(b)
	c.logger.Info("build created",
		"build_id", build.ID,
		"build_number", build.Number,
		"url", build.WebURL,
	)
	return build, nil
}

// GetBuild fetches the current state of a build.
func (c *Client) GetBuild(ctx context.Context, buildID string) (Build, error) {
	b, err := c.api.GetBuild(ctx, buildID)
	if err != nil {
		return Build{}, fmt.Errorf("fetching build %s: %w", buildID, err)
	}
	return buildFromAPI(b), nil
}

// FinalizeBuild marks a build complete, letting server-side processing
// begin. Call it after all snapshots and resources are uploaded.
func (c *Client) FinalizeBuild(ctx context.Context, buildID string) error {
	if err := c.api.FinalizeBuild(ctx, buildID); err != nil {
		return fmt.Errorf("finalizing build %s: %w", buildID, err)
	}
	c.logger.Info("build finalized", "build_id", buildID)
	return nil
}

// CreateSnapshot registers a snapshot within a build and uploads any of
// its resources the server has not seen in this session.
func (c *Client) CreateSnapshot(ctx context.Context, buildID string, opts SnapshotOptions) error {
	if opts.Name == "" {
		return errors.New("snapshot name cannot be empty")
	}

	if _, err := c.UploadResources(ctx, buildID, opts.Resources); err != nil {
		return err
	}

	refs := make([]api.ResourceRef, len(opts.Resources))
	for i, r := range opts.Resources {
		refs[i] = api.ResourceRef{
			Digest:   r.Digest(),
			URL:      r.URL(),
			Mimetype: r.Mimetype(),
			Root:     r.Root(),
		}
	}

	snap, err := c.api.CreateSnapshot(ctx, buildID, api.SnapshotAttributes{
		Name:      opts.Name,
		Widths:    opts.Widths,
		MinHeight: opts.MinHeight,
	}, refs)
	if err != nil {
		return fmt.Errorf("creating snapshot %q: %w", opts.Name, err)
	}

	c.logger.Info("snapshot created",
		"build_id", buildID,
		"snapshot_id", snap.ID,
		"name", opts.Name,
		"resources", len(refs),
	)
	return nil
}

// UploadResources uploads resources for a build with bounded concurrency,
// returning their digests in submission order.
//
// At most the configured concurrency limit of uploads is in flight at any
// instant. Digests already uploaded in this client session are skipped.
// If any upload fails, the first failure is returned; uploads already in
// flight run to completion (resource uploads are idempotent), but no new
// ones are started.
func (c *Client) UploadResources(ctx context.Context, buildID string, resources []Resource) ([]string, error) {
	if len(resources) == 0 {
		return nil, nil
	}

	var tasks iter.Seq[pool.Task[string]] = func(yield func(pool.Task[string]) bool) {
		for _, r := range resources {
			r := r
			task := func(ctx context.Context) (string, error) {
				digest := r.Digest()
				if c.uploads.Uploaded(digest) {
					c.logger.Debug("resource already uploaded, skipping",
						"build_id", buildID,
						"digest", digest,
					)
					return digest, nil
				}
				if err := c.api.UploadResource(ctx, buildID, digest, r.Content()); err != nil {
					return "", fmt.Errorf("uploading resource %s: %w", r.URL(), err)
				}
				c.uploads.MarkUploaded(digest)
				c.logger.Debug("resource uploaded",
					"build_id", buildID,
					"url", r.URL(),
					"digest", digest,
				)
				return digest, nil
			}
			if !yield(task) {
				return
			}
		}
	}

	digests, err := pool.Run(ctx, tasks, c.concurrency)
	if err != nil {
		return nil, err
	}

	c.logger.Info("resources uploaded",
		"build_id", buildID,
		"count", len(digests),
	)
	return digests, nil
}

// WaitForBuild polls a build until it reaches a terminal state, invoking
// onProgress (if non-nil) on every observed change.
//
// The wait fails if a fetch fails or if the build's observed state stops
// changing for longer than the configured staleness timeout; slow builds
// that keep reporting progress never time out. onProgress is guaranteed
// to be invoked at least once before a successful return, and panics
// inside it are recovered and logged rather than propagated.
func (c *Client) WaitForBuild(ctx context.Context, buildID string, onProgress func(Build)) (Build, error) {
	c.logger.Info("waiting for build",
		"build_id", buildID,
		"poll_interval", c.pollInterval.String(),
		"staleness_timeout", c.stalenessTimeout.String(),
	)

	fetch := func(ctx context.Context) (Build, error) {
		b, err := c.api.GetBuild(ctx, buildID)
		if err != nil {
			return Build{}, err
		}
		return buildFromAPI(b), nil
	}

	var progress func(Build)
	if onProgress != nil {
		progress = func(b Build) {
			c.invokeProgressSafe(onProgress, b)
		}
	}

	final, err := wait.Wait(ctx, fetch, wait.Options[Build]{
		Interval:   c.pollInterval,
		Timeout:    c.stalenessTimeout,
		IsPending:  func(b Build) bool { return b.State.Pending() },
		OnProgress: progress,
	})
	if err != nil {
		return Build{}, fmt.Errorf("waiting for build %s: %w", buildID, err)
	}

	c.logger.Info("build completed",
		"build_id", buildID,
		"state", final.State.String(),
		"snapshots", final.TotalSnapshots,
		"comparisons", final.TotalComparisons,
	)
	return final, nil
}

// Close releases the client's idle HTTP connections.
func (c *Client) Close() {
	c.api.Close()
}

// invokeProgressSafe calls a progress callback with panic recovery.
// Panics are logged with a correlation ID but do not propagate into the
// polling loop.
func (c *Client) invokeProgressSafe(cb func(Build), build Build) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			c.logger.Error("progress callback panicked",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
				"build_id", build.ID,
			)
		}
	}()
	cb(build)
}

// buildFromAPI converts the transport representation into the public type.
func buildFromAPI(b api.Build) Build {
	return Build{
		ID:               b.ID,
		Number:           b.Number,
		State:            BuildState(b.State),
		WebURL:           b.WebURL,
		FailureReason:    b.FailureReason,
		TotalSnapshots:   b.TotalSnapshots,
		TotalComparisons: b.TotalComparisons,
	}
}
