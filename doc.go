// Package snapgate is the Go client SDK for the Snapgate visual-testing
// API, managing the build/snapshot lifecycle.
//
// Snapgate is designed as an SDK-first library: a [Client] is configured
// programmatically with functional options and drives builds through
// creation, resource upload, snapshotting, finalization, and completion
// polling.
//
// # Quick Start
//
//	c, err := snapgate.New(snapgate.WithToken(os.Getenv("SNAPGATE_TOKEN")))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	build, err := c.CreateBuild(ctx, snapgate.BuildOptions{Branch: "main"})
//	// upload resources and register snapshots ...
//	err = c.FinalizeBuild(ctx, build.ID)
//	final, err := c.WaitForBuild(ctx, build.ID, func(b snapgate.Build) {
//	    log.Printf("build %s: %s", b.ID, b.State)
//	})
//
// # Configuration
//
// The client uses the functional options pattern:
//
//	c, err := snapgate.New(
//	    snapgate.WithToken(token),
//	    snapgate.WithConcurrency(4),
//	    snapgate.WithPollInterval(2 * time.Second),
//	    snapgate.WithStalenessTimeout(5 * time.Minute),
//	)
//
// # Resource Uploads
//
// Resources are content-addressed artifacts identified by the SHA-256
// digest of their content. [Client.UploadResources] uploads them with
// bounded concurrency, skipping digests already uploaded in the session,
// and returns digests in submission order regardless of completion order.
//
// # Completion Polling
//
// [Client.WaitForBuild] polls the build on a fixed interval until it
// leaves the pending states. Its timeout measures staleness rather than
// total time: only a build whose observed state stops changing for the
// configured window fails the wait.
//
// # Architecture
//
// The SDK consists of several internal packages (under internal/):
//
//   - internal/pool: bounded-concurrency task pool with ordered results
//   - internal/wait: staleness-bounded completion poller
//   - internal/api: JSON:API transport for the REST service
//   - internal/ledger: per-session record of uploaded digests
//
// The internal packages are not part of the public API and may change
// without notice.
package snapgate
