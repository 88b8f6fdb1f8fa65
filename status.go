package snapgate

// BuildState represents the lifecycle state of a build on the server.
//
// BuildState is a string type that can hold one of the predefined values
// below. Using a string type allows easy JSON serialization and
// human-readable logging while maintaining type safety through the
// defined constants.
type BuildState string

const (
	// StatePending indicates the build has been created but processing
	// has not started. An empty or unrecognized state is treated the
	// same way by [Client.WaitForBuild].
	StatePending BuildState = "pending"

	// StateProcessing indicates the server is actively processing the
	// build's snapshots and comparisons.
	StateProcessing BuildState = "processing"

	// StateFinished indicates processing completed successfully.
	StateFinished BuildState = "finished"

	// StateFailed indicates processing ended with an error; the build's
	// FailureReason describes why.
	StateFailed BuildState = "failed"

	// StateExpired indicates the build was abandoned before finalization
	// and reclaimed by the server.
	StateExpired BuildState = "expired"
)

// String returns the string representation of the state.
// This implements the fmt.Stringer interface.
func (s BuildState) String() string {
	return string(s)
}

// Pending reports whether the state is a recognized in-progress marker.
// The empty state counts as pending: a build whose state has not yet been
// observed is still in its unknown/initial sub-state.
func (s BuildState) Pending() bool {
	switch s {
	case "", StatePending, StateProcessing:
		return true
	}
	return false
}

// Terminal reports whether the state ends the build's lifecycle.
// Terminal is the negation of [BuildState.Pending]: any state other than
// the recognized pending markers is treated as terminal.
func (s BuildState) Terminal() bool {
	return !s.Pending()
}

// Build is the observed snapshot of a build's server-side state.
//
// Build is a plain value: two observations compare structurally, which is
// how [Client.WaitForBuild] detects genuine progress between polls.
type Build struct {
	// ID is the server-assigned build identifier.
	ID string

	// Number is the sequential build number within the project.
	Number int

	// State is the build's current lifecycle state.
	State BuildState

	// WebURL links to the build in the Snapgate web UI.
	WebURL string

	// FailureReason describes why a failed build failed. Empty unless
	// State is [StateFailed].
	FailureReason string

	// TotalSnapshots is the number of snapshots registered so far.
	TotalSnapshots int

	// TotalComparisons is the number of comparisons processed so far.
	TotalComparisons int
}
