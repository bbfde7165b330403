package domain

// SyncOutcome is the final state of one package after sync.
type SyncOutcome string

const (
	SyncUpToDate         SyncOutcome = "UP_TO_DATE"
	SyncSynced           SyncOutcome = "SYNCED"
	SyncConflict         SyncOutcome = "CONFLICT"
	SyncDirty            SyncOutcome = "DIRTY"
	SyncAhead            SyncOutcome = "AHEAD"
	SyncError            SyncOutcome = "ERROR"
	SyncSkipped          SyncOutcome = "SKIPPED"
	SyncDryWouldSync     SyncOutcome = "DRY_WOULD_SYNC"
	SyncDryWouldConflict SyncOutcome = "DRY_WOULD_CONFLICT"
	SyncDryDirty         SyncOutcome = "DRY_DIRTY"
)

// PkgSyncResult describes what sync did to one package.
type PkgSyncResult struct {
	Name          string
	SrcType       SourceType
	Path          string
	Outcome       SyncOutcome
	Branch        string
	OldCommit     string
	NewCommit     string
	CommitsBehind int
	CommitsAhead  int
	ConflictFiles []string
	DirtyFiles    []string
	NextSteps     []string
	Error         string
	SkippedReason string
}

// Failed reports whether the result must produce a non-zero exit.
func (r *PkgSyncResult) Failed() bool {
	return r.Outcome == SyncError
}
