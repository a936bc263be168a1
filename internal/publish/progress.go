package publish

// Stage names one state of the commit pipeline.
type Stage string

const (
	StageIdle            Stage = "idle"
	StageFetchingRef     Stage = "fetching_ref"
	StageUploadingAssets Stage = "uploading_assets"
	StageBuildingTree    Stage = "building_tree"
	StageCreatingCommit  Stage = "creating_commit"
	StageUpdatingRef     Stage = "updating_ref"
	StageSucceeded       Stage = "succeeded"
	StageFailed          Stage = "failed"
)

// Event is one structured stage-transition notification. On failure, Err
// carries the terminal error (already naming the failed stage) and Stage is
// StageFailed.
type Event struct {
	Stage Stage
	Err   error
}

// Observer consumes progress events. The pipeline core never renders
// anything itself; UI adapters translate events into notifications.
type Observer func(Event)
