package model

// SnapshotStatus is the lifecycle state carried by a streamed snapshot.
type SnapshotStatus string

const (
	StatusProcessing SnapshotStatus = "processing"
	StatusSuccess    SnapshotStatus = "success"
	StatusError      SnapshotStatus = "error"
)

// Wire stage numbers. Indices increase over one request; SystemErrorStage is
// the single exception, signalling total abort rather than progress.
const (
	StageExtract   = 1
	StageResolve   = 2
	StageBaseInfo  = 3
	StageLocation  = 4
	StageEcosystem = 5
	StageFinancial = 6
	StageSynthesis = 7
	StageComplete  = 8

	SystemErrorStage = -1
)

// Snapshot is one NDJSON emission of the progressive stream. Within a
// request, snapshots carry monotonically increasing stage numbers and each
// Data view is a field-wise superset of the previous non-error view.
type Snapshot struct {
	Stage   int            `json:"stage"`
	Status  SnapshotStatus `json:"status"`
	Message string         `json:"message"`
	Data    *View          `json:"data"`
}

// Terminal reports whether the snapshot ends the stream.
func (s Snapshot) Terminal() bool {
	return s.Status == StatusError || s.Stage == StageComplete
}
