package model

type ProgressPhase string

const (
	PhaseFetching     ProgressPhase = "fetching"
	PhaseCategorising ProgressPhase = "categorising"
	PhaseAnalysing    ProgressPhase = "analysing"
	PhaseEnhancing    ProgressPhase = "enhancing"
	PhasePersisting   ProgressPhase = "persisting"
	PhaseDone         ProgressPhase = "done"
)

// Progress is one update emitted during a wallet analysis run.
type Progress struct {
	Phase   ProgressPhase  `json:"phase"`
	Message string         `json:"message"`
	Counts  map[string]int `json:"counts,omitempty"`
}
