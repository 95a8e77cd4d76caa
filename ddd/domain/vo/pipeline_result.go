package vo

// PipelineResult summarizes one pipeline run over an asset.
type PipelineResult struct {
	AssetUUID     string
	Status        AssetStatus
	HLSPath       string
	ThumbnailPath string
	Duration      float64
	Variants      []string
	// FailedStage names the fatal stage when Status is failed.
	FailedStage string
	// Warnings lists non-fatal stage failures (probe, thumbnail).
	Warnings []string
}

// Succeeded reports whether the run produced a playable asset.
func (r PipelineResult) Succeeded() bool {
	return r.Status == AssetStatusCompleted
}
