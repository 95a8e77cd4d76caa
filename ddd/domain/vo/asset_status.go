package vo

// AssetStatus is the processing state of a video asset.
type AssetStatus string

const (
	// AssetStatusPending awaiting pipeline pickup
	AssetStatusPending AssetStatus = "pending"
	// AssetStatusProcessing pipeline running
	AssetStatusProcessing AssetStatus = "processing"
	// AssetStatusCompleted all artifacts produced
	AssetStatusCompleted AssetStatus = "completed"
	// AssetStatusFailed pipeline aborted on a fatal stage
	AssetStatusFailed AssetStatus = "failed"
)

// IsValid reports whether the status is a known value.
func (s AssetStatus) IsValid() bool {
	switch s {
	case AssetStatusPending, AssetStatusProcessing, AssetStatusCompleted, AssetStatusFailed:
		return true
	default:
		return false
	}
}

func (s AssetStatus) String() string {
	return string(s)
}

// IsFinalStatus reports whether the pipeline has finished with this asset.
// Both final states remain retryable.
func (s AssetStatus) IsFinalStatus() bool {
	return s == AssetStatusCompleted || s == AssetStatusFailed
}

// CanTransitionTo checks a status transition. Retries re-enter processing
// from failed, and a retry that finds intact artifacts or a missing original
// may finalize without passing through processing again. A run that crashed
// mid-flight leaves the asset at processing, so processing re-enters itself.
// Completed is sticky: it can only ever re-complete, never regress.
func (s AssetStatus) CanTransitionTo(target AssetStatus) bool {
	switch s {
	case AssetStatusPending:
		return target == AssetStatusProcessing || target == AssetStatusFailed
	case AssetStatusProcessing:
		return target == AssetStatusProcessing || target == AssetStatusCompleted || target == AssetStatusFailed
	case AssetStatusFailed:
		return target == AssetStatusProcessing || target == AssetStatusCompleted || target == AssetStatusFailed
	case AssetStatusCompleted:
		return target == AssetStatusCompleted
	default:
		return false
	}
}
