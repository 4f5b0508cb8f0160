package entities

const (
	// ChangeThreshold is the similarity below which a frame counts as changed.
	ChangeThreshold = 0.6

	// FirstFrameScore is reported when there is no previous frame to compare with.
	FirstFrameScore = 0.2
)

// ComparisonResult is the outcome of comparing a frame against its predecessor
type ComparisonResult struct {
	HasChanged      bool    `json:"has_changed"`
	SimilarityScore float64 `json:"similarity_score"`
}

// FirstFrameResult is the fixed result used when no baseline frame exists
func FirstFrameResult() ComparisonResult {
	return ComparisonResult{
		HasChanged:      true,
		SimilarityScore: FirstFrameScore,
	}
}

// Classify turns a similarity score into a result. The comparison is strict,
// so a score equal to ChangeThreshold is unchanged.
func Classify(score float64) ComparisonResult {
	return ComparisonResult{
		HasChanged:      score < ChangeThreshold,
		SimilarityScore: score,
	}
}
