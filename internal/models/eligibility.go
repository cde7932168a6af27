package models

// EligibilityResult is the deployability verdict for one unit
type EligibilityResult struct {
	Unit                    CandidateUnit `json:"unit"`
	HasEntryTarget          bool          `json:"has_entry_target"`
	HasRequiredDependencies bool          `json:"has_required_dependencies"`
	Missing                 []string      `json:"missing,omitempty"` // required names not found, sorted
}

// Deployable reports whether both checks passed
func (r EligibilityResult) Deployable() bool {
	return r.HasEntryTarget && r.HasRequiredDependencies
}
