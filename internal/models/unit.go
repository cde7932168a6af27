package models

import "path"

// CandidateUnit is a buildable unit found by the workspace scanner
type CandidateUnit struct {
	Name           string `json:"name"`        // package.name from the manifest
	ManifestPath   string `json:"manifest"`    // slash-separated, relative to the scan root
	EntryPointPath string `json:"entry_point"` // <dir>/src/main.rs, relative to the scan root
}

// Dir returns the unit's directory relative to the scan root
func (u CandidateUnit) Dir() string {
	return path.Dir(u.ManifestPath)
}

// String identifies the unit in log output
func (u CandidateUnit) String() string {
	return u.Name + " (" + u.ManifestPath + ")"
}
