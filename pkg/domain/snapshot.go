package domain

// Snapshot is a read-only copy of every host field the facade understands.
type Snapshot struct {
	Available         bool                 `json:"available"`
	AllExperiments    []Experiment         `json:"allExperiments"`
	ActiveExperiments []string             `json:"activeExperiments"`
	AllVariations     map[string]Variation `json:"allVariations"`
	VariationMap      map[string]any       `json:"variationMap"`
	VariationNamesMap map[string]string    `json:"variationNamesMap"`
	VariationIDsMap   map[string][]string  `json:"variationIdsMap"`
}
