package domain

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Well-known host fields.
const (
	FieldAllExperiments    = "allExperiments"
	FieldActiveExperiments = "activeExperiments"
	FieldAllVariations     = "allVariations"
	FieldVariationMap      = "variationMap"
	FieldVariationNamesMap = "variationNamesMap"
	FieldVariationIDsMap   = "variationIdsMap"
)

// Fields lists every field the facade reads, in a stable order.
var Fields = []string{
	FieldAllExperiments,
	FieldActiveExperiments,
	FieldAllVariations,
	FieldVariationMap,
	FieldVariationNamesMap,
	FieldVariationIDsMap,
}

// Experiment is a host-registered experiment.
// Names are not guaranteed to be unique across experiments.
type Experiment struct {
	ID      string         `json:"id,omitempty" yaml:"id" mapstructure:"id"`
	Name    string         `json:"name" yaml:"name" mapstructure:"name"`
	Enabled bool           `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Extra   map[string]any `json:"extra,omitempty" yaml:"extra,omitempty" mapstructure:",remain"`
}

// Variation is an alternative served for an experiment.
type Variation struct {
	ID    string         `json:"id,omitempty" yaml:"id" mapstructure:"id"`
	Name  string         `json:"name" yaml:"name" mapstructure:"name"`
	Code  string         `json:"code,omitempty" yaml:"code,omitempty" mapstructure:"code"`
	Extra map[string]any `json:"extra,omitempty" yaml:"extra,omitempty" mapstructure:",remain"`
}

// Experiments maps experiment IDs to experiments, preserving the order in
// which the host registered them.
type Experiments = orderedmap.OrderedMap[string, Experiment]

// NewExperiments builds an ordered mapping from the given experiments.
// Later entries with a duplicate ID replace earlier ones in place.
func NewExperiments(experiments ...Experiment) *Experiments {
	m := orderedmap.New[string, Experiment]()
	for _, exp := range experiments {
		m.Set(exp.ID, exp)
	}
	return m
}
