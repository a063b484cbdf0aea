/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: types.go
Description: Core types for drawable resource resolution. Defines resource locations, lookup traces,
and the labels used to rank candidate images found through XML descriptor indirections.
*/

package resources

import "fmt"

// Kind tells whether a location points at a bitmap or at an XML descriptor
type Kind string

const (
	KindImage Kind = "image"
	KindXML   Kind = "xml"
)

// Labels assigned while resolving a drawable name
const (
	LabelDirect    = "direct"
	LabelFirst     = "first"
	LabelLater     = "later"
	LabelSecond    = "second"
	LabelChosen    = "chosen"
	LabelCandidate = "candidate"

	buttonPrefix = "btn_"
	targetSuffix = "_target"
)

// ButtonLabel returns the label of a selector state with attrCount attributes
func ButtonLabel(attrCount int, target bool) string {
	label := fmt.Sprintf("%s%d", buttonPrefix, attrCount)
	if target {
		label += targetSuffix
	}
	return label
}

// ResourceLocation is a single step of a lookup: a file relative to the app root
// together with its kind and disambiguation label. Values are never mutated in place.
type ResourceLocation struct {
	RelativePath string `json:"relative_path"`
	Kind         Kind   `json:"kind"`
	Label        string `json:"label"`
}

// LookupTrace is the path taken to reach one terminal location. The outermost XML
// descriptor comes first and the terminal location is always the last element.
type LookupTrace []ResourceLocation

// Leaf returns the terminal location of the trace
func (t LookupTrace) Leaf() ResourceLocation {
	if len(t) == 0 {
		return ResourceLocation{}
	}
	return t[len(t)-1]
}

// Label returns the label of the terminal location
func (t LookupTrace) Label() string {
	return t.Leaf().Label
}

// WithLabel returns a copy of the trace whose terminal location carries label
func (t LookupTrace) WithLabel(label string) LookupTrace {
	out := make(LookupTrace, len(t))
	copy(out, t)
	if len(out) > 0 {
		out[len(out)-1].Label = label
	}
	return out
}

// Prepend returns a copy of the trace with loc in front of it
func (t LookupTrace) Prepend(loc ResourceLocation) LookupTrace {
	out := make(LookupTrace, 0, len(t)+1)
	out = append(out, loc)
	return append(out, t...)
}

// Labels lists every label of the trace, outermost first
func (t LookupTrace) Labels() []string {
	labels := make([]string, len(t))
	for i, loc := range t {
		labels[i] = loc.Label
	}
	return labels
}

func relabel(traces []LookupTrace, label string) []LookupTrace {
	out := make([]LookupTrace, len(traces))
	for i, trace := range traces {
		out[i] = trace.WithLabel(label)
	}
	return out
}
