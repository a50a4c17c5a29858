// Package config holds the feature flags consulted by transforms and the
// project configuration read by the CLI.
package config

import "strings"

// FeatureFlags gate optional or staged-rollout transforms.
type FeatureFlags struct {
	// EnableRequiredTransformForPrefix enables the required-directive
	// transform for definitions whose name starts with the prefix. Nil
	// disables it; the empty string matches every definition.
	EnableRequiredTransformForPrefix *string `yaml:"enable_required_transform_for_prefix,omitempty" toml:"enable_required_transform_for_prefix,omitempty" json:"enable_required_transform_for_prefix,omitempty"`

	// EnableFlightTransform toggles an unrelated experimental transform.
	// It is carried through the pipeline but no stage reads it.
	EnableFlightTransform bool `yaml:"enable_flight_transform,omitempty" toml:"enable_flight_transform,omitempty" json:"enable_flight_transform,omitempty"`
}

// Prefix returns a pointer to s for use in FeatureFlags literals.
func Prefix(s string) *string {
	return &s
}

// RequiredTransformEnabled reports whether the prefix option is present.
func (f FeatureFlags) RequiredTransformEnabled() bool {
	return f.EnableRequiredTransformForPrefix != nil
}

// RequiredTransformApplies reports whether the transform runs on the
// definition called name.
func (f FeatureFlags) RequiredTransformApplies(name string) bool {
	if f.EnableRequiredTransformForPrefix == nil {
		return false
	}
	return strings.HasPrefix(name, *f.EnableRequiredTransformForPrefix)
}

// Canonical returns the flags as a plain map for hashing. An absent prefix
// is omitted, so it never collides with an empty one.
func (f FeatureFlags) Canonical() map[string]any {
	out := map[string]any{"enable_flight_transform": f.EnableFlightTransform}
	if f.EnableRequiredTransformForPrefix != nil {
		out["enable_required_transform_for_prefix"] = *f.EnableRequiredTransformForPrefix
	}
	return out
}
