package types

// Weights holds the scoring weights of the composite assignment score.
//
// Each component score is normalized to [0, 1] before weighting, so with
// weights summing to 1.0 the composite score is also in [0, 1].
type Weights struct {
	// Timezone weights the barycentric timezone fit component.
	Timezone float64 `yaml:"timezone"`

	// Skill weights the skill overlap ratio component.
	Skill float64 `yaml:"skill"`

	// Level weights the seniority fit component.
	Level float64 `yaml:"level"`

	// Portfolio weights the portfolio continuity component.
	Portfolio float64 `yaml:"portfolio"`

	// Preference weights the desired-program bonus component.
	Preference float64 `yaml:"preference"`
}

// Sum returns the total of all weight components.
func (w Weights) Sum() float64 {
	return w.Timezone + w.Skill + w.Level + w.Portfolio + w.Preference
}
