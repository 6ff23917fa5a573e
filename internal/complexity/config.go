package complexity

// Weights holds the per-factor weight used to combine the seven [0,1]
// factor scores into the overall complexity score. These are
// configuration, not code constants, per the routing core's design.
type Weights struct {
	Length         float64
	TechnicalTerms float64
	MultiStep      float64
	Creative       float64
	Analytical     float64
	CodeGeneration float64
	Reasoning      float64
}

// Saturations holds the per-factor observed-count that maps to a factor
// score of 1.0 (clamped above).
type Saturations struct {
	LengthWords        float64
	TechnicalTermHits   float64
	MultiStepHits       float64
	CreativeHits        float64
	AnalyticalHits      float64
	CodeGenerationHits  float64
	ReasoningHits       float64
}

// Thresholds holds the upper bound (inclusive) of the overall score for
// each complexity tier below very_complex.
type Thresholds struct {
	Simple   float64
	Moderate float64
	Complex  float64
}

// Config configures the complexity analyzer. DefaultConfig reproduces
// the weights, saturations, and thresholds table from the routing
// core's specification.
type Config struct {
	Weights      Weights
	Saturations  Saturations
	Thresholds   Thresholds
	CacheSize    int
	CostBaselineUSDPer1K float64
}

// DefaultConfig returns the specification's default weights,
// saturations, and tier thresholds.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Length:         0.20,
			TechnicalTerms: 0.15,
			MultiStep:      0.20,
			Creative:       0.10,
			Analytical:     0.15,
			CodeGeneration: 0.10,
			Reasoning:      0.10,
		},
		Saturations: Saturations{
			LengthWords:        1000,
			TechnicalTermHits:  10,
			MultiStepHits:      5,
			CreativeHits:       3,
			AnalyticalHits:     3,
			CodeGenerationHits: 5,
			ReasoningHits:      4,
		},
		Thresholds: Thresholds{
			Simple:   0.25,
			Moderate: 0.50,
			Complex:  0.75,
		},
		CacheSize:            2000,
		CostBaselineUSDPer1K: 0.002,
	}
}
