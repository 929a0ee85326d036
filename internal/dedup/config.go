// Package dedup finds likely-duplicate leads: it scores record pairs per
// field, aggregates pairwise matches, clusters transitively-linked matches
// into duplicate groups, and classifies each group's confidence.
package dedup

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-dedup/internal/model"
)

// Config holds the tunable thresholds and weights of a dedup scan. Band
// boundaries and field weights are configuration, not constants baked into
// call sites.
type Config struct {
	// MinSimilarity is the minimum overall pair similarity for two leads to
	// be linked into the same group.
	MinSimilarity int `mapstructure:"min_similarity"`

	// HighThreshold and MediumThreshold are inclusive lower bounds of the
	// "high" and "medium" bands. "exact" is always 100; anything between
	// MinSimilarity and MediumThreshold is "low".
	HighThreshold   int `mapstructure:"high_threshold"`
	MediumThreshold int `mapstructure:"medium_threshold"`

	// IdentifierWeight and NameWeight control the weighted aggregate when no
	// identifier field matches outright. Identifier evidence must outweigh
	// name evidence (>= 2x).
	IdentifierWeight int `mapstructure:"identifier_weight"`
	NameWeight       int `mapstructure:"name_weight"`
}

// DefaultConfig returns the default scan configuration.
func DefaultConfig() Config {
	return Config{
		MinSimilarity:    70,
		HighThreshold:    90,
		MediumThreshold:  70,
		IdentifierWeight: 2,
		NameWeight:       1,
	}
}

// Validate checks threshold ordering and weight sanity.
func (c Config) Validate() error {
	if c.MinSimilarity < 1 || c.MinSimilarity > 100 {
		return eris.New("dedup: min_similarity must be in 1..100")
	}
	if c.MediumThreshold < c.MinSimilarity {
		return eris.New("dedup: medium_threshold must be >= min_similarity")
	}
	if c.HighThreshold < c.MediumThreshold || c.HighThreshold > 100 {
		return eris.New("dedup: high_threshold must be between medium_threshold and 100")
	}
	if c.IdentifierWeight <= 0 || c.NameWeight <= 0 {
		return eris.New("dedup: weights must be positive")
	}
	if c.IdentifierWeight < 2*c.NameWeight {
		return eris.New("dedup: identifier_weight must be at least twice name_weight")
	}
	return nil
}

// Classify buckets a similarity score into its confidence band.
func (c Config) Classify(similarity int) model.MatchBand {
	switch {
	case similarity >= 100:
		return model.BandExact
	case similarity >= c.HighThreshold:
		return model.BandHigh
	case similarity >= c.MediumThreshold:
		return model.BandMedium
	default:
		return model.BandLow
	}
}

// weight returns the aggregation weight for a field kind.
func (c Config) weight(kind model.FieldKind) int {
	if kind.IsIdentifier() {
		return c.IdentifierWeight
	}
	return c.NameWeight
}
