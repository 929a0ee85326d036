package dedup

import (
	"math"

	"github.com/sells-group/lead-dedup/internal/model"
	"github.com/sells-group/lead-dedup/internal/normalize"
	"github.com/sells-group/lead-dedup/internal/similarity"
)

// Compare evaluates every matchable field shared by two leads and aggregates
// the result into a single pairwise match. It returns nil when the leads are
// the same record or no field has a canonical value on both sides.
//
// A matching identifier field dominates: the pair scores 100 regardless of
// how the name compares. Otherwise the overall similarity is a weighted
// average that favors identifier fields, so "same document, misspelled name"
// stays high-confidence while "similar name, different everything else"
// stays low.
func Compare(a, b model.Lead, cfg Config) *model.PairwiseMatch {
	if a.ID == b.ID {
		return nil
	}

	var (
		fields        []model.FieldComparison
		weightedSum   int
		weightTotal   int
		identifierHit bool
	)

	for _, kind := range model.MatchFields {
		score, ok := similarity.Score(kind, normalize.Lead(a, kind), normalize.Lead(b, kind))
		if !ok {
			continue
		}
		fields = append(fields, model.FieldComparison{
			Field:      kind,
			Label:      kind.Label(),
			Similarity: score,
			Band:       cfg.Classify(score),
		})
		if kind.IsIdentifier() && score == 100 {
			identifierHit = true
		}
		w := cfg.weight(kind)
		weightedSum += score * w
		weightTotal += w
	}

	if len(fields) == 0 {
		return nil
	}

	overall := int(math.Round(float64(weightedSum) / float64(weightTotal)))
	if identifierHit {
		overall = 100
	}

	return &model.PairwiseMatch{
		LeadA:        a.ID,
		LeadB:        b.ID,
		Similarity:   overall,
		PrimaryField: primaryField(fields),
		Fields:       fields,
	}
}

// primaryField picks the field with the highest individual score. Fields
// arrive in precedence order, so a strict ">" comparison breaks ties toward
// document id > email > phone > name.
func primaryField(fields []model.FieldComparison) model.FieldKind {
	best := fields[0]
	for _, fc := range fields[1:] {
		if fc.Similarity > best.Similarity {
			best = fc
		}
	}
	return best.Field
}
