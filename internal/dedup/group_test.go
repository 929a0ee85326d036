package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-dedup/internal/model"
)

func lead(id, name, email, phone, doc string) model.Lead {
	return model.Lead{ID: id, Name: name, Email: email, Phone: phone, DocumentID: doc}
}

func TestFindDuplicatesEmptyInput(t *testing.T) {
	assert.Empty(t, FindDuplicates(nil, DefaultConfig()))
	assert.Empty(t, FindDuplicates([]model.Lead{lead("1", "Maria", "m@x.com", "", "")}, DefaultConfig()))
}

func TestFindDuplicatesNoMatches(t *testing.T) {
	leads := []model.Lead{
		lead("1", "Maria Silva", "m@x.com", "11911111111", ""),
		lead("2", "Pedro Almeida", "p@y.com", "11922222222", ""),
	}
	assert.Empty(t, FindDuplicates(leads, DefaultConfig()), "no duplicates is an empty list, not an error")
}

func TestFindDuplicatesSameDocument(t *testing.T) {
	leads := []model.Lead{
		lead("1", "Maria Silva", "m@x.com", "", "11111111111"),
		lead("2", "Maria Silva", "maria@x.com", "", "11111111111"),
	}

	groups := FindDuplicates(leads, DefaultConfig())
	require.Len(t, groups, 1)
	g := groups[0]
	assert.Equal(t, model.BandExact, g.Band)
	assert.Equal(t, model.FieldDocument, g.PrimaryField)
	assert.ElementsMatch(t, []string{"1", "2"}, g.MemberIDs())
	assert.NotEmpty(t, g.ID)
}

func TestFindDuplicatesPhoneExactNameTypo(t *testing.T) {
	leads := []model.Lead{
		lead("3", "Joao Souza", "", "11999998888", ""),
		lead("4", "Joao Suoza", "", "11999998888", ""),
	}

	groups := FindDuplicates(leads, DefaultConfig())
	require.Len(t, groups, 1)
	g := groups[0]
	assert.Contains(t, []model.MatchBand{model.BandExact, model.BandHigh}, g.Band)
	assert.Equal(t, model.FieldPhone, g.PrimaryField)
}

func TestFindDuplicatesNameOnlyPair(t *testing.T) {
	leads := []model.Lead{
		lead("5", "Ana Paula", "", "", ""),
		lead("6", "Ana Paula Costa", "", "", ""),
	}

	// Below the default threshold the pair does not group at all.
	assert.Empty(t, FindDuplicates(leads, DefaultConfig()))

	cfg := DefaultConfig()
	cfg.MinSimilarity = 60
	groups := FindDuplicates(leads, cfg)
	require.Len(t, groups, 1)
	assert.Equal(t, model.BandLow, groups[0].Band)
	assert.Equal(t, model.FieldName, groups[0].PrimaryField)
}

func TestFindDuplicatesTransitiveClosure(t *testing.T) {
	// A-B share an email, B-C share a phone, A-C share nothing. All three
	// must land in one group even though A-C alone is below threshold.
	leads := []model.Lead{
		lead("a", "Carlos Lima", "c@x.com", "11911111111", ""),
		lead("b", "Carlos E Lima", "c@x.com", "11922222222", ""),
		lead("c", "Eduardo Lima", "e@y.com", "11922222222", ""),
	}

	cfg := DefaultConfig()
	require.Nil(t, func() *model.PairwiseMatch {
		m := Compare(leads[0], leads[2], cfg)
		if m != nil && m.Similarity >= cfg.MinSimilarity {
			return m
		}
		return nil
	}(), "precondition: A-C alone must not qualify")

	groups := FindDuplicates(leads, cfg)
	require.Len(t, groups, 1)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, groups[0].MemberIDs())
	assert.Len(t, groups[0].Members, 3, "groups larger than two keep every member")
}

func TestGroupSimilarityIsMinimumEdge(t *testing.T) {
	// A-B is an exact email match (100); B-C is a strong name match only.
	// The group must report the weaker edge, not the stronger one.
	leads := []model.Lead{
		lead("a", "Fernanda Rocha", "f@x.com", "", ""),
		lead("b", "Fernanda Rocha", "f@x.com", "11933333333", ""),
		lead("c", "Fernanda Rocho", "", "11933333333", ""),
	}

	groups := FindDuplicates(leads, DefaultConfig())
	require.Len(t, groups, 1)
	assert.Equal(t, 100, groups[0].Similarity, "both edges here are identifier matches")

	// Force a weaker second edge: drop C's phone so B-C rides on the name.
	leads[2].Phone = ""
	cfg := DefaultConfig()
	cfg.MinSimilarity = 30
	groups = FindDuplicates(leads, cfg)
	require.Len(t, groups, 1)
	assert.Less(t, groups[0].Similarity, 100, "group similarity is the minimum qualifying edge")
}

func TestGroupFieldsKeepHighestScorePerField(t *testing.T) {
	leads := []model.Lead{
		lead("a", "Paulo Mendes", "p@x.com", "", ""),
		lead("b", "Paulo Mendes", "p@x.com", "11944444444", ""),
		lead("c", "Paulo Mendez", "p@x.com", "", ""),
	}

	groups := FindDuplicates(leads, DefaultConfig())
	require.Len(t, groups, 1)

	byField := make(map[model.FieldKind]int)
	for _, fc := range groups[0].Fields {
		_, dup := byField[fc.Field]
		assert.False(t, dup, "fields are deduplicated per kind")
		byField[fc.Field] = fc.Similarity
	}
	assert.Equal(t, 100, byField[model.FieldEmail])
	assert.Equal(t, 100, byField[model.FieldName], "a-b name comparison is exact; the union keeps the highest score")
}

func TestGroupMembersOrderedByCreatedAt(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	older := lead("new", "Rita Farias", "r@x.com", "", "")
	older.CreatedAt = base.Add(time.Hour)
	newer := lead("old", "Rita Farias", "r@x.com", "", "")
	newer.CreatedAt = base

	groups := FindDuplicates([]model.Lead{older, newer}, DefaultConfig())
	require.Len(t, groups, 1)
	assert.Equal(t, "old", groups[0].Members[0].ID)
	assert.Equal(t, "new", groups[0].Members[1].ID)
}

func TestFindDuplicatesDoesNotMutateInput(t *testing.T) {
	leads := []model.Lead{
		lead("1", "Maria Silva", "m@x.com", "", ""),
		lead("2", "Maria Silva", "m@x.com", "", ""),
	}
	snapshot := make([]model.Lead, len(leads))
	copy(snapshot, leads)

	first := FindDuplicates(leads, DefaultConfig())
	second := FindDuplicates(leads, DefaultConfig())

	assert.Equal(t, snapshot, leads)
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Similarity, second[0].Similarity, "rescans over the same input are stable")
}

func TestComputeStats(t *testing.T) {
	groups := []model.DuplicateGroup{
		{Band: model.BandExact},
		{Band: model.BandExact},
		{Band: model.BandHigh},
		{Band: model.BandMedium},
		{Band: model.BandLow},
	}

	stats := ComputeStats(groups)
	assert.Equal(t, model.DuplicateStats{
		ExactMatches:     2,
		HighSimilarity:   1,
		MediumSimilarity: 1,
		LowSimilarity:    1,
		TotalGroups:      5,
	}, stats)
}

func TestComputeStatsRecomputesAfterFiltering(t *testing.T) {
	groups := []model.DuplicateGroup{
		{Band: model.BandExact},
		{Band: model.BandLow},
	}
	assert.Equal(t, 2, ComputeStats(groups).TotalGroups)

	filtered := groups[:1]
	stats := ComputeStats(filtered)
	assert.Equal(t, 1, stats.TotalGroups)
	assert.Equal(t, 0, stats.LowSimilarity)
}
