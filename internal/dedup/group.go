package dedup

import (
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/lead-dedup/internal/model"
)

// FindDuplicates scans an in-memory snapshot of leads and returns duplicate
// groups. Qualifying pairwise matches (overall similarity >= MinSimilarity)
// form the edges of a graph over leads; each connected component of two or
// more leads becomes one group.
//
// Transitive closure is deliberate: if A-B and B-C both clear the threshold,
// A, B, and C belong to one group for operator review even when A-C alone
// would not qualify. Splitting such chains produces fragmented review queues.
//
// The scan never mutates its input and is safe to re-run at any time.
func FindDuplicates(leads []model.Lead, cfg Config) []model.DuplicateGroup {
	uf := newUnionFind(len(leads))
	edges := make(map[int][]model.PairwiseMatch)

	for i := 0; i < len(leads); i++ {
		for j := i + 1; j < len(leads); j++ {
			match := Compare(leads[i], leads[j], cfg)
			if match == nil || match.Similarity < cfg.MinSimilarity {
				continue
			}
			uf.union(i, j)
			edges[i] = append(edges[i], *match)
		}
	}

	// Collect members and contributing edges per component root.
	memberIdx := make(map[int][]int)
	for i := range leads {
		root := uf.find(i)
		memberIdx[root] = append(memberIdx[root], i)
	}
	componentEdges := make(map[int][]model.PairwiseMatch)
	for i, matches := range edges {
		root := uf.find(i)
		componentEdges[root] = append(componentEdges[root], matches...)
	}

	var groups []model.DuplicateGroup
	for root, idxs := range memberIdx {
		if len(idxs) < 2 {
			continue
		}
		groups = append(groups, buildGroup(leads, idxs, componentEdges[root], cfg))
	}

	// Strongest groups first; member id as a stable tie-break.
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Similarity != groups[j].Similarity {
			return groups[i].Similarity > groups[j].Similarity
		}
		return groups[i].Members[0].ID < groups[j].Members[0].ID
	})

	zap.L().Debug("dedup: scan complete",
		zap.Int("leads", len(leads)),
		zap.Int("groups", len(groups)),
	)

	return groups
}

// buildGroup assembles one duplicate group from its member indexes and the
// qualifying edges inside the component.
//
// The group similarity is the minimum edge similarity — conservative on
// purpose, so loosely-chained groups never overstate confidence. The primary
// field comes from the strongest edge, and the field comparison list is the
// per-field maximum across all edges.
func buildGroup(leads []model.Lead, idxs []int, edges []model.PairwiseMatch, cfg Config) model.DuplicateGroup {
	members := make([]model.Lead, len(idxs))
	for i, idx := range idxs {
		members[i] = leads[idx]
	}
	sort.Slice(members, func(i, j int) bool {
		if !members[i].CreatedAt.Equal(members[j].CreatedAt) {
			return members[i].CreatedAt.Before(members[j].CreatedAt)
		}
		return members[i].ID < members[j].ID
	})

	minSim := 100
	strongest := edges[0]
	byField := make(map[model.FieldKind]model.FieldComparison)
	for _, e := range edges {
		if e.Similarity < minSim {
			minSim = e.Similarity
		}
		if e.Similarity > strongest.Similarity {
			strongest = e
		}
		for _, fc := range e.Fields {
			if cur, seen := byField[fc.Field]; !seen || fc.Similarity > cur.Similarity {
				byField[fc.Field] = fc
			}
		}
	}

	fields := make([]model.FieldComparison, 0, len(byField))
	for _, kind := range model.MatchFields {
		if fc, found := byField[kind]; found {
			fields = append(fields, fc)
		}
	}

	return model.DuplicateGroup{
		ID:           uuid.New().String(),
		Band:         cfg.Classify(minSim),
		Similarity:   minSim,
		PrimaryField: strongest.PrimaryField,
		Fields:       fields,
		Members:      members,
	}
}

// ComputeStats reduces a group set to per-band counts. It is pure and cheap:
// callers recompute it whenever the group set changes instead of mutating a
// stored copy, so the counts can never drift from the groups.
func ComputeStats(groups []model.DuplicateGroup) model.DuplicateStats {
	stats := model.DuplicateStats{TotalGroups: len(groups)}
	for _, g := range groups {
		switch g.Band {
		case model.BandExact:
			stats.ExactMatches++
		case model.BandHigh:
			stats.HighSimilarity++
		case model.BandMedium:
			stats.MediumSimilarity++
		case model.BandLow:
			stats.LowSimilarity++
		}
	}
	return stats
}

// unionFind is a disjoint-set over lead indexes with path compression.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

func (u *unionFind) union(i, j int) {
	ri, rj := u.find(i), u.find(j)
	if ri != rj {
		u.parent[rj] = ri
	}
}
