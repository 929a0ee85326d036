package model

import "time"

// FieldKind identifies a matchable lead field. The set is closed: matching
// logic switches over these values and precedence ordering depends on them.
type FieldKind string

const (
	FieldDocument FieldKind = "document"
	FieldEmail    FieldKind = "email"
	FieldPhone    FieldKind = "phone"
	FieldName     FieldKind = "name"

	// Auxiliary fields carry no identity evidence; they participate in
	// merging but never in matching.
	FieldCompany FieldKind = "company"
	FieldNotes   FieldKind = "notes"
)

// MatchFields lists the matchable field kinds in precedence order
// (strongest identity evidence first). Ties between equal field scores
// are broken by this order.
var MatchFields = []FieldKind{FieldDocument, FieldEmail, FieldPhone, FieldName}

// MergeFields lists every field a merge resolves, matchable fields first.
var MergeFields = []FieldKind{FieldDocument, FieldEmail, FieldPhone, FieldName, FieldCompany, FieldNotes}

// Precedence returns the tie-break rank of a field kind; lower is stronger.
func (k FieldKind) Precedence() int {
	for i, f := range MatchFields {
		if f == k {
			return i
		}
	}
	return len(MatchFields)
}

// Label returns the display label for a field kind.
func (k FieldKind) Label() string {
	switch k {
	case FieldDocument:
		return "Document ID"
	case FieldEmail:
		return "Email"
	case FieldPhone:
		return "Phone"
	case FieldName:
		return "Name"
	case FieldCompany:
		return "Company"
	case FieldNotes:
		return "Notes"
	default:
		return string(k)
	}
}

// IsIdentifier reports whether the field is an exact-identifier field.
// Identifier fields score all-or-nothing: partial identifier overlap is not
// evidence of identity.
func (k FieldKind) IsIdentifier() bool {
	return k == FieldDocument || k == FieldEmail || k == FieldPhone
}

// Lead is a person/lead record as supplied by the repository. It is an
// immutable input to the dedup engine; the engine never mutates it.
type Lead struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	DocumentID string    `json:"document_id,omitempty"`
	Company    string    `json:"company,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Field returns the raw value of a matchable field.
func (l Lead) Field(k FieldKind) string {
	switch k {
	case FieldDocument:
		return l.DocumentID
	case FieldEmail:
		return l.Email
	case FieldPhone:
		return l.Phone
	case FieldName:
		return l.Name
	case FieldCompany:
		return l.Company
	case FieldNotes:
		return l.Notes
	default:
		return ""
	}
}

// MatchBand is a named confidence bucket derived from a similarity score.
type MatchBand string

const (
	BandExact  MatchBand = "exact"
	BandHigh   MatchBand = "high"
	BandMedium MatchBand = "medium"
	BandLow    MatchBand = "low"
)

// FieldComparison is the similarity evaluation of one field across a
// candidate pair.
type FieldComparison struct {
	Field      FieldKind `json:"field"`
	Label      string    `json:"label"`
	Similarity int       `json:"similarity"`
	Band       MatchBand `json:"band"`
}

// PairwiseMatch is the similarity evaluation between exactly two leads.
// Produced during a scan and discarded after grouping.
type PairwiseMatch struct {
	LeadA        string            `json:"lead_a"`
	LeadB        string            `json:"lead_b"`
	Similarity   int               `json:"similarity"`
	PrimaryField FieldKind         `json:"primary_field"`
	Fields       []FieldComparison `json:"fields"`
}

// DuplicateGroup is a cluster of two or more leads connected by a chain of
// pairwise matches at or above the minimum similarity threshold. Every member
// is reachable from every other member through qualifying edges, even when a
// non-adjacent pair inside the group falls below the threshold on its own.
type DuplicateGroup struct {
	ID           string            `json:"id"`
	Band         MatchBand         `json:"band"`
	Similarity   int               `json:"similarity"`
	PrimaryField FieldKind         `json:"primary_field"`
	Fields       []FieldComparison `json:"fields"`
	Members      []Lead            `json:"members"`
}

// MemberIDs returns the ids of all group members in display order.
func (g DuplicateGroup) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}
	return ids
}

// HasMember reports whether the lead id belongs to the group.
func (g DuplicateGroup) HasMember(id string) bool {
	for _, m := range g.Members {
		if m.ID == id {
			return true
		}
	}
	return false
}

// DuplicateStats aggregates group counts per band. It is a pure function of a
// group set and is recomputed whenever the set changes, never stored.
type DuplicateStats struct {
	ExactMatches     int `json:"exact_matches"`
	HighSimilarity   int `json:"high_similarity"`
	MediumSimilarity int `json:"medium_similarity"`
	LowSimilarity    int `json:"low_similarity"`
	TotalGroups      int `json:"total_groups"`
}

// MergeSelection is an operator's choice of which lead to keep within a
// duplicate group. RemoveIDs is always the group's members minus the kept id.
type MergeSelection struct {
	GroupID   string               `json:"group_id" yaml:"group_id"`
	KeepID    string               `json:"keep_id" yaml:"keep_id"`
	RemoveIDs []string             `json:"remove_ids,omitempty" yaml:"remove_ids,omitempty"`
	Fields    map[FieldKind]string `json:"fields,omitempty" yaml:"fields,omitempty"` // field -> source lead id
}

// MergedFieldSet maps each field kind to the value chosen for the surviving
// lead. A field is absent only when no group member has a value for it.
type MergedFieldSet map[FieldKind]string

// BulkProgress reports bulk-run advancement after every processed item.
type BulkProgress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Errors    int `json:"errors"`
}

// BulkItemResult records the independent outcome of one group in a bulk run.
type BulkItemResult struct {
	GroupID string `json:"group_id"`
	KeptID  string `json:"kept_id,omitempty"`
	Removed int    `json:"removed"`
	Err     error  `json:"-"`
}
