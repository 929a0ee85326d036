package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldKindPrecedence(t *testing.T) {
	assert.Less(t, FieldDocument.Precedence(), FieldEmail.Precedence())
	assert.Less(t, FieldEmail.Precedence(), FieldPhone.Precedence())
	assert.Less(t, FieldPhone.Precedence(), FieldName.Precedence())
	assert.Equal(t, len(MatchFields), FieldNotes.Precedence(), "non-matchable fields rank last")
}

func TestFieldKindIsIdentifier(t *testing.T) {
	assert.True(t, FieldDocument.IsIdentifier())
	assert.True(t, FieldEmail.IsIdentifier())
	assert.True(t, FieldPhone.IsIdentifier())
	assert.False(t, FieldName.IsIdentifier())
	assert.False(t, FieldCompany.IsIdentifier())
}

func TestLeadField(t *testing.T) {
	l := Lead{
		Name:       "Maria Silva",
		Email:      "m@x.com",
		Phone:      "11999998888",
		DocumentID: "111",
		Company:    "Acme",
		Notes:      "warm",
	}
	for _, kind := range MergeFields {
		assert.NotEmpty(t, l.Field(kind), "field %s", kind)
	}
	assert.Equal(t, "m@x.com", l.Field(FieldEmail))
	assert.Empty(t, l.Field(FieldKind("bogus")))
}

func TestGroupMembership(t *testing.T) {
	g := DuplicateGroup{Members: []Lead{{ID: "1"}, {ID: "2"}}}
	assert.Equal(t, []string{"1", "2"}, g.MemberIDs())
	assert.True(t, g.HasMember("2"))
	assert.False(t, g.HasMember("3"))
}
