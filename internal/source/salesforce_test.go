package source

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-dedup/pkg/salesforce"
)

// stubSFClient satisfies salesforce.Client for query tests.
type stubSFClient struct {
	salesforce.Client

	lastSoql string
	records  []sfLead
	queryErr error
}

func (s *stubSFClient) Query(_ context.Context, soql string, out any) error {
	s.lastSoql = soql
	if s.queryErr != nil {
		return s.queryErr
	}
	*out.(*[]sfLead) = s.records
	return nil
}

func TestFetchSalesforceLeads_MapsRecords(t *testing.T) {
	stub := &stubSFClient{records: []sfLead{
		{
			ID:          "00Q000000000001",
			Name:        "Maria Silva",
			Email:       "maria@x.com",
			Phone:       "11999998888",
			Company:     "Acme Ltda",
			Description: "from webinar",
			CreatedDate: "2026-03-01T10:00:00.000+0000",
		},
	}}

	leads, err := FetchSalesforceLeads(context.Background(), stub, 50)
	require.NoError(t, err)
	require.Len(t, leads, 1)

	l := leads[0]
	assert.Equal(t, "00Q000000000001", l.ID)
	assert.Equal(t, "Maria Silva", l.Name)
	assert.Equal(t, "from webinar", l.Notes)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), l.CreatedAt)

	assert.Contains(t, stub.lastSoql, "FROM Lead")
	assert.Contains(t, stub.lastSoql, "LIMIT 50")
}

func TestFetchSalesforceLeads_DefaultLimit(t *testing.T) {
	stub := &stubSFClient{}
	_, err := FetchSalesforceLeads(context.Background(), stub, 0)
	require.NoError(t, err)
	assert.Contains(t, stub.lastSoql, "LIMIT 10000")
}

func TestFetchSalesforceLeads_QueryError(t *testing.T) {
	stub := &stubSFClient{queryErr: eris.New("sf: query")}
	_, err := FetchSalesforceLeads(context.Background(), stub, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query salesforce leads")
}
