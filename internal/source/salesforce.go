package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-dedup/pkg/salesforce"

	"github.com/sells-group/lead-dedup/internal/model"
)

// sfLead represents a Salesforce Lead record.
type sfLead struct {
	ID          string `json:"Id" salesforce:"Id"`
	Name        string `json:"Name" salesforce:"Name"`
	Email       string `json:"Email" salesforce:"Email"`
	Phone       string `json:"Phone" salesforce:"Phone"`
	Company     string `json:"Company" salesforce:"Company"`
	Description string `json:"Description" salesforce:"Description"`
	CreatedDate string `json:"CreatedDate" salesforce:"CreatedDate"`
}

// sfLeadFields are the SOQL fields selected for Lead queries.
var sfLeadFields = []string{
	"Id", "Name", "Email", "Phone", "Company", "Description", "CreatedDate",
}

// sfTimeLayout is the timestamp format Salesforce returns for CreatedDate.
const sfTimeLayout = "2006-01-02T15:04:05.000-0700"

// FetchSalesforceLeads pulls leads from Salesforce, most recent first.
// limit <= 0 fetches up to 10000 records.
func FetchSalesforceLeads(ctx context.Context, c salesforce.Client, limit int) ([]model.Lead, error) {
	if limit <= 0 {
		limit = 10000
	}
	soql := fmt.Sprintf(
		"SELECT %s FROM Lead WHERE IsDeleted = false ORDER BY CreatedDate DESC LIMIT %d",
		strings.Join(sfLeadFields, ", "),
		limit,
	)

	var records []sfLead
	if err := c.Query(ctx, soql, &records); err != nil {
		return nil, eris.Wrap(err, "source: query salesforce leads")
	}

	leads := make([]model.Lead, 0, len(records))
	for _, r := range records {
		lead := model.Lead{
			ID:      r.ID,
			Name:    r.Name,
			Email:   r.Email,
			Phone:   r.Phone,
			Company: r.Company,
			Notes:   r.Description,
		}
		if r.CreatedDate != "" {
			if ts, err := time.Parse(sfTimeLayout, r.CreatedDate); err == nil {
				lead.CreatedAt = ts.UTC()
			}
		}
		leads = append(leads, lead)
	}
	return leads, nil
}
