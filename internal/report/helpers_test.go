package report

import (
	"fmt"
	"strings"
	"testing"

	"github.com/nao1215/soqlq/internal/model"
)

// decodeRows decodes a JSON query payload the same way the transport does.
func decodeRows(t *testing.T, payload string) []model.Row {
	t.Helper()

	rs, err := model.DecodeResultSet([]byte(payload))
	if err != nil {
		t.Fatalf("failed to decode fixture: %v", err)
	}
	return rs.Records
}

// accountsWithContacts returns 50 accounts. The first is "Cisco Systems, Inc."
// without contacts; the second has four contacts; the rest have one.
func accountsWithContacts(t *testing.T) []model.Row {
	t.Helper()

	records := make([]string, 0, 50)
	records = append(records, `{"attributes":{"type":"Account"},"Name":"Cisco Systems, Inc.","Contacts":null}`)
	records = append(records, `{"attributes":{"type":"Account"},"Name":"ASSMANN Electronic GmbH","Contacts":{"totalSize":4,"done":true,"records":[`+
		`{"attributes":{"type":"Contact"},"LastName":"Assmann"},`+
		`{"attributes":{"type":"Contact"},"LastName":"Becker"},`+
		`{"attributes":{"type":"Contact"},"LastName":"Fischer"},`+
		`{"attributes":{"type":"Contact"},"LastName":"Weber"}]}}`)
	for i := 2; i < 50; i++ {
		records = append(records, fmt.Sprintf(
			`{"attributes":{"type":"Account"},"Name":"Account %d","Contacts":{"totalSize":1,"done":true,"records":[{"attributes":{"type":"Contact"},"LastName":"Contact %d"}]}}`,
			i, i))
	}
	return decodeRows(t, `{"totalSize":50,"done":true,"records":[`+strings.Join(records, ",")+`]}`)
}

// accountsWithContactsFields is the field list for accountsWithContacts.
func accountsWithContactsFields() []model.Field {
	return []model.Field{
		model.NewSimpleField("Name"),
		model.NewSubqueryField("Contacts", "LastName"),
	}
}

// leadSourceCounts returns 16 aggregate rows of SELECT COUNT(Id), LeadSource
// ... GROUP BY LeadSource.
func leadSourceCounts(t *testing.T) []model.Row {
	t.Helper()

	records := make([]string, 0, 16)
	for i := range 16 {
		records = append(records, fmt.Sprintf(`{"attributes":{"type":"AggregateResult"},"expr0":%d,"LeadSource":"Source %d"}`, i+1, i))
	}
	return decodeRows(t, `{"totalSize":16,"done":true,"records":[`+strings.Join(records, ",")+`]}`)
}

func leadSourceFields() []model.Field {
	return []model.Field{
		model.NewFunctionField("COUNT(Id)", ""),
		model.NewSimpleField("LeadSource"),
	}
}
