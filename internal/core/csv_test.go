package core

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCustomersCSV_UsesView(t *testing.T) {
	svc, _, _ := newTestService(t)

	var buf bytes.Buffer
	err := svc.ExportCustomersCSV(&buf, ViewQuery{
		Category: "Retail",
		Sort:     SortConfig{Column: "orders", Direction: SortDesc},
	})
	require.NoError(t, err)

	want := "Name,Email,Phone,Category,Orders,Tier\n" +
		"Bob Johnson,bob@example.com,(11) 77777-7777,Retail,8,\n" +
		"John Doe,john@example.com,(11) 99999-9999,Retail,5,\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCustomersCSV_Quoting(t *testing.T) {
	cols := BuiltinColumns()[:2]
	recs := []Record{{Name: `Doe, "JD" John`, Email: "jd@example.com"}}

	var buf bytes.Buffer
	require.NoError(t, WriteCustomersCSV(&buf, cols, recs))
	assert.Equal(t, "Name,Email\n\"Doe, \"\"JD\"\" John\",jd@example.com\n", buf.String())
}

func TestImportCustomersCSV(t *testing.T) {
	svc, _, rec := newTestService(t)

	input := "\xEF\xBB\xBFName,email,Orders,Tier,Notes\n" +
		"Ana Lima,ana@example.com,12,Gold,first\n" +
		"No Email,,3,,\n" +
		"Bad Orders,bad@example.com,many,,\n" +
		"Carl,carl@example.com,,,\n"

	res, err := svc.ImportCustomersCSV(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 2, res.Added)
	assert.Equal(t, []string{"Notes"}, res.IgnoredHeaders)
	require.Len(t, res.Failed, 2)
	assert.Equal(t, 3, res.Failed[0].Line)
	assert.Contains(t, res.Failed[0].Message, "email")
	assert.Equal(t, 4, res.Failed[1].Line)
	assert.Contains(t, res.Failed[1].Message, "orders")

	v := svc.CustomerView(ViewQuery{ColumnFilters: map[string]string{"tier": "gold"}})
	require.Len(t, v.Records, 1)
	assert.Equal(t, "Ana Lima", v.Records[0].Name)
	assert.Equal(t, 12, v.Records[0].Orders)

	assert.Len(t, rec.Topics(), 2, "one event per imported customer")
}

func TestImportCustomersCSV_HeaderErrors(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.ImportCustomersCSV(context.Background(), strings.NewReader(""))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "is empty", ve.FieldMessage("file"))

	_, err = svc.ImportCustomersCSV(context.Background(), strings.NewReader("phone,orders\n1,2\n"))
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 2)
	assert.Equal(t, 3, svc.customers.Len())
}

func TestImportCustomersCSV_Cancelled(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ImportCustomersCSV(ctx, strings.NewReader("name,email\nA,a@example.com\n"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, svc.customers.Len())
}
