package preview_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/nfe-converter/internal/model"
	"github.com/rezonia/nfe-converter/internal/preview"
)

func invoiceWithItems(n int) *model.Invoice {
	inv := &model.Invoice{
		Number:     "1234",
		TotalValue: decimal.RequireFromString("1234.56"),
		Items:      []model.Item{},
		Payments:   []model.Payment{},
	}
	for i := 1; i <= n; i++ {
		inv.Items = append(inv.Items, model.Item{
			Number:      fmt.Sprint(i),
			Description: fmt.Sprintf("Product %d", i),
			Quantity:    decimal.NewFromInt(2),
			UnitValue:   decimal.RequireFromString("10.50"),
			Total:       decimal.RequireFromString("21.00"),
		})
	}
	return inv
}

func render(t *testing.T, m *preview.Model) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, preview.Render(&buf, m))
	return buf.String()
}

func TestBuild_TruncatesItems(t *testing.T) {
	inv := invoiceWithItems(15)

	m := preview.Build(inv, 0)

	assert.Len(t, m.Items.Rows, 12)
	assert.Equal(t, 15, m.Items.Total)
	assert.True(t, m.Items.Truncated())
	assert.Equal(t, "showing 12 of 15", m.Items.Indicator())
	assert.Equal(t, "Product 12", m.Items.Rows[11][2])
	assert.Len(t, inv.Items, 15, "invoice is not modified")

	html := render(t, m)
	assert.Contains(t, html, "showing 12 of 15")
	assert.Equal(t, 12, strings.Count(html, "<td>Product "))
}

func TestBuild_NoIndicatorAtLimit(t *testing.T) {
	m := preview.Build(invoiceWithItems(12), preview.DefaultLimit)

	assert.Len(t, m.Items.Rows, 12)
	assert.False(t, m.Items.Truncated())
	assert.Empty(t, m.Items.Indicator())
	assert.NotContains(t, render(t, m), "showing")
}

func TestBuild_CustomLimit(t *testing.T) {
	m := preview.Build(invoiceWithItems(5), 3)
	assert.Equal(t, "showing 3 of 5", m.Items.Indicator())
}

func TestBuild_EmptySections(t *testing.T) {
	m := preview.Build(invoiceWithItems(0), 0)

	require.Len(t, m.Sections(), 3)
	assert.True(t, m.Items.Empty())
	assert.True(t, m.Payments.Empty())
	assert.False(t, m.Summary.Empty())

	html := render(t, m)
	assert.Contains(t, html, "<h2>Summary")
	assert.Contains(t, html, "<h2>Items")
	assert.Contains(t, html, "<h2>Payments")
	assert.Contains(t, html, preview.NoItems)
	assert.Contains(t, html, preview.NoPayments)
	assert.Equal(t, 1, strings.Count(html, "<table>"), "only the summary renders a table")
}

func TestBuild_NilInvoice(t *testing.T) {
	m := preview.Build(nil, 0)
	assert.Equal(t, "NF-e", m.Title)
	assert.True(t, m.Items.Empty())
}

func TestBuild_LocaleFormatting(t *testing.T) {
	m := preview.Build(invoiceWithItems(1), 0)

	row := m.Items.Rows[0]
	assert.Equal(t, "2", row[6])
	assert.Equal(t, "R$ 10,50", row[7])
	assert.Equal(t, "R$ 21,00", row[8])
	assert.Equal(t, "R$ 0,00", row[9])

	assert.Equal(t, []string{"Total Value", "R$ 1.234,56"}, m.Summary.Rows[8])
}

func TestCurrencyAndQuantity(t *testing.T) {
	assert.Equal(t, "R$ 0,00", preview.Currency(decimal.Zero))
	assert.Equal(t, "R$ 1.000.000,10", preview.Currency(decimal.RequireFromString("1000000.1")))
	assert.Equal(t, "1,5", preview.Quantity(decimal.RequireFromString("1.5")))
	assert.Equal(t, "0,1235", preview.Quantity(decimal.RequireFromString("0.12346")))
}

func TestRender_EscapesMarkup(t *testing.T) {
	inv := invoiceWithItems(1)
	inv.Issuer.Name = `<script>alert("x")</script>`
	inv.Items[0].Description = `Tom & Jerry's "best"`
	inv.Payments = []model.Payment{{Method: "<b>Cash</b>", Amount: decimal.NewFromInt(1)}}

	html := render(t, preview.Build(inv, 0))

	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, "<b>Cash</b>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "Tom &amp; Jerry&#39;s &#34;best&#34;")
	assert.Contains(t, html, "&lt;b&gt;Cash&lt;/b&gt;")
}

func TestTemplate(t *testing.T) {
	assert.Equal(t, preview.TemplateName, preview.Template().Name())
}
