package receipt

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"pos-service/internal/i18n"
	"pos-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() models.SaleRecord {
	return models.SaleRecord{
		ID: "3f2a9c1e-7b44-4d0e-9a55-0c1d2e3f4a5b",
		Items: []models.CartItem{
			{Product: models.Product{ID: 1, Name: "Coffee", Price: 25000}, Quantity: 2},
			{Product: models.Product{ID: 3, Name: "Water", Price: 5000}, Quantity: 1},
		},
		Total: 55000,
		Date:  "16/10/2026",
		Time:  "09:30:00",
	}
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "3F2A9C1E", ShortID("3f2a9c1e-7b44-4d0e-9a55-0c1d2e3f4a5b"))
	assert.Equal(t, "AB", ShortID("ab"))
}

func TestRender(t *testing.T) {
	r := NewRenderer("Smart Cafe")

	out := r.Render(sampleRecord(), i18n.LocaleEnglish)

	assert.True(t, strings.Contains(out, "Smart Cafe"))
	assert.Contains(t, out, "Receipt #3F2A9C1E")
	assert.Contains(t, out, "Date: 16/10/2026")
	assert.Contains(t, out, "Time: 09:30:00")
	assert.Contains(t, out, "Coffee x2")
	assert.Contains(t, out, "50,000")
	assert.Contains(t, out, "Water x1")
	assert.Contains(t, out, "Total: 55,000 LAK")
	assert.Contains(t, out, "Thank you for your purchase")
}

func TestRender_Lao(t *testing.T) {
	out := NewRenderer("Smart Cafe").Render(sampleRecord(), i18n.LocaleLao)

	assert.Contains(t, out, "ລວມທັງໝົດ: 55,000 ກີບ")
}

func TestWriterPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewWriterPrinter(&buf)

	require.NoError(t, p.Print(context.Background(), "sale-1", "hello"))
	require.NoError(t, p.Print(context.Background(), "sale-2", "world"))

	assert.Equal(t, "hello\f\nworld\f\n", buf.String())
}
