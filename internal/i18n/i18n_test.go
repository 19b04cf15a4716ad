package i18n

import (
	"testing"

	"pos-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTablesAreTotal(t *testing.T) {
	require.NoError(t, Validate())

	for _, loc := range Locales {
		labels := Labels(loc)
		assert.Len(t, labels, int(labelCount))
		for _, v := range models.Views {
			assert.NotEmpty(t, ViewLabel(loc, v), "locale=%s view=%s", loc, v)
		}
	}
}

func TestParseLocale(t *testing.T) {
	loc, err := ParseLocale("en")
	require.NoError(t, err)
	assert.Equal(t, LocaleEnglish, loc)

	_, err = ParseLocale("fr")
	assert.ErrorIs(t, err, ErrUnsupportedLocale)
}

func TestNegotiate(t *testing.T) {
	assert.Equal(t, LocaleThai, Negotiate("th-TH,th;q=0.9,en;q=0.5"))
	assert.Equal(t, LocaleEnglish, Negotiate("en-US"))
	assert.Equal(t, LocaleLao, Negotiate(""))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "25,000", FormatAmount(25000))
	assert.Equal(t, "5,000", FormatAmount(5000))
	assert.Equal(t, "0", FormatAmount(0))
}

func TestLabelString(t *testing.T) {
	assert.Equal(t, "checkout", LabelCheckout.String())
	assert.Equal(t, "label(999)", Label(999).String())
}
