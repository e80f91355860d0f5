package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	tr, err := New("./locales", "en")
	require.NoError(t, err)

	assert.Equal(t, "insufficient stock for product Widget", tr.T("en", KeyStockInsufficient, "Widget"))
	assert.Equal(t, "موجودی کالای Widget کافی نیست", tr.T("fa", KeyStockInsufficient, "Widget"))
	assert.Equal(t, "Sale recorded", tr.T("de", KeySaleRecorded))
	assert.Equal(t, "no.such.key", tr.T("fa", "no.such.key"))
}

func TestLocaleFilesShareKeys(t *testing.T) {
	tr, err := New("./locales", "en")
	require.NoError(t, err)

	en := tr.translations["en"]
	fa := tr.translations["fa"]
	for key := range en {
		assert.Contains(t, fa, key)
	}
	assert.Len(t, fa, len(en))
}

func TestMatch(t *testing.T) {
	tr, err := New("./locales", "en")
	require.NoError(t, err)

	assert.Equal(t, "fa", tr.Match("fa-IR,fa;q=0.9,en;q=0.8"))
	assert.Equal(t, "en", tr.Match("en-US"))
	assert.Equal(t, "en", tr.Match(""))
	assert.Equal(t, "en", tr.Match("de-DE"))
	assert.Equal(t, "en", tr.Match(";;garbage"))
}

func TestMissingLocales(t *testing.T) {
	_, err := New(t.TempDir(), "en")
	assert.Error(t, err)
}
