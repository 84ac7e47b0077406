package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_AgrupaMilesYDosDecimales(t *testing.T) {
	f, err := NewFormatter("usd", "en-US")
	require.NoError(t, err)
	assert.Equal(t, "USD", f.Code())

	out := f.Format(decimal.RequireFromString("1234.5"))
	assert.Contains(t, out, "1,234.50")
}

func TestNewFormatter_MonedaInvalida(t *testing.T) {
	_, err := NewFormatter("XX", "en-US")
	assert.Error(t, err)
}

func TestNewFormatter_LocaleInvalido(t *testing.T) {
	_, err := NewFormatter("USD", "no_es_un-locale!!")
	assert.Error(t, err)
}
