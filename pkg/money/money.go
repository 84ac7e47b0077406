// Package money formatea montos en la moneda y el idioma configurados (CURRENCY_CODE, CURRENCY_LOCALE).
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter convierte decimales a texto con símbolo de moneda y separadores del locale.
type Formatter struct {
	unit    currency.Unit
	printer *message.Printer
	symbol  string
}

// NewFormatter construye el formateador. code es ISO 4217 (ej: USD, COP); locale es BCP 47 (ej: en-US, es-CO).
func NewFormatter(code, locale string) (*Formatter, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, fmt.Errorf("moneda %q: %w", code, err)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("locale %q: %w", locale, err)
	}
	p := message.NewPrinter(tag)
	return &Formatter{
		unit:    unit,
		printer: p,
		symbol:  p.Sprint(currency.Symbol(unit)),
	}, nil
}

// Code devuelve el código ISO de la moneda.
func (f *Formatter) Code() string { return f.unit.String() }

// Format devuelve el monto con símbolo y 2 decimales, ej: "$ 1,234.50".
func (f *Formatter) Format(amount decimal.Decimal) string {
	v, _ := amount.Round(2).Float64()
	n := f.printer.Sprint(number.Decimal(v, number.Scale(2)))
	if f.symbol == "" {
		return n
	}
	return f.symbol + " " + n
}
