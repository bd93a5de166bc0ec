package view

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders cent amounts for display. The shop runs a single fixed
// zero-decimal currency, so the stored minor unit is the displayed unit;
// grouping and symbol come from the locale.
type Formatter struct {
	printer *message.Printer
	symbol  string
}

func NewFormatter() *Formatter {
	return &Formatter{
		printer: message.NewPrinter(language.Indonesian),
		symbol:  "Rp",
	}
}

func (f *Formatter) Format(amount int64) string {
	return f.printer.Sprintf("%s%v", f.symbol, number.Decimal(amount))
}
