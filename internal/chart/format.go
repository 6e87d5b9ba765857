// Package chart turns loader output into chart-ready data: pie segments,
// echarts-style tree nodes, gradient palettes and German number formatting.
// Nothing here is stored on tree nodes.
package chart

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Currency is appended by FormatEuro.
const Currency = "€"

const maxFractionDigits = 3

// printer renders numbers the way budget documents do (de-DE).
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.German)

// FormatAmount formats v with German grouping and decimal separators.
// Example: FormatAmount(1234.5) returns "1.234,5".
func FormatAmount(v float64) string {
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(maxFractionDigits)))
}

// FormatEuro formats v as an amount followed by the euro sign.
func FormatEuro(v float64) string {
	return FormatAmount(v) + " " + Currency
}

// FormatPercent formats a share with one decimal: "12,5 %".
func FormatPercent(share float64) string {
	return printer.Sprint(number.Decimal(share, number.MaxFractionDigits(1))) + " %"
}
