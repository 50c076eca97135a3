// Package money formats integer currency amounts for display.
package money

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders amounts with a currency symbol and the grouping
// separators of its locale.
type Formatter struct {
	printer *message.Printer
	symbol  string
}

// NewFormatter creates a formatter for a BCP-47 locale such as "ja" or "en-US"
func NewFormatter(locale, symbol string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid currency locale %q: %w", locale, err)
	}
	return &Formatter{printer: message.NewPrinter(tag), symbol: symbol}, nil
}

// Default returns the yen formatter
func Default() *Formatter {
	return &Formatter{printer: message.NewPrinter(language.Japanese), symbol: "¥"}
}

// Format renders amount, e.g. 10000 as "¥10,000" and -500 as "-¥500"
func (f *Formatter) Format(amount int64) string {
	if amount < 0 {
		// magnitude as uint64 so math.MinInt64 does not wrap
		return "-" + f.symbol + f.printer.Sprintf("%d", uint64(-(amount+1))+1)
	}
	return f.symbol + f.printer.Sprintf("%d", amount)
}
