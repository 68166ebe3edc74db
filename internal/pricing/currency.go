package pricing

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var brlPrinter = message.NewPrinter(language.BrazilianPortuguese)

// ParseBRL reads a FIPE price string such as "R$ 45.000,00".
func ParseBRL(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "R$")
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '.':
			return -1
		case ',':
			return '.'
		}
		return r
	}, s)
	if s == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}
	return v, nil
}

// FormatBRL renders v with pt-BR grouping and two decimals.
func FormatBRL(v float64) string {
	return "R$ " + brlPrinter.Sprint(number.Decimal(v, number.Scale(2)))
}
