// Package amountwords spells numbers and dinar amounts in French, the way
// amounts are written out at the foot of Tunisian invoices.
//
// Traditional spelling is used: hyphens only below one hundred, "et" for
// 21 through 71, "quatre-vingts" and "cents" plural only when they end the
// number or precede million/milliard, and an invariable "mille".
package amountwords

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/shared/valueobject"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var units = [...]string{
	"zéro", "un", "deux", "trois", "quatre", "cinq", "six", "sept", "huit", "neuf",
	"dix", "onze", "douze", "treize", "quatorze", "quinze", "seize", "dix-sept", "dix-huit", "dix-neuf",
}

var tens = [...]string{
	"", "dix", "vingt", "trente", "quarante", "cinquante", "soixante", "soixante", "quatre-vingt", "quatre-vingt",
}

type scale struct {
	value    uint64
	singular string
	plural   string
}

// Long-scale names, largest first. Thousands are handled separately.
var scales = []scale{
	{1_000_000_000_000_000_000, "trillion", "trillions"},
	{1_000_000_000_000_000, "billiard", "billiards"},
	{1_000_000_000_000, "billion", "billions"},
	{1_000_000_000, "milliard", "milliards"},
	{1_000_000, "million", "millions"},
}

// Number spells n as a French cardinal number
func Number(n int64) string {
	if n == 0 {
		return units[0]
	}
	if n < 0 {
		// uint64 conversion keeps math.MinInt64 representable
		return "moins " + spell(uint64(-(n+1))+1)
	}
	return spell(uint64(n))
}

func spell(n uint64) string {
	parts := make([]string, 0, 8)

	for _, s := range scales {
		q := n / s.value
		n %= s.value
		if q == 0 {
			continue
		}
		name := s.plural
		if q == 1 {
			name = s.singular
		}
		parts = append(parts, below1000(int(q), true)+" "+name)
	}

	if q := n / 1000; q > 0 {
		if q == 1 {
			parts = append(parts, "mille")
		} else {
			parts = append(parts, below1000(int(q), false)+" mille")
		}
	}
	n %= 1000

	if n > 0 {
		parts = append(parts, below1000(int(n), true))
	}
	return strings.Join(parts, " ")
}

// below1000 spells 1..999. terminal is false when the group is followed
// by "mille", which keeps "cent" and "quatre-vingt" invariable.
func below1000(n int, terminal bool) string {
	h, r := n/100, n%100
	switch {
	case h == 0:
		return below100(r, terminal)
	case h == 1:
		if r == 0 {
			return "cent"
		}
		return "cent " + below100(r, terminal)
	default:
		if r == 0 {
			if terminal {
				return units[h] + " cents"
			}
			return units[h] + " cent"
		}
		return units[h] + " cent " + below100(r, terminal)
	}
}

func below100(n int, terminal bool) string {
	if n < 20 {
		return units[n]
	}
	t, u := n/10, n%10
	switch t {
	case 7, 9:
		if t == 7 && u == 1 {
			return "soixante et onze"
		}
		return tens[t] + "-" + units[10+u]
	case 8:
		if u == 0 {
			if terminal {
				return "quatre-vingts"
			}
			return "quatre-vingt"
		}
		return "quatre-vingt-" + units[u]
	default:
		switch u {
		case 0:
			return tens[t]
		case 1:
			return tens[t] + " et un"
		default:
			return tens[t] + "-" + units[u]
		}
	}
}

var thousand = decimal.NewFromInt(1000)

// Dinars spells an amount in dinars and millimes, e.g.
// "mille deux cent trente-quatre dinars et cinq cent soixante millimes".
// The amount is rounded to the millime first.
func Dinars(amount decimal.Decimal) string {
	a := valueobject.RoundMillimes(amount)
	negative := a.IsNegative()
	a = a.Abs()

	dinars := a.IntPart()
	millimes := a.Sub(decimal.NewFromInt(dinars)).Mul(thousand).IntPart()

	if dinars == 0 && millimes == 0 {
		return "zéro dinar"
	}

	parts := make([]string, 0, 2)
	if dinars > 0 {
		parts = append(parts, Number(dinars)+" "+dinarUnit(dinars))
	}
	if millimes > 0 {
		unit := "millimes"
		if millimes == 1 {
			unit = "millime"
		}
		parts = append(parts, Number(millimes)+" "+unit)
	}

	s := strings.Join(parts, " et ")
	if negative {
		s = "moins " + s
	}
	return s
}

// dinarUnit returns the currency noun; round millions take "de dinars"
func dinarUnit(n int64) string {
	switch {
	case n == 1:
		return "dinar"
	case n%1_000_000 == 0:
		return "de dinars"
	default:
		return "dinars"
	}
}

// Capitalize upper-cases the first letter, e.g. "Mille dinars"
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	// a Caser is stateful and cannot be shared across goroutines
	return cases.Upper(language.French).String(string(r)) + s[size:]
}
