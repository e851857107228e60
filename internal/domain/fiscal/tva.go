// Package fiscal holds the Tunisian tax rules applied to commercial
// documents: TVA, FODEC, the timbre fiscal stamp duty, withholding tax
// and the matricule fiscal identifier.
package fiscal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// TVARate is a TVA rate expressed in percent
type TVARate int

// Legal TVA rates
const (
	TVAExempt TVARate = 0
	TVA7      TVARate = 7
	TVA13     TVARate = 13
	TVA19     TVARate = 19
)

// AllTVARates returns the legal TVA rates in ascending order
func AllTVARates() []TVARate {
	return []TVARate{TVAExempt, TVA7, TVA13, TVA19}
}

// IsValid checks if the rate is one of the legal TVA rates
func (r TVARate) IsValid() bool {
	switch r {
	case TVAExempt, TVA7, TVA13, TVA19:
		return true
	}
	return false
}

// Percent returns the rate as a decimal percentage (19 for 19%)
func (r TVARate) Percent() decimal.Decimal {
	return decimal.NewFromInt(int64(r))
}

// Ratio returns the rate as a fraction (0.19 for 19%)
func (r TVARate) Ratio() decimal.Decimal {
	return r.Percent().Div(decimal.NewFromInt(100))
}

// String returns the rate as printed on documents
func (r TVARate) String() string {
	return fmt.Sprintf("%d%%", int(r))
}

// ParseTVARate parses "19", "19%" or "19.00" into a TVA rate
func ParseTVARate(s string) (TVARate, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid TVA rate %q", s)
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("invalid TVA rate %q", s)
	}
	r := TVARate(d.IntPart())
	if !r.IsValid() {
		return 0, fmt.Errorf("unsupported TVA rate %s", strconv.Itoa(int(r)))
	}
	return r, nil
}
