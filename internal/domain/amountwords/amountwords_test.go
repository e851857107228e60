package amountwords

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "zéro"},
		{1, "un"},
		{16, "seize"},
		{17, "dix-sept"},
		{20, "vingt"},
		{21, "vingt et un"},
		{22, "vingt-deux"},
		{31, "trente et un"},
		{61, "soixante et un"},
		{70, "soixante-dix"},
		{71, "soixante et onze"},
		{72, "soixante-douze"},
		{77, "soixante-dix-sept"},
		{80, "quatre-vingts"},
		{81, "quatre-vingt-un"},
		{89, "quatre-vingt-neuf"},
		{90, "quatre-vingt-dix"},
		{91, "quatre-vingt-onze"},
		{99, "quatre-vingt-dix-neuf"},
		{100, "cent"},
		{101, "cent un"},
		{180, "cent quatre-vingts"},
		{200, "deux cents"},
		{201, "deux cent un"},
		{560, "cinq cent soixante"},
		{999, "neuf cent quatre-vingt-dix-neuf"},
		{1000, "mille"},
		{1001, "mille un"},
		{1234, "mille deux cent trente-quatre"},
		{2000, "deux mille"},
		{21000, "vingt et un mille"},
		{80000, "quatre-vingt mille"},
		{200000, "deux cent mille"},
		{1000000, "un million"},
		{2000000, "deux millions"},
		{200000000, "deux cents millions"},
		{80000000, "quatre-vingts millions"},
		{1000000000, "un milliard"},
		{3500000000, "trois milliards cinq cents millions"},
		{-15, "moins quinze"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Number(tt.n))
		})
	}
}

func TestNumber_Extremes(t *testing.T) {
	assert.NotEmpty(t, Number(math.MaxInt64))
	assert.Contains(t, Number(math.MinInt64), "moins neuf trillions")
}

func TestDinars(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"0", "zéro dinar"},
		{"1", "un dinar"},
		{"2", "deux dinars"},
		{"0.001", "un millime"},
		{"0.5", "cinq cents millimes"},
		{"1234.56", "mille deux cent trente-quatre dinars et cinq cent soixante millimes"},
		{"1.001", "un dinar et un millime"},
		{"80.080", "quatre-vingts dinars et quatre-vingts millimes"},
		{"2000000", "deux millions de dinars"},
		{"2000001", "deux millions un dinars"},
		{"12.3456", "douze dinars et trois cent quarante-six millimes"},
		{"-3", "moins trois dinars"},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, Dinars(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Mille dinars", Capitalize("mille dinars"))
	assert.Equal(t, "Zéro dinar", Capitalize("zéro dinar"))
	assert.Equal(t, "", Capitalize(""))
}
