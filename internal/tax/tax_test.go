package tax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Equal(t, dec(want).StringFixed(3), got.StringFixed(3), msgAndArgs...)
}

func TestTTCFromHT(t *testing.T) {
	tests := []struct {
		name  string
		ht    string
		rate  string
		stamp string
		want  string
	}{
		{"7 percent no stamp", "1000", "7", "0", "1070"},
		{"19 percent with stamp", "1000", "19", "1", "1191"},
		{"zero rate", "250.5", "0", "0", "250.5"},
		{"rounds vat", "0.005", "10", "0", "0.006"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertAmount(t, tt.want, TTCFromHT(dec(tt.ht), dec(tt.rate), dec(tt.stamp)))
		})
	}
}

func TestHTFromTTC(t *testing.T) {
	assertAmount(t, "1000", HTFromTTC(dec("1191"), dec("19"), dec("1")))
	assertAmount(t, "1000", HTFromTTC(dec("1070"), dec("7"), decimal.Zero))
	assertAmount(t, "333.333", HTFromTTC(dec("333.333"), decimal.Zero, decimal.Zero))
}

func TestVATAmount(t *testing.T) {
	assertAmount(t, "70", VATAmount(dec("1000"), dec("7")))
	assertAmount(t, "35", VATAmount(dec("500"), dec("7")))
	assertAmount(t, "24.035", VATAmount(dec("126.5"), dec("19")))
}

func TestHTTTCRoundTrip(t *testing.T) {
	tolerance := dec("0.001")
	rates := []string{"0", "7", "13", "19"}
	amounts := []string{"0", "0.001", "0.005", "1", "99.999", "123.457", "1000", "45678.912", "1000000"}
	for _, r := range rates {
		for _, a := range amounts {
			ht := dec(a)
			back := HTFromTTC(TTCFromHT(ht, dec(r), decimal.Zero), dec(r), decimal.Zero)
			assert.True(t, back.Sub(ht).Abs().LessThanOrEqual(tolerance),
				"rate %s ht %s: got %s", r, a, back)
		}
	}
}

func TestWithholdingAmount(t *testing.T) {
	t.Run("forced", func(t *testing.T) {
		assertAmount(t, "11.910", WithholdingAmount(dec("1191"), dec("1"), true))
	})
	t.Run("not forced", func(t *testing.T) {
		assert.True(t, WithholdingAmount(dec("1191"), dec("1"), false).IsZero())
	})
	t.Run("below threshold still applies when forced", func(t *testing.T) {
		assertAmount(t, "5", WithholdingAmount(dec("500"), dec("1"), true))
		assert.False(t, WithholdingAdvised(dec("500")))
	})
	t.Run("threshold is advisory", func(t *testing.T) {
		assert.True(t, WithholdingAdvised(dec("1000")))
		assert.True(t, WithholdingAmount(dec("5000"), dec("1"), false).IsZero())
	})
}
