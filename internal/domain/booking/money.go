package booking

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/hearth-catering/service-booking/pkg/domain"
)

// Money is an amount in minor currency units (centavos). All ledger arithmetic
// is done on Money; decimals only appear at the API boundary.
type Money int64

// MinorUnitsPerMajor is the number of centavos in one peso.
const MinorUnitsPerMajor = 100

// MaxMoney bounds every amount accepted or computed: one trillion pesos.
const MaxMoney Money = 100_000_000_000_000

// ErrAmountOutOfRange is returned when an amount or a computed total exceeds MaxMoney.
var ErrAmountOutOfRange = domain.NewValidationError("amount is out of range")

var (
	minorUnitScale = decimal.NewFromInt(MinorUnitsPerMajor)
	maxMoneyMinor  = decimal.NewFromInt(int64(MaxMoney))
)

// MoneyFromDecimal converts a major-unit decimal (e.g. 1200.50) to Money,
// rounding half away from zero to the nearest minor unit.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	minor := d.Mul(minorUnitScale).Round(0)
	if minor.Abs().GreaterThan(maxMoneyMinor) {
		return 0, ErrAmountOutOfRange
	}
	return Money(minor.IntPart()), nil
}

// MoneyFromMajor converts a whole major-unit amount to Money.
func MoneyFromMajor(major int64) Money {
	return Money(major * MinorUnitsPerMajor)
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(m)).Div(minorUnitScale)
}

// String formats the amount as a peso string, e.g. "₱132,000.00".
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole := strconv.FormatInt(v/MinorUnitsPerMajor, 10)
	return fmt.Sprintf("%s₱%s.%02d", sign, groupThousands(whole), v%MinorUnitsPerMajor)
}

// Times returns m x n, or ErrAmountOutOfRange when the product exceeds MaxMoney.
func (m Money) Times(n int64) (Money, error) {
	if m == 0 || n == 0 {
		return 0, nil
	}
	am, an := abs64(int64(m)), abs64(n)
	if am < 0 || an < 0 || am > int64(MaxMoney)/an {
		return 0, ErrAmountOutOfRange
	}
	return m * Money(n), nil
}

// Plus returns m + o, or ErrAmountOutOfRange when either side or the sum
// exceeds MaxMoney.
func (m Money) Plus(o Money) (Money, error) {
	if !m.inRange() || !o.inRange() {
		return 0, ErrAmountOutOfRange
	}
	sum := m + o
	if !sum.inRange() {
		return 0, ErrAmountOutOfRange
	}
	return sum, nil
}

// MulRate multiplies m by basisPoints/10000, rounding half up. With
// basisPoints in 0..10000 the result never exceeds m.
func (m Money) MulRate(basisPoints int64) Money {
	q, r := int64(m)/10000, int64(m)%10000
	return Money(q*basisPoints + (r*basisPoints+5000)/10000)
}

func (m Money) inRange() bool {
	return m >= -MaxMoney && m <= MaxMoney
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}
	head := len(s) % 3
	out := s[:head]
	for i := head; i < len(s); i += 3 {
		if out != "" {
			out += ","
		}
		out += s[i : i+3]
	}
	return out
}
